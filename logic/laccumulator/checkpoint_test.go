package laccumulator

import (
	"testing"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/stretchr/testify/assert"
)

func TestIsCheckpointHeight(t *testing.T) {
	tests := []struct {
		height int32
		want   bool
	}{
		{0, false},
		{9, false},
		{10, false},
		{11, false},
		{20, true},
		{25, false},
		{30, true},
		{1000, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCheckpointHeight(tt.height), "height %d", tt.height)
	}
}

func TestCheckpointCommitment(t *testing.T) {
	assert.Equal(t, util.HashZero, CheckpointCommitment(nil))
	assert.Equal(t, util.HashZero, CheckpointCommitment(accumulators.NewCheckpoint()))

	cp := accumulators.NewCheckpoint()
	cp[zerocoin.ZQOne] = util.DoubleSha256Hash([]byte("x"))
	assert.Equal(t, accumulators.CheckpointHash(cp), CheckpointCommitment(cp))
}

func accumulate(t *testing.T, p *zerocoin.Params, d zerocoin.Denomination, coins ...*zerocoin.PublicCoin) *zerocoin.Accumulator {
	acc := zerocoin.NewAccumulator(p, d)
	for _, c := range coins {
		if err := acc.Accumulate(c); err != nil {
			t.Fatalf("Accumulate: %v", err)
		}
	}
	return acc
}

func TestCalculateCheckpoint(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	ones := mintCoins(t, f.p, zerocoin.ZQOne, 3)
	tens := mintCoins(t, f.p, zerocoin.ZQTen, 1)
	mints := map[int32][]*zerocoin.PublicCoin{
		3:  ones[:2],
		5:  tens,
		25: ones[2:],
	}
	f.build(t, 45, mints)

	for h := int32(0); h < 20; h++ {
		assert.True(t, f.chain.GetIndex(h).AccumulatorCheckpoint.IsEmpty(), "height %d", h)
	}

	onesAt20 := accumulators.Checksum(accumulate(t, f.p, zerocoin.ZQOne, ones[:2]...).Value())
	tensAt20 := accumulators.Checksum(accumulate(t, f.p, zerocoin.ZQTen, tens...).Value())
	cp20 := f.chain.GetIndex(20).AccumulatorCheckpoint
	assert.Equal(t, onesAt20, cp20[zerocoin.ZQOne])
	assert.Equal(t, tensAt20, cp20[zerocoin.ZQTen])
	assert.Equal(t, util.HashZero, cp20[zerocoin.ZQFive], "unused denomination keeps the zero hash")

	// the window behind height 30 holds no mint
	assert.True(t, cp20.Equal(f.chain.GetIndex(30).AccumulatorCheckpoint))
	assert.True(t, cp20.Equal(f.chain.GetIndex(39).AccumulatorCheckpoint))

	onesAt40 := accumulators.Checksum(accumulate(t, f.p, zerocoin.ZQOne, ones...).Value())
	cp40 := f.chain.GetIndex(40).AccumulatorCheckpoint
	assert.Equal(t, onesAt40, cp40[zerocoin.ZQOne])
	assert.Equal(t, tensAt20, cp40[zerocoin.ZQTen])
	assert.True(t, cp40.Equal(f.chain.GetIndex(45).AccumulatorCheckpoint))

	next, err := CalculateCheckpoint(46, f.chain, f.blocks, f.store, f.p)
	assert.NoError(t, err)
	assert.True(t, cp40.Equal(next))

	_, err = CalculateCheckpoint(60, f.chain, f.blocks, f.store, f.p)
	assert.Error(t, err, "height 60 does not extend the tip")

	assert.Equal(t, int32(20), FindFirstHeightWithChecksum(f.chain, onesAt20, zerocoin.ZQOne))
	assert.Equal(t, int32(40), FindFirstHeightWithChecksum(f.chain, onesAt40, zerocoin.ZQOne))
	assert.Equal(t, int32(20), FindFirstHeightWithChecksum(f.chain, tensAt20, zerocoin.ZQTen))
	assert.Equal(t, int32(0), FindFirstHeightWithChecksum(f.chain, onesAt40, zerocoin.ZQTen))
	assert.Equal(t, int32(0), FindFirstHeightWithChecksum(f.chain, util.HashZero, zerocoin.ZQFive))

	value, err := GetAccumulatorValue(f.chain, f.store, f.p, 35, zerocoin.ZQOne)
	assert.NoError(t, err)
	assert.Equal(t, 0, accumulate(t, f.p, zerocoin.ZQOne, ones[:2]...).Value().Cmp(value))
	value, err = GetAccumulatorValue(f.chain, f.store, f.p, 35, zerocoin.ZQFive)
	assert.NoError(t, err)
	assert.Equal(t, 0, zerocoin.NewAccumulator(f.p, zerocoin.ZQFive).Value().Cmp(value))
	_, err = GetAccumulatorValue(f.chain, f.store, f.p, 99, zerocoin.ZQOne)
	assert.Error(t, err)
}

func TestValidateCheckpointRejects(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	ones := mintCoins(t, f.p, zerocoin.ZQOne, 1)
	f.build(t, 24, map[int32][]*zerocoin.PublicCoin{2: ones})

	bogus := util.DoubleSha256Hash([]byte("bogus"))
	bl, bi := f.newBlock(nil, bogus)
	err := ValidateCheckpoint(bl, bi, f.blocks, f.store, f.p)
	code, reason, ok := errcode.HasRejectCode(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.RejectCheckpoint, code)
	assert.Equal(t, "checkpoint changed off a 10 block boundary", reason)

	f.build(t, 29, nil)
	bl, bi = f.newBlock(nil, bogus)
	err = ValidateCheckpoint(bl, bi, f.blocks, f.store, f.p)
	code, reason, ok = errcode.HasRejectCode(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.RejectCheckpoint, code)
	assert.Equal(t, "accumulator checkpoint mismatch", reason)
}

func TestDisconnectCheckpoint(t *testing.T) {
	f := newFixture(t)
	defer f.cleanup()

	ones := mintCoins(t, f.p, zerocoin.ZQOne, 2)
	tens := mintCoins(t, f.p, zerocoin.ZQTen, 1)
	f.build(t, 30, map[int32][]*zerocoin.PublicCoin{1: ones[:1], 4: tens, 12: ones[1:]})

	bi30 := f.chain.GetIndex(30)
	cp20 := f.chain.GetIndex(20).AccumulatorCheckpoint
	cp30 := bi30.AccumulatorCheckpoint
	assert.NotEqual(t, cp20[zerocoin.ZQOne], cp30[zerocoin.ZQOne])
	assert.Equal(t, cp20[zerocoin.ZQTen], cp30[zerocoin.ZQTen])

	assert.NoError(t, DisconnectCheckpoint(f.chain.GetIndex(25), f.store), "nothing to erase off a boundary")
	assert.NoError(t, DisconnectCheckpoint(bi30, f.store))

	_, err := f.store.GetAccumulatorValue(cp30[zerocoin.ZQOne])
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorChecksumNotFound))
	_, err = f.store.GetAccumulatorValue(cp20[zerocoin.ZQTen])
	assert.NoError(t, err, "a checksum the parent still uses survives")
	_, err = f.store.GetAccumulatorValue(cp20[zerocoin.ZQOne])
	assert.NoError(t, err)
}
