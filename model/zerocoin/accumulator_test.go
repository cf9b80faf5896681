package zerocoin

import (
	"math/big"
	"testing"

	"github.com/copernet/zerocoin/errcode"
	"github.com/stretchr/testify/assert"
)

func TestAccumulatorOrderIndependent(t *testing.T) {
	p := testParams(t)
	coins := mintCoins(t, p, ZQOne, PrivateCoinVersion1, 4)

	forward := NewAccumulator(p, ZQOne)
	backward := NewAccumulator(p, ZQOne)
	for i := range coins {
		assert.NoError(t, forward.Accumulate(coins[i].PublicCoin()))
		assert.NoError(t, backward.Accumulate(coins[len(coins)-1-i].PublicCoin()))
	}
	assert.True(t, forward.Equal(backward))
	assert.NotEqual(t, int64(AccumulatorBase), forward.Value().Int64())

	fast := NewAccumulator(p, ZQOne)
	for _, coin := range coins {
		fast.Increment(coin.PublicCoin().Value())
	}
	assert.True(t, fast.Equal(forward))
}

func TestAccumulatorRejects(t *testing.T) {
	p := testParams(t)
	coin := mintCoins(t, p, ZQFive, PrivateCoinVersion1, 1)[0]

	acc := NewAccumulator(p, ZQTen)
	err := acc.Accumulate(coin.PublicCoin())
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorDenominationMismatch))

	err = acc.Accumulate(NewPublicCoin(p, coin.PublicCoin().Value(), ZQError))
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorInvalidDenomination))

	err = acc.Accumulate(NewPublicCoin(p, big.NewInt(9), ZQTen))
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorInvalidCoin))
	assert.Equal(t, int64(AccumulatorBase), acc.Value().Int64())
}

func TestAccumulatorWitness(t *testing.T) {
	p := testParams(t)
	coins := mintCoins(t, p, ZQTen, PrivateCoinVersion2, 3)
	acc, witness := accumulateAll(t, p, ZQTen, coins)

	assert.True(t, witness.VerifyWitness(acc, coins[0].PublicCoin()))
	assert.False(t, witness.VerifyWitness(acc, coins[1].PublicCoin()))

	stale := NewAccumulator(p, ZQTen)
	assert.False(t, witness.VerifyWitness(stale, coins[0].PublicCoin()))

	raw := NewAccumulatorWitness(NewAccumulator(p, ZQTen), coins[0].PublicCoin())
	for _, coin := range coins {
		raw.AddRawValue(coin.PublicCoin().Value())
	}
	assert.Equal(t, 0, raw.Value().Cmp(witness.Value()))

	// A witness for a coin that was never accumulated cannot verify.
	outsider := mintCoins(t, p, ZQTen, PrivateCoinVersion2, 1)[0]
	other := NewAccumulatorWitness(NewAccumulator(p, ZQTen), outsider.PublicCoin())
	for _, coin := range coins {
		assert.NoError(t, other.AddElement(coin.PublicCoin()))
	}
	assert.False(t, other.VerifyWitness(acc, outsider.PublicCoin()))
}
