package zerocoin

import (
	"testing"

	"github.com/copernet/zerocoin/util"
)

func testParams(t *testing.T) *Params {
	t.Helper()
	p, err := RegTestParams()
	if err != nil {
		t.Fatalf("RegTestParams: %v", err)
	}
	return p
}

func mintCoins(t *testing.T, p *Params, d Denomination, version uint8, n int) []*PrivateCoin {
	t.Helper()
	coins := make([]*PrivateCoin, 0, n)
	for i := 0; i < n; i++ {
		coin, err := MintPrivateCoin(p, d, version)
		if err != nil {
			t.Fatalf("MintPrivateCoin #%d: %v", i, err)
		}
		coins = append(coins, coin)
	}
	return coins
}

// accumulateAll returns the accumulator over every coin and a witness for
// the first one.
func accumulateAll(t *testing.T, p *Params, d Denomination, coins []*PrivateCoin) (*Accumulator, *AccumulatorWitness) {
	t.Helper()
	acc := NewAccumulator(p, d)
	witness := NewAccumulatorWitness(NewAccumulator(p, d), coins[0].PublicCoin())
	for _, coin := range coins {
		if err := acc.Accumulate(coin.PublicCoin()); err != nil {
			t.Fatalf("Accumulate: %v", err)
		}
		if err := witness.AddElement(coin.PublicCoin()); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}
	return acc, witness
}

func testChecksum(acc *Accumulator) util.Hash {
	return util.DoubleSha256Hash(util.BigNumBytes(acc.Value()))
}
