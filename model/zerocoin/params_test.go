package zerocoin

import (
	"math/big"
	"testing"

	"github.com/copernet/zerocoin/util"
	"github.com/stretchr/testify/assert"
)

func TestRegTestParams(t *testing.T) {
	p := testParams(t)
	assert.NoError(t, p.Validate())

	ap := &p.AccumulatorParams
	assert.Equal(t, int64(AccumulatorBase), ap.AccumulatorBase.Int64())
	assert.Equal(t, uint(KPrime), ap.KPrime)
	assert.Equal(t, uint(KDPrime), ap.KDPrime)
	assert.Equal(t, DefaultZKPIterations, p.ZKPIterations)
	assert.Equal(t, 0, ap.MaxCoinValue.Cmp(p.CoinCommitmentGroup.Modulus))
	assert.True(t, ap.MinCoinValue.Cmp(ap.MaxCoinValue) < 0)
	assert.Equal(t, int(RegTestSizes.CoinOrderBits), p.CoinCommitmentGroup.GroupOrder.BitLen())
	assert.True(t, p.CoinCommitmentGroup.GroupOrder.ProbablyPrime(20))
	assert.True(t, p.CoinCommitmentGroup.Modulus.ProbablyPrime(20))

	again, err := RegTestParams()
	assert.NoError(t, err)
	assert.True(t, p == again, "params should be computed once")
}

func TestNewParamsDeterministic(t *testing.T) {
	p := testParams(t)
	n := p.AccumulatorParams.AccumulatorModulus

	q, err := NewParams(n, RegTestSizes)
	assert.NoError(t, err)
	ph := p.Hash()
	qh := q.Hash()
	assert.True(t, ph.IsEqual(&qh))
	assert.Equal(t, 0, p.CoinCommitmentGroup.G.Cmp(q.CoinCommitmentGroup.G))
	assert.Equal(t, 0, p.AccumulatorParams.AccumulatorQRNCommitmentGroup.H.Cmp(q.AccumulatorParams.AccumulatorQRNCommitmentGroup.H))
}

func TestNewParamsRejects(t *testing.T) {
	_, err := NewParams(big.NewInt(961), RegTestSizes)
	assert.Error(t, err)

	p := testParams(t)
	sizes := RegTestSizes
	sizes.ZKPIterations = 257
	_, err = NewParams(p.AccumulatorParams.AccumulatorModulus, sizes)
	assert.Error(t, err)
}

func TestParamsForNetwork(t *testing.T) {
	p, err := ParamsForNetwork("regtest")
	assert.NoError(t, err)
	assert.True(t, p == testParams(t))

	_, err = ParamsForNetwork("nonsense")
	assert.Error(t, err)
}

func TestParamsHashCoversSerialization(t *testing.T) {
	p := testParams(t)
	hw := util.NewHashWriter()
	assert.NoError(t, p.Serialize(hw))
	want := hw.GetHash()
	got := p.Hash()
	assert.True(t, got.IsEqual(&want))
}
