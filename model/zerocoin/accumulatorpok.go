package zerocoin

import (
	"io"
	"math/big"

	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// AccumulatorProofOfKnowledge is the Camenisch-Lysyanskaya proof that a
// committed value is accumulated, given a witness for it.
type AccumulatorProofOfKnowledge struct {
	params *Params

	CE, CU, CR     *big.Int
	ST1, ST2, ST3  *big.Int
	T1, T2, T3, T4 *big.Int
	SAlpha, SBeta  *big.Int
	SZeta, SSigma  *big.Int
	SEta, SEpsilon *big.Int
	SDelta, SXi    *big.Int
	SPhi, SGamma   *big.Int
	SPsi           *big.Int
}

func NewAccumulatorProofOfKnowledge(p *Params, commitmentToCoin *Commitment, witness *AccumulatorWitness, acc *Accumulator) (*AccumulatorProofOfKnowledge, error) {
	ap := &p.AccumulatorParams
	pok := &ap.AccumulatorPoKCommitmentGroup
	sg, sh, pokMod, pokOrder := pok.G, pok.H, pok.Modulus, pok.GroupOrder
	gn, hn, n := ap.AccumulatorQRNCommitmentGroup.G, ap.AccumulatorQRNCommitmentGroup.H, ap.AccumulatorModulus

	e := commitmentToCoin.Contents()
	r := commitmentToCoin.Randomness()
	cValue := commitmentToCoin.CommitmentValue()

	eMinusInv := new(big.Int).ModInverse(new(big.Int).Sub(e, bigOne), pokOrder)
	ePlusInv := new(big.Int).ModInverse(new(big.Int).Add(e, bigOne), pokOrder)
	if eMinusInv == nil || ePlusInv == nil {
		return nil, errors.New("coin value is degenerate in the proof group")
	}

	aM4 := new(big.Int).Rsh(n, 2)
	r1 := randBelow(aM4)
	r2 := randBelow(aM4)
	r3 := randBelow(aM4)

	proof := &AccumulatorProofOfKnowledge{params: p}
	proof.CE = mulMod(powMod(gn, e, n), powMod(hn, r1, n), n)
	proof.CU = mulMod(witness.Value(), powMod(hn, r2, n), n)
	proof.CR = mulMod(powMod(gn, r2, n), powMod(hn, r3, n), n)

	kk := pow2(ap.KPrime + ap.KDPrime)
	alphaBound := new(big.Int).Mul(ap.MaxCoinValue, kk)
	smallBound := new(big.Int).Mul(aM4, kk)
	bigBound := new(big.Int).Mul(smallBound, ap.MaxCoinValue)

	rAlpha := randomSigned(alphaBound)
	rGamma := randBelow(pokOrder)
	rPhi := randBelow(pokOrder)
	rPsi := randBelow(pokOrder)
	rSigma := randBelow(pokOrder)
	rXi := randBelow(pokOrder)
	rEpsilon := randomSigned(smallBound)
	rEta := randomSigned(smallBound)
	rZeta := randomSigned(smallBound)
	rBeta := randomSigned(bigBound)
	rDelta := randomSigned(bigBound)

	sgInv := invMod(sg, pokMod)
	hnInv := invMod(hn, n)
	gnInv := invMod(gn, n)

	proof.ST1 = mulMod(powMod(sg, rAlpha, pokMod), powMod(sh, rPhi, pokMod), pokMod)
	proof.ST2 = mulMod(powMod(mulMod(cValue, sgInv, pokMod), rGamma, pokMod), powMod(sh, rPsi, pokMod), pokMod)
	proof.ST3 = mulMod(powMod(mulMod(sg, cValue, pokMod), rSigma, pokMod), powMod(sh, rXi, pokMod), pokMod)

	proof.T1 = mulMod(powMod(hn, rZeta, n), powMod(gn, rEpsilon, n), n)
	proof.T2 = mulMod(powMod(hn, rEta, n), powMod(gn, rAlpha, n), n)
	proof.T3 = mulMod(powMod(proof.CU, rAlpha, n), powMod(hnInv, rBeta, n), n)
	proof.T4 = mulMod3(powMod(proof.CR, rAlpha, n), powMod(hnInv, rDelta, n), powMod(gnInv, rBeta, n), n)

	c := proof.challenge(acc.Value(), cValue)

	mul := func(a ...*big.Int) *big.Int {
		out := new(big.Int).Set(c)
		for _, v := range a {
			out.Mul(out, v)
		}
		return out
	}

	proof.SAlpha = new(big.Int).Sub(rAlpha, mul(e))
	proof.SBeta = new(big.Int).Sub(rBeta, mul(r2, e))
	proof.SZeta = new(big.Int).Sub(rZeta, mul(r3))
	proof.SSigma = new(big.Int).Sub(rSigma, mul(ePlusInv))
	proof.SEta = new(big.Int).Sub(rEta, mul(r1))
	proof.SEpsilon = new(big.Int).Sub(rEpsilon, mul(r2))
	proof.SDelta = new(big.Int).Sub(rDelta, mul(r3, e))
	proof.SXi = new(big.Int).Add(rXi, mul(r, ePlusInv))
	proof.SPhi = new(big.Int).Sub(rPhi, mul(r))
	proof.SPhi.Mod(proof.SPhi, pokOrder)
	proof.SGamma = new(big.Int).Sub(rGamma, mul(eMinusInv))
	proof.SPsi = new(big.Int).Add(rPsi, mul(r, eMinusInv))

	return proof, nil
}

func (proof *AccumulatorProofOfKnowledge) challenge(accValue, commitmentValue *big.Int) *big.Int {
	ap := &proof.params.AccumulatorParams
	hash := proof.params.Hash()
	hw := util.NewHashWriter()
	hw.WriteHash(&hash)
	hw.WriteBigNum(ap.AccumulatorPoKCommitmentGroup.G).WriteBigNum(ap.AccumulatorPoKCommitmentGroup.H)
	hw.WriteBigNum(ap.AccumulatorQRNCommitmentGroup.G).WriteBigNum(ap.AccumulatorQRNCommitmentGroup.H)
	hw.WriteBigNum(accValue).WriteBigNum(commitmentValue)
	for _, v := range []*big.Int{proof.CE, proof.CU, proof.CR, proof.ST1, proof.ST2, proof.ST3,
		proof.T1, proof.T2, proof.T3, proof.T4} {
		hw.WriteBigNum(v)
	}
	h := hw.GetHash()
	return h.ToBigInt()
}

func (proof *AccumulatorProofOfKnowledge) fields() []*big.Int {
	return []*big.Int{proof.CE, proof.CU, proof.CR, proof.ST1, proof.ST2, proof.ST3,
		proof.T1, proof.T2, proof.T3, proof.T4, proof.SAlpha, proof.SBeta, proof.SZeta,
		proof.SSigma, proof.SEta, proof.SEpsilon, proof.SDelta, proof.SXi, proof.SPhi,
		proof.SGamma, proof.SPsi}
}

func (proof *AccumulatorProofOfKnowledge) fieldPtrs() []**big.Int {
	return []**big.Int{&proof.CE, &proof.CU, &proof.CR, &proof.ST1, &proof.ST2, &proof.ST3,
		&proof.T1, &proof.T2, &proof.T3, &proof.T4, &proof.SAlpha, &proof.SBeta, &proof.SZeta,
		&proof.SSigma, &proof.SEta, &proof.SEpsilon, &proof.SDelta, &proof.SXi, &proof.SPhi,
		&proof.SGamma, &proof.SPsi}
}

// Verify checks the proof against the accumulator and the accumulator
// group commitment to the coin.
func (proof *AccumulatorProofOfKnowledge) Verify(acc *Accumulator, commitmentValue *big.Int) bool {
	for _, v := range proof.fields() {
		if v == nil {
			return false
		}
	}
	ap := &proof.params.AccumulatorParams
	pok := &ap.AccumulatorPoKCommitmentGroup
	sg, sh, pokMod := pok.G, pok.H, pok.Modulus
	gn, hn, n := ap.AccumulatorQRNCommitmentGroup.G, ap.AccumulatorQRNCommitmentGroup.H, ap.AccumulatorModulus

	for _, v := range []*big.Int{proof.CE, proof.CU, proof.CR, proof.T1, proof.T2, proof.T3, proof.T4, acc.Value()} {
		if !inGroup(v, n) {
			return false
		}
	}
	for _, v := range []*big.Int{proof.ST1, proof.ST2, proof.ST3, commitmentValue} {
		if !inGroup(v, pokMod) {
			return false
		}
	}

	c := proof.challenge(acc.Value(), commitmentValue)

	sgInv := invMod(sg, pokMod)
	hnInv := invMod(hn, n)
	gnInv := invMod(gn, n)

	st1 := mulMod3(powMod(commitmentValue, c, pokMod), powMod(sg, proof.SAlpha, pokMod), powMod(sh, proof.SPhi, pokMod), pokMod)
	st2 := mulMod3(powMod(sg, c, pokMod), powMod(mulMod(commitmentValue, sgInv, pokMod), proof.SGamma, pokMod), powMod(sh, proof.SPsi, pokMod), pokMod)
	st3 := mulMod3(powMod(sg, c, pokMod), powMod(mulMod(sg, commitmentValue, pokMod), proof.SSigma, pokMod), powMod(sh, proof.SXi, pokMod), pokMod)

	t1 := mulMod3(powMod(proof.CR, c, n), powMod(hn, proof.SZeta, n), powMod(gn, proof.SEpsilon, n), n)
	t2 := mulMod3(powMod(proof.CE, c, n), powMod(hn, proof.SEta, n), powMod(gn, proof.SAlpha, n), n)
	t3 := mulMod3(powMod(acc.Value(), c, n), powMod(proof.CU, proof.SAlpha, n), powMod(hnInv, proof.SBeta, n), n)
	t4 := mulMod3(powMod(proof.CR, proof.SAlpha, n), powMod(hnInv, proof.SDelta, n), powMod(gnInv, proof.SBeta, n), n)

	bound := new(big.Int).Mul(ap.MaxCoinValue, pow2(ap.KPrime+ap.KDPrime+1))
	inRange := new(big.Int).Abs(proof.SAlpha).Cmp(bound) <= 0

	return st1.Cmp(proof.ST1) == 0 && st2.Cmp(proof.ST2) == 0 && st3.Cmp(proof.ST3) == 0 &&
		t1.Cmp(proof.T1) == 0 && t2.Cmp(proof.T2) == 0 && t3.Cmp(proof.T3) == 0 &&
		t4.Cmp(proof.T4) == 0 && inRange
}

func (proof *AccumulatorProofOfKnowledge) Serialize(w io.Writer) error {
	return writeBigNums(w, proof.fields()...)
}

func (proof *AccumulatorProofOfKnowledge) Unserialize(r io.Reader, p *Params) error {
	proof.params = p
	return readBigNums(r, proof.fieldPtrs()...)
}
