package zerocoin

import (
	"math/big"

	"github.com/copernet/zerocoin/util"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// powMod computes base^exp mod m and accepts negative exponents by
// inverting base first. A non invertible base yields zero, which no group
// element equals.
func powMod(base, exp, m *big.Int) *big.Int {
	if exp.Sign() >= 0 {
		return new(big.Int).Exp(base, exp, m)
	}
	inv := new(big.Int).ModInverse(base, m)
	if inv == nil {
		return new(big.Int)
	}
	return new(big.Int).Exp(inv, new(big.Int).Neg(exp), m)
}

func mulMod(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, m)
}

func mulMod3(a, b, c, m *big.Int) *big.Int {
	return mulMod(mulMod(a, b, m), c, m)
}

func invMod(a, m *big.Int) *big.Int {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return new(big.Int)
	}
	return inv
}

func randBelow(max *big.Int) *big.Int {
	return util.RandBigInt(max)
}

// randomSigned returns a uniform value in (-bound, bound).
func randomSigned(bound *big.Int) *big.Int {
	r := randBelow(bound)
	if randBelow(bigTwo).Sign() == 1 {
		r.Neg(r)
	}
	return r
}

// inGroup reports whether v is a candidate element of Z*_m.
func inGroup(v, m *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(m) < 0
}

func pow2(bits uint) *big.Int {
	return new(big.Int).Lsh(bigOne, bits)
}
