package zerocoin

import (
	"math/big"
)

// Commitment is a Pedersen commitment g^contents * h^randomness mod p.
type Commitment struct {
	params          *IntegerGroupParams
	contents        *big.Int
	randomness      *big.Int
	commitmentValue *big.Int
}

func NewCommitment(p *IntegerGroupParams, value *big.Int) *Commitment {
	return NewCommitmentWithRandomness(p, value, p.RandomElement())
}

func NewCommitmentWithRandomness(p *IntegerGroupParams, value, randomness *big.Int) *Commitment {
	return &Commitment{
		params:          p,
		contents:        new(big.Int).Set(value),
		randomness:      new(big.Int).Set(randomness),
		commitmentValue: commit(p, value, randomness),
	}
}

func commit(p *IntegerGroupParams, value, randomness *big.Int) *big.Int {
	return mulMod(powMod(p.G, value, p.Modulus), powMod(p.H, randomness, p.Modulus), p.Modulus)
}

func (c *Commitment) CommitmentValue() *big.Int {
	return c.commitmentValue
}

func (c *Commitment) Randomness() *big.Int {
	return c.randomness
}

func (c *Commitment) Contents() *big.Int {
	return c.contents
}
