package zerocoin

import (
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/pkg/errors"
)

// Accumulator is an RSA accumulator over the coins of one denomination.
// Incorporating coin c maps value to value^c mod N, so the result does not
// depend on insertion order.
type Accumulator struct {
	params       *Params
	denomination Denomination
	value        *big.Int
}

// NewAccumulator returns an empty accumulator holding the base value.
func NewAccumulator(p *Params, d Denomination) *Accumulator {
	return &Accumulator{
		params:       p,
		denomination: d,
		value:        new(big.Int).Set(p.AccumulatorParams.AccumulatorBase),
	}
}

// NewAccumulatorWithValue starts from a known checkpoint value. A zero
// value means empty and is replaced by the base.
func NewAccumulatorWithValue(p *Params, d Denomination, value *big.Int) *Accumulator {
	acc := NewAccumulator(p, d)
	if value != nil && value.Sign() != 0 {
		acc.value.Set(value)
	}
	return acc
}

// Accumulate incorporates a coin after checking its denomination and validity.
func (a *Accumulator) Accumulate(coin *PublicCoin) error {
	if a.value == nil || a.value.Sign() == 0 {
		return errcode.New(errcode.ErrorAccumulatorNotInitialized)
	}
	if coin.Denomination() == ZQError {
		return errcode.New(errcode.ErrorInvalidDenomination)
	}
	if a.denomination != coin.Denomination() {
		return errors.Wrapf(errcode.New(errcode.ErrorDenominationMismatch),
			"accumulator %s, coin %s", a.denomination, coin.Denomination())
	}
	if err := coin.Validate(); err != nil {
		return err
	}
	a.Increment(coin.Value())
	return nil
}

// Increment incorporates a raw coin value without validation. Only use it
// for values already validated on their way into the chain.
func (a *Accumulator) Increment(value *big.Int) {
	a.value.Exp(a.value, value, a.params.AccumulatorParams.AccumulatorModulus)
}

func (a *Accumulator) Value() *big.Int {
	return a.value
}

func (a *Accumulator) SetValue(value *big.Int) {
	a.value = new(big.Int).Set(value)
}

func (a *Accumulator) Denomination() Denomination {
	return a.denomination
}

func (a *Accumulator) Params() *Params {
	return a.params
}

func (a *Accumulator) Copy() *Accumulator {
	return &Accumulator{params: a.params, denomination: a.denomination, value: new(big.Int).Set(a.value)}
}

func (a *Accumulator) Equal(other *Accumulator) bool {
	return a.denomination == other.denomination && a.value.Cmp(other.value) == 0
}

// AccumulatorWitness is the accumulator over every coin except element.
type AccumulatorWitness struct {
	witness *Accumulator
	element *PublicCoin
}

// NewAccumulatorWitness starts a witness for coin from a checkpoint that
// does not contain it.
func NewAccumulatorWitness(checkpoint *Accumulator, coin *PublicCoin) *AccumulatorWitness {
	return &AccumulatorWitness{witness: checkpoint.Copy(), element: coin}
}

func (w *AccumulatorWitness) ResetValue(checkpoint *Accumulator, coin *PublicCoin) {
	w.witness = checkpoint.Copy()
	w.element = coin
}

// AddElement incorporates coin unless it is the witnessed element.
func (w *AccumulatorWitness) AddElement(coin *PublicCoin) error {
	if w.element.Equal(coin) {
		return nil
	}
	return w.witness.Accumulate(coin)
}

// AddRawValue is the non validating form of AddElement.
func (w *AccumulatorWitness) AddRawValue(value *big.Int) {
	if w.element.Value().Cmp(value) == 0 {
		return
	}
	w.witness.Increment(value)
}

func (w *AccumulatorWitness) Value() *big.Int {
	return w.witness.Value()
}

func (w *AccumulatorWitness) Element() *PublicCoin {
	return w.element
}

// VerifyWitness holds iff witness^element == acc and element is coin.
func (w *AccumulatorWitness) VerifyWitness(acc *Accumulator, coin *PublicCoin) bool {
	temp := w.witness.Copy()
	if err := temp.Accumulate(w.element); err != nil {
		return false
	}
	return temp.Equal(acc) && w.element.Equal(coin)
}
