package accumulators

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
	"gopkg.in/fatih/set.v0"
)

var (
	errCheckpointSize         = errors.New("checkpoint lists more denominations than exist")
	errCheckpointDenomination = errors.New("checkpoint holds an invalid denomination")
)

// ValueSource resolves checksums to accumulator values.
type ValueSource interface {
	GetAccumulatorValue(checksum util.Hash) (*big.Int, error)
}

// AccumulatorMap holds one accumulator per denomination. It is not safe
// for concurrent use; the owner serializes access under the chain lock.
type AccumulatorMap struct {
	params       *zerocoin.Params
	accumulators map[zerocoin.Denomination]*zerocoin.Accumulator
	// unused holds denominations that never received a coin.
	unused set.Interface
}

func NewAccumulatorMap(p *zerocoin.Params) *AccumulatorMap {
	m := &AccumulatorMap{
		params:       p,
		accumulators: make(map[zerocoin.Denomination]*zerocoin.Accumulator, len(zerocoin.Denominations)),
		unused:       set.New(set.NonThreadSafe),
	}
	m.Reset()
	return m
}

// Reset sets every accumulator back to the base value and marks every
// denomination unused.
func (m *AccumulatorMap) Reset() {
	m.unused.Clear()
	for _, d := range zerocoin.Denominations {
		m.accumulators[d] = zerocoin.NewAccumulator(m.params, d)
		m.unused.Add(d)
	}
}

// Accumulate folds coin into the accumulator of its denomination. With
// skipValidation the coin is assumed to have been checked when it entered
// the chain.
func (m *AccumulatorMap) Accumulate(coin *zerocoin.PublicCoin, skipValidation bool) error {
	d := coin.Denomination()
	acc, ok := m.accumulators[d]
	if !ok || d == zerocoin.ZQError {
		return errcode.New(errcode.ErrorInvalidDenomination)
	}
	if skipValidation {
		acc.Increment(coin.Value())
	} else if err := acc.Accumulate(coin); err != nil {
		return err
	}
	m.unused.Remove(d)
	return nil
}

// GetValue returns the accumulator value, or zero for an unknown
// denomination.
func (m *AccumulatorMap) GetValue(d zerocoin.Denomination) *big.Int {
	acc, ok := m.accumulators[d]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(acc.Value())
}

// SetValue overwrites one accumulator and marks it used.
func (m *AccumulatorMap) SetValue(d zerocoin.Denomination, value *big.Int) error {
	acc, ok := m.accumulators[d]
	if !ok {
		return errcode.New(errcode.ErrorInvalidDenomination)
	}
	acc.SetValue(value)
	m.unused.Remove(d)
	return nil
}

// GetAccumulator returns a copy that the caller may mutate freely.
func (m *AccumulatorMap) GetAccumulator(d zerocoin.Denomination) (*zerocoin.Accumulator, error) {
	acc, ok := m.accumulators[d]
	if !ok {
		return nil, errcode.New(errcode.ErrorInvalidDenomination)
	}
	return acc.Copy(), nil
}

func (m *AccumulatorMap) IsUnused(d zerocoin.Denomination) bool {
	return m.unused.Has(d)
}

func (m *AccumulatorMap) Params() *zerocoin.Params {
	return m.params
}

// Load resets the map to the accumulator values that cp refers to. A zero
// checksum restores the base value and keeps the denomination unused. Every
// missing checksum is reported in one error.
func (m *AccumulatorMap) Load(cp Checkpoint, source ValueSource) error {
	m.Reset()
	var missing []string
	for _, d := range zerocoin.Denominations {
		checksum := cp[d]
		if checksum.IsNull() {
			continue
		}
		value, err := source.GetAccumulatorValue(checksum)
		if err != nil {
			missing = append(missing, fmt.Sprintf("%s:%s", d, checksum))
			continue
		}
		m.SetValue(d, value)
	}
	if len(missing) > 0 {
		return errors.Wrapf(errcode.New(errcode.ErrorChecksumNotFound), "missing checksums %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetCheckpoints returns the checksum of every accumulator. With
// showZeroIfEmpty, unused denominations report the zero hash instead.
func (m *AccumulatorMap) GetCheckpoints(showZeroIfEmpty bool) Checkpoint {
	cp := make(Checkpoint, len(zerocoin.Denominations))
	for _, d := range zerocoin.Denominations {
		if showZeroIfEmpty && m.unused.Has(d) {
			cp[d] = util.HashZero
			continue
		}
		cp[d] = Checksum(m.accumulators[d].Value())
	}
	return cp
}
