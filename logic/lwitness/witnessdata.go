package lwitness

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

type State uint8

const (
	StateUninitialized State = iota
	StatePrecomputing
	StateReady
	StateStale
)

var stateStrings = map[State]string{
	StateUninitialized: "UNINITIALIZED",
	StatePrecomputing:  "PRECOMPUTING",
	StateReady:         "READY",
	StateStale:         "STALE",
}

func (s State) String() string {
	if str, ok := stateStrings[s]; ok {
		return str
	}
	return fmt.Sprintf("Unknown State (%d)", uint8(s))
}

// CoinWitnessData is the resumable replay state for one coin. Accumulator
// holds every coin replayed so far, Witness all of them except Coin.
type CoinWitnessData struct {
	Coin        *zerocoin.PublicCoin
	Denom       zerocoin.Denomination
	Accumulator *zerocoin.Accumulator
	Witness     *zerocoin.AccumulatorWitness

	HeightCheckpoint  int32
	HeightMintAdded   int32
	HeightAccStart    int32
	HeightPrecomputed int32
	MintsAdded        uint32
	TxID              util.Hash

	state State
}

func NewCoinWitnessData(coin *zerocoin.PublicCoin) *CoinWitnessData {
	data := &CoinWitnessData{Coin: coin, Denom: coin.Denomination()}
	data.SetNull()
	return data
}

// SetNull drops all replay progress but keeps the coin and its mint location.
func (data *CoinWitnessData) SetNull() {
	data.Accumulator = nil
	data.Witness = nil
	data.HeightCheckpoint = 0
	data.HeightAccStart = 0
	data.HeightPrecomputed = 0
	data.MintsAdded = 0
	data.state = StateUninitialized
}

func (data *CoinWitnessData) State() State {
	return data.state
}

// MarkStale flags the replay as unusable, after a reorg below
// HeightPrecomputed or when a different checkpoint target is requested.
func (data *CoinWitnessData) MarkStale() {
	if data.state != StateUninitialized {
		data.state = StateStale
	}
}

// Checksum identifies the checkpoint the witness was verified against.
func (data *CoinWitnessData) Checksum() util.Hash {
	if data.Accumulator == nil {
		return util.HashZero
	}
	return accumulators.Checksum(data.Accumulator.Value())
}

func (data *CoinWitnessData) String() string {
	return fmt.Sprintf("CoinWitnessData{denom=%s state=%s mint=%d start=%d precomputed=%d checkpoint=%d mints=%d tx=%s}",
		data.Denom, data.state, data.HeightMintAdded, data.HeightAccStart, data.HeightPrecomputed,
		data.HeightCheckpoint, data.MintsAdded, data.TxID.String())
}

func writeInt32s(w io.Writer, values ...int32) error {
	for _, v := range values {
		if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(v)); err != nil {
			return err
		}
	}
	return nil
}

func readInt32s(r io.Reader, values ...*int32) error {
	for _, v := range values {
		u, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*v = int32(u)
	}
	return nil
}

// Serialize writes the replay state. Accumulator and witness values are
// only present past the uninitialized state.
func (data *CoinWitnessData) Serialize(w io.Writer) error {
	if err := util.BinarySerializer.PutUint8(w, uint8(data.state)); err != nil {
		return err
	}
	if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(data.Denom)); err != nil {
		return err
	}
	if err := util.WriteBigNum(w, data.Coin.Value()); err != nil {
		return err
	}
	if err := writeInt32s(w, data.HeightCheckpoint, data.HeightMintAdded, data.HeightAccStart, data.HeightPrecomputed); err != nil {
		return err
	}
	if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, data.MintsAdded); err != nil {
		return err
	}
	if _, err := data.TxID.Serialize(w); err != nil {
		return err
	}
	if data.state == StateUninitialized {
		return nil
	}
	if err := util.WriteBigNum(w, data.Accumulator.Value()); err != nil {
		return err
	}
	return util.WriteBigNum(w, data.Witness.Value())
}

func (data *CoinWitnessData) Unserialize(r io.Reader, p *zerocoin.Params) error {
	state, err := util.BinarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	if _, ok := stateStrings[State(state)]; !ok {
		return errors.Errorf("unknown witness state %d", state)
	}
	denom, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	d := zerocoin.Denomination(denom)
	if !d.IsValid() {
		return errors.Errorf("invalid witness denomination %d", denom)
	}
	value, err := util.ReadBigNum(r)
	if err != nil {
		return err
	}
	data.Coin = zerocoin.NewPublicCoin(p, value, d)
	data.Denom = d
	if err := readInt32s(r, &data.HeightCheckpoint, &data.HeightMintAdded, &data.HeightAccStart, &data.HeightPrecomputed); err != nil {
		return err
	}
	if data.MintsAdded, err = util.BinarySerializer.Uint32(r, binary.LittleEndian); err != nil {
		return err
	}
	if _, err := data.TxID.Unserialize(r); err != nil {
		return err
	}
	data.state = State(state)
	if data.state == StateUninitialized {
		data.Accumulator = nil
		data.Witness = nil
		return nil
	}
	accValue, err := util.ReadBigNum(r)
	if err != nil {
		return err
	}
	witnessValue, err := util.ReadBigNum(r)
	if err != nil {
		return err
	}
	data.Accumulator = zerocoin.NewAccumulatorWithValue(p, d, accValue)
	data.Witness = zerocoin.NewAccumulatorWitness(zerocoin.NewAccumulatorWithValue(p, d, witnessValue), data.Coin)
	return nil
}

func (data *CoinWitnessData) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := data.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ParseCoinWitnessData(p *zerocoin.Params, b []byte) (*CoinWitnessData, error) {
	data := &CoinWitnessData{}
	if err := data.Unserialize(bytes.NewReader(b), p); err != nil {
		return nil, err
	}
	return data, nil
}
