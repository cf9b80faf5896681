package accumulators

import (
	"encoding/binary"
	"io"
	"math/big"
	"sort"

	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
)

// Checkpoint maps each denomination to the checksum of its accumulator.
// A zero hash marks a denomination that never received a coin.
type Checkpoint map[zerocoin.Denomination]util.Hash

// Checksum identifies an accumulator value in the checkpoint store.
func Checksum(value *big.Int) util.Hash {
	hw := util.NewHashWriter()
	util.WriteVarBytes(hw, util.BigNumBytes(value))
	return hw.GetHash()
}

func NewCheckpoint() Checkpoint {
	cp := make(Checkpoint, len(zerocoin.Denominations))
	for _, d := range zerocoin.Denominations {
		cp[d] = util.HashZero
	}
	return cp
}

func (cp Checkpoint) Copy() Checkpoint {
	c := make(Checkpoint, len(cp))
	for d, h := range cp {
		c[d] = h
	}
	return c
}

func (cp Checkpoint) Equal(other Checkpoint) bool {
	for _, d := range zerocoin.Denominations {
		if cp[d] != other[d] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no denomination has a checksum yet.
func (cp Checkpoint) IsEmpty() bool {
	for _, d := range zerocoin.Denominations {
		if h := cp[d]; !h.IsNull() {
			return false
		}
	}
	return true
}

// Serialize writes every valid denomination in ascending order, so maps
// with the same contents always encode identically.
func (cp Checkpoint) Serialize(w io.Writer) error {
	if err := util.WriteVarInt(w, uint64(len(zerocoin.Denominations))); err != nil {
		return err
	}
	for _, d := range zerocoin.Denominations {
		if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(d)); err != nil {
			return err
		}
		h := cp[d]
		if _, err := h.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (cp Checkpoint) Unserialize(r io.Reader) error {
	count, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(len(zerocoin.Denominations)) {
		return errCheckpointSize
	}
	for i := uint64(0); i < count; i++ {
		d, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		var h util.Hash
		if _, err := h.Unserialize(r); err != nil {
			return err
		}
		denom := zerocoin.Denomination(d)
		if !denom.IsValid() {
			return errCheckpointDenomination
		}
		cp[denom] = h
	}
	return nil
}

func (cp Checkpoint) SerializeSize() int {
	n := len(zerocoin.Denominations)
	return util.VarIntSerializeSize(uint64(n)) + n*(4+util.Hash256Size)
}

// CheckpointHash is the digest of the serialized map that a block header
// commits to.
func CheckpointHash(cp Checkpoint) util.Hash {
	hw := util.NewHashWriter()
	cp.Serialize(hw)
	return hw.GetHash()
}

// Denominations returns the denominations present in cp in ascending order.
func (cp Checkpoint) Denominations() []zerocoin.Denomination {
	ds := make([]zerocoin.Denomination, 0, len(cp))
	for d := range cp {
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	return ds
}
