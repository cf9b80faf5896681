package blockindex

import (
	"encoding/binary"
	"io"

	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const maxMintsPerBlock = 1 << 16

// DiskBlockIndex is the persisted form of a BlockIndex. Pointers to other
// entries are replaced by the previous block hash.
type DiskBlockIndex struct {
	Header                block.BlockHeader
	HashPrev              util.Hash
	Height                int32
	TxCount               int32
	AccumulatorCheckpoint accumulators.Checkpoint
	MintDenominations     []zerocoin.Denomination
}

func NewDiskBlockIndex(bi *BlockIndex) *DiskBlockIndex {
	dbi := &DiskBlockIndex{
		Header:                bi.Header,
		Height:                bi.Height,
		TxCount:               bi.TxCount,
		AccumulatorCheckpoint: bi.AccumulatorCheckpoint.Copy(),
		MintDenominations:     append([]zerocoin.Denomination(nil), bi.MintDenominations...),
	}
	if bi.Prev != nil {
		dbi.HashPrev = bi.Prev.BlockHash
	}
	return dbi
}

// ToBlockIndex builds an unlinked BlockIndex. The caller resolves Prev from HashPrev.
func (dbi *DiskBlockIndex) ToBlockIndex() *BlockIndex {
	bi := NewBlockIndex(&dbi.Header)
	bi.Height = dbi.Height
	bi.TxCount = dbi.TxCount
	bi.AccumulatorCheckpoint = dbi.AccumulatorCheckpoint.Copy()
	bi.MintDenominations = append([]zerocoin.Denomination(nil), dbi.MintDenominations...)
	return bi
}

func (dbi *DiskBlockIndex) GetBlockHash() util.Hash {
	return dbi.Header.GetHash()
}

func (dbi *DiskBlockIndex) Serialize(w io.Writer) error {
	if err := dbi.Header.Serialize(w); err != nil {
		return err
	}
	if _, err := dbi.HashPrev.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(dbi.Height)); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(dbi.TxCount)); err != nil {
		return err
	}
	if err := dbi.AccumulatorCheckpoint.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(len(dbi.MintDenominations))); err != nil {
		return err
	}
	for _, d := range dbi.MintDenominations {
		if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(d)); err != nil {
			return err
		}
	}
	return nil
}

func (dbi *DiskBlockIndex) Unserialize(r io.Reader) error {
	if err := dbi.Header.Unserialize(r); err != nil {
		return err
	}
	if _, err := dbi.HashPrev.Unserialize(r); err != nil {
		return err
	}
	height, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	dbi.Height = int32(height)
	txCount, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	dbi.TxCount = int32(txCount)

	dbi.AccumulatorCheckpoint = accumulators.NewCheckpoint()
	if err = dbi.AccumulatorCheckpoint.Unserialize(r); err != nil {
		return err
	}

	count, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxMintsPerBlock {
		return errors.Errorf("too many mint denominations: %d", count)
	}
	dbi.MintDenominations = make([]zerocoin.Denomination, count)
	for i := range dbi.MintDenominations {
		v, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		d := zerocoin.Denomination(v)
		if !d.IsValid() {
			return errors.Errorf("invalid mint denomination %d", v)
		}
		dbi.MintDenominations[i] = d
	}
	return nil
}
