package block

import (
	"io"

	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const MaxTxPerBlock = 1 << 20

type Block struct {
	Header BlockHeader
	Txs    []*tx.Tx
}

func NewBlock() *Block {
	return &Block{}
}

func (bl *Block) GetBlockHeader() BlockHeader {
	return bl.Header
}

func (bl *Block) GetHash() util.Hash {
	return bl.Header.GetHash()
}

func (bl *Block) SetNull() {
	bl.Header.SetNull()
	bl.Txs = nil
}

func (bl *Block) Serialize(w io.Writer) error {
	if err := bl.Header.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(len(bl.Txs))); err != nil {
		return err
	}
	for _, Tx := range bl.Txs {
		if err := Tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (bl *Block) Unserialize(r io.Reader) error {
	if err := bl.Header.Unserialize(r); err != nil {
		return err
	}
	count, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxTxPerBlock {
		return errors.Errorf("too many transactions in block: %d", count)
	}
	bl.Txs = make([]*tx.Tx, count)
	for i := range bl.Txs {
		t := tx.NewEmptyTx()
		if err := t.Unserialize(r); err != nil {
			return err
		}
		bl.Txs[i] = t
	}
	return nil
}

func (bl *Block) SerializeSize() uint32 {
	size := bl.Header.SerializeSize() + uint32(util.VarIntSerializeSize(uint64(len(bl.Txs))))
	for _, Tx := range bl.Txs {
		size += Tx.SerializeSize()
	}
	return size
}

// BuildMerkleRoot folds transaction hashes pairwise, duplicating the last
// hash on odd levels.
func (bl *Block) BuildMerkleRoot() util.Hash {
	if len(bl.Txs) == 0 {
		return util.HashZero
	}
	level := make([]util.Hash, len(bl.Txs))
	for i, t := range bl.Txs {
		level[i] = t.GetHash()
	}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]util.Hash, len(level)/2)
		for i := range next {
			buf := make([]byte, 0, util.Hash256Size*2)
			buf = append(buf, level[2*i][:]...)
			buf = append(buf, level[2*i+1][:]...)
			next[i] = util.DoubleSha256Hash(buf)
		}
		level = next
	}
	return level[0]
}
