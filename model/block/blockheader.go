package block

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/copernet/zerocoin/util"
)

// ZerocoinHeaderVersion is the first header version that commits to an
// accumulator checkpoint.
const ZerocoinHeaderVersion = 4

type BlockHeader struct {
	Version               int32
	HashPrevBlock         util.Hash
	MerkleRoot            util.Hash
	Time                  uint32
	Bits                  uint32
	Nonce                 uint32
	AccumulatorCheckpoint util.Hash
}

const blockHeaderLength = 16 + util.Hash256Size*2

func NewBlockHeader() *BlockHeader {
	return &BlockHeader{}
}

func (bh *BlockHeader) IsNull() bool {
	return bh.Bits == 0
}

func (bh *BlockHeader) GetBlockTime() int64 {
	return int64(bh.Time)
}

func (bh *BlockHeader) HasAccumulatorCheckpoint() bool {
	return bh.Version >= ZerocoinHeaderVersion
}

func (bh *BlockHeader) GetHash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, bh.SerializeSize()))
	bh.Serialize(buf)
	return util.DoubleSha256Hash(buf.Bytes())
}

func (bh *BlockHeader) SetNull() {
	*bh = BlockHeader{}
}

func (bh *BlockHeader) SerializeSize() uint32 {
	if bh.HasAccumulatorCheckpoint() {
		return blockHeaderLength + util.Hash256Size
	}
	return blockHeaderLength
}

func (bh *BlockHeader) Serialize(w io.Writer) error {
	if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(bh.Version)); err != nil {
		return err
	}
	if _, err := bh.HashPrevBlock.Serialize(w); err != nil {
		return err
	}
	if _, err := bh.MerkleRoot.Serialize(w); err != nil {
		return err
	}
	for _, v := range []uint32{bh.Time, bh.Bits, bh.Nonce} {
		if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if bh.HasAccumulatorCheckpoint() {
		_, err := bh.AccumulatorCheckpoint.Serialize(w)
		return err
	}
	return nil
}

func (bh *BlockHeader) Unserialize(r io.Reader) error {
	version, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	bh.Version = int32(version)
	if _, err = bh.HashPrevBlock.Unserialize(r); err != nil {
		return err
	}
	if _, err = bh.MerkleRoot.Unserialize(r); err != nil {
		return err
	}
	for _, v := range []*uint32{&bh.Time, &bh.Bits, &bh.Nonce} {
		if *v, err = util.BinarySerializer.Uint32(r, binary.LittleEndian); err != nil {
			return err
		}
	}
	bh.AccumulatorCheckpoint = util.HashZero
	if bh.HasAccumulatorCheckpoint() {
		_, err = bh.AccumulatorCheckpoint.Unserialize(r)
	}
	return err
}

func (bh *BlockHeader) String() string {
	return fmt.Sprintf("Block version : %d, hashPrevBlock : %s, hashMerkleRoot : %s,"+
		"Time : %d, Bits : %d, nonce : %d, accumulatorCheckpoint : %s, BlockHash : %s\n", bh.Version,
		bh.HashPrevBlock, bh.MerkleRoot, bh.Time, bh.Bits, bh.Nonce, bh.AccumulatorCheckpoint, bh.GetHash())
}
