package outpoint

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/copernet/zerocoin/util"
)

type OutPoint struct {
	Hash  util.Hash
	Index uint32
}

func NewOutPoint(hash util.Hash, index uint32) *OutPoint {
	outPoint := OutPoint{
		Hash:  hash,
		Index: index,
	}
	return &outPoint
}

// NewNullOutPoint returns the outpoint carried by coinbase and zerocoin spend inputs.
func NewNullOutPoint() *OutPoint {
	return NewOutPoint(util.HashZero, math.MaxUint32)
}

func (outPoint *OutPoint) SerializeSize() uint32 {
	return util.Hash256Size + 4
}

func (outPoint *OutPoint) Serialize(writer io.Writer) error {
	_, err := writer.Write(outPoint.Hash[:])
	if err != nil {
		return err
	}
	return util.BinarySerializer.PutUint32(writer, binary.LittleEndian, outPoint.Index)
}

func (outPoint *OutPoint) Unserialize(reader io.Reader) (err error) {
	_, err = io.ReadFull(reader, outPoint.Hash[:])
	if err != nil {
		return
	}
	outPoint.Index, err = util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	return
}

func (outPoint *OutPoint) String() string {
	return fmt.Sprintf("OutPoint ( hash:%s index: %d)", outPoint.Hash.String(), outPoint.Index)
}

func (outPoint *OutPoint) IsNull() bool {
	if outPoint == nil {
		return true
	}
	if outPoint.Index != math.MaxUint32 {
		return false
	}
	return outPoint.Hash.IsEqual(&util.HashZero)
}
