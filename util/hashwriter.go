package util

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math/big"
)

// HashWriter accumulates serialized fields and yields their double sha256.
// Write errors are impossible on the underlying hash, so the helpers chain.
type HashWriter struct {
	h hash.Hash
}

func NewHashWriter() *HashWriter {
	return &HashWriter{h: sha256.New()}
}

func (hw *HashWriter) Write(p []byte) (int, error) {
	return hw.h.Write(p)
}

func (hw *HashWriter) WriteBigNum(n *big.Int) *HashWriter {
	WriteBigNum(hw.h, n)
	return hw
}

func (hw *HashWriter) WriteHash(hash *Hash) *HashWriter {
	hw.h.Write(hash[:])
	return hw
}

func (hw *HashWriter) WriteBytes(b []byte) *HashWriter {
	WriteVarBytes(hw.h, b)
	return hw
}

func (hw *HashWriter) WriteUint8(v uint8) *HashWriter {
	hw.h.Write([]byte{v})
	return hw
}

func (hw *HashWriter) WriteUint32(v uint32) *HashWriter {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	hw.h.Write(buf[:])
	return hw
}

func (hw *HashWriter) WriteUint64(v uint64) *HashWriter {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	hw.h.Write(buf[:])
	return hw
}

// GetHash returns sha256(sha256(data written so far)).
func (hw *HashWriter) GetHash() Hash {
	first := hw.h.Sum(nil)
	return Hash(sha256.Sum256(first))
}
