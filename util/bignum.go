package util

import (
	"io"
	"math/big"
)

// MaxBigNumSize bounds the serialized size of a single big integer.
const MaxBigNumSize = 4096

// BigNumBytes encodes n as little-endian sign-magnitude. Zero encodes as an
// empty slice; the high bit of the last byte carries the sign.
func BigNumBytes(n *big.Int) []byte {
	if n == nil || n.Sign() == 0 {
		return []byte{}
	}
	be := new(big.Int).Abs(n).Bytes()
	size := len(be)
	extra := 0
	if be[0]&0x80 != 0 {
		extra = 1
	}
	out := make([]byte, size+extra)
	for i := 0; i < size; i++ {
		out[i] = be[size-1-i]
	}
	if n.Sign() < 0 {
		out[len(out)-1] |= 0x80
	}
	return out
}

// BigNumFromBytes is the inverse of BigNumBytes.
func BigNumFromBytes(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	negative := be[0]&0x80 != 0
	be[0] &= 0x7f
	n := new(big.Int).SetBytes(be)
	if negative {
		n.Neg(n)
	}
	return n
}

func WriteBigNum(w io.Writer, n *big.Int) error {
	return WriteVarBytes(w, BigNumBytes(n))
}

func ReadBigNum(r io.Reader) (*big.Int, error) {
	b, err := ReadVarBytes(r, MaxBigNumSize, "bignum")
	if err != nil {
		return nil, err
	}
	return BigNumFromBytes(b), nil
}

func BigNumSerializeSize(n *big.Int) int {
	return VarBytesSerializeSize(len(BigNumBytes(n)))
}
