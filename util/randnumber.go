package util

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"math/big"
)

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("read system randomness failed: " + err.Error())
	}
	return b
}

func InsecureRand64() uint64 {
	return binary.LittleEndian.Uint64(randBytes(8))
}

func GetRandHash() *Hash {
	var h Hash
	copy(h[:], randBytes(Hash256Size))
	return &h
}

// GetRand returns a uniform value in [0, nMax).
func GetRand(nMax uint64) uint64 {
	if nMax == 0 {
		return 0
	}

	nRange := (math.MaxUint64 / nMax) * nMax
	nRand := InsecureRand64()
	for nRand >= nRange {
		nRand = InsecureRand64()
	}

	return nRand % nMax
}

func GetRandInt(nMax int) int {
	return int(GetRand(uint64(nMax)))
}

// RandBigInt returns a uniform value in [0, max).
func RandBigInt(max *big.Int) *big.Int {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic("read system randomness failed: " + err.Error())
	}
	return n
}

// RandBigIntBits returns a uniform value with at most bits bits.
func RandBigIntBits(bits uint) *big.Int {
	return RandBigInt(new(big.Int).Lsh(big.NewInt(1), bits))
}

func RandBytes(n int) []byte {
	return randBytes(n)
}
