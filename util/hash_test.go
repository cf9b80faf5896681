package util

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	hashStr := "000000000003ba27aa200b1cecaad478d2b00432346c3f1f3986da1afd33e506"
	h, err := GetHashFromStr(hashStr)
	assert.NoError(t, err)
	assert.Equal(t, hashStr, h.String())
	assert.Equal(t, byte(0x06), h[0])

	_, err = GetHashFromStr(hashStr + "00")
	assert.Error(t, err)
}

func TestHashSerialize(t *testing.T) {
	h := GetRandHash()
	var buf bytes.Buffer
	n, err := h.Serialize(&buf)
	assert.NoError(t, err)
	assert.Equal(t, Hash256Size, n)

	var other Hash
	_, err = other.Unserialize(&buf)
	assert.NoError(t, err)
	assert.True(t, h.IsEqual(&other))
	assert.False(t, other.IsNull())
	assert.True(t, HashZero.IsNull())
}

func TestDoubleSha256(t *testing.T) {
	// sha256d("hello")
	want := "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50"
	got := DoubleSha256Bytes([]byte("hello"))
	assert.Equal(t, want, hex.EncodeToString(got))

	h := DoubleSha256Hash([]byte("hello"))
	assert.Equal(t, got, h[:])
}

func TestHash160(t *testing.T) {
	// ripemd160(sha256(""))
	assert.Equal(t, "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb", hex.EncodeToString(Hash160([]byte{})))
}

func TestHashBigInt(t *testing.T) {
	n := big.NewInt(0x0102)
	h := HashFromBigInt(n)
	assert.Equal(t, byte(0x01), h[30])
	assert.Equal(t, byte(0x02), h[31])
	assert.Equal(t, 0, n.Cmp(h.ToBigInt()))
}

func TestHashWriter(t *testing.T) {
	var raw bytes.Buffer
	WriteBigNum(&raw, big.NewInt(961))
	raw.Write([]byte{1, 0, 0, 0})

	hw := NewHashWriter()
	hw.WriteBigNum(big.NewInt(961)).WriteUint32(1)
	assert.Equal(t, DoubleSha256Hash(raw.Bytes()), hw.GetHash())
}

func TestGetRand(t *testing.T) {
	assert.Equal(t, uint64(0), GetRand(0))
	for i := 0; i < 100; i++ {
		assert.True(t, GetRandInt(10) < 10)
	}
	max := big.NewInt(1000)
	assert.Equal(t, -1, RandBigInt(max).Cmp(max))
	assert.True(t, RandBigIntBits(16).BitLen() <= 16)
}
