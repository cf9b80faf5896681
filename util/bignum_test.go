package util

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

func TestBigNumBytes(t *testing.T) {
	tests := []struct {
		in  int64
		out []byte
	}{
		{0, []byte{}},
		{1, []byte{0x01}},
		{-1, []byte{0x81}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x00}},
		{-128, []byte{0x80, 0x80}},
		{255, []byte{0xff, 0x00}},
		{256, []byte{0x00, 0x01}},
		{961, []byte{0xc1, 0x03}},
		{-32768, []byte{0x00, 0x80, 0x80}},
	}

	for i, test := range tests {
		got := BigNumBytes(big.NewInt(test.in))
		if !bytes.Equal(got, test.out) {
			t.Errorf("BigNumBytes #%d\n got: %s want: %s", i, spew.Sdump(got), spew.Sdump(test.out))
			continue
		}
		back := BigNumFromBytes(got)
		if back.Int64() != test.in {
			t.Errorf("BigNumFromBytes #%d got %v want %d", i, back, test.in)
		}
	}
}

func TestBigNumRoundTripLarge(t *testing.T) {
	n, ok := new(big.Int).SetString("-c7970ceedcc3b0754490201a7aa613cd73911081c790f5f1a8726f463550bb5b7ff0db8e1ea1189ec72f93d1650011bd721aee", 16)
	assert.True(t, ok)

	var buf bytes.Buffer
	assert.NoError(t, WriteBigNum(&buf, n))
	assert.Equal(t, BigNumSerializeSize(n), buf.Len())

	got, err := ReadBigNum(&buf)
	assert.NoError(t, err)
	assert.Equal(t, 0, n.Cmp(got))
}
