package crypto

import (
	"testing"

	"github.com/copernet/zerocoin/util"
	"github.com/stretchr/testify/assert"
)

func TestSignVerify(t *testing.T) {
	priv, err := NewPrivateKey()
	assert.NoError(t, err)

	hash := util.DoubleSha256Bytes([]byte("zerocoin spend"))
	sig := priv.Sign(hash)
	pub := priv.PubKey()
	assert.True(t, pub.Verify(hash, sig))
	assert.True(t, VerifySignature(pub.ToBytes(), sig.Serialize(), hash))

	other := util.DoubleSha256Bytes([]byte("another spend"))
	assert.False(t, pub.Verify(other, sig))
	assert.False(t, VerifySignature(pub.ToBytes(), []byte{0x30, 0x01}, hash))
	assert.False(t, VerifySignature([]byte{0x02}, sig.Serialize(), hash))
}

func TestKeyRoundTrip(t *testing.T) {
	priv, err := NewPrivateKey()
	assert.NoError(t, err)

	restored, err := PrivateKeyFromBytes(priv.Bytes())
	assert.NoError(t, err)
	assert.True(t, priv.PubKey().IsEqual(restored.PubKey()))

	pub, err := ParsePubKey(priv.PubKey().ToBytes())
	assert.NoError(t, err)
	assert.Len(t, pub.ToBytes(), PublicKeyBytesLenCompressed)
	assert.Len(t, pub.ToHash160(), util.Hash160Size)
	assert.Equal(t, priv.PubKey().Hash(), pub.Hash())

	_, err = PrivateKeyFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}
