package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

const PrivateKeyBytesLen = 32

type PrivateKey struct {
	key *secp256k1.PrivateKey
}

func NewPrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate secp256k1 key")
	}
	return &PrivateKey{key: key}, nil
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeyBytesLen {
		return nil, errors.Errorf("private key must be %d bytes, got %d", PrivateKeyBytesLen, len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

func (privateKey *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{key: privateKey.key.PubKey()}
}

// Sign produces a DER encoded ECDSA signature over a 32 byte digest.
func (privateKey *PrivateKey) Sign(hash []byte) *Signature {
	return &Signature{sig: ecdsa.Sign(privateKey.key, hash)}
}

func (privateKey *PrivateKey) Bytes() []byte {
	return privateKey.key.Serialize()
}
