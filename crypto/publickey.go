package crypto

import (
	"github.com/copernet/zerocoin/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

const PublicKeyBytesLenCompressed = 33

type PublicKey struct {
	key *secp256k1.PublicKey
}

func ParsePubKey(b []byte) (*PublicKey, error) {
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, errors.Wrap(err, "parse public key")
	}
	return &PublicKey{key: key}, nil
}

func (publicKey *PublicKey) ToBytes() []byte {
	return publicKey.key.SerializeCompressed()
}

// ToHash160 is the ripemd160(sha256()) key id used for addresses.
func (publicKey *PublicKey) ToHash160() []byte {
	return util.Hash160(publicKey.ToBytes())
}

// Hash is the double sha256 of the compressed key, from which
// key bound zerocoin serials are derived.
func (publicKey *PublicKey) Hash() util.Hash {
	return util.DoubleSha256Hash(publicKey.ToBytes())
}

func (publicKey *PublicKey) IsEqual(other *PublicKey) bool {
	if publicKey == nil || other == nil {
		return publicKey == other
	}
	return publicKey.key.IsEqual(other.key)
}

func (publicKey *PublicKey) Verify(hash []byte, sig *Signature) bool {
	if sig == nil {
		return false
	}
	return sig.sig.Verify(hash, publicKey.key)
}
