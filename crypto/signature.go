package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

type Signature struct {
	sig *ecdsa.Signature
}

func ParseDERSignature(b []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(b)
	if err != nil {
		return nil, errors.Wrap(err, "parse DER signature")
	}
	return &Signature{sig: sig}, nil
}

func (sig *Signature) Serialize() []byte {
	return sig.sig.Serialize()
}

// VerifySignature parses a DER signature and a compressed key and checks them
// against hash. Malformed inputs verify as false.
func VerifySignature(pubKey, signature, hash []byte) bool {
	pub, err := ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return pub.Verify(hash, sig)
}
