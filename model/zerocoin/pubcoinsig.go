package zerocoin

import (
	"io"
	"math/big"

	"github.com/copernet/zerocoin/util"
)

const PubcoinSignatureVersion = 1

// PubcoinSignature reveals the spent pubcoin and the randomness of the
// serial group commitment to it. It gives up anonymity so spends can still
// be attributed if the zero knowledge proofs are ever broken.
type PubcoinSignature struct {
	params     *Params
	Version    uint8
	Pubcoin    *big.Int
	Randomness *big.Int
}

func NewPubcoinSignature(p *Params, pubcoin *big.Int, serialCommitment *Commitment) *PubcoinSignature {
	return &PubcoinSignature{
		params:     p,
		Version:    PubcoinSignatureVersion,
		Pubcoin:    new(big.Int).Set(pubcoin),
		Randomness: new(big.Int).Set(serialCommitment.Randomness()),
	}
}

// Verify recomputes g'^C h'^r mod p' and compares it to the commitment.
func (sig *PubcoinSignature) Verify(serialCommitmentValue *big.Int) bool {
	if sig.Pubcoin == nil || sig.Randomness == nil || sig.Pubcoin.Sign() <= 0 || sig.Randomness.Sign() < 0 {
		return false
	}
	group := &sig.params.SerialNumberSoKCommitmentGroup
	return commit(group, sig.Pubcoin, sig.Randomness).Cmp(serialCommitmentValue) == 0
}

func (sig *PubcoinSignature) PubcoinValue() *big.Int {
	return sig.Pubcoin
}

func (sig *PubcoinSignature) Serialize(w io.Writer) error {
	if err := util.BinarySerializer.PutUint8(w, sig.Version); err != nil {
		return err
	}
	return writeBigNums(w, sig.Pubcoin, sig.Randomness)
}

func (sig *PubcoinSignature) Unserialize(r io.Reader, p *Params) error {
	sig.params = p
	version, err := util.BinarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	sig.Version = version
	return readBigNums(r, &sig.Pubcoin, &sig.Randomness)
}
