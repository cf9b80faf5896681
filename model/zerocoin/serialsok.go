package zerocoin

import (
	"io"
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// SerialSoK is a signature of knowledge binding a revealed serial number
// and a commitment to a coin to a message hash.
type SerialSoK interface {
	Verify(serial, commitmentValue *big.Int, msgHash util.Hash) bool
	Serialize(w io.Writer) error
}

// SerialNumberSignatureOfKnowledge is the cut and choose proof that the
// committed coin has the revealed serial, with one challenge bit per round.
type SerialNumberSignatureOfKnowledge struct {
	params    *Params
	SNotPrime []*big.Int
	SPrime    []*big.Int
	Hash      util.Hash
}

func challengeBit(hash *util.Hash, i int) uint {
	return uint(hash[i/8]>>(uint(i)%8)) & 1
}

func sokHasher(p *Params, commitmentValue, serial *big.Int, msgHash util.Hash) *util.HashWriter {
	paramsHash := p.Hash()
	hw := util.NewHashWriter()
	hw.WriteHash(&paramsHash)
	hw.WriteBigNum(commitmentValue).WriteBigNum(serial)
	hw.WriteHash(&msgHash)
	return hw
}

// roundCommitment is a^(g^serial h^s mod p) b^v mod p'.
func roundCommitment(p *Params, serial, s, v *big.Int) *big.Int {
	coin := &p.CoinCommitmentGroup
	sok := &p.SerialNumberSoKCommitmentGroup
	exp := commit(coin, serial, s)
	return commit(sok, exp, v)
}

// openedRoundCommitment recomputes a round whose challenge bit was one,
// where only the coin commitment is known: C'^(h^s mod p) b^v mod p'.
func openedRoundCommitment(p *Params, commitmentValue, s, v *big.Int) *big.Int {
	coin := &p.CoinCommitmentGroup
	sok := &p.SerialNumberSoKCommitmentGroup
	exp := powMod(coin.H, s, coin.Modulus)
	return mulMod(powMod(commitmentValue, exp, sok.Modulus), powMod(sok.H, v, sok.Modulus), sok.Modulus)
}

// sPrimeFor blinds the serial commitment randomness for a one bit round.
func sPrimeFor(p *Params, v, s, commitRandomness *big.Int) *big.Int {
	coin := &p.CoinCommitmentGroup
	hs := powMod(coin.H, s, coin.Modulus)
	return new(big.Int).Sub(v, new(big.Int).Mul(commitRandomness, hs))
}

func NewSerialNumberSignatureOfKnowledge(p *Params, coin *PrivateCoin, commitmentToCoin *Commitment, msgHash util.Hash) *SerialNumberSignatureOfKnowledge {
	iterations := p.ZKPIterations
	r := make([]*big.Int, iterations)
	v := make([]*big.Int, iterations)

	hw := sokHasher(p, commitmentToCoin.CommitmentValue(), coin.SerialNumber(), msgHash)
	for i := 0; i < iterations; i++ {
		r[i] = p.CoinCommitmentGroup.RandomElement()
		v[i] = p.SerialNumberSoKCommitmentGroup.RandomElement()
		hw.WriteBigNum(roundCommitment(p, coin.SerialNumber(), r[i], v[i]))
	}

	sok := &SerialNumberSignatureOfKnowledge{
		params:    p,
		SNotPrime: make([]*big.Int, iterations),
		SPrime:    make([]*big.Int, iterations),
		Hash:      hw.GetHash(),
	}
	for i := 0; i < iterations; i++ {
		if challengeBit(&sok.Hash, i) == 0 {
			sok.SNotPrime[i] = r[i]
			sok.SPrime[i] = v[i]
			continue
		}
		sok.SNotPrime[i] = new(big.Int).Sub(r[i], coin.Randomness())
		sok.SPrime[i] = sPrimeFor(p, v[i], sok.SNotPrime[i], commitmentToCoin.Randomness())
	}
	return sok
}

func (sok *SerialNumberSignatureOfKnowledge) Verify(serial, commitmentValue *big.Int, msgHash util.Hash) bool {
	p := sok.params
	if len(sok.SNotPrime) != p.ZKPIterations || len(sok.SPrime) != p.ZKPIterations {
		return false
	}
	if !inGroup(commitmentValue, p.SerialNumberSoKCommitmentGroup.Modulus) || serial == nil || serial.Sign() <= 0 {
		return false
	}

	hw := sokHasher(p, commitmentValue, serial, msgHash)
	for i := 0; i < p.ZKPIterations; i++ {
		if sok.SNotPrime[i] == nil || sok.SPrime[i] == nil {
			return false
		}
		if challengeBit(&sok.Hash, i) == 0 {
			hw.WriteBigNum(roundCommitment(p, serial, sok.SNotPrime[i], sok.SPrime[i]))
		} else {
			hw.WriteBigNum(openedRoundCommitment(p, commitmentValue, sok.SNotPrime[i], sok.SPrime[i]))
		}
	}
	return hw.GetHash() == sok.Hash
}

func (sok *SerialNumberSignatureOfKnowledge) Serialize(w io.Writer) error {
	if _, err := sok.Hash.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(len(sok.SNotPrime))); err != nil {
		return err
	}
	if err := writeBigNums(w, sok.SNotPrime...); err != nil {
		return err
	}
	return writeBigNums(w, sok.SPrime...)
}

func (sok *SerialNumberSignatureOfKnowledge) Unserialize(r io.Reader, p *Params) error {
	sok.params = p
	if _, err := sok.Hash.Unserialize(r); err != nil {
		return err
	}
	count, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count != uint64(p.ZKPIterations) {
		return errors.Wrapf(errcode.New(errcode.ErrorMalformedSpend), "serial proof has %d rounds", count)
	}
	sok.SNotPrime = make([]*big.Int, count)
	sok.SPrime = make([]*big.Int, count)
	for i := range sok.SNotPrime {
		if sok.SNotPrime[i], err = util.ReadBigNum(r); err != nil {
			return err
		}
	}
	for i := range sok.SPrime {
		if sok.SPrime[i], err = util.ReadBigNum(r); err != nil {
			return err
		}
	}
	return nil
}
