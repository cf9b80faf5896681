package zerocoin

import (
	"io"
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const sokSeedSize = 32

// SerialNumberSoKSmall proves the same relation as
// SerialNumberSignatureOfKnowledge with a smaller encoding. Zero bit rounds
// reveal a 32 byte seed from which both random values are expanded, and one
// bit responses are reduced modulo their group orders.
type SerialNumberSoKSmall struct {
	params    *Params
	Seeds     [][]byte
	SNotPrime []*big.Int
	SPrime    []*big.Int
	Hash      util.Hash
}

// expandSeed derives a uniform exponent below order from seed.
func expandSeed(seed []byte, label byte, order *big.Int) *big.Int {
	need := (order.BitLen()+7)/8 + 16
	buf := make([]byte, 0, need+util.Hash256Size)
	for counter := uint32(0); len(buf) < need; counter++ {
		hw := util.NewHashWriter()
		hw.Write(seed)
		hw.WriteUint8(label).WriteUint32(counter)
		h := hw.GetHash()
		buf = append(buf, h[:]...)
	}
	n := new(big.Int).SetBytes(buf[:need])
	return n.Mod(n, order)
}

func seedValues(p *Params, seed []byte) (*big.Int, *big.Int) {
	return expandSeed(seed, 'r', p.CoinCommitmentGroup.GroupOrder),
		expandSeed(seed, 'v', p.SerialNumberSoKCommitmentGroup.GroupOrder)
}

func NewSerialNumberSoKSmall(p *Params, coin *PrivateCoin, commitmentToCoin *Commitment, msgHash util.Hash) *SerialNumberSoKSmall {
	iterations := p.ZKPIterations
	seeds := make([][]byte, iterations)
	r := make([]*big.Int, iterations)
	v := make([]*big.Int, iterations)

	hw := sokHasher(p, commitmentToCoin.CommitmentValue(), coin.SerialNumber(), msgHash)
	for i := 0; i < iterations; i++ {
		seeds[i] = util.RandBytes(sokSeedSize)
		r[i], v[i] = seedValues(p, seeds[i])
		hw.WriteBigNum(roundCommitment(p, coin.SerialNumber(), r[i], v[i]))
	}

	sok := &SerialNumberSoKSmall{
		params:    p,
		Seeds:     make([][]byte, iterations),
		SNotPrime: make([]*big.Int, iterations),
		SPrime:    make([]*big.Int, iterations),
		Hash:      hw.GetHash(),
	}
	q := p.CoinCommitmentGroup.GroupOrder
	order := p.SerialNumberSoKCommitmentGroup.GroupOrder
	for i := 0; i < iterations; i++ {
		if challengeBit(&sok.Hash, i) == 0 {
			sok.Seeds[i] = seeds[i]
			continue
		}
		s := new(big.Int).Sub(r[i], coin.Randomness())
		s.Mod(s, q)
		sp := sPrimeFor(p, v[i], s, commitmentToCoin.Randomness())
		sok.SNotPrime[i] = s
		sok.SPrime[i] = sp.Mod(sp, order)
	}
	return sok
}

func (sok *SerialNumberSoKSmall) Verify(serial, commitmentValue *big.Int, msgHash util.Hash) bool {
	p := sok.params
	n := p.ZKPIterations
	if len(sok.Seeds) != n || len(sok.SNotPrime) != n || len(sok.SPrime) != n {
		return false
	}
	if !inGroup(commitmentValue, p.SerialNumberSoKCommitmentGroup.Modulus) || serial == nil || serial.Sign() <= 0 {
		return false
	}
	q := p.CoinCommitmentGroup.GroupOrder
	order := p.SerialNumberSoKCommitmentGroup.GroupOrder

	hw := sokHasher(p, commitmentValue, serial, msgHash)
	for i := 0; i < n; i++ {
		if challengeBit(&sok.Hash, i) == 0 {
			if len(sok.Seeds[i]) != sokSeedSize {
				return false
			}
			r, v := seedValues(p, sok.Seeds[i])
			hw.WriteBigNum(roundCommitment(p, serial, r, v))
			continue
		}
		s, sp := sok.SNotPrime[i], sok.SPrime[i]
		if s == nil || sp == nil || s.Sign() < 0 || s.Cmp(q) >= 0 || sp.Sign() < 0 || sp.Cmp(order) >= 0 {
			return false
		}
		hw.WriteBigNum(openedRoundCommitment(p, commitmentValue, s, sp))
	}
	return hw.GetHash() == sok.Hash
}

// Serialize writes the challenge hash first so the reader knows which
// rounds carry a seed.
func (sok *SerialNumberSoKSmall) Serialize(w io.Writer) error {
	if _, err := sok.Hash.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(len(sok.Seeds))); err != nil {
		return err
	}
	for i := range sok.Seeds {
		if challengeBit(&sok.Hash, i) == 0 {
			if len(sok.Seeds[i]) != sokSeedSize {
				return errcode.New(errcode.ErrorMalformedSpend)
			}
			if _, err := w.Write(sok.Seeds[i]); err != nil {
				return err
			}
			continue
		}
		if err := writeBigNums(w, sok.SNotPrime[i], sok.SPrime[i]); err != nil {
			return err
		}
	}
	return nil
}

func (sok *SerialNumberSoKSmall) Unserialize(r io.Reader, p *Params) error {
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
	sok.Seeds = make([][]byte, count)
	sok.SNotPrime = make([]*big.Int, count)
	sok.SPrime = make([]*big.Int, count)
	for i := 0; i < int(count); i++ {
		if challengeBit(&sok.Hash, i) == 0 {
			sok.Seeds[i] = make([]byte, sokSeedSize)
			if _, err := io.ReadFull(r, sok.Seeds[i]); err != nil {
				return err
			}
			continue
		}
		if err := readBigNums(r, &sok.SNotPrime[i], &sok.SPrime[i]); err != nil {
			return err
		}
	}
	return nil
}
