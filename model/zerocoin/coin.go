package zerocoin

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/copernet/zerocoin/crypto"
	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const (
	PrivateCoinVersion1       = 1
	PrivateCoinVersion2       = 2
	CurrentPrivateCoinVersion = PrivateCoinVersion2

	// V2BitShift drops the low nibble of the key hash to make room for the
	// 0xF version marker in the top nibble.
	V2BitShift = 4

	serialBits       = 256
	maxMintAttempts  = 1 << 16
	maxSerialRetries = 1 << 10
)

var serialVersionMask = new(big.Int).Lsh(big.NewInt(0xF), serialBits-V2BitShift)

// PublicCoin is the commitment to a serial number that is published in a
// mint transaction.
type PublicCoin struct {
	params       *Params
	value        *big.Int
	denomination Denomination
}

func NewPublicCoin(p *Params, value *big.Int, d Denomination) *PublicCoin {
	return &PublicCoin{params: p, value: new(big.Int).Set(value), denomination: d}
}

// Validate checks the coin is a prime inside the accumulator range.
func (pc *PublicCoin) Validate() error {
	if pc.params == nil {
		return errcode.New(errcode.ErrorParamsNotInitialized)
	}
	if !pc.denomination.IsValid() {
		return errcode.New(errcode.ErrorInvalidDenomination)
	}
	ap := &pc.params.AccumulatorParams
	if pc.value == nil || pc.value.Cmp(ap.MinCoinValue) < 0 {
		return errors.Wrap(errcode.New(errcode.ErrorInvalidCoin), "value below minimum")
	}
	if pc.value.Cmp(ap.MaxCoinValue) > 0 {
		return errors.Wrap(errcode.New(errcode.ErrorInvalidCoin), "value above maximum")
	}
	if !pc.value.ProbablyPrime(MintPrimeParam) {
		return errors.Wrap(errcode.New(errcode.ErrorInvalidCoin), "value is not prime")
	}
	return nil
}

func (pc *PublicCoin) Equal(other *PublicCoin) bool {
	if pc == nil || other == nil {
		return pc == other
	}
	return pc.denomination == other.denomination && pc.value.Cmp(other.value) == 0
}

func (pc *PublicCoin) Value() *big.Int {
	return pc.value
}

func (pc *PublicCoin) Denomination() Denomination {
	return pc.denomination
}

func (pc *PublicCoin) Params() *Params {
	return pc.params
}

// Hash identifies the coin in the pubcoin registry.
func (pc *PublicCoin) Hash() util.Hash {
	return PubcoinHash(pc.value)
}

func (pc *PublicCoin) Serialize(w io.Writer) error {
	if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(pc.denomination)); err != nil {
		return err
	}
	return util.WriteBigNum(w, pc.value)
}

func (pc *PublicCoin) Unserialize(r io.Reader, p *Params) error {
	d, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	v, err := util.ReadBigNum(r)
	if err != nil {
		return err
	}
	pc.params = p
	pc.denomination = Denomination(d)
	pc.value = v
	return nil
}

// PrivateCoin is the wallet side secret behind a PublicCoin.
type PrivateCoin struct {
	params       *Params
	publicCoin   *PublicCoin
	serialNumber *big.Int
	randomness   *big.Int
	privKey      *crypto.PrivateKey
	version      uint8
}

// MintPrivateCoin creates a fresh coin. Version 2 coins derive their serial
// from a new secp256k1 key so spends can be signed.
func MintPrivateCoin(p *Params, d Denomination, version uint8) (*PrivateCoin, error) {
	if p == nil {
		return nil, errcode.New(errcode.ErrorParamsNotInitialized)
	}
	if !d.IsValid() {
		return nil, errcode.New(errcode.ErrorInvalidDenomination)
	}

	coin := &PrivateCoin{params: p, version: version}
	switch version {
	case PrivateCoinVersion1:
		coin.serialNumber = randomV1Serial(p)
	case PrivateCoinVersion2:
		key, err := crypto.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		coin.privKey = key
		coin.serialNumber = SerialFromPubKey(key.PubKey())
	default:
		return nil, errors.Wrapf(errcode.New(errcode.ErrorUnsupportedVersion), "coin version %d", version)
	}

	if err := coin.mintFast(d); err != nil {
		return nil, err
	}
	return coin, nil
}

func randomV1Serial(p *Params) *big.Int {
	for i := 0; i < maxSerialRetries; i++ {
		s := p.CoinCommitmentGroup.RandomElement()
		if s.Sign() > 0 && ExtractVersionFromSerial(s) == PrivateCoinVersion1 {
			return s
		}
	}
	panic("unable to draw a version 1 serial below the group order")
}

// mintFast searches for a prime commitment by stepping the randomness by
// one, which multiplies the commitment by h, instead of recommitting.
func (pc *PrivateCoin) mintFast(d Denomination) error {
	group := &pc.params.CoinCommitmentGroup
	ap := &pc.params.AccumulatorParams

	r := group.RandomElement()
	c := commit(group, pc.serialNumber, r)
	for i := 0; i < maxMintAttempts; i++ {
		if c.Cmp(ap.MinCoinValue) >= 0 && c.Cmp(ap.MaxCoinValue) <= 0 && c.ProbablyPrime(MintPrimeParam) {
			pc.randomness = r
			pc.publicCoin = NewPublicCoin(pc.params, c, d)
			return nil
		}
		c = mulMod(c, group.H, group.Modulus)
		r.Add(r, bigOne)
		if r.Cmp(group.GroupOrder) >= 0 {
			r.Sub(r, group.GroupOrder)
		}
	}
	return errors.New("failed to find a prime coin commitment")
}

// RestorePrivateCoin rebuilds a coin from its secrets and checks that they
// open to a valid public coin.
func RestorePrivateCoin(p *Params, d Denomination, serial, randomness *big.Int, key *crypto.PrivateKey, version uint8) (*PrivateCoin, error) {
	coin := &PrivateCoin{
		params:       p,
		serialNumber: new(big.Int).Set(serial),
		randomness:   new(big.Int).Set(randomness),
		privKey:      key,
		version:      version,
	}
	value := commit(&p.CoinCommitmentGroup, serial, randomness)
	coin.publicCoin = NewPublicCoin(p, value, d)
	if err := coin.publicCoin.Validate(); err != nil {
		return nil, err
	}
	return coin, nil
}

func (pc *PrivateCoin) PublicCoin() *PublicCoin {
	return pc.publicCoin
}

func (pc *PrivateCoin) SerialNumber() *big.Int {
	return pc.serialNumber
}

func (pc *PrivateCoin) Randomness() *big.Int {
	return pc.randomness
}

func (pc *PrivateCoin) PrivKey() *crypto.PrivateKey {
	return pc.privKey
}

func (pc *PrivateCoin) Version() uint8 {
	return pc.version
}

func (pc *PrivateCoin) Params() *Params {
	return pc.params
}

// SerialFromPubKey is 0xF in the top nibble followed by the top 252 bits of
// the key hash.
func SerialFromPubKey(pub *crypto.PublicKey) *big.Int {
	h := pub.Hash()
	s := h.ToBigInt()
	s.Rsh(s, V2BitShift)
	return s.Or(s, serialVersionMask)
}

// ExtractVersionFromSerial reads the coin version marker of a serial.
func ExtractVersionFromSerial(serial *big.Int) int {
	if new(big.Int).Rsh(serial, serialBits-V2BitShift).Cmp(big.NewInt(0xF)) == 0 {
		return PrivateCoinVersion2
	}
	return PrivateCoinVersion1
}

// GetAdjustedSerial strips the version marker from a version 2 serial.
func GetAdjustedSerial(serial *big.Int) *big.Int {
	if ExtractVersionFromSerial(serial) < PrivateCoinVersion2 {
		return new(big.Int).Set(serial)
	}
	return new(big.Int).AndNot(serial, serialVersionMask)
}

// IsValidSerial checks the adjusted serial lies in (0, q).
func IsValidSerial(p *Params, serial *big.Int) bool {
	if serial == nil || serial.Sign() <= 0 {
		return false
	}
	adjusted := GetAdjustedSerial(serial)
	return adjusted.Sign() > 0 && adjusted.Cmp(p.CoinCommitmentGroup.GroupOrder) < 0
}

func SerialHash(serial *big.Int) util.Hash {
	return util.DoubleSha256Hash(util.BigNumBytes(serial))
}

func PubcoinHash(value *big.Int) util.Hash {
	return util.DoubleSha256Hash(util.BigNumBytes(value))
}
