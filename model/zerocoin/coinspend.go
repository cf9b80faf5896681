package zerocoin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/copernet/zerocoin/crypto"
	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const maxSpendKeyBytes = 128

// CoinSpend proves that its serial belongs to some accumulated coin of one
// denomination without revealing which.
type CoinSpend struct {
	params       *Params
	version      SpendVersion
	denomination Denomination
	accChecksum  util.Hash
	txOutHash    util.Hash
	spendType    SpendType

	accCommitmentToCoinValue    *big.Int
	serialCommitmentToCoinValue *big.Int
	coinSerialNumber            *big.Int

	commitmentPoK   *CommitmentProofOfKnowledge
	accumulatorPoK  *AccumulatorProofOfKnowledge
	serialNumberSoK SerialSoK

	pubKey     []byte
	signature  []byte
	pubcoinSig *PubcoinSignature
}

// NewCoinSpend builds every proof for spending coin against acc. Errors
// here mean the caller passed inconsistent inputs.
func NewCoinSpend(p *Params, coin *PrivateCoin, acc *Accumulator, checksum util.Hash, witness *AccumulatorWitness,
	txOutHash util.Hash, spendType SpendType, version SpendVersion) (*CoinSpend, error) {

	if err := checkSpendVersion(version); err != nil {
		return nil, err
	}
	traits := version.traits()
	if !traits.pubKey && coin.Version() >= PrivateCoinVersion2 {
		return nil, errors.Wrapf(errcode.New(errcode.ErrorUnsupportedVersion),
			"coin version %d needs a key bound spend", coin.Version())
	}
	if traits.pubKey && coin.PrivKey() == nil {
		return nil, errcode.New(errcode.ErrorMissingPrivKey)
	}
	if !witness.VerifyWitness(acc, coin.PublicCoin()) {
		return nil, errcode.New(errcode.ErrorInvalidWitness)
	}
	if !IsValidSerial(p, coin.SerialNumber()) {
		return nil, errcode.New(errcode.ErrorInvalidSerial)
	}

	cs := &CoinSpend{
		params:           p,
		version:          version,
		denomination:     coin.PublicCoin().Denomination(),
		accChecksum:      checksum,
		txOutHash:        txOutHash,
		spendType:        spendType,
		coinSerialNumber: new(big.Int).Set(coin.SerialNumber()),
	}

	value := coin.PublicCoin().Value()
	serialCommitment := NewCommitment(&p.SerialNumberSoKCommitmentGroup, value)
	accCommitment := NewCommitment(&p.AccumulatorParams.AccumulatorPoKCommitmentGroup, value)
	cs.serialCommitmentToCoinValue = serialCommitment.CommitmentValue()
	cs.accCommitmentToCoinValue = accCommitment.CommitmentValue()

	var err error
	cs.commitmentPoK, err = NewCommitmentProofOfKnowledge(&p.SerialNumberSoKCommitmentGroup,
		&p.AccumulatorParams.AccumulatorPoKCommitmentGroup, serialCommitment, accCommitment)
	if err != nil {
		return nil, err
	}
	cs.accumulatorPoK, err = NewAccumulatorProofOfKnowledge(p, accCommitment, witness, acc)
	if err != nil {
		return nil, err
	}
	if traits.pubKey {
		cs.pubKey = coin.PrivKey().PubKey().ToBytes()
	}

	hash := cs.SignatureHash()
	if traits.smallSoK {
		cs.serialNumberSoK = NewSerialNumberSoKSmall(p, coin, serialCommitment, hash)
	} else {
		cs.serialNumberSoK = NewSerialNumberSignatureOfKnowledge(p, coin, serialCommitment, hash)
	}
	if traits.pubKey {
		cs.signature = coin.PrivKey().Sign(hash[:]).Serialize()
	}
	if traits.limp {
		cs.pubcoinSig = NewPubcoinSignature(p, value, serialCommitment)
	}
	return cs, nil
}

// SignatureHash binds both commitments, both proofs and the spend metadata.
// The serial proof and the ECDSA signature both sign this hash.
func (cs *CoinSpend) SignatureHash() util.Hash {
	hw := util.NewHashWriter()
	hw.WriteBigNum(cs.serialCommitmentToCoinValue)
	hw.WriteBigNum(cs.accCommitmentToCoinValue)
	cs.commitmentPoK.Serialize(hw)
	cs.accumulatorPoK.Serialize(hw)
	hw.WriteHash(&cs.txOutHash)
	hw.WriteBigNum(cs.coinSerialNumber)
	hw.WriteHash(&cs.accChecksum)
	hw.WriteUint32(uint32(cs.denomination))
	if cs.version.traits().pubKey {
		hw.WriteUint8(uint8(cs.spendType))
	}
	return hw.GetHash()
}

func spendCoinVersion(v SpendVersion) int {
	if v.traits().pubKey {
		return PrivateCoinVersion2
	}
	return PrivateCoinVersion1
}

// Verify checks the spend against acc, stopping at the first failing
// proof. The reason is empty on success.
func (cs *CoinSpend) Verify(acc *Accumulator, verifySoK bool) (bool, string) {
	if !cs.version.IsValid() {
		return false, fmt.Sprintf("unsupported spend version %d", uint8(cs.version))
	}
	serialVersion := ExtractVersionFromSerial(cs.coinSerialNumber)
	if serialVersion == PrivateCoinVersion1 || cs.version == SpendV1 {
		if serialVersion != spendCoinVersion(cs.version) {
			return false, fmt.Sprintf("version does not match serial, serial=%d version=%d", serialVersion, cs.version)
		}
	}
	if acc.Denomination() != cs.denomination {
		return false, fmt.Sprintf("denominations do not match, accumulator %s spend %s", acc.Denomination(), cs.denomination)
	}
	if !cs.commitmentPoK.Verify(cs.serialCommitmentToCoinValue, cs.accCommitmentToCoinValue) {
		return false, "commitment proof of knowledge failed"
	}
	if !cs.accumulatorPoK.Verify(acc, cs.accCommitmentToCoinValue) {
		return false, "accumulator proof of knowledge failed"
	}
	if verifySoK {
		if !cs.serialNumberSoK.Verify(cs.coinSerialNumber, cs.serialCommitmentToCoinValue, cs.SignatureHash()) {
			return false, "serial number signature of knowledge failed"
		}
	}
	return true, ""
}

func (cs *CoinSpend) HasValidSerial() bool {
	return IsValidSerial(cs.params, cs.coinSerialNumber)
}

// HasValidSignature checks that the embedded key derives the serial and
// signed the spend. Version 1 spends carry no key and always pass.
func (cs *CoinSpend) HasValidSignature() bool {
	if !cs.version.IsValid() {
		return false
	}
	if !cs.version.traits().pubKey {
		return true
	}
	pub, err := crypto.ParsePubKey(cs.pubKey)
	if err != nil {
		return false
	}
	if GetAdjustedSerial(SerialFromPubKey(pub)).Cmp(GetAdjustedSerial(cs.coinSerialNumber)) != 0 {
		return false
	}
	hash := cs.SignatureHash()
	return crypto.VerifySignature(cs.pubKey, cs.signature, hash[:])
}

// VerifyPubcoinSignature checks the limp mode opening of the serial
// commitment. Spends before version 4 have none.
func (cs *CoinSpend) VerifyPubcoinSignature() bool {
	if cs.pubcoinSig == nil {
		return false
	}
	return cs.pubcoinSig.Verify(cs.serialCommitmentToCoinValue)
}

// GetPubcoinValue returns the pubcoin revealed by a version 4 spend.
func (cs *CoinSpend) GetPubcoinValue() (*big.Int, error) {
	if !cs.version.IsValid() || !cs.version.traits().limp || cs.pubcoinSig == nil {
		return nil, errors.Wrapf(errcode.New(errcode.ErrorUnsupportedVersion), "version %d reveals no pubcoin", cs.version)
	}
	return cs.pubcoinSig.PubcoinValue(), nil
}

// SoKItem packages the serial proof for batch verification.
func (cs *CoinSpend) SoKItem() SoKItem {
	return SoKItem{
		Proof:      cs.serialNumberSoK,
		Serial:     cs.coinSerialNumber,
		Commitment: cs.serialCommitmentToCoinValue,
		MsgHash:    cs.SignatureHash(),
	}
}

func (cs *CoinSpend) Version() SpendVersion {
	return cs.version
}

func (cs *CoinSpend) Denomination() Denomination {
	return cs.denomination
}

func (cs *CoinSpend) AccumulatorChecksum() util.Hash {
	return cs.accChecksum
}

func (cs *CoinSpend) TxOutHash() util.Hash {
	return cs.txOutHash
}

func (cs *CoinSpend) SpendType() SpendType {
	return cs.spendType
}

func (cs *CoinSpend) CoinSerialNumber() *big.Int {
	return cs.coinSerialNumber
}

func (cs *CoinSpend) SerialHash() util.Hash {
	return SerialHash(cs.coinSerialNumber)
}

func (cs *CoinSpend) SerialCommitment() *big.Int {
	return cs.serialCommitmentToCoinValue
}

func (cs *CoinSpend) AccCommitment() *big.Int {
	return cs.accCommitmentToCoinValue
}

func (cs *CoinSpend) PubKey() []byte {
	return cs.pubKey
}

func (cs *CoinSpend) Serialize(w io.Writer) error {
	if err := checkSpendVersion(cs.version); err != nil {
		return err
	}
	traits := cs.version.traits()
	if err := util.BinarySerializer.PutUint8(w, uint8(cs.version)); err != nil {
		return err
	}
	if err := util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(cs.denomination)); err != nil {
		return err
	}
	if _, err := cs.accChecksum.Serialize(w); err != nil {
		return err
	}
	if _, err := cs.txOutHash.Serialize(w); err != nil {
		return err
	}
	if err := writeBigNums(w, cs.accCommitmentToCoinValue, cs.serialCommitmentToCoinValue, cs.coinSerialNumber); err != nil {
		return err
	}
	if err := cs.commitmentPoK.Serialize(w); err != nil {
		return err
	}
	if err := cs.accumulatorPoK.Serialize(w); err != nil {
		return err
	}
	if err := cs.serialNumberSoK.Serialize(w); err != nil {
		return err
	}
	if traits.pubKey {
		if err := util.WriteVarBytes(w, cs.pubKey); err != nil {
			return err
		}
		if err := util.WriteVarBytes(w, cs.signature); err != nil {
			return err
		}
		if err := util.BinarySerializer.PutUint8(w, uint8(cs.spendType)); err != nil {
			return err
		}
	}
	if traits.limp {
		return cs.pubcoinSig.Serialize(w)
	}
	return nil
}

// Unserialize branches on the leading version byte before reading the
// version dependent fields.
func (cs *CoinSpend) Unserialize(r io.Reader, p *Params) error {
	cs.params = p
	version, err := util.BinarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	cs.version = SpendVersion(version)
	if err := checkSpendVersion(cs.version); err != nil {
		return err
	}
	traits := cs.version.traits()

	denom, err := util.BinarySerializer.Uint32(r, binary.LittleEndian)
	if err != nil {
		return err
	}
	cs.denomination = Denomination(denom)
	if _, err := cs.accChecksum.Unserialize(r); err != nil {
		return err
	}
	if _, err := cs.txOutHash.Unserialize(r); err != nil {
		return err
	}
	if err := readBigNums(r, &cs.accCommitmentToCoinValue, &cs.serialCommitmentToCoinValue, &cs.coinSerialNumber); err != nil {
		return err
	}

	cs.commitmentPoK = new(CommitmentProofOfKnowledge)
	if err := cs.commitmentPoK.Unserialize(r, &p.SerialNumberSoKCommitmentGroup, &p.AccumulatorParams.AccumulatorPoKCommitmentGroup); err != nil {
		return err
	}
	cs.accumulatorPoK = new(AccumulatorProofOfKnowledge)
	if err := cs.accumulatorPoK.Unserialize(r, p); err != nil {
		return err
	}
	if traits.smallSoK {
		sok := new(SerialNumberSoKSmall)
		if err := sok.Unserialize(r, p); err != nil {
			return err
		}
		cs.serialNumberSoK = sok
	} else {
		sok := new(SerialNumberSignatureOfKnowledge)
		if err := sok.Unserialize(r, p); err != nil {
			return err
		}
		cs.serialNumberSoK = sok
	}

	if traits.pubKey {
		if cs.pubKey, err = util.ReadVarBytes(r, maxSpendKeyBytes, "spend pubkey"); err != nil {
			return err
		}
		if cs.signature, err = util.ReadVarBytes(r, maxSpendKeyBytes, "spend signature"); err != nil {
			return err
		}
		spendType, err := util.BinarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		cs.spendType = SpendType(spendType)
	}
	if traits.limp {
		cs.pubcoinSig = new(PubcoinSignature)
		if err := cs.pubcoinSig.Unserialize(r, p); err != nil {
			return err
		}
	}
	return nil
}

func (cs *CoinSpend) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := cs.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseCoinSpend decodes a spend and rejects trailing bytes.
func ParseCoinSpend(p *Params, b []byte) (*CoinSpend, error) {
	r := bytes.NewReader(b)
	cs := new(CoinSpend)
	if err := cs.Unserialize(r, p); err != nil {
		return nil, errors.Wrap(errcode.New(errcode.ErrorMalformedSpend), err.Error())
	}
	if r.Len() != 0 {
		return nil, errors.Wrapf(errcode.New(errcode.ErrorMalformedSpend), "%d trailing bytes", r.Len())
	}
	return cs, nil
}
