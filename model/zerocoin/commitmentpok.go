package zerocoin

import (
	"io"
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const (
	CommitmentEqualityChallengeSize = 256
	CommitmentEqualitySecMargin     = 512
)

// CommitmentProofOfKnowledge proves two commitments in different groups
// open to the same integer.
type CommitmentProofOfKnowledge struct {
	ap, bp    *IntegerGroupParams
	S1        *big.Int
	S2        *big.Int
	S3        *big.Int
	Challenge *big.Int
}

func maxBits(values ...*big.Int) int {
	m := 0
	for _, v := range values {
		if v.BitLen() > m {
			m = v.BitLen()
		}
	}
	return m
}

func NewCommitmentProofOfKnowledge(ap, bp *IntegerGroupParams, a, b *Commitment) (*CommitmentProofOfKnowledge, error) {
	if a.Contents().Cmp(b.Contents()) != 0 {
		return nil, errors.New("commitments do not open to the same value")
	}

	randomSize := uint(maxBits(ap.GroupOrder, bp.GroupOrder) + CommitmentEqualitySecMargin + CommitmentEqualityChallengeSize)
	r1 := util.RandBigIntBits(randomSize)
	r2 := util.RandBigIntBits(randomSize)
	r3 := util.RandBigIntBits(randomSize)

	t1 := commit(ap, r1, r2)
	t2 := commit(bp, r1, r3)

	proof := &CommitmentProofOfKnowledge{ap: ap, bp: bp}
	c := proof.challenge(a.CommitmentValue(), b.CommitmentValue(), t1, t2)

	proof.S1 = new(big.Int).Add(r1, new(big.Int).Mul(a.Contents(), c))
	proof.S2 = new(big.Int).Add(r2, new(big.Int).Mul(a.Randomness(), c))
	proof.S3 = new(big.Int).Add(r3, new(big.Int).Mul(b.Randomness(), c))
	proof.Challenge = c
	return proof, nil
}

func (p *CommitmentProofOfKnowledge) challenge(a, b, t1, t2 *big.Int) *big.Int {
	hw := util.NewHashWriter()
	p.ap.Serialize(hw)
	p.bp.Serialize(hw)
	hw.WriteBigNum(a).WriteBigNum(b).WriteBigNum(t1).WriteBigNum(t2)
	h := hw.GetHash()
	return h.ToBigInt()
}

// Verify checks the proof against the two commitment values.
func (p *CommitmentProofOfKnowledge) Verify(a, b *big.Int) bool {
	for _, v := range []*big.Int{p.S1, p.S2, p.S3, p.Challenge} {
		if v == nil || v.Sign() < 0 {
			return false
		}
	}
	maxSize := 64 * (CommitmentEqualityChallengeSize + CommitmentEqualitySecMargin +
		maxBits(p.ap.Modulus, p.bp.Modulus, p.ap.GroupOrder, p.bp.GroupOrder))
	if maxBits(p.S1, p.S2, p.S3) > maxSize || p.Challenge.BitLen() > CommitmentEqualityChallengeSize {
		return false
	}
	if !inGroup(a, p.ap.Modulus) || !inGroup(b, p.bp.Modulus) {
		return false
	}

	negC := new(big.Int).Neg(p.Challenge)
	t1 := mulMod(powMod(a, negC, p.ap.Modulus), commit(p.ap, p.S1, p.S2), p.ap.Modulus)
	t2 := mulMod(powMod(b, negC, p.bp.Modulus), commit(p.bp, p.S1, p.S3), p.bp.Modulus)

	return p.challenge(a, b, t1, t2).Cmp(p.Challenge) == 0
}

func (p *CommitmentProofOfKnowledge) Serialize(w io.Writer) error {
	return writeBigNums(w, p.S1, p.S2, p.S3, p.Challenge)
}

func (p *CommitmentProofOfKnowledge) Unserialize(r io.Reader, ap, bp *IntegerGroupParams) error {
	p.ap, p.bp = ap, bp
	return readBigNums(r, &p.S1, &p.S2, &p.S3, &p.Challenge)
}

func writeBigNums(w io.Writer, values ...*big.Int) error {
	for _, v := range values {
		if v == nil {
			return errcode.New(errcode.ErrorMalformedSpend)
		}
		if err := util.WriteBigNum(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readBigNums(r io.Reader, values ...**big.Int) error {
	for _, v := range values {
		n, err := util.ReadBigNum(r)
		if err != nil {
			return err
		}
		*v = n
	}
	return nil
}
