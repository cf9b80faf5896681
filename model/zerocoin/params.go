package zerocoin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const (
	// AccumulatorBase is the starting value of every empty accumulator.
	AccumulatorBase = 961

	DefaultZKPIterations = 80
	KPrime               = 160
	KDPrime              = 128

	// MintPrimeParam is the Miller-Rabin round count for coin primality.
	MintPrimeParam = 20

	derivationPrimeRounds = 30
	maxGroupAttempts      = 1 << 20
)

// rsa2048 is the RSA Factoring Challenge modulus. Nobody knows its factors,
// so it serves as a trustless accumulator modulus.
const rsa2048 = "25195908475657893494027183240048398571429282126204032027777137836043662020707595556264018525880784406918290641249515082189298559149176184502808489120072844992687392807287776735971418347270261896375014971824691165077613379859095700097330459748808428401797429100642458691817195118746121515172654632282216869987549182422433637259085141865462043576798423387184774447920739934236584823824281198163815010674810451660377306056201619676256133844143603833904414952634432190114657544454178424020924616515723350778707749817125772467962926386356373289912154831438167899885040445364023527381951378636564391212010397122822120720357"

// IntegerGroupParams describes a prime order subgroup of Z*_modulus
// generated by both G and H.
type IntegerGroupParams struct {
	G          *big.Int
	H          *big.Int
	Modulus    *big.Int
	GroupOrder *big.Int
}

func (gp *IntegerGroupParams) Serialize(w io.Writer) error {
	for _, v := range []*big.Int{gp.G, gp.H, gp.Modulus, gp.GroupOrder} {
		if err := util.WriteBigNum(w, v); err != nil {
			return err
		}
	}
	return nil
}

// RandomElement returns a uniform exponent in [0, GroupOrder).
func (gp *IntegerGroupParams) RandomElement() *big.Int {
	return randBelow(gp.GroupOrder)
}

type AccumulatorAndProofParams struct {
	AccumulatorModulus *big.Int
	AccumulatorBase    *big.Int
	MinCoinValue       *big.Int
	MaxCoinValue       *big.Int

	// AccumulatorPoKCommitmentGroup commits to the coin inside the
	// membership proof. AccumulatorQRNCommitmentGroup lives in QR_N and
	// has unknown order, so its GroupOrder is nil.
	AccumulatorPoKCommitmentGroup IntegerGroupParams
	AccumulatorQRNCommitmentGroup IntegerGroupParams

	KPrime  uint
	KDPrime uint
}

// Params are the network wide zerocoin constants. Every field is derived
// deterministically from the accumulator modulus, so any node that knows N
// reproduces identical parameters.
type Params struct {
	CoinCommitmentGroup            IntegerGroupParams
	SerialNumberSoKCommitmentGroup IntegerGroupParams
	AccumulatorParams              AccumulatorAndProofParams
	ZKPIterations                  int

	hash util.Hash
}

// ParamSizes selects the bit lengths of the coin commitment group.
type ParamSizes struct {
	CoinModulusBits uint
	CoinOrderBits   uint
	ZKPIterations   int
}

var (
	MainNetSizes = ParamSizes{CoinModulusBits: 1024, CoinOrderBits: 256, ZKPIterations: DefaultZKPIterations}
	RegTestSizes = ParamSizes{CoinModulusBits: 512, CoinOrderBits: 256, ZKPIterations: DefaultZKPIterations}
)

// Hash commits to every parameter and is mixed into each Fiat-Shamir challenge.
func (p *Params) Hash() util.Hash {
	return p.hash
}

func (p *Params) Serialize(w io.Writer) error {
	if err := p.CoinCommitmentGroup.Serialize(w); err != nil {
		return err
	}
	if err := p.SerialNumberSoKCommitmentGroup.Serialize(w); err != nil {
		return err
	}
	ap := &p.AccumulatorParams
	for _, v := range []*big.Int{ap.AccumulatorModulus, ap.AccumulatorBase, ap.MinCoinValue, ap.MaxCoinValue} {
		if err := util.WriteBigNum(w, v); err != nil {
			return err
		}
	}
	if err := ap.AccumulatorPoKCommitmentGroup.Serialize(w); err != nil {
		return err
	}
	for _, v := range []*big.Int{ap.AccumulatorQRNCommitmentGroup.G, ap.AccumulatorQRNCommitmentGroup.H} {
		if err := util.WriteBigNum(w, v); err != nil {
			return err
		}
	}
	return util.BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(p.ZKPIterations))
}

// NewParams derives the full parameter set from the accumulator modulus.
func NewParams(modulus *big.Int, sizes ParamSizes) (*Params, error) {
	if modulus == nil || modulus.BitLen() < 1023 {
		return nil, errors.New("accumulator modulus must be at least 1023 bits")
	}
	if sizes.CoinOrderBits == 0 || sizes.CoinModulusBits <= sizes.CoinOrderBits+1 {
		return nil, errors.Errorf("invalid coin group sizes %d/%d", sizes.CoinModulusBits, sizes.CoinOrderBits)
	}

	p := &Params{ZKPIterations: sizes.ZKPIterations}
	if p.ZKPIterations <= 0 {
		p.ZKPIterations = DefaultZKPIterations
	}
	if p.ZKPIterations > 8*util.Hash256Size {
		return nil, errors.Errorf("at most %d proof iterations fit one challenge hash", 8*util.Hash256Size)
	}

	coinSeed := calculateSeed(modulus, "COIN_COMMITMENT_GROUP", sizes)
	coinGroup, err := deriveIntegerGroupParams(coinSeed, sizes.CoinModulusBits, sizes.CoinOrderBits)
	if err != nil {
		return nil, errors.Wrap(err, "derive coin commitment group")
	}
	p.CoinCommitmentGroup = *coinGroup

	serialGroup, err := deriveIntegerGroupFromOrder(coinGroup.Modulus)
	if err != nil {
		return nil, errors.Wrap(err, "derive serial number commitment group")
	}
	p.SerialNumberSoKCommitmentGroup = *serialGroup

	ap := &p.AccumulatorParams
	ap.AccumulatorModulus = new(big.Int).Set(modulus)
	ap.AccumulatorBase = big.NewInt(AccumulatorBase)
	ap.MaxCoinValue = new(big.Int).Set(coinGroup.Modulus)
	ap.MinCoinValue = pow2(uint(coinGroup.Modulus.BitLen()/2 + 3))
	ap.KPrime = KPrime
	ap.KDPrime = KDPrime

	pokSeed := calculateSeed(modulus, "ACCUMULATOR_INTERNAL_COMMITMENT_GROUP", sizes)
	pokGroup, err := deriveIntegerGroupParams(pokSeed, sizes.CoinOrderBits+300, sizes.CoinOrderBits+1)
	if err != nil {
		return nil, errors.Wrap(err, "derive accumulator PoK commitment group")
	}
	ap.AccumulatorPoKCommitmentGroup = *pokGroup

	qrnSeed := calculateSeed(modulus, "ACCUMULATOR_QRN_COMMITMENT_GROUP", sizes)
	ap.AccumulatorQRNCommitmentGroup = IntegerGroupParams{
		G:       deriveQRNElement(qrnSeed, "g", modulus),
		H:       deriveQRNElement(qrnSeed, "h", modulus),
		Modulus: ap.AccumulatorModulus,
	}

	hw := util.NewHashWriter()
	if err := p.Serialize(hw); err != nil {
		return nil, err
	}
	p.hash = hw.GetHash()
	return p, nil
}

func calculateSeed(modulus *big.Int, label string, sizes ParamSizes) util.Hash {
	hw := util.NewHashWriter()
	hw.WriteBigNum(modulus)
	hw.WriteBytes([]byte(label))
	hw.WriteUint32(uint32(sizes.CoinModulusBits)).WriteUint32(uint32(sizes.CoinOrderBits))
	return hw.GetHash()
}

// integerFromSeed expands seed into an integer of exactly bits bits.
func integerFromSeed(seed util.Hash, label string, counter uint32, bits uint) *big.Int {
	need := int(bits+7) / 8
	buf := make([]byte, 0, need+util.Hash256Size)
	for block := uint32(0); len(buf) < need; block++ {
		hw := util.NewHashWriter()
		hw.WriteHash(&seed)
		hw.WriteBytes([]byte(label))
		hw.WriteUint32(counter).WriteUint32(block)
		h := hw.GetHash()
		buf = append(buf, h[:]...)
	}
	n := new(big.Int).SetBytes(buf[:need])
	excess := uint(need*8) - bits
	n.Rsh(n, excess)
	n.SetBit(n, int(bits-1), 1)
	return n
}

func generatePrimeFromSeed(seed util.Hash, label string, bits uint) (*big.Int, error) {
	for counter := uint32(0); counter < maxGroupAttempts; counter++ {
		candidate := integerFromSeed(seed, label, counter, bits)
		candidate.SetBit(candidate, 0, 1)
		if candidate.ProbablyPrime(derivationPrimeRounds) {
			return candidate, nil
		}
	}
	return nil, errors.Errorf("no %d bit prime found for %s", bits, label)
}

func deriveIntegerGroupParams(seed util.Hash, pBits, qBits uint) (*IntegerGroupParams, error) {
	q, err := generatePrimeFromSeed(seed, "q", qBits)
	if err != nil {
		return nil, err
	}

	kBits := pBits - qBits - 1
	var modulus *big.Int
	for counter := uint32(0); counter < maxGroupAttempts; counter++ {
		k := integerFromSeed(seed, "p", counter, kBits)
		candidate := new(big.Int).Mul(k, q)
		candidate.Lsh(candidate, 1).Add(candidate, bigOne)
		if uint(candidate.BitLen()) != pBits {
			continue
		}
		if candidate.ProbablyPrime(derivationPrimeRounds) {
			modulus = candidate
			break
		}
	}
	if modulus == nil {
		return nil, errors.Errorf("no %d bit group modulus found", pBits)
	}

	return finishGroup(seed, modulus, q)
}

// deriveIntegerGroupFromOrder finds the smallest modulus 2*i*order+1 that is prime.
func deriveIntegerGroupFromOrder(order *big.Int) (*IntegerGroupParams, error) {
	for i := int64(1); i < maxGroupAttempts; i++ {
		candidate := new(big.Int).Mul(order, big.NewInt(2*i))
		candidate.Add(candidate, bigOne)
		if candidate.ProbablyPrime(derivationPrimeRounds) {
			hw := util.NewHashWriter()
			hw.WriteBigNum(order).WriteBigNum(candidate)
			return finishGroup(hw.GetHash(), candidate, order)
		}
	}
	return nil, errors.New("no group modulus found for order")
}

func finishGroup(seed util.Hash, modulus, order *big.Int) (*IntegerGroupParams, error) {
	g, err := deriveGenerator(seed, "g", modulus, order)
	if err != nil {
		return nil, err
	}
	h, err := deriveGenerator(seed, "h", modulus, order)
	if err != nil {
		return nil, err
	}
	return &IntegerGroupParams{G: g, H: h, Modulus: modulus, GroupOrder: order}, nil
}

// deriveGenerator maps seed material into the order-q subgroup.
func deriveGenerator(seed util.Hash, label string, modulus, order *big.Int) (*big.Int, error) {
	cofactor := new(big.Int).Sub(modulus, bigOne)
	cofactor.Div(cofactor, order)
	for counter := uint32(0); counter < maxGroupAttempts; counter++ {
		base := integerFromSeed(seed, label, counter, uint(modulus.BitLen()))
		base.Mod(base, modulus)
		if base.Cmp(bigTwo) < 0 {
			continue
		}
		g := new(big.Int).Exp(base, cofactor, modulus)
		if g.Cmp(bigOne) != 0 {
			return g, nil
		}
	}
	return nil, errors.Errorf("no generator found for %s", label)
}

func deriveQRNElement(seed util.Hash, label string, modulus *big.Int) *big.Int {
	base := integerFromSeed(seed, label, 0, uint(modulus.BitLen()))
	base.Mod(base, modulus)
	return base.Exp(base, bigTwo, modulus)
}

// Validate checks the algebraic structure that every proof depends on.
func (p *Params) Validate() error {
	groups := map[string]*IntegerGroupParams{
		"coin":   &p.CoinCommitmentGroup,
		"serial": &p.SerialNumberSoKCommitmentGroup,
		"pok":    &p.AccumulatorParams.AccumulatorPoKCommitmentGroup,
	}
	for name, gp := range groups {
		for _, gen := range []*big.Int{gp.G, gp.H} {
			if new(big.Int).Exp(gen, gp.GroupOrder, gp.Modulus).Cmp(bigOne) != 0 {
				return errors.Errorf("%s group generator does not have the group order", name)
			}
		}
	}
	if p.SerialNumberSoKCommitmentGroup.GroupOrder.Cmp(p.CoinCommitmentGroup.Modulus) != 0 {
		return errors.New("serial group order must equal the coin group modulus")
	}
	return nil
}

var (
	mainNetOnce   sync.Once
	mainNetParams *Params
	mainNetErr    error

	regTestOnce   sync.Once
	regTestParams *Params
	regTestErr    error
)

// MainNetParams derives the production parameters from RSA-2048 once.
func MainNetParams() (*Params, error) {
	mainNetOnce.Do(func() {
		n, _ := new(big.Int).SetString(rsa2048, 10)
		mainNetParams, mainNetErr = NewParams(n, MainNetSizes)
	})
	return mainNetParams, mainNetErr
}

// RegTestParams uses a 1024 bit modulus built from seeded primes. Its
// factors can be recomputed by anyone, so it is only fit for regtest.
func RegTestParams() (*Params, error) {
	regTestOnce.Do(func() {
		seed := util.DoubleSha256Hash([]byte("zerocoin regtest accumulator modulus"))
		p1, err := generatePrimeFromSeed(seed, "p1", 512)
		if err != nil {
			regTestErr = err
			return
		}
		p2, err := generatePrimeFromSeed(seed, "p2", 512)
		if err != nil {
			regTestErr = err
			return
		}
		regTestParams, regTestErr = NewParams(new(big.Int).Mul(p1, p2), RegTestSizes)
	})
	return regTestParams, regTestErr
}

// ParamsForNetwork resolves the configured parameter set name.
func ParamsForNetwork(name string) (*Params, error) {
	switch name {
	case "main", "test", "":
		return MainNetParams()
	case "regtest":
		return RegTestParams()
	default:
		return nil, fmt.Errorf("unknown zerocoin parameter set %q", name)
	}
}
