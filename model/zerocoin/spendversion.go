package zerocoin

import (
	"fmt"

	"github.com/copernet/zerocoin/errcode"
	"github.com/pkg/errors"
)

// SpendVersion tags the wire and proof layout of a CoinSpend.
type SpendVersion uint8

const (
	SpendV1 SpendVersion = 1
	SpendV2 SpendVersion = 2
	SpendV3 SpendVersion = 3
	SpendV4 SpendVersion = 4

	MaxSpendVersion = SpendV4
)

type spendTraits struct {
	pubKey   bool
	smallSoK bool
	limp     bool
}

// traits is the only place that maps a version to its behavior. Every
// version must be listed; reaching default is a programming error.
func (v SpendVersion) traits() spendTraits {
	switch v {
	case SpendV1:
		return spendTraits{}
	case SpendV2:
		return spendTraits{pubKey: true}
	case SpendV3:
		return spendTraits{pubKey: true, smallSoK: true}
	case SpendV4:
		return spendTraits{pubKey: true, smallSoK: true, limp: true}
	default:
		panic(fmt.Sprintf("unhandled spend version %d", uint8(v)))
	}
}

func (v SpendVersion) IsValid() bool {
	return v >= SpendV1 && v <= MaxSpendVersion
}

func (v SpendVersion) HasPubKey() bool {
	return v.traits().pubKey
}

func (v SpendVersion) HasSmallSoK() bool {
	return v.traits().smallSoK
}

func (v SpendVersion) IsLimpMode() bool {
	return v.traits().limp
}

func checkSpendVersion(v SpendVersion) error {
	if !v.IsValid() {
		return errors.Wrapf(errcode.New(errcode.ErrorUnsupportedVersion), "version %d", uint8(v))
	}
	return nil
}

// SpendType records what a spend is used for and is signed from version 2.
type SpendType uint8

const (
	SpendTypeSpend SpendType = iota
	SpendTypeStake
	SpendTypeMNCollateral
	SpendTypeSignMessage
)

var spendTypeStrings = map[SpendType]string{
	SpendTypeSpend:        "SPEND",
	SpendTypeStake:        "STAKE",
	SpendTypeMNCollateral: "MN_COLLATERAL",
	SpendTypeSignMessage:  "SIGN_MESSAGE",
}

func (t SpendType) String() string {
	if s, ok := spendTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown SpendType (%d)", uint8(t))
}
