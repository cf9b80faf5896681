package zerocoin

import (
	"fmt"

	"github.com/copernet/zerocoin/util/amount"
)

// Denomination is the face value bucket of a zerocoin, in whole coins.
type Denomination int

const (
	ZQError        Denomination = 0
	ZQOne          Denomination = 1
	ZQFive         Denomination = 5
	ZQTen          Denomination = 10
	ZQFifty        Denomination = 50
	ZQOneHundred   Denomination = 100
	ZQFiveHundred  Denomination = 500
	ZQOneThousand  Denomination = 1000
	ZQFiveThousand Denomination = 5000
)

// Denominations lists every valid denomination in ascending order.
var Denominations = []Denomination{
	ZQOne, ZQFive, ZQTen, ZQFifty, ZQOneHundred, ZQFiveHundred, ZQOneThousand, ZQFiveThousand,
}

var denominationStrings = map[Denomination]string{
	ZQError:        "ZQ_ERROR",
	ZQOne:          "ZQ_ONE",
	ZQFive:         "ZQ_FIVE",
	ZQTen:          "ZQ_TEN",
	ZQFifty:        "ZQ_FIFTY",
	ZQOneHundred:   "ZQ_ONE_HUNDRED",
	ZQFiveHundred:  "ZQ_FIVE_HUNDRED",
	ZQOneThousand:  "ZQ_ONE_THOUSAND",
	ZQFiveThousand: "ZQ_FIVE_THOUSAND",
}

func (d Denomination) String() string {
	if s, ok := denominationStrings[d]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Denomination (%d)", int(d))
}

func (d Denomination) IsValid() bool {
	return d != ZQError && DenominationFromInt(int64(d)) != ZQError
}

// DenominationFromInt maps a whole coin count to its denomination.
func DenominationFromInt(v int64) Denomination {
	for _, d := range Denominations {
		if int64(d) == v {
			return d
		}
	}
	return ZQError
}

// AmountToDenomination maps an exact face value to a denomination. Amounts
// that are not a whole multiple of COIN map to ZQError.
func AmountToDenomination(a amount.Amount) Denomination {
	if a <= 0 || a%amount.COIN != 0 {
		return ZQError
	}
	return DenominationFromInt(int64(a / amount.COIN))
}

// DenominationToAmount returns the face value, 0 for ZQError.
func DenominationToAmount(d Denomination) amount.Amount {
	if !d.IsValid() {
		return 0
	}
	return amount.Amount(d) * amount.COIN
}
