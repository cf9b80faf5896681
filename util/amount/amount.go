package amount

import "fmt"

type Amount int64

const (
	COIN     Amount = 100000000
	CENT     Amount = 1000000
	MaxMoney Amount = 21000000000 * COIN
)

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%08d", sign, v/int64(COIN), v%int64(COIN))
}

func (a Amount) ToCoins() float64 {
	return float64(a) / float64(COIN)
}

func MoneyRange(a Amount) bool {
	return a >= 0 && a <= MaxMoney
}
