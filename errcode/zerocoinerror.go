package errcode

import "fmt"

type ZerocoinErr int

const (
	ErrorInvalidDenomination ZerocoinErr = ZerocoinErrorBase + iota
	ErrorInvalidCoin
	ErrorDenominationMismatch
	ErrorUnsupportedVersion
	ErrorInvalidWitness
	ErrorInvalidSerial
	ErrorMissingPrivKey
	ErrorParamsNotInitialized
	ErrorMalformedSpend
	ErrorAccumulatorNotInitialized
	ErrorSerialAlreadySpent
	ErrorNotExistsInZerocoinMap
)

var ZerocoinErrString = map[ZerocoinErr]string{
	ErrorInvalidDenomination:       "invalid zerocoin denomination",
	ErrorInvalidCoin:               "public coin is not valid",
	ErrorDenominationMismatch:      "denomination does not match",
	ErrorUnsupportedVersion:        "unsupported coin spend version",
	ErrorInvalidWitness:            "accumulator witness does not verify",
	ErrorInvalidSerial:             "serial number out of range",
	ErrorMissingPrivKey:            "private coin has no signing key",
	ErrorParamsNotInitialized:      "zerocoin parameters are not initialized",
	ErrorMalformedSpend:            "malformed coin spend",
	ErrorAccumulatorNotInitialized: "accumulator is not initialized",
	ErrorSerialAlreadySpent:        "serial already recorded for another transaction",
}

func (ze ZerocoinErr) String() string {
	if s, ok := ZerocoinErrString[ze]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", ze)
}
