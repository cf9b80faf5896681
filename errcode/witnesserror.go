package errcode

import "fmt"

type WitnessErr int

const (
	ErrorMintNotFound WitnessErr = WitnessErrorBase + iota
	ErrorMintNotInChain
	ErrorInsufficientAccumulation
	ErrorWitnessVerifyFailed
	ErrorWitnessCheckpointMissing
	ErrorNotExistsInWitnessMap
)

var WitnessErrString = map[WitnessErr]string{
	ErrorMintNotFound:             "mint transaction not found",
	ErrorMintNotInChain:           "mint is not in the active chain",
	ErrorInsufficientAccumulation: "less than required mints added to the witness",
	ErrorWitnessVerifyFailed:      "witness does not verify against the checkpoint",
	ErrorWitnessCheckpointMissing: "no checkpoint at the requested height",
}

func (we WitnessErr) String() string {
	if s, ok := WitnessErrString[we]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", we)
}
