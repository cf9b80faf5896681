package errcode

import (
	"strconv"
	"testing"
)

func TestZerocoinErr_String(t *testing.T) {
	tests := []struct {
		in   ZerocoinErr
		want string
	}{
		{ErrorInvalidDenomination, "invalid zerocoin denomination"},
		{ErrorInvalidCoin, "public coin is not valid"},
		{ErrorDenominationMismatch, "denomination does not match"},
		{ErrorUnsupportedVersion, "unsupported coin spend version"},
		{ErrorInvalidWitness, "accumulator witness does not verify"},
		{ErrorInvalidSerial, "serial number out of range"},
		{ErrorMissingPrivKey, "private coin has no signing key"},
		{ErrorParamsNotInitialized, "zerocoin parameters are not initialized"},
		{ErrorMalformedSpend, "malformed coin spend"},
		{ErrorAccumulatorNotInitialized, "accumulator is not initialized"},
		{ErrorSerialAlreadySpent, "serial already recorded for another transaction"},
		{ErrorNotExistsInZerocoinMap, "Unknown code (" + strconv.Itoa(int(ErrorNotExistsInZerocoinMap)) + ")"},
	}

	if len(tests)-1 != int(ErrorNotExistsInZerocoinMap)-int(ErrorInvalidDenomination) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		if result := test.in.String(); result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
		}
	}
}

func TestWitnessErr_String(t *testing.T) {
	tests := []struct {
		in   WitnessErr
		want string
	}{
		{ErrorMintNotFound, "mint transaction not found"},
		{ErrorMintNotInChain, "mint is not in the active chain"},
		{ErrorInsufficientAccumulation, "less than required mints added to the witness"},
		{ErrorWitnessVerifyFailed, "witness does not verify against the checkpoint"},
		{ErrorWitnessCheckpointMissing, "no checkpoint at the requested height"},
		{ErrorNotExistsInWitnessMap, "Unknown code (" + strconv.Itoa(int(ErrorNotExistsInWitnessMap)) + ")"},
	}

	if len(tests)-1 != int(ErrorNotExistsInWitnessMap)-int(ErrorMintNotFound) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		if result := test.in.String(); result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
		}
	}
}

func TestCheckpointErr_String(t *testing.T) {
	tests := []struct {
		in   CheckpointErr
		want string
	}{
		{ErrorChecksumNotFound, "accumulator checksum not found"},
		{ErrorCheckpointMismatch, "accumulator checkpoint mismatch"},
		{ErrorCheckpointOffBoundary, "checkpoint changed off a 10 block boundary"},
		{ErrorValidationDisabled, "zerocoin validation disabled, missing accumulator values"},
		{ErrorNotExistsInCheckpointMap, "Unknown code (" + strconv.Itoa(int(ErrorNotExistsInCheckpointMap)) + ")"},
	}

	if len(tests)-1 != int(ErrorNotExistsInCheckpointMap)-int(ErrorChecksumNotFound) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		if result := test.in.String(); result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
		}
	}
}
