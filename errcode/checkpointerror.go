package errcode

import "fmt"

type CheckpointErr int

const (
	ErrorChecksumNotFound CheckpointErr = CheckpointErrorBase + iota
	ErrorCheckpointMismatch
	ErrorCheckpointOffBoundary
	ErrorValidationDisabled
	ErrorNotExistsInCheckpointMap
)

var CheckpointErrString = map[CheckpointErr]string{
	ErrorChecksumNotFound:      "accumulator checksum not found",
	ErrorCheckpointMismatch:    "accumulator checkpoint mismatch",
	ErrorCheckpointOffBoundary: "checkpoint changed off a 10 block boundary",
	ErrorValidationDisabled:    "zerocoin validation disabled, missing accumulator values",
}

func (ce CheckpointErr) String() string {
	if s, ok := CheckpointErrString[ce]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", ce)
}
