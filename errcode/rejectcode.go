package errcode

import (
	"fmt"

	"github.com/pkg/errors"
)

// RejectCode is the BIP-61 code attached to a rejected zerocoin
// transaction or block.
type RejectCode uint8

const (
	RejectMalformed  RejectCode = 0x01
	RejectInvalid    RejectCode = 0x10
	RejectDuplicate  RejectCode = 0x12
	RejectCheckpoint RejectCode = 0x43
)

var rejectCodeStrings = map[RejectCode]string{
	RejectMalformed:  "REJECT_MALFORMED",
	RejectInvalid:    "REJECT_INVALID",
	RejectDuplicate:  "REJECT_DUPLICATE",
	RejectCheckpoint: "REJECT_CHECKPOINT",
}

func (code RejectCode) String() string {
	if s, ok := rejectCodeStrings[code]; ok {
		return s
	}

	return fmt.Sprintf("Unknown RejectCode (%d)", uint8(code))
}

// RejectError is a protocol-level rejection of a transaction or block.
// Callers turn it into a reject message; it never indicates a node fault.
type RejectError struct {
	Code   RejectCode
	Reason string
	DoS    int
}

func (e RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func NewReject(code RejectCode, dos int, reason string) error {
	return RejectError{Code: code, Reason: reason, DoS: dos}
}

// HasRejectCode extracts the reject code from err if it is a RejectError.
func HasRejectCode(err error) (RejectCode, string, bool) {
	if e, ok := errors.Cause(err).(RejectError); ok {
		return e.Code, e.Reason, true
	}
	return 0, "", false
}

// RejectDoS returns the ban score of a rejection, or 0 for other errors.
func RejectDoS(err error) int {
	if e, ok := errors.Cause(err).(RejectError); ok {
		return e.DoS
	}
	return 0
}
