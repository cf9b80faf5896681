package errcode

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRejectCodeString(t *testing.T) {
	tests := []struct {
		in   RejectCode
		want string
	}{
		{RejectMalformed, "REJECT_MALFORMED"},
		{RejectInvalid, "REJECT_INVALID"},
		{RejectDuplicate, "REJECT_DUPLICATE"},
		{RejectCheckpoint, "REJECT_CHECKPOINT"},
		{2, "Unknown RejectCode (2)"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, test.in.String())
	}
}

func TestRejectError(t *testing.T) {
	err := errors.Wrap(NewReject(RejectDuplicate, 100, "zerocoin serial already spent"), "block 12")

	code, reason, ok := HasRejectCode(err)
	assert.True(t, ok)
	assert.Equal(t, RejectDuplicate, code)
	assert.Equal(t, "zerocoin serial already spent", reason)
	assert.Equal(t, 100, RejectDoS(err))
	assert.Contains(t, err.Error(), "REJECT_DUPLICATE: zerocoin serial already spent")

	_, _, ok = HasRejectCode(New(ErrorChecksumNotFound))
	assert.False(t, ok)
	assert.Equal(t, 0, RejectDoS(errors.New("disk full")))
}
