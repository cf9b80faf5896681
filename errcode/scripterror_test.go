package errcode

import (
	"strconv"
	"testing"
)

func TestScriptErr_String(t *testing.T) {
	tests := []struct {
		in   ScriptErr
		want string
	}{
		{ScriptErrBadOpCode, "opcode missing or not understood"},
		{ScriptErrPushSize, "push value size limit exceeded"},
		{ScriptErrScriptSize, "script is too big"},
		{ScriptErrNotZerocoin, "script is not a zerocoin mint or spend"},
		{ErrorNotExistsInScriptMap, "Unknown code (" + strconv.Itoa(int(ErrorNotExistsInScriptMap)) + ")"},
	}

	if len(tests)-1 != int(ErrorNotExistsInScriptMap)-int(ScriptErrBadOpCode) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		if result := test.in.String(); result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result, test.want)
		}
	}
}
