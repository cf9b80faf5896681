package errcode

import "fmt"

type ScriptErr int

const (
	ScriptErrBadOpCode ScriptErr = ScriptErrorBase + iota
	ScriptErrPushSize
	ScriptErrScriptSize
	ScriptErrNotZerocoin
	ErrorNotExistsInScriptMap
)

var ScriptErrString = map[ScriptErr]string{
	ScriptErrBadOpCode:   "opcode missing or not understood",
	ScriptErrPushSize:    "push value size limit exceeded",
	ScriptErrScriptSize:  "script is too big",
	ScriptErrNotZerocoin: "script is not a zerocoin mint or spend",
}

func (se ScriptErr) String() string {
	if s, ok := ScriptErrString[se]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", se)
}
