package errcode

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	MempoolErrorBase = iota * 1000
	ZerocoinErrorBase
	WitnessErrorBase
	CheckpointErrorBase
	DiskErrorBase
	ScriptErrorBase
)

type ProjectError struct {
	Module string
	Code   int
	Desc   string
}

func (e ProjectError) Error() string {
	return fmt.Sprintf("module: %s, global errcode: %v,  desc: %s", e.Module, e.Code, e.Desc)
}

func getCodeAndName(errCode fmt.Stringer) (int, string) {
	code := 0
	name := ""

	switch t := errCode.(type) {
	case MemPoolErr:
		code = int(t)
		name = "mempool"
	case ZerocoinErr:
		code = int(t)
		name = "zerocoin"
	case WitnessErr:
		code = int(t)
		name = "witness"
	case CheckpointErr:
		code = int(t)
		name = "checkpoint"
	case DiskErr:
		code = int(t)
		name = "disk"
	case ScriptErr:
		code = int(t)
		name = "script"
	case RejectCode:
		code = int(t)
		name = "reject"
	default:
	}

	return code, name
}

// IsErrorCode reports whether err, or the error it wraps, carries errCode.
func IsErrorCode(err error, errCode fmt.Stringer) bool {
	e, ok := errors.Cause(err).(ProjectError)
	icode, name := getCodeAndName(errCode)
	return ok && icode == e.Code && name == e.Module
}

func New(errCode fmt.Stringer) error {
	code, name := getCodeAndName(errCode)

	return ProjectError{
		Module: name,
		Code:   code,
		Desc:   errCode.String(),
	}
}
