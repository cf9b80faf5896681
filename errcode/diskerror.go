package errcode

import (
	"fmt"
)

type DiskErr int

const (
	ErrorOpenDatabase DiskErr = DiskErrorBase + iota
	ErrorFailedToWriteToZerocoinDatabase
	ErrorFailedToWriteWitnessCache
	FailedToReadBlock
	FailedToReadTransaction
	ErrorNotExistsInDiskMap
)

var DiskErrString = map[DiskErr]string{
	ErrorOpenDatabase:                    "ErrorOpenDatabase",
	ErrorFailedToWriteToZerocoinDatabase: "ErrorFailedToWriteToZerocoinDatabase",
	ErrorFailedToWriteWitnessCache:       "ErrorFailedToWriteWitnessCache",
	FailedToReadBlock:                    "FailedToReadBlock",
	FailedToReadTransaction:              "FailedToReadTransaction",
}

func (de DiskErr) String() string {
	if s, ok := DiskErrString[de]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", de)
}
