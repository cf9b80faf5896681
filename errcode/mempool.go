package errcode

import (
	"fmt"
)

type MemPoolErr int

const (
	AlreadHaveTx MemPoolErr = MempoolErrorBase + iota
	SerialInMempool
	TxNotInMempool
	ErrorNotExistsInMemMap
)

var merrToString = map[MemPoolErr]string{
	AlreadHaveTx:    "the transaction already in mempool",
	SerialInMempool: "zerocoin serial already spent by a mempool transaction",
	TxNotInMempool:  "the transaction is not in mempool",
}

func (me MemPoolErr) String() string {
	if s, ok := merrToString[me]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", me)
}
