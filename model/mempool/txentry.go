package mempool

import (
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/util"
	"github.com/google/btree"
)

// TxEntry is a pending transaction together with the zerocoin serials it spends.
type TxEntry struct {
	Tx      *tx.Tx
	Serials []util.Hash
	time    int64
}

func NewTxEntry(tx *tx.Tx, serials []util.Hash, acceptTime int64) *TxEntry {
	return &TxEntry{
		Tx:      tx,
		Serials: append([]util.Hash(nil), serials...),
		time:    acceptTime,
	}
}

func (t *TxEntry) GetTime() int64 {
	return t.time
}

func (t *TxEntry) Less(than btree.Item) bool {
	th := than.(*TxEntry)
	if t.time == th.time {
		thash := t.Tx.GetHash()
		thhash := th.Tx.GetHash()
		return thash.Cmp(&thhash) > 0
	}
	return t.time < th.time
}
