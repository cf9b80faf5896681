package mempool

import (
	"sync"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/util"
	"github.com/google/btree"
	"github.com/pkg/errors"
)

// TxMempool holds unconfirmed transactions. Besides the tx map it keeps
// the serial index that lets admission reject a second spend of a serial
// before any block confirms the first.
type TxMempool struct {
	sync.RWMutex
	poolData     map[util.Hash]*TxEntry
	serials      map[util.Hash]util.Hash // serial hash : txid
	timeSortData *btree.BTree
}

func NewTxMempool() *TxMempool {
	t := &TxMempool{}
	t.poolData = make(map[util.Hash]*TxEntry)
	t.serials = make(map[util.Hash]util.Hash)
	t.timeSortData = btree.New(32)
	return t
}

// AddTx admits txn spending serials. It fails when the tx is already
// pooled or when any serial is already claimed, including twice by txn itself.
func (m *TxMempool) AddTx(txn *tx.Tx, serials []util.Hash, acceptTime int64) error {
	m.Lock()
	defer m.Unlock()

	txid := txn.GetHash()
	if _, ok := m.poolData[txid]; ok {
		return errcode.New(errcode.AlreadHaveTx)
	}
	seen := make(map[util.Hash]struct{}, len(serials))
	for _, s := range serials {
		if other, ok := m.serials[s]; ok {
			log.Print("mempool", "debug", "serial %s already spent by mempool tx %s", s.String(), other.String())
			return errors.Wrapf(errcode.New(errcode.SerialInMempool), "serial %s", s.String())
		}
		if _, ok := seen[s]; ok {
			return errors.Wrapf(errcode.New(errcode.SerialInMempool), "serial %s repeated in tx", s.String())
		}
		seen[s] = struct{}{}
	}

	entry := NewTxEntry(txn, serials, acceptTime)
	m.poolData[txid] = entry
	for _, s := range serials {
		m.serials[s] = txid
	}
	m.timeSortData.ReplaceOrInsert(entry)
	return nil
}

func (m *TxMempool) removeEntry(entry *TxEntry) {
	delete(m.poolData, entry.Tx.GetHash())
	for _, s := range entry.Serials {
		delete(m.serials, s)
	}
	m.timeSortData.Delete(entry)
}

func (m *TxMempool) RemoveTx(txid util.Hash) error {
	m.Lock()
	defer m.Unlock()

	entry, ok := m.poolData[txid]
	if !ok {
		return errcode.New(errcode.TxNotInMempool)
	}
	m.removeEntry(entry)
	return nil
}

// RemoveConflicts drops the pooled txs claiming any of serials, which a
// connected block has just confirmed. It returns the removed txids.
func (m *TxMempool) RemoveConflicts(serials []util.Hash) []util.Hash {
	m.Lock()
	defer m.Unlock()

	removed := make([]util.Hash, 0)
	for _, s := range serials {
		txid, ok := m.serials[s]
		if !ok {
			continue
		}
		if entry, ok := m.poolData[txid]; ok {
			m.removeEntry(entry)
			removed = append(removed, txid)
		}
	}
	return removed
}

func (m *TxMempool) HasSerial(serialHash util.Hash) bool {
	m.RLock()
	defer m.RUnlock()

	_, ok := m.serials[serialHash]
	return ok
}

// GetSerialSpender returns the pooled tx spending serialHash.
func (m *TxMempool) GetSerialSpender(serialHash util.Hash) (util.Hash, bool) {
	m.RLock()
	defer m.RUnlock()

	txid, ok := m.serials[serialHash]
	return txid, ok
}

func (m *TxMempool) FindTx(txid util.Hash) *tx.Tx {
	m.RLock()
	defer m.RUnlock()

	if entry, ok := m.poolData[txid]; ok {
		return entry.Tx
	}
	return nil
}

// Expire removes every entry accepted before the given time and returns how many went.
func (m *TxMempool) Expire(before int64) int {
	m.Lock()
	defer m.Unlock()

	expired := make([]*TxEntry, 0)
	m.timeSortData.Ascend(func(i btree.Item) bool {
		entry := i.(*TxEntry)
		if entry.time >= before {
			return false
		}
		expired = append(expired, entry)
		return true
	})
	for _, entry := range expired {
		m.removeEntry(entry)
	}
	if len(expired) > 0 {
		log.Print("mempool", "info", "mempool expired %d txs accepted before %d", len(expired), before)
	}
	return len(expired)
}

func (m *TxMempool) Size() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.poolData)
}
