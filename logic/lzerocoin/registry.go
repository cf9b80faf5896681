package lzerocoin

import (
	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/persist/zerocoindb"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// Registry records which transaction spent each serial and which minted
// each pubcoin. Entries can outlive a reorg, so confirmation is checked
// against the active chain separately.
type Registry struct {
	db *zerocoindb.ZerocoinDB
}

func NewRegistry(zdb *zerocoindb.ZerocoinDB) *Registry {
	return &Registry{db: zdb}
}

// RecordSpend stores serialHash -> txid. Recording the same pair twice is
// fine; a different txid for a known serial is refused.
func (r *Registry) RecordSpend(serialHash, txid util.Hash) error {
	known, ok, err := r.db.ReadCoinSpend(&serialHash)
	if err != nil {
		return err
	}
	if ok && known != txid {
		return errors.Wrapf(errcode.New(errcode.ErrorSerialAlreadySpent),
			"serial %s spent by %s", serialHash.String(), known.String())
	}
	return r.db.WriteCoinSpendBatch([]zerocoindb.SpendRecord{{SerialHash: serialHash, TxID: txid}})
}

func (r *Registry) RecordMint(pubcoinHash, txid util.Hash) error {
	return r.db.WriteCoinMintBatch([]zerocoindb.MintRecord{{PubcoinHash: pubcoinHash, TxID: txid}})
}

// RecordBlock stores the mints and spends of a connected block in one
// write. The double spend checks already ran, so a spend recorded by a
// transaction that left the active chain is replaced.
func (r *Registry) RecordBlock(records *zerocoindb.BlockRecords) error {
	for _, s := range records.Spends {
		known, prev, err := r.IsSerialKnown(s.SerialHash)
		if err != nil {
			return err
		}
		if known && prev != s.TxID {
			log.Print("zerocoin", "debug", "replacing stale spend of serial %s by %s",
				s.SerialHash.String(), prev.String())
		}
	}
	return r.db.WriteBlockRecords(records)
}

// RecordPubcoinSpend stores the pubcoin revealed by a limp mode spend.
func (r *Registry) RecordPubcoinSpend(pubcoinHash, txid, blockHash util.Hash) error {
	return r.db.WritePubcoinSpendBatch([]zerocoindb.PubcoinSpendRecord{
		{PubcoinHash: pubcoinHash, TxID: txid, BlockHash: blockHash},
	})
}

// EraseSpend succeeds when the record is already gone.
func (r *Registry) EraseSpend(serialHash util.Hash) error {
	return r.db.EraseCoinSpend(&serialHash)
}

func (r *Registry) EraseMint(pubcoinHash util.Hash) error {
	return r.db.EraseCoinMint(&pubcoinHash)
}

func (r *Registry) ErasePubcoinSpend(pubcoinHash util.Hash) error {
	return r.db.ErasePubcoinSpend(&pubcoinHash)
}

// IsSerialKnown reports whether any transaction, confirmed or not, was recorded for serialHash.
func (r *Registry) IsSerialKnown(serialHash util.Hash) (bool, util.Hash, error) {
	txid, ok, err := r.db.ReadCoinSpend(&serialHash)
	return ok, txid, err
}

// IsSerialInChain reports whether the recorded spender of serialHash sits
// in a block of the active chain. The caller holds the chain lock.
func (r *Registry) IsSerialInChain(serialHash util.Hash, c *chain.Chain, txs chain.TxReader) (bool, util.Hash, error) {
	ok, txid, err := r.IsSerialKnown(serialHash)
	if err != nil || !ok {
		return false, txid, err
	}
	return r.isTxInChain(txid, c, txs), txid, nil
}

func (r *Registry) GetMintTx(pubcoinHash util.Hash) (util.Hash, bool, error) {
	return r.db.ReadCoinMint(&pubcoinHash)
}

// IsPubcoinInBlockchain reports whether the mint of pubcoinHash is confirmed
// on the active chain and returns its txid.
func (r *Registry) IsPubcoinInBlockchain(pubcoinHash util.Hash, c *chain.Chain, txs chain.TxReader) (bool, util.Hash, error) {
	txid, ok, err := r.GetMintTx(pubcoinHash)
	if err != nil || !ok {
		return false, txid, err
	}
	return r.isTxInChain(txid, c, txs), txid, nil
}

// IsPubcoinSpendInChain reports whether a limp mode spend of pubcoinHash is
// recorded in a block of the active chain.
func (r *Registry) IsPubcoinSpendInChain(pubcoinHash util.Hash, c *chain.Chain) (bool, error) {
	rec, err := r.db.ReadPubcoinSpend(&pubcoinHash)
	if err != nil || rec == nil {
		return false, err
	}
	return c.FindHashInActive(rec.BlockHash) != nil, nil
}

func (r *Registry) isTxInChain(txid util.Hash, c *chain.Chain, txs chain.TxReader) bool {
	_, blockHash, err := txs.GetTransaction(txid)
	if err != nil {
		log.Debug("registry tx %s not found: %v", txid.String(), err)
		return false
	}
	return c.FindHashInActive(blockHash) != nil
}
