package lzerocoin

import (
	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/zerocoindb"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// blockSpend is a verified spend waiting to be recorded.
type blockSpend struct {
	spend *zerocoin.CoinSpend
	txid  util.Hash
}

// ConnectBlockZerocoin validates the mints and spends of bl, which is about
// to become the child of the active tip, and records them in the registry.
// Serial proofs of the whole block are verified as one batch. Mempool
// transactions that spend the same serials are evicted. On success
// bi.MintDenominations lists the block's mints.
func ConnectBlockZerocoin(sc *SpendContext, bl *block.Block, bi *blockindex.BlockIndex, batch zerocoin.BatchConfig) error {
	blockHash := bl.GetHash()

	mints, err := BlockToZerocoinMintList(sc.Params, bl)
	if err != nil {
		log.Debug("ConnectBlockZerocoin: block %s: %v", blockHash.String(), err)
		return errcode.NewReject(errcode.RejectInvalid, dosBanScore, "invalid zerocoin mint output")
	}
	seenPubcoins := make(map[util.Hash]struct{}, len(mints))
	for _, m := range mints {
		if err := ContextualCheckZerocoinMint(sc, m.TxID, m.Coin); err != nil {
			return err
		}
		ph := m.Coin.Hash()
		if _, ok := seenPubcoins[ph]; ok {
			return errcode.NewReject(errcode.RejectDuplicate, dosBanScore, "pubcoin minted twice in block")
		}
		seenPubcoins[ph] = struct{}{}
	}

	// the block wins against the mempool, so pending spends are not conflicts here
	blockCtx := *sc
	blockCtx.Mempool = nil

	spends := make([]blockSpend, 0)
	seenSerials := make(map[util.Hash]struct{})
	for _, txn := range bl.Txs {
		if !txn.IsZerocoinSpend() {
			continue
		}
		txSpends, err := CheckZerocoinSpendTx(sc.Params, txn)
		if err != nil {
			return err
		}
		txid := txn.GetHash()
		for _, spend := range txSpends {
			sh := spend.SerialHash()
			if _, ok := seenSerials[sh]; ok {
				recordDoubleSpend()
				return errcode.NewReject(errcode.RejectDuplicate, dosBanScore, "zerocoin serial spent twice in block")
			}
			seenSerials[sh] = struct{}{}
			if err := ContextualCheckZerocoinSpend(&blockCtx, txid, spend, false); err != nil {
				return err
			}
			spends = append(spends, blockSpend{spend: spend, txid: txid})
		}
	}

	if len(spends) > 0 {
		items := make([]zerocoin.SoKItem, len(spends))
		for i := range spends {
			items[i] = spends[i].spend.SoKItem()
		}
		ok := zerocoin.BatchVerifySoK(items, batch)
		recordBatchVerify(ok)
		if !ok {
			return errcode.NewReject(errcode.RejectInvalid, dosBanScore, "serial number signature of knowledge failed")
		}
	}

	records := &zerocoindb.BlockRecords{
		Mints:  make([]zerocoindb.MintRecord, len(mints)),
		Spends: make([]zerocoindb.SpendRecord, len(spends)),
	}
	for i, m := range mints {
		records.Mints[i] = zerocoindb.MintRecord{PubcoinHash: m.Coin.Hash(), TxID: m.TxID}
	}
	serials := make([]util.Hash, len(spends))
	for i, s := range spends {
		serials[i] = s.spend.SerialHash()
		records.Spends[i] = zerocoindb.SpendRecord{SerialHash: serials[i], TxID: s.txid}
		if s.spend.Version().IsLimpMode() {
			value, err := s.spend.GetPubcoinValue()
			if err != nil {
				return err
			}
			records.PubcoinSpends = append(records.PubcoinSpends, zerocoindb.PubcoinSpendRecord{
				PubcoinHash: zerocoin.PubcoinHash(value),
				TxID:        s.txid,
				BlockHash:   blockHash,
			})
		}
	}
	if err := sc.Registry.RecordBlock(records); err != nil {
		return errors.Wrapf(err, "record zerocoin entries of block %s", blockHash.String())
	}

	if sc.Mempool != nil && len(serials) > 0 {
		for _, evicted := range sc.Mempool.RemoveConflicts(serials) {
			log.Print("zerocoin", "info", "evicted mempool tx %s spending a serial confirmed in block %s",
				evicted.String(), blockHash.String())
		}
	}

	if bi != nil {
		coins := make([]*zerocoin.PublicCoin, len(mints))
		for i := range mints {
			coins[i] = mints[i].Coin
		}
		bi.MintDenominations = MintDenominations(coins)
	}
	recordConnected(len(mints), len(spends))
	return nil
}

// DisconnectBlockZerocoin removes the registry entries bl added. It keeps
// going past failures and returns the first one.
func DisconnectBlockZerocoin(sc *SpendContext, bl *block.Block) error {
	var firstErr error
	keep := func(err error) {
		if err != nil {
			log.Warn("DisconnectBlockZerocoin: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	spends, err := BlockToSpendList(sc.Params, bl)
	keep(err)
	for _, s := range spends {
		keep(sc.Registry.EraseSpend(s.Spend.SerialHash()))
		if s.Spend.Version().IsLimpMode() {
			if value, err := s.Spend.GetPubcoinValue(); err == nil {
				keep(sc.Registry.ErasePubcoinSpend(zerocoin.PubcoinHash(value)))
			}
		}
	}

	mints, err := BlockToZerocoinMintList(sc.Params, bl)
	keep(err)
	for _, m := range mints {
		keep(sc.Registry.EraseMint(m.Coin.Hash()))
	}
	return firstErr
}
