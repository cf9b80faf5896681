package lzerocoin

import (
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/model/mempool"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
	"github.com/pkg/errors"
)

const (
	RejectReasonOverspend = "Transaction spend more than was redeemed in zerocoins"

	dosBanScore = 100
)

// CheckpointSource resolves the accumulator value a spend claims through
// its checksum.
type CheckpointSource interface {
	GetAccumulatorValue(checksum util.Hash) (*big.Int, error)
	ZerocoinValidationEnabled() bool
}

// SpendContext carries the chain state a spend is checked against. The
// caller holds Chain's lock for the duration of a check.
type SpendContext struct {
	Params      *zerocoin.Params
	Registry    *Registry
	Mempool     *mempool.TxMempool
	Chain       *chain.Chain
	Txs         chain.TxReader
	Checkpoints CheckpointSource
}

func rejectInvalid(reason string) error {
	return errcode.NewReject(errcode.RejectInvalid, dosBanScore, reason)
}

// CheckZerocoinMint validates the pubcoin carried by a mint output.
func CheckZerocoinMint(coin *zerocoin.PublicCoin) error {
	if err := coin.Validate(); err != nil {
		log.Debug("CheckZerocoinMint: %v", err)
		return errcode.NewReject(errcode.RejectInvalid, dosBanScore, "invalid zerocoin mint")
	}
	return nil
}

// ContextualCheckZerocoinMint also refuses a pubcoin that is already
// confirmed on the active chain.
func ContextualCheckZerocoinMint(sc *SpendContext, txid util.Hash, coin *zerocoin.PublicCoin) error {
	if err := CheckZerocoinMint(coin); err != nil {
		return err
	}
	inChain, mintTx, err := sc.Registry.IsPubcoinInBlockchain(coin.Hash(), sc.Chain, sc.Txs)
	if err != nil {
		return err
	}
	if inChain && mintTx != txid {
		return errcode.NewReject(errcode.RejectDuplicate, dosBanScore, "pubcoin already in blockchain")
	}
	return nil
}

// CheckZerocoinSpendTx runs the checks that need no chain state and returns
// the decoded spends. Every input must be a spend, every spend must sign
// the outputs of txn and the outputs may not exceed what is redeemed.
func CheckZerocoinSpendTx(p *zerocoin.Params, txn *tx.Tx) ([]*zerocoin.CoinSpend, error) {
	if !txn.IsZerocoinSpend() {
		return nil, nil
	}
	outHash := TxOutHash(txn)
	spends := make([]*zerocoin.CoinSpend, 0, txn.GetInsCount())
	serials := make(map[util.Hash]struct{}, txn.GetInsCount())
	var redeemed amount.Amount
	for i, in := range txn.GetIns() {
		if !in.IsZerocoinSpend() {
			return nil, errcode.NewReject(errcode.RejectInvalid, dosBanScore, "zerocoin spend mixed with regular inputs")
		}
		spend, err := TxInToZerocoinSpend(p, in)
		if err != nil {
			log.Debug("CheckZerocoinSpendTx: tx %s input %d: %v", txn.GetHash().String(), i, err)
			return nil, errcode.NewReject(errcode.RejectMalformed, dosBanScore, "malformed zerocoin spend")
		}
		if spend.TxOutHash() != outHash {
			return nil, rejectInvalid("zerocoin spend does not sign the transaction outputs")
		}
		sh := spend.SerialHash()
		if _, ok := serials[sh]; ok {
			return nil, rejectInvalid("zerocoin serial used twice in the same transaction")
		}
		serials[sh] = struct{}{}
		if !spend.Denomination().IsValid() {
			return nil, rejectInvalid("zerocoin spend has an invalid denomination")
		}
		redeemed += zerocoin.DenominationToAmount(spend.Denomination())
		spends = append(spends, spend)
	}
	if txn.GetValueOut() > redeemed {
		return nil, rejectInvalid(RejectReasonOverspend)
	}
	return spends, nil
}

// ContextualCheckZerocoinSpend verifies one spend of txn against the
// accumulator its checksum names and against recorded and pending spends.
// verifySoK is false when the caller batch verifies serial proofs.
func ContextualCheckZerocoinSpend(sc *SpendContext, txid util.Hash, spend *zerocoin.CoinSpend, verifySoK bool) error {
	if !spend.HasValidSerial() {
		return rejectInvalid("zerocoin spend serial out of range")
	}
	if !spend.HasValidSignature() {
		return rejectInvalid("zerocoin spend signature invalid")
	}
	if !sc.Checkpoints.ZerocoinValidationEnabled() {
		return errcode.New(errcode.ErrorValidationDisabled)
	}

	checksum := spend.AccumulatorChecksum()
	value, err := sc.Checkpoints.GetAccumulatorValue(checksum)
	if err != nil {
		log.Debug("ContextualCheckZerocoinSpend: checksum %s: %v", checksum.String(), err)
		return errcode.NewReject(errcode.RejectCheckpoint, dosBanScore, "zerocoin spend uses an unknown accumulator checksum")
	}
	acc := zerocoin.NewAccumulatorWithValue(sc.Params, spend.Denomination(), value)

	timer := newVerifyTimer()
	ok, reason := spend.Verify(acc, verifySoK)
	timer.observe(ok)
	if !ok {
		log.Debug("ContextualCheckZerocoinSpend: tx %s: %s", txid.String(), reason)
		return rejectInvalid(reason)
	}

	if spend.Version().IsLimpMode() {
		if err := checkPubcoinSpend(sc, spend); err != nil {
			return err
		}
	}
	return CheckSerialDoubleSpend(sc, spend.SerialHash(), txid)
}

// checkPubcoinSpend requires a limp mode spend to open its commitment to a
// pubcoin minted on the active chain and not yet spent there.
func checkPubcoinSpend(sc *SpendContext, spend *zerocoin.CoinSpend) error {
	if !spend.VerifyPubcoinSignature() {
		return rejectInvalid("zerocoin spend pubcoin signature invalid")
	}
	value, err := spend.GetPubcoinValue()
	if err != nil {
		return rejectInvalid(err.Error())
	}
	ph := zerocoin.PubcoinHash(value)
	minted, _, err := sc.Registry.IsPubcoinInBlockchain(ph, sc.Chain, sc.Txs)
	if err != nil {
		return err
	}
	if !minted {
		return rejectInvalid("zerocoin spend pubcoin not found in blockchain")
	}
	spent, err := sc.Registry.IsPubcoinSpendInChain(ph, sc.Chain)
	if err != nil {
		return err
	}
	if spent {
		recordDoubleSpend()
		return errcode.NewReject(errcode.RejectDuplicate, dosBanScore, "zerocoin pubcoin already spent")
	}
	return nil
}

// CheckSerialDoubleSpend rejects serialHash when a transaction other than
// txid spends it on the active chain or in the mempool.
func CheckSerialDoubleSpend(sc *SpendContext, serialHash, txid util.Hash) error {
	inChain, spender, err := sc.Registry.IsSerialInChain(serialHash, sc.Chain, sc.Txs)
	if err != nil {
		return errors.Wrap(err, "CheckSerialDoubleSpend")
	}
	if inChain && spender != txid {
		recordDoubleSpend()
		log.Print("zerocoin", "debug", "serial %s already spent by %s", serialHash.String(), spender.String())
		return errcode.NewReject(errcode.RejectDuplicate, dosBanScore, "zerocoin serial already spent")
	}
	if sc.Mempool != nil {
		if pending, ok := sc.Mempool.GetSerialSpender(serialHash); ok && pending != txid {
			recordDoubleSpend()
			return errcode.NewReject(errcode.RejectDuplicate, 0, "zerocoin serial pending in mempool")
		}
	}
	return nil
}

// AcceptSpendToMempool checks txn fully and admits it to the mempool.
func AcceptSpendToMempool(sc *SpendContext, txn *tx.Tx, acceptTime int64) error {
	spends, err := CheckZerocoinSpendTx(sc.Params, txn)
	if err != nil {
		return err
	}
	txid := txn.GetHash()
	serials := make([]util.Hash, len(spends))
	for i, spend := range spends {
		if err := ContextualCheckZerocoinSpend(sc, txid, spend, true); err != nil {
			return err
		}
		serials[i] = spend.SerialHash()
	}
	return sc.Mempool.AddTx(txn, serials, acceptTime)
}
