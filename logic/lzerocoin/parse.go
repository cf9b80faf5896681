package lzerocoin

import (
	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// MintInfo is a mint output found in a block.
type MintInfo struct {
	Coin  *zerocoin.PublicCoin
	TxID  util.Hash
	Index uint32
}

// SpendInfo is a spend input found in a block.
type SpendInfo struct {
	Spend *zerocoin.CoinSpend
	TxID  util.Hash
}

// NewMintTxOut builds the output that mints coin.
func NewMintTxOut(coin *zerocoin.PublicCoin) *txout.TxOut {
	return txout.NewTxOut(zerocoin.DenominationToAmount(coin.Denomination()),
		script.NewZerocoinMintScript(util.BigNumBytes(coin.Value())))
}

// TxOutToPublicCoin recovers the pubcoin from a mint output. The output
// value selects the denomination.
func TxOutToPublicCoin(p *zerocoin.Params, out *txout.TxOut) (*zerocoin.PublicCoin, error) {
	if !out.IsZerocoinMint() {
		return nil, errcode.New(errcode.ScriptErrNotZerocoin)
	}
	payload, err := out.GetScriptPubKey().ZerocoinPayload()
	if err != nil {
		return nil, err
	}
	d := zerocoin.AmountToDenomination(out.GetValue())
	if d == zerocoin.ZQError {
		return nil, errors.Wrapf(errcode.New(errcode.ErrorInvalidDenomination), "mint value %s", out.GetValue())
	}
	return zerocoin.NewPublicCoin(p, util.BigNumFromBytes(payload), d), nil
}

// TxInToZerocoinSpend decodes the coin spend carried by a spend input.
func TxInToZerocoinSpend(p *zerocoin.Params, in *txin.TxIn) (*zerocoin.CoinSpend, error) {
	if !in.IsZerocoinSpend() {
		return nil, errcode.New(errcode.ScriptErrNotZerocoin)
	}
	payload, err := in.GetScriptSig().ZerocoinPayload()
	if err != nil {
		return nil, err
	}
	return zerocoin.ParseCoinSpend(p, payload)
}

// TxOutHash is the hash of txn with its inputs stripped, which spends sign
// so that a proof cannot be moved to other outputs.
func TxOutHash(txn *tx.Tx) util.Hash {
	stripped := tx.NewTx(txn.GetLockTime(), txn.GetVersion())
	for _, out := range txn.GetOuts() {
		stripped.AddTxOut(out)
	}
	return stripped.GetHash()
}

func BlockToPubcoinList(p *zerocoin.Params, bl *block.Block) ([]*zerocoin.PublicCoin, error) {
	mints, err := BlockToZerocoinMintList(p, bl)
	if err != nil {
		return nil, err
	}
	coins := make([]*zerocoin.PublicCoin, len(mints))
	for i := range mints {
		coins[i] = mints[i].Coin
	}
	return coins, nil
}

func BlockToZerocoinMintList(p *zerocoin.Params, bl *block.Block) ([]MintInfo, error) {
	mints := make([]MintInfo, 0)
	for _, txn := range bl.Txs {
		if !txn.HasZerocoinMintOutputs() {
			continue
		}
		txid := txn.GetHash()
		for i, out := range txn.GetOuts() {
			if !out.IsZerocoinMint() {
				continue
			}
			coin, err := TxOutToPublicCoin(p, out)
			if err != nil {
				return nil, errors.Wrapf(err, "tx %s output %d", txid.String(), i)
			}
			mints = append(mints, MintInfo{Coin: coin, TxID: txid, Index: uint32(i)})
		}
	}
	return mints, nil
}

func BlockToSpendList(p *zerocoin.Params, bl *block.Block) ([]SpendInfo, error) {
	spends := make([]SpendInfo, 0)
	for _, txn := range bl.Txs {
		if !txn.IsZerocoinSpend() {
			continue
		}
		txid := txn.GetHash()
		for i, in := range txn.GetIns() {
			if !in.IsZerocoinSpend() {
				continue
			}
			spend, err := TxInToZerocoinSpend(p, in)
			if err != nil {
				return nil, errors.Wrapf(err, "tx %s input %d", txid.String(), i)
			}
			spends = append(spends, SpendInfo{Spend: spend, TxID: txid})
		}
	}
	return spends, nil
}

// MintDenominations lists the denomination of every mint, duplicates included.
func MintDenominations(coins []*zerocoin.PublicCoin) []zerocoin.Denomination {
	denoms := make([]zerocoin.Denomination, len(coins))
	for i, c := range coins {
		denoms[i] = c.Denomination()
	}
	return denoms
}
