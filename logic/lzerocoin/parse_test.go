package lzerocoin

import (
	"testing"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/outpoint"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
	"github.com/stretchr/testify/assert"
)

func TestMintTxOutRoundTrip(t *testing.T) {
	p := regTestParams(t)
	coin := mintCoins(t, p, zerocoin.ZQFive, 1)[0].PublicCoin()

	out := NewMintTxOut(coin)
	assert.True(t, out.IsZerocoinMint())
	assert.Equal(t, 5*amount.COIN, out.GetValue())

	got, err := TxOutToPublicCoin(p, out)
	assert.NoError(t, err)
	assert.True(t, coin.Equal(got))
	assert.Equal(t, zerocoin.ZQFive, got.Denomination())
}

func TestTxOutToPublicCoinErrors(t *testing.T) {
	p := regTestParams(t)
	coin := mintCoins(t, p, zerocoin.ZQOne, 1)[0].PublicCoin()

	regular := txout.NewTxOut(amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20)))
	_, err := TxOutToPublicCoin(p, regular)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrNotZerocoin))

	oddValue := txout.NewTxOut(3*amount.COIN, script.NewZerocoinMintScript(util.BigNumBytes(coin.Value())))
	_, err = TxOutToPublicCoin(p, oddValue)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorInvalidDenomination))

	bare := txout.NewTxOut(amount.COIN, script.NewScriptRaw([]byte{0xc1}))
	_, err = TxOutToPublicCoin(p, bare)
	assert.Error(t, err)
}

func TestTxInToZerocoinSpendRejectsRegularInput(t *testing.T) {
	p := regTestParams(t)
	in := txin.NewTxIn(outpoint.NewOutPoint(hashOf("prev"), 1), script.NewScriptRaw([]byte{0x51}), txin.SequenceFinal)
	_, err := TxInToZerocoinSpend(p, in)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrNotZerocoin))

	garbage := txin.NewZerocoinSpendTxIn([]byte{0x09, 0x01, 0x02})
	_, err = TxInToZerocoinSpend(p, garbage)
	assert.Error(t, err)
}

func TestTxOutHashIgnoresInputs(t *testing.T) {
	txn := tx.NewTx(7, tx.DefaultVersion)
	txn.AddTxOut(txout.NewTxOut(amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	before := TxOutHash(txn)

	txn.AddTxIn(txin.NewZerocoinSpendTxIn([]byte{0x01}))
	assert.Equal(t, before, TxOutHash(txn))
	assert.NotEqual(t, txn.GetHash(), before)

	txn.AddTxOut(txout.NewTxOut(amount.CENT, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	assert.NotEqual(t, before, TxOutHash(txn))

	other := tx.NewTx(8, tx.DefaultVersion)
	other.AddTxOut(txout.NewTxOut(amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	assert.NotEqual(t, before, TxOutHash(other), "lock time is committed")
}

func TestBlockToZerocoinMintList(t *testing.T) {
	p := regTestParams(t)
	ones := mintCoins(t, p, zerocoin.ZQOne, 2)
	tens := mintCoins(t, p, zerocoin.ZQTen, 1)

	first := newMintTx(ones, "a")
	second := newMintTx(tens, "b")
	second.AddTxOut(txout.NewTxOut(amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	bl := block.NewBlock()
	bl.Txs = append(bl.Txs, first, second)

	mints, err := BlockToZerocoinMintList(p, bl)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(mints))
	assert.Equal(t, first.GetHash(), mints[0].TxID)
	assert.Equal(t, uint32(1), mints[1].Index)
	assert.Equal(t, second.GetHash(), mints[2].TxID)
	assert.Equal(t, uint32(0), mints[2].Index)

	coins, err := BlockToPubcoinList(p, bl)
	assert.NoError(t, err)
	assert.Equal(t, []zerocoin.Denomination{zerocoin.ZQOne, zerocoin.ZQOne, zerocoin.ZQTen}, MintDenominations(coins))
	assert.True(t, tens[0].PublicCoin().Equal(coins[2]))

	spends, err := BlockToSpendList(p, bl)
	assert.NoError(t, err)
	assert.Empty(t, spends)
}
