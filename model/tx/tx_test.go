package tx

import (
	"bytes"
	"testing"

	"github.com/copernet/zerocoin/model/outpoint"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
	"github.com/stretchr/testify/assert"
)

func newMintTx() *Tx {
	tx := NewTx(0, DefaultVersion)
	prev := outpoint.NewOutPoint(util.DoubleSha256Hash([]byte("funding")), 0)
	tx.AddTxIn(txin.NewTxIn(prev, script.NewScriptRaw([]byte{0x51}), txin.SequenceFinal))
	tx.AddTxOut(txout.NewTxOut(10*amount.COIN, script.NewZerocoinMintScript([]byte{1, 2, 3})))
	tx.AddTxOut(txout.NewTxOut(amount.CENT, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	return tx
}

func TestTxSerialize(t *testing.T) {
	tx := newMintTx()

	var buf bytes.Buffer
	assert.Nil(t, tx.Serialize(&buf))
	assert.Equal(t, int(tx.SerializeSize()), buf.Len())

	restored := NewEmptyTx()
	assert.Nil(t, restored.Unserialize(&buf))
	assert.Equal(t, tx.GetHash(), restored.GetHash())
	assert.Equal(t, 1, restored.GetInsCount())
	assert.Equal(t, 2, restored.GetOutsCount())
	assert.Equal(t, int32(DefaultVersion), restored.GetVersion())
}

func TestTxZerocoinClassification(t *testing.T) {
	mint := newMintTx()
	assert.True(t, mint.HasZerocoinMintOutputs())
	assert.False(t, mint.IsZerocoinSpend())
	assert.False(t, mint.IsCoinBase())
	assert.Equal(t, 10*amount.COIN+amount.CENT, mint.GetValueOut())

	spend := NewTx(0, DefaultVersion)
	spend.AddTxIn(txin.NewZerocoinSpendTxIn([]byte{4, 5, 6}))
	spend.AddTxOut(txout.NewTxOut(amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	assert.True(t, spend.IsZerocoinSpend())
	assert.True(t, spend.ContainsZerocoins())
	assert.False(t, spend.IsCoinBase())

	coinbase := NewTx(0, DefaultVersion)
	coinbase.AddTxIn(txin.NewTxIn(nil, script.NewScriptRaw([]byte{0x01, 0x01}), txin.SequenceFinal))
	assert.True(t, coinbase.IsCoinBase())
}

func TestTxHashChangesWithOutputs(t *testing.T) {
	tx := newMintTx()
	before := tx.GetHash()
	tx.AddTxOut(txout.NewTxOut(amount.CENT, nil))
	assert.NotEqual(t, before, tx.GetHash())
	assert.Nil(t, tx.GetTxOut(5))
	assert.NotNil(t, tx.GetTxIn(0))
}
