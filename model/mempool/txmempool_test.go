package mempool

import (
	"testing"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
	"github.com/stretchr/testify/assert"
)

func newSpendTx(tag byte) *tx.Tx {
	txn := tx.NewTx(0, tx.DefaultVersion)
	txn.AddTxIn(txin.NewZerocoinSpendTxIn([]byte{tag}))
	txn.AddTxOut(txout.NewTxOut(amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	return txn
}

func serial(tag string) util.Hash {
	return util.DoubleSha256Hash([]byte(tag))
}

func TestAddTxRejectsConflicts(t *testing.T) {
	pool := NewTxMempool()
	first := newSpendTx(1)
	assert.Nil(t, pool.AddTx(first, []util.Hash{serial("a")}, 10))
	assert.True(t, pool.HasSerial(serial("a")))
	assert.Equal(t, 1, pool.Size())

	err := pool.AddTx(first, []util.Hash{serial("b")}, 11)
	assert.True(t, errcode.IsErrorCode(err, errcode.AlreadHaveTx))

	err = pool.AddTx(newSpendTx(2), []util.Hash{serial("a")}, 12)
	assert.True(t, errcode.IsErrorCode(err, errcode.SerialInMempool))

	err = pool.AddTx(newSpendTx(3), []util.Hash{serial("c"), serial("c")}, 12)
	assert.True(t, errcode.IsErrorCode(err, errcode.SerialInMempool))
	assert.False(t, pool.HasSerial(serial("c")))

	spender, ok := pool.GetSerialSpender(serial("a"))
	assert.True(t, ok)
	assert.Equal(t, first.GetHash(), spender)
	assert.Equal(t, 1, pool.Size())
}

func TestRemoveTxReleasesSerial(t *testing.T) {
	pool := NewTxMempool()
	txn := newSpendTx(1)
	assert.Nil(t, pool.AddTx(txn, []util.Hash{serial("a"), serial("b")}, 10))
	assert.NotNil(t, pool.FindTx(txn.GetHash()))

	assert.Nil(t, pool.RemoveTx(txn.GetHash()))
	assert.False(t, pool.HasSerial(serial("a")))
	assert.False(t, pool.HasSerial(serial("b")))
	assert.Nil(t, pool.FindTx(txn.GetHash()))

	err := pool.RemoveTx(txn.GetHash())
	assert.True(t, errcode.IsErrorCode(err, errcode.TxNotInMempool))

	assert.Nil(t, pool.AddTx(newSpendTx(2), []util.Hash{serial("a")}, 11))
}

func TestRemoveConflicts(t *testing.T) {
	pool := NewTxMempool()
	a := newSpendTx(1)
	b := newSpendTx(2)
	assert.Nil(t, pool.AddTx(a, []util.Hash{serial("a")}, 10))
	assert.Nil(t, pool.AddTx(b, []util.Hash{serial("b")}, 10))

	removed := pool.RemoveConflicts([]util.Hash{serial("b"), serial("z")})
	assert.Equal(t, []util.Hash{b.GetHash()}, removed)
	assert.Equal(t, 1, pool.Size())
	assert.True(t, pool.HasSerial(serial("a")))
}

func TestExpire(t *testing.T) {
	pool := NewTxMempool()
	for i := 0; i < 5; i++ {
		assert.Nil(t, pool.AddTx(newSpendTx(byte(i)), []util.Hash{serial(string(rune('a' + i)))}, int64(100+i)))
	}
	// plain transactions carry no serials
	assert.Nil(t, pool.AddTx(newSpendTx(9), nil, 100))

	assert.Equal(t, 3, pool.Expire(102))
	assert.Equal(t, 3, pool.Size())
	assert.False(t, pool.HasSerial(serial("a")))
	assert.True(t, pool.HasSerial(serial("c")))
	assert.Equal(t, 0, pool.Expire(102))
	assert.Equal(t, 3, pool.Expire(1000))
	assert.Equal(t, 0, pool.Size())
}
