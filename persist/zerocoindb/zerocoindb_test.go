package zerocoindb

import (
	"io/ioutil"
	"math/big"
	"os"
	"testing"

	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/util"
	"github.com/stretchr/testify/assert"
)

func newTestZerocoinDB(t *testing.T) (*ZerocoinDB, func()) {
	path, err := ioutil.TempDir("", "zerocoindb")
	if err != nil {
		t.Fatalf("generate temp db path failed: %s\n", err)
	}
	zdb, err := NewZerocoinDB(&db.DBOption{FilePath: path, CacheSize: 1 << 20})
	if err != nil {
		os.RemoveAll(path)
		t.Fatalf("NewZerocoinDB failed: %s\n", err)
	}
	return zdb, func() {
		zdb.Close()
		os.RemoveAll(path)
	}
}

func hashOf(s string) util.Hash {
	return util.DoubleSha256Hash([]byte(s))
}

func TestCoinMintAndSpend(t *testing.T) {
	zdb, cleanup := newTestZerocoinDB(t)
	defer cleanup()

	pubcoin, serial, txid := hashOf("pubcoin"), hashOf("serial"), hashOf("tx")
	assert.NoError(t, zdb.WriteCoinMintBatch([]MintRecord{{PubcoinHash: pubcoin, TxID: txid}}))
	assert.NoError(t, zdb.WriteCoinSpendBatch([]SpendRecord{{SerialHash: serial, TxID: txid}}))

	got, ok, err := zdb.ReadCoinMint(&pubcoin)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, txid, got)

	got, ok, err = zdb.ReadCoinSpend(&serial)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, txid, got)

	_, ok, err = zdb.ReadCoinSpend(&pubcoin)
	assert.NoError(t, err)
	assert.False(t, ok, "records of different types must not collide")

	assert.NoError(t, zdb.EraseCoinSpend(&serial))
	assert.NoError(t, zdb.EraseCoinSpend(&serial))
	_, ok, err = zdb.ReadCoinSpend(&serial)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, zdb.EraseCoinMint(&pubcoin))
	_, ok, _ = zdb.ReadCoinMint(&pubcoin)
	assert.False(t, ok)
}

func TestPubcoinSpend(t *testing.T) {
	zdb, cleanup := newTestZerocoinDB(t)
	defer cleanup()

	rec := PubcoinSpendRecord{PubcoinHash: hashOf("pubcoin"), TxID: hashOf("tx"), BlockHash: hashOf("block")}
	assert.NoError(t, zdb.WritePubcoinSpendBatch([]PubcoinSpendRecord{rec}))

	got, err := zdb.ReadPubcoinSpend(&rec.PubcoinHash)
	assert.NoError(t, err)
	assert.Equal(t, rec, *got)

	assert.NoError(t, zdb.ErasePubcoinSpend(&rec.PubcoinHash))
	got, err = zdb.ReadPubcoinSpend(&rec.PubcoinHash)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccumulatorValues(t *testing.T) {
	zdb, cleanup := newTestZerocoinDB(t)
	defer cleanup()

	values := map[util.Hash]*big.Int{
		hashOf("a"): big.NewInt(961),
		hashOf("b"): new(big.Int).Lsh(big.NewInt(1), 1100),
	}
	assert.NoError(t, zdb.WriteAccumulatorValues(values))
	for checksum, want := range values {
		checksum := checksum
		got, err := zdb.ReadAccumulatorValue(&checksum)
		assert.NoError(t, err)
		assert.Equal(t, 0, want.Cmp(got))
	}

	missing := hashOf("missing")
	got, err := zdb.ReadAccumulatorValue(&missing)
	assert.NoError(t, err)
	assert.Nil(t, got)

	a := hashOf("a")
	assert.NoError(t, zdb.EraseAccumulatorValue(&a))
	got, _ = zdb.ReadAccumulatorValue(&a)
	assert.Nil(t, got)
}

func TestWipeCoins(t *testing.T) {
	zdb, cleanup := newTestZerocoinDB(t)
	defer cleanup()

	var mints []MintRecord
	var spends []SpendRecord
	for _, s := range []string{"1", "2", "3"} {
		mints = append(mints, MintRecord{PubcoinHash: hashOf("m" + s), TxID: hashOf("t" + s)})
		spends = append(spends, SpendRecord{SerialHash: hashOf("s" + s), TxID: hashOf("t" + s)})
	}
	assert.NoError(t, zdb.WriteCoinMintBatch(mints))
	assert.NoError(t, zdb.WriteCoinSpendBatch(spends))

	assert.NoError(t, zdb.WipeCoins(db.DbSerial))
	assert.Error(t, zdb.WipeCoins('x'))

	count := func(recordType byte) int {
		n := 0
		assert.NoError(t, zdb.ForEach(recordType, func(key util.Hash, value []byte) bool {
			n++
			return true
		}))
		return n
	}
	assert.Equal(t, 0, count(db.DbSerial))
	assert.Equal(t, 3, count(db.DbMint))
}

func TestReindexFlag(t *testing.T) {
	zdb, cleanup := newTestZerocoinDB(t)
	defer cleanup()

	ok, err := zdb.ReadReindexing()
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, zdb.WriteReindexing(true))
	ok, _ = zdb.ReadReindexing()
	assert.True(t, ok)

	assert.NoError(t, zdb.WriteReindexing(false))
	ok, _ = zdb.ReadReindexing()
	assert.False(t, ok)
}

func TestWriteBlockRecords(t *testing.T) {
	path, err := ioutil.TempDir("", "zerocoindb")
	if err != nil {
		t.Fatalf("generate temp db path failed: %s\n", err)
	}
	defer os.RemoveAll(path)
	option := &db.DBOption{FilePath: path, CacheSize: 1 << 20}
	zdb, err := NewZerocoinDB(option)
	assert.NoError(t, err)

	serial := hashOf("serial")
	assert.NoError(t, zdb.WriteCoinSpendBatch([]SpendRecord{{SerialHash: serial, TxID: hashOf("orphaned")}}))

	records := &BlockRecords{
		Mints:         []MintRecord{{PubcoinHash: hashOf("pubcoin"), TxID: hashOf("mint tx")}},
		Spends:        []SpendRecord{{SerialHash: serial, TxID: hashOf("spend tx")}},
		PubcoinSpends: []PubcoinSpendRecord{{PubcoinHash: hashOf("limp"), TxID: hashOf("spend tx"), BlockHash: hashOf("block")}},
	}
	assert.Equal(t, 3, records.Len())
	assert.NoError(t, zdb.WriteBlockRecords(records))

	got, ok, err := zdb.ReadCoinMint(&records.Mints[0].PubcoinHash)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hashOf("mint tx"), got)
	got, ok, err = zdb.ReadCoinSpend(&serial)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hashOf("spend tx"), got, "the stale spend is overwritten")
	rec, err := zdb.ReadPubcoinSpend(&records.PubcoinSpends[0].PubcoinHash)
	assert.NoError(t, err)
	assert.Equal(t, records.PubcoinSpends[0], *rec)

	// a failed write stores none of the block's records
	assert.NoError(t, zdb.Close())
	failed := &BlockRecords{
		Mints:  []MintRecord{{PubcoinHash: hashOf("pubcoin 2"), TxID: hashOf("mint tx 2")}},
		Spends: []SpendRecord{{SerialHash: hashOf("serial 2"), TxID: hashOf("spend tx 2")}},
	}
	assert.Error(t, zdb.WriteBlockRecords(failed))

	zdb, err = NewZerocoinDB(option)
	assert.NoError(t, err)
	defer zdb.Close()
	_, ok, err = zdb.ReadCoinMint(&failed.Mints[0].PubcoinHash)
	assert.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = zdb.ReadCoinSpend(&failed.Spends[0].SerialHash)
	assert.NoError(t, err)
	assert.False(t, ok)
}
