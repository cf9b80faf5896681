package lzerocoin

import (
	"io/ioutil"
	"math/big"
	"os"
	"sync"
	"testing"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/model/mempool"
	"github.com/copernet/zerocoin/model/outpoint"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/persist/zerocoindb"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
)

var (
	paramsOnce sync.Once
	testParams *zerocoin.Params
	paramsErr  error
)

func regTestParams(t *testing.T) *zerocoin.Params {
	t.Helper()
	paramsOnce.Do(func() {
		testParams, paramsErr = zerocoin.RegTestParams()
	})
	if paramsErr != nil {
		t.Fatalf("RegTestParams: %v", paramsErr)
	}
	return testParams
}

type memCheckpoints struct {
	values   map[util.Hash]*big.Int
	disabled bool
}

func (m *memCheckpoints) GetAccumulatorValue(checksum util.Hash) (*big.Int, error) {
	if v, ok := m.values[checksum]; ok {
		return v, nil
	}
	return nil, errcode.New(errcode.ErrorChecksumNotFound)
}

func (m *memCheckpoints) ZerocoinValidationEnabled() bool {
	return !m.disabled
}

type fixture struct {
	p       *zerocoin.Params
	zdb     *zerocoindb.ZerocoinDB
	chain   *chain.Chain
	blocks  *chain.MemBlockStore
	pool    *mempool.TxMempool
	cps     *memCheckpoints
	sc      *SpendContext
	nonce   uint32
	cleanup func()
}

func newFixture(t *testing.T) *fixture {
	path, err := ioutil.TempDir("", "lzerocoin")
	if err != nil {
		t.Fatalf("generate temp db path failed: %s\n", err)
	}
	zdb, err := zerocoindb.NewZerocoinDB(&db.DBOption{FilePath: path, CacheSize: 1 << 20})
	if err != nil {
		os.RemoveAll(path)
		t.Fatalf("NewZerocoinDB failed: %s\n", err)
	}
	f := &fixture{
		p:      regTestParams(t),
		zdb:    zdb,
		chain:  chain.NewChain(),
		blocks: chain.NewMemBlockStore(),
		pool:   mempool.NewTxMempool(),
		cps:    &memCheckpoints{values: make(map[util.Hash]*big.Int)},
	}
	f.sc = &SpendContext{
		Params:      f.p,
		Registry:    NewRegistry(zdb),
		Mempool:     f.pool,
		Chain:       f.chain,
		Txs:         f.blocks,
		Checkpoints: f.cps,
	}
	f.cleanup = func() {
		zdb.Close()
		os.RemoveAll(path)
	}
	return f
}

// nextBlock builds a block on the current tip holding a coinbase and txs.
func (f *fixture) nextBlock(txs ...*tx.Tx) (*block.Block, *blockindex.BlockIndex) {
	f.nonce++
	bl := block.NewBlock()
	bl.Header.Version = block.ZerocoinHeaderVersion
	if tip := f.chain.Tip(); tip != nil {
		bl.Header.HashPrevBlock = tip.BlockHash
	}
	bl.Header.Time = 1500000000 + f.nonce*60
	bl.Header.Bits = 0x207fffff
	bl.Header.Nonce = f.nonce
	coinbase := tx.NewTx(0, tx.DefaultVersion)
	coinbase.AddTxIn(txin.NewTxIn(nil, script.NewScriptRaw([]byte{0x02, byte(f.nonce), byte(f.nonce >> 8)}), txin.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(50*amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	bl.Txs = append(bl.Txs, coinbase)
	bl.Txs = append(bl.Txs, txs...)
	bl.Header.MerkleRoot = bl.BuildMerkleRoot()

	bi := blockindex.NewBlockIndex(&bl.Header)
	bi.TxCount = int32(len(bl.Txs))
	return bl, bi
}

// addBlock makes bl the new active tip.
func (f *fixture) addBlock(bl *block.Block, bi *blockindex.BlockIndex) {
	f.chain.AddToIndexMap(bi)
	f.chain.SetTip(bi)
	f.blocks.AddBlock(bl)
}

func (f *fixture) mine(txs ...*tx.Tx) *block.Block {
	bl, bi := f.nextBlock(txs...)
	f.addBlock(bl, bi)
	return bl
}

func mintCoins(t *testing.T, p *zerocoin.Params, d zerocoin.Denomination, n int) []*zerocoin.PrivateCoin {
	t.Helper()
	coins := make([]*zerocoin.PrivateCoin, 0, n)
	for i := 0; i < n; i++ {
		coin, err := zerocoin.MintPrivateCoin(p, d, zerocoin.CurrentPrivateCoinVersion)
		if err != nil {
			t.Fatalf("MintPrivateCoin #%d: %v", i, err)
		}
		coins = append(coins, coin)
	}
	return coins
}

func newMintTx(coins []*zerocoin.PrivateCoin, seed string) *tx.Tx {
	txn := tx.NewTx(0, tx.DefaultVersion)
	prev := outpoint.NewOutPoint(util.DoubleSha256Hash([]byte(seed)), 0)
	txn.AddTxIn(txin.NewTxIn(prev, script.NewScriptRaw([]byte{0x51}), txin.SequenceFinal))
	for _, c := range coins {
		txn.AddTxOut(NewMintTxOut(c.PublicCoin()))
	}
	return txn
}

// registerAccumulator accumulates coins and publishes the result as a
// checkpoint value. It returns the checksum and a witness for coins[0].
func (f *fixture) registerAccumulator(t *testing.T, coins []*zerocoin.PrivateCoin) (*zerocoin.Accumulator, util.Hash, *zerocoin.AccumulatorWitness) {
	t.Helper()
	d := coins[0].PublicCoin().Denomination()
	acc := zerocoin.NewAccumulator(f.p, d)
	witness := zerocoin.NewAccumulatorWitness(zerocoin.NewAccumulator(f.p, d), coins[0].PublicCoin())
	for _, c := range coins {
		if err := acc.Accumulate(c.PublicCoin()); err != nil {
			t.Fatalf("Accumulate: %v", err)
		}
		if err := witness.AddElement(c.PublicCoin()); err != nil {
			t.Fatalf("AddElement: %v", err)
		}
	}
	checksum := accumulators.Checksum(acc.Value())
	f.cps.values[checksum] = acc.Value()
	return acc, checksum, witness
}

// newSpendTx spends coin into a single output worth outValue.
func (f *fixture) newSpendTx(t *testing.T, coin *zerocoin.PrivateCoin, acc *zerocoin.Accumulator, checksum util.Hash,
	witness *zerocoin.AccumulatorWitness, version zerocoin.SpendVersion, outValue amount.Amount) (*tx.Tx, *zerocoin.CoinSpend) {

	t.Helper()
	txn := tx.NewTx(0, tx.DefaultVersion)
	txn.AddTxOut(txout.NewTxOut(outValue, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	spend, err := zerocoin.NewCoinSpend(f.p, coin, acc, checksum, witness, TxOutHash(txn), zerocoin.SpendTypeSpend, version)
	if err != nil {
		t.Fatalf("NewCoinSpend: %v", err)
	}
	b, err := spend.Bytes()
	if err != nil {
		t.Fatalf("spend.Bytes: %v", err)
	}
	txn.AddTxIn(txin.NewZerocoinSpendTxIn(b))
	return txn, spend
}

func hashOf(s string) util.Hash {
	return util.DoubleSha256Hash([]byte(s))
}
