package lwitness

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/copernet/zerocoin/logic/laccumulator"
	"github.com/copernet/zerocoin/logic/lzerocoin"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/model/outpoint"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/persist/witnessdb"
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

type fixture struct {
	engine  *Engine
	blocks  *chain.MemBlockStore
	cleanup func()
}

func newFixture(t *testing.T) *fixture {
	dir, err := ioutil.TempDir("", "lwitness")
	if err != nil {
		t.Fatalf("generate temp dir failed: %s\n", err)
	}
	zdb, err := zerocoindb.NewZerocoinDB(&db.DBOption{FilePath: filepath.Join(dir, "zerocoin"), CacheSize: 1 << 20})
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("NewZerocoinDB failed: %s\n", err)
	}
	cache, err := witnessdb.Open(filepath.Join(dir, "witness.db"))
	if err != nil {
		zdb.Close()
		os.RemoveAll(dir)
		t.Fatalf("witnessdb.Open failed: %s\n", err)
	}
	store, err := laccumulator.NewCheckpointStore(zdb, 64)
	if err != nil {
		t.Fatalf("NewCheckpointStore failed: %s\n", err)
	}
	blocks := chain.NewMemBlockStore()
	return &fixture{
		engine: &Engine{
			Params:               regTestParams(t),
			Chain:                chain.NewChain(),
			Blocks:               blocks,
			Txs:                  blocks,
			Registry:             lzerocoin.NewRegistry(zdb),
			Store:                store,
			Cache:                cache,
			RequiredAccumulation: DefaultRequiredAccumulation,
		},
		blocks: blocks,
		cleanup: func() {
			cache.Close()
			zdb.Close()
			os.RemoveAll(dir)
		},
	}
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

// extend connects one block minting coins, with a valid checkpoint, and
// records the mints in the registry.
func (f *fixture) extend(t *testing.T, coins []*zerocoin.PrivateCoin) *blockindex.BlockIndex {
	t.Helper()
	e := f.engine
	height := e.Chain.Height() + 1
	cp, err := laccumulator.CalculateCheckpoint(height, e.Chain, f.blocks, e.Store, e.Params)
	if err != nil {
		t.Fatalf("CalculateCheckpoint at %d: %v", height, err)
	}

	bl := block.NewBlock()
	bl.Header.Version = block.ZerocoinHeaderVersion
	if tip := e.Chain.Tip(); tip != nil {
		bl.Header.HashPrevBlock = tip.BlockHash
	}
	bl.Header.Time = 1500000000 + uint32(height)*60
	bl.Header.Bits = 0x207fffff
	bl.Header.Nonce = uint32(height)
	bl.Header.AccumulatorCheckpoint = laccumulator.CheckpointCommitment(cp)

	coinbase := tx.NewTx(0, tx.DefaultVersion)
	coinbase.AddTxIn(txin.NewTxIn(nil, script.NewScriptRaw([]byte{0x02, byte(height), byte(height >> 8)}), txin.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(50*amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	bl.Txs = append(bl.Txs, coinbase)
	pubcoins := make([]*zerocoin.PublicCoin, 0, len(coins))
	if len(coins) > 0 {
		mintTx := tx.NewTx(0, tx.DefaultVersion)
		prev := outpoint.NewOutPoint(util.DoubleSha256Hash([]byte{byte(height), byte(height >> 8)}), 0)
		mintTx.AddTxIn(txin.NewTxIn(prev, script.NewScriptRaw([]byte{0x51}), txin.SequenceFinal))
		for _, c := range coins {
			mintTx.AddTxOut(lzerocoin.NewMintTxOut(c.PublicCoin()))
			pubcoins = append(pubcoins, c.PublicCoin())
		}
		for _, pc := range pubcoins {
			if err := e.Registry.RecordMint(pc.Hash(), mintTx.GetHash()); err != nil {
				t.Fatalf("RecordMint: %v", err)
			}
		}
		bl.Txs = append(bl.Txs, mintTx)
	}
	bl.Header.MerkleRoot = bl.BuildMerkleRoot()

	bi := blockindex.NewBlockIndex(&bl.Header)
	bi.TxCount = int32(len(bl.Txs))
	bi.MintDenominations = lzerocoin.MintDenominations(pubcoins)
	e.Chain.AddToIndexMap(bi)
	if err := laccumulator.ValidateCheckpoint(bl, bi, f.blocks, e.Store, e.Params); err != nil {
		t.Fatalf("ValidateCheckpoint at %d: %v", height, err)
	}
	e.Chain.SetTip(bi)
	f.blocks.AddBlock(bl)
	return bi
}

func (f *fixture) build(t *testing.T, height int32, mints map[int32][]*zerocoin.PrivateCoin) {
	t.Helper()
	for f.engine.Chain.Height() < height {
		f.extend(t, mints[f.engine.Chain.Height()+1])
	}
}
