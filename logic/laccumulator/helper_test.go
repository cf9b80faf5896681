package laccumulator

import (
	"io/ioutil"
	"os"
	"sync"
	"testing"

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
	p       *zerocoin.Params
	zdb     *zerocoindb.ZerocoinDB
	store   *CheckpointStore
	chain   *chain.Chain
	blocks  *chain.MemBlockStore
	cleanup func()
}

func newFixture(t *testing.T) *fixture {
	path, err := ioutil.TempDir("", "laccumulator")
	if err != nil {
		t.Fatalf("generate temp db path failed: %s\n", err)
	}
	zdb, err := zerocoindb.NewZerocoinDB(&db.DBOption{FilePath: path, CacheSize: 1 << 20})
	if err != nil {
		os.RemoveAll(path)
		t.Fatalf("NewZerocoinDB failed: %s\n", err)
	}
	store, err := NewCheckpointStore(zdb, 16)
	if err != nil {
		t.Fatalf("NewCheckpointStore failed: %s\n", err)
	}
	return &fixture{
		p:      regTestParams(t),
		zdb:    zdb,
		store:  store,
		chain:  chain.NewChain(),
		blocks: chain.NewMemBlockStore(),
		cleanup: func() {
			zdb.Close()
			os.RemoveAll(path)
		},
	}
}

func mintCoins(t *testing.T, p *zerocoin.Params, d zerocoin.Denomination, n int) []*zerocoin.PublicCoin {
	t.Helper()
	coins := make([]*zerocoin.PublicCoin, 0, n)
	for i := 0; i < n; i++ {
		coin, err := zerocoin.MintPrivateCoin(p, d, zerocoin.CurrentPrivateCoinVersion)
		if err != nil {
			t.Fatalf("MintPrivateCoin #%d: %v", i, err)
		}
		coins = append(coins, coin.PublicCoin())
	}
	return coins
}

// newBlock builds the child of the tip carrying coins as mints, with the
// header committing to checkpoint.
func (f *fixture) newBlock(coins []*zerocoin.PublicCoin, commitment util.Hash) (*block.Block, *blockindex.BlockIndex) {
	height := f.chain.Height() + 1
	bl := block.NewBlock()
	bl.Header.Version = block.ZerocoinHeaderVersion
	if tip := f.chain.Tip(); tip != nil {
		bl.Header.HashPrevBlock = tip.BlockHash
	}
	bl.Header.Time = 1500000000 + uint32(height)*60
	bl.Header.Bits = 0x207fffff
	bl.Header.Nonce = uint32(height)
	bl.Header.AccumulatorCheckpoint = commitment

	coinbase := tx.NewTx(0, tx.DefaultVersion)
	coinbase.AddTxIn(txin.NewTxIn(nil, script.NewScriptRaw([]byte{0x02, byte(height), byte(height >> 8)}), txin.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(50*amount.COIN, script.NewPayToPubKeyHashScript(make([]byte, 20))))
	bl.Txs = append(bl.Txs, coinbase)
	if len(coins) > 0 {
		mintTx := tx.NewTx(0, tx.DefaultVersion)
		prev := outpoint.NewOutPoint(util.DoubleSha256Hash([]byte{byte(height)}), 0)
		mintTx.AddTxIn(txin.NewTxIn(prev, script.NewScriptRaw([]byte{0x51}), txin.SequenceFinal))
		for _, c := range coins {
			mintTx.AddTxOut(lzerocoin.NewMintTxOut(c))
		}
		bl.Txs = append(bl.Txs, mintTx)
	}
	bl.Header.MerkleRoot = bl.BuildMerkleRoot()

	bi := blockindex.NewBlockIndex(&bl.Header)
	bi.TxCount = int32(len(bl.Txs))
	bi.MintDenominations = lzerocoin.MintDenominations(coins)
	f.chain.AddToIndexMap(bi)
	return bl, bi
}

// extend connects a block minting coins with the correct checkpoint.
func (f *fixture) extend(t *testing.T, coins []*zerocoin.PublicCoin) *blockindex.BlockIndex {
	t.Helper()
	cp, err := CalculateCheckpoint(f.chain.Height()+1, f.chain, f.blocks, f.store, f.p)
	if err != nil {
		t.Fatalf("CalculateCheckpoint at %d: %v", f.chain.Height()+1, err)
	}
	bl, bi := f.newBlock(coins, CheckpointCommitment(cp))
	if err := ValidateCheckpoint(bl, bi, f.blocks, f.store, f.p); err != nil {
		t.Fatalf("ValidateCheckpoint at %d: %v", bi.Height, err)
	}
	f.chain.SetTip(bi)
	f.blocks.AddBlock(bl)
	return bi
}

// build extends the chain up to height, minting at the given heights.
func (f *fixture) build(t *testing.T, height int32, mints map[int32][]*zerocoin.PublicCoin) {
	t.Helper()
	for f.chain.Height() < height {
		f.extend(t, mints[f.chain.Height()+1])
	}
}
