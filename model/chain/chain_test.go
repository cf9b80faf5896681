package chain

import (
	"testing"

	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
	"github.com/stretchr/testify/assert"
)

func newTestBlock(prev util.Hash, nonce uint32) *block.Block {
	bl := block.NewBlock()
	bl.Header.Version = block.ZerocoinHeaderVersion
	bl.Header.HashPrevBlock = prev
	bl.Header.Time = 1500000000 + nonce*60
	bl.Header.Bits = 0x207fffff
	bl.Header.Nonce = nonce
	coinbase := tx.NewTx(0, tx.DefaultVersion)
	coinbase.AddTxIn(txin.NewTxIn(nil, script.NewScriptRaw([]byte{0x04, byte(nonce), byte(nonce >> 8), 0, 0}), txin.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(amount.COIN, script.NewZerocoinMintScript([]byte{byte(nonce)})))
	bl.Txs = append(bl.Txs, coinbase)
	bl.Header.MerkleRoot = bl.BuildMerkleRoot()
	return bl
}

// buildChain connects n blocks on top of a fresh chain, forking from base
// when it is not nil.
func buildChain(c *Chain, base *blockindex.BlockIndex, n int, nonceOffset uint32) []*block.Block {
	prev := util.HashZero
	if base != nil {
		prev = base.BlockHash
	}
	blocks := make([]*block.Block, 0, n)
	for i := 0; i < n; i++ {
		bl := newTestBlock(prev, nonceOffset+uint32(i))
		bi := blockindex.NewBlockIndex(&bl.Header)
		bi.TxCount = int32(len(bl.Txs))
		c.AddToIndexMap(bi)
		blocks = append(blocks, bl)
		prev = bi.BlockHash
	}
	return blocks
}

func TestChainSetTip(t *testing.T) {
	c := NewChain()
	assert.Nil(t, c.Tip())
	assert.Nil(t, c.Genesis())
	assert.Equal(t, int32(-1), c.Height())

	blocks := buildChain(c, nil, 25, 0)
	tip := c.FindBlockIndex(blocks[24].GetHash())
	c.SetTip(tip)

	assert.Equal(t, int32(24), c.Height())
	assert.Equal(t, tip, c.Tip())
	assert.Equal(t, blocks[0].GetHash(), c.Genesis().BlockHash)
	assert.Equal(t, 25, c.IndexMapSize())
	for h := int32(0); h <= 24; h++ {
		bi := c.GetIndex(h)
		assert.Equal(t, h, bi.Height)
		assert.True(t, c.Contains(bi))
	}
	assert.Equal(t, c.GetIndex(11), c.Next(c.GetIndex(10)))
	assert.Nil(t, c.Next(tip))
	assert.Nil(t, c.GetIndex(25))
	assert.Equal(t, c.GetIndex(3), tip.GetAncestor(3))
}

func TestChainFindFork(t *testing.T) {
	c := NewChain()
	mainBlocks := buildChain(c, nil, 20, 0)
	c.SetTip(c.FindBlockIndex(mainBlocks[19].GetHash()))

	forkBase := c.GetIndex(12)
	side := buildChain(c, forkBase, 10, 1000)
	sideTip := c.FindBlockIndex(side[9].GetHash())
	assert.Equal(t, int32(22), sideTip.Height)
	assert.False(t, c.Contains(sideTip))
	assert.Nil(t, c.FindHashInActive(sideTip.BlockHash))

	assert.Equal(t, forkBase, c.FindFork(sideTip))

	c.SetTip(sideTip)
	assert.Equal(t, int32(22), c.Height())
	assert.True(t, c.Contains(sideTip))
	assert.False(t, c.Contains(c.FindBlockIndex(mainBlocks[19].GetHash())))
	assert.Equal(t, forkBase, c.GetIndex(12))
	assert.Nil(t, c.FindFork(nil))
}

func TestChainLockEmbedded(t *testing.T) {
	c := NewChain()
	blocks := buildChain(c, nil, 3, 0)

	c.Lock()
	c.SetTip(c.FindBlockIndex(blocks[2].GetHash()))
	c.Unlock()

	c.RLock()
	defer c.RUnlock()
	assert.Equal(t, int32(2), c.Height())
}
