package chain

import (
	"sync"

	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// Chain is the active chain plus every known block index. The embedded
// lock is the global chain lock: writers hold it while connecting or
// disconnecting blocks, readers hold it for each lookup batch. Methods do
// not take it themselves.
type Chain struct {
	sync.RWMutex

	active   []*blockindex.BlockIndex
	indexMap map[util.Hash]*blockindex.BlockIndex // selfHash :*index
}

func NewChain() *Chain {
	return &Chain{
		active:   make([]*blockindex.BlockIndex, 0),
		indexMap: make(map[util.Hash]*blockindex.BlockIndex),
	}
}

func (c *Chain) Genesis() *blockindex.BlockIndex {
	if len(c.active) > 0 {
		return c.active[0]
	}
	return nil
}

func (c *Chain) Tip() *blockindex.BlockIndex {
	if len(c.active) > 0 {
		return c.active[len(c.active)-1]
	}
	return nil
}

// Height returns the tip height, or -1 for an empty chain.
func (c *Chain) Height() int32 {
	return int32(len(c.active)) - 1
}

func (c *Chain) GetIndex(height int32) *blockindex.BlockIndex {
	if height < 0 || height >= int32(len(c.active)) {
		return nil
	}
	return c.active[height]
}

func (c *Chain) Contains(index *blockindex.BlockIndex) bool {
	if index == nil {
		return false
	}
	return c.GetIndex(index.Height) == index
}

func (c *Chain) Next(index *blockindex.BlockIndex) *blockindex.BlockIndex {
	if c.Contains(index) {
		return c.GetIndex(index.Height + 1)
	}
	return nil
}

func (c *Chain) SetTip(index *blockindex.BlockIndex) {
	if index == nil {
		c.active = []*blockindex.BlockIndex{}
		return
	}

	tmp := make([]*blockindex.BlockIndex, index.Height+1)
	copy(tmp, c.active)
	c.active = tmp
	for index != nil && c.active[index.Height] != index {
		c.active[index.Height] = index
		index = index.Prev
	}
}

func (c *Chain) FindBlockIndex(hash util.Hash) *blockindex.BlockIndex {
	bi, ok := c.indexMap[hash]
	if ok {
		return bi
	}
	return nil
}

func (c *Chain) FindHashInActive(hash util.Hash) *blockindex.BlockIndex {
	bi := c.FindBlockIndex(hash)
	if c.Contains(bi) {
		return bi
	}
	return nil
}

// AddToIndexMap registers bi and links it to its parent when the parent is known.
func (c *Chain) AddToIndexMap(bi *blockindex.BlockIndex) error {
	if bi == nil {
		return errors.New("nil blockIndex")
	}
	hash := bi.GetBlockHash()
	c.indexMap[*hash] = bi
	if pre, ok := c.indexMap[bi.Header.HashPrevBlock]; ok && pre != bi {
		bi.Prev = pre
		bi.Height = pre.Height + 1
		bi.BuildSkip()
	}
	log.Debug("AddToIndexMap:%s height:%d", hash.String(), bi.Height)
	return nil
}

func (c *Chain) IndexMapSize() int {
	return len(c.indexMap)
}

func (c *Chain) FindFork(blIndex *blockindex.BlockIndex) *blockindex.BlockIndex {
	if blIndex == nil {
		return nil
	}
	if blIndex.Height > c.Height() {
		blIndex = blIndex.GetAncestor(c.Height())
	}
	for blIndex != nil && !c.Contains(blIndex) {
		blIndex = blIndex.Prev
	}
	return blIndex
}
