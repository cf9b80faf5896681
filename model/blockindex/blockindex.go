package blockindex

import (
	"fmt"
	"sort"

	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
)

/**
 * The block chain is a tree shaped structure starting with the genesis block at
 * the root, with each block potentially having multiple candidates to be the
 * next block. A blockIndex may have multiple prev pointing to it, but at most
 * one of them can be part of the currently active branch.
 */
type BlockIndex struct {
	Header    block.BlockHeader
	BlockHash util.Hash
	Prev      *BlockIndex
	Skip      *BlockIndex
	Height    int32
	TxCount   int32

	// AccumulatorCheckpoint holds the per denomination checksums whose hash
	// the header commits to.
	AccumulatorCheckpoint accumulators.Checkpoint
	// MintDenominations lists one entry per mint in the block, duplicates included.
	MintDenominations []zerocoin.Denomination
}

const medianTimeSpan = 11

func NewBlockIndex(blkHeader *block.BlockHeader) *BlockIndex {
	blockIndex := new(BlockIndex)
	blockIndex.SetNull()
	blockIndex.Header = *blkHeader
	blockIndex.BlockHash = blkHeader.GetHash()
	return blockIndex
}

func (bIndex *BlockIndex) SetNull() {
	bIndex.Header.SetNull()
	bIndex.BlockHash = util.Hash{}
	bIndex.Prev = nil
	bIndex.Skip = nil
	bIndex.Height = 0
	bIndex.TxCount = 0
	bIndex.AccumulatorCheckpoint = accumulators.NewCheckpoint()
	bIndex.MintDenominations = nil
}

func (bIndex *BlockIndex) GetBlockHeader() *block.BlockHeader {
	return &bIndex.Header
}

func (bIndex *BlockIndex) GetBlockHash() *util.Hash {
	return &bIndex.BlockHash
}

func (bIndex *BlockIndex) GetBlockTime() uint32 {
	return bIndex.Header.Time
}

// MintedDenomination reports whether the block contains at least one mint of d.
func (bIndex *BlockIndex) MintedDenomination(d zerocoin.Denomination) bool {
	for _, denom := range bIndex.MintDenominations {
		if denom == d {
			return true
		}
	}
	return false
}

// CheckpointChecksum returns the checksum recorded for d, or the zero hash.
func (bIndex *BlockIndex) CheckpointChecksum(d zerocoin.Denomination) util.Hash {
	return bIndex.AccumulatorCheckpoint[d]
}

func (bIndex *BlockIndex) GetMedianTimePast() int64 {
	median := make([]int64, 0, medianTimeSpan)
	index := bIndex
	for i := 0; i < medianTimeSpan && index != nil; i++ {
		median = append(median, int64(index.GetBlockTime()))
		index = index.Prev
	}
	sort.Slice(median, func(i, j int) bool {
		return median[i] < median[j]
	})
	return median[len(median)/2]
}

func (bIndex *BlockIndex) BuildSkip() {
	if bIndex.Prev != nil {
		bIndex.Skip = bIndex.Prev.GetAncestor(getSkipHeight(bIndex.Height))
	}
}

func invertLowestOne(n int32) int32 {
	return n & (n - 1)
}

func getSkipHeight(height int32) int32 {
	if height < 2 {
		return 0
	}
	if (height & 1) > 0 {
		return invertLowestOne(invertLowestOne(height-1)) + 1
	}
	return invertLowestOne(height)
}

func (bIndex *BlockIndex) GetAncestor(height int32) *BlockIndex {
	if height > bIndex.Height || height < 0 {
		return nil
	}
	indexWalk := bIndex
	heightWalk := bIndex.Height
	for heightWalk > height {
		heightSkip := getSkipHeight(heightWalk)
		heightSkipPrev := getSkipHeight(heightWalk - 1)
		if indexWalk.Skip != nil && (heightSkip == height ||
			(heightSkip > height && !(heightSkipPrev < heightSkip-2 && heightSkipPrev >= height))) {
			indexWalk = indexWalk.Skip
			heightWalk = heightSkip
		} else {
			if indexWalk.Prev == nil {
				panic("The blockIndex pointer should not be nil")
			}
			indexWalk = indexWalk.Prev
			heightWalk--
		}
	}
	return indexWalk
}

func (bIndex *BlockIndex) String() string {
	return fmt.Sprintf("BlockIndex(pprev=%p, height=%d, merkle=%s, hashBlock=%s, mints=%d)", bIndex.Prev,
		bIndex.Height, bIndex.Header.MerkleRoot.String(), bIndex.BlockHash.String(), len(bIndex.MintDenominations))
}
