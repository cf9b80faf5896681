package laccumulator

import (
	"math/big"
	"time"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/logic/lzerocoin"
	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const (
	// CheckpointInterval is the number of blocks between checkpoint updates.
	CheckpointInterval = 10
	// checkpointLag is how far the newest mint folded into a checkpoint
	// trails the block that commits to it.
	checkpointLag = 10

	checkpointDoS = 100
)

// IsCheckpointHeight reports whether a checkpoint may change at height.
// Height 10 is excluded because the window behind it is empty.
func IsCheckpointHeight(height int32) bool {
	return height%CheckpointInterval == 0 && height > CheckpointInterval
}

// CheckpointCommitment is the value a block header carries for cp. A
// checkpoint without any used denomination commits to the zero hash.
func CheckpointCommitment(cp accumulators.Checkpoint) util.Hash {
	if cp == nil || cp.IsEmpty() {
		return util.HashZero
	}
	return accumulators.CheckpointHash(cp)
}

func checkpointOf(bi *blockindex.BlockIndex) accumulators.Checkpoint {
	if bi == nil || bi.AccumulatorCheckpoint == nil {
		return accumulators.NewCheckpoint()
	}
	return bi.AccumulatorCheckpoint.Copy()
}

// CalculateCheckpoint returns the checkpoint of the block at height, which
// extends the active chain. Off a checkpoint height, or when the window
// [height-20, height-10) holds no mint, it is the parent's checkpoint
// unchanged. New values are cached in store but not written to disk.
func CalculateCheckpoint(height int32, c *chain.Chain, blocks chain.BlockReader, store *CheckpointStore,
	p *zerocoin.Params) (accumulators.Checkpoint, error) {

	cp, m, err := calculateCheckpoint(height, c.GetIndex(height-1), blocks, store, p)
	if err != nil || m == nil {
		return cp, err
	}
	for _, d := range zerocoin.Denominations {
		if m.IsUnused(d) {
			continue
		}
		if err := store.AddAccumulatorChecksum(cp[d], m.GetValue(d), true); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// calculateCheckpoint returns the map it folded mints into, or nil when the
// checkpoint is inherited.
func calculateCheckpoint(height int32, prev *blockindex.BlockIndex, blocks chain.BlockReader, store *CheckpointStore,
	p *zerocoin.Params) (accumulators.Checkpoint, *accumulators.AccumulatorMap, error) {

	if prev == nil {
		if height == 0 {
			return accumulators.NewCheckpoint(), nil, nil
		}
		return nil, nil, errors.Errorf("no parent for checkpoint at height %d", height)
	}
	if !IsCheckpointHeight(height) {
		return checkpointOf(prev), nil, nil
	}

	start := time.Now()
	defer func() {
		checkpointDuration.Observe(time.Since(start).Seconds())
	}()

	m := accumulators.NewAccumulatorMap(p)
	if err := m.Load(checkpointOf(prev), store); err != nil {
		return nil, nil, errors.Wrapf(err, "load checkpoint of height %d", prev.Height)
	}

	minted := 0
	for h := height - checkpointLag - CheckpointInterval; h < height-checkpointLag; h++ {
		bi := prev.GetAncestor(h)
		if bi == nil {
			return nil, nil, errors.Errorf("no ancestor at height %d", h)
		}
		if len(bi.MintDenominations) == 0 {
			continue
		}
		bl, err := blocks.ReadBlock(bi.BlockHash)
		if err != nil {
			return nil, nil, err
		}
		coins, err := lzerocoin.BlockToPubcoinList(p, bl)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "mints of block %d", h)
		}
		for _, coin := range coins {
			if err := m.Accumulate(coin, true); err != nil {
				return nil, nil, err
			}
			minted++
		}
	}
	if minted == 0 {
		return checkpointOf(prev), nil, nil
	}
	log.Print("accumulator", "debug", "checkpoint at height %d folds %d mints", height, minted)
	return m.GetCheckpoints(true), m, nil
}

// ValidateCheckpoint recomputes the checkpoint of bl, which extends bi's
// parent, and rejects the block when its header disagrees. On success the
// checkpoint is stored on bi and any new accumulator values are persisted.
func ValidateCheckpoint(bl *block.Block, bi *blockindex.BlockIndex, blocks chain.BlockReader, store *CheckpointStore,
	p *zerocoin.Params) error {

	expected, m, err := calculateCheckpoint(bi.Height, bi.Prev, blocks, store, p)
	if err != nil {
		return err
	}

	want := CheckpointCommitment(expected)
	got := util.HashZero
	if bl.Header.HasAccumulatorCheckpoint() {
		got = bl.Header.AccumulatorCheckpoint
	}
	if got != want {
		checkpointValidations.WithLabelValues("rejected").Inc()
		reason := errcode.ErrorCheckpointMismatch.String()
		if !IsCheckpointHeight(bi.Height) {
			reason = errcode.ErrorCheckpointOffBoundary.String()
		}
		log.Warn("block %s at height %d: %s, header %s expected %s",
			bl.GetHash().String(), bi.Height, reason, got.String(), want.String())
		return errcode.NewReject(errcode.RejectCheckpoint, checkpointDoS, reason)
	}

	bi.AccumulatorCheckpoint = expected
	if m != nil {
		if err := store.DatabaseChecksums(m); err != nil {
			return err
		}
	}
	checkpointValidations.WithLabelValues("accepted").Inc()
	return nil
}

// DisconnectCheckpoint erases the accumulator values bi introduced when it
// leaves the active chain.
func DisconnectCheckpoint(bi *blockindex.BlockIndex, store *CheckpointStore) error {
	if !IsCheckpointHeight(bi.Height) || bi.Prev == nil {
		return nil
	}
	return store.EraseCheckpoint(checkpointOf(bi), checkpointOf(bi.Prev))
}

// FindFirstHeightWithChecksum returns the lowest active height whose
// checkpoint holds checksum for d, or 0 when no block does.
func FindFirstHeightWithChecksum(c *chain.Chain, checksum util.Hash, d zerocoin.Denomination) int32 {
	if checksum.IsNull() {
		return 0
	}
	tipHeight := c.Height()
	for bi := c.GetIndex(0); bi != nil; {
		if bi.CheckpointChecksum(d) == checksum {
			return bi.Height
		}
		if bi.Height%CheckpointInterval == 0 {
			if bi.Height+CheckpointInterval > tipHeight {
				return 0
			}
			bi = c.GetIndex(bi.Height + CheckpointInterval)
			continue
		}
		bi = c.Next(bi)
	}
	return 0
}

// GetAccumulatorValue returns the value of d's accumulator in the
// checkpoint active at height.
func GetAccumulatorValue(c *chain.Chain, store *CheckpointStore, p *zerocoin.Params, height int32,
	d zerocoin.Denomination) (*big.Int, error) {

	bi := c.GetIndex(height)
	if bi == nil {
		return nil, errors.Errorf("no active block at height %d", height)
	}
	checksum := bi.CheckpointChecksum(d)
	if checksum.IsNull() {
		return zerocoin.NewAccumulator(p, d).Value(), nil
	}
	return store.GetAccumulatorValue(checksum)
}
