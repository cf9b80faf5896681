package lwitness

import (
	"time"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/logic/laccumulator"
	"github.com/copernet/zerocoin/logic/lzerocoin"
	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/witnessdb"
	"github.com/copernet/zerocoin/util"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

const (
	DefaultSecurityLevel        = 100
	DefaultRequiredAccumulation = 1

	maxRandomizedLevel = 99
	securityJitter     = 10
	// stopMargin keeps the default stop height two checkpoints below the tip.
	stopMargin = 2 * laccumulator.CheckpointInterval
)

var (
	// ErrInsufficientAccumulation means too few mints followed the coin.
	// Retrying once the chain has grown can succeed.
	ErrInsufficientAccumulation = errcode.New(errcode.ErrorInsufficientAccumulation)
)

// IsRetryable reports whether GenerateWitness may succeed later without
// any change to the cached data.
func IsRetryable(err error) bool {
	return errcode.IsErrorCode(err, errcode.ErrorInsufficientAccumulation)
}

// RandomizeSecurityLevel adds up to 9 to level so spends of the same party
// do not stop at identical depths. Level 100 and above means the deepest
// witness and is returned unchanged.
func RandomizeSecurityLevel(level int) int {
	if level >= DefaultSecurityLevel {
		return level
	}
	level += util.GetRandInt(securityJitter)
	if level > maxRandomizedLevel {
		level = maxRandomizedLevel
	}
	return level
}

// Engine builds witnesses by replaying the mints of the active chain. Block
// data is read under the chain's read lock one block at a time, so block
// connection can interleave with a long replay.
type Engine struct {
	Params   *zerocoin.Params
	Chain    *chain.Chain
	Blocks   chain.BlockReader
	Txs      chain.TxReader
	Registry *lzerocoin.Registry
	Store    *laccumulator.CheckpointStore
	// Cache persists replay progress. It may be nil.
	Cache *witnessdb.WitnessDB

	RequiredAccumulation uint32
}

// mintCheckpointHeight is the newest checkpoint height that cannot contain
// a coin minted at mintHeight.
func mintCheckpointHeight(mintHeight int32) int32 {
	return mintHeight - mintHeight%laccumulator.CheckpointInterval
}

func (e *Engine) locateMint(data *CoinWitnessData) error {
	txid, ok, err := e.Registry.GetMintTx(data.Coin.Hash())
	if err != nil {
		return err
	}
	if !ok {
		return errcode.New(errcode.ErrorMintNotFound)
	}
	_, blockHash, err := e.Txs.GetTransaction(txid)
	if err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorMintNotFound), err.Error())
	}

	e.Chain.RLock()
	bi := e.Chain.FindHashInActive(blockHash)
	e.Chain.RUnlock()
	if bi == nil {
		return errors.Wrapf(errcode.New(errcode.ErrorMintNotInChain), "block %s", blockHash.String())
	}
	data.TxID = txid
	data.HeightMintAdded = bi.Height
	return nil
}

// stopHeight picks the end of the replay window. The witness is verified
// against the checkpoint at the returned height plus 10.
func (e *Engine) stopHeight(data *CoinWitnessData, securityLevel int, target int32) (int32, error) {
	e.Chain.RLock()
	tip := e.Chain.Height()
	e.Chain.RUnlock()

	stop := tip - tip%laccumulator.CheckpointInterval - stopMargin
	if target > 0 {
		if target%laccumulator.CheckpointInterval != 0 || target > tip {
			return 0, errors.Wrapf(errcode.New(errcode.ErrorWitnessCheckpointMissing), "target %d tip %d", target, tip)
		}
		stop = target - laccumulator.CheckpointInterval
	}
	levelCap := mintCheckpointHeight(data.HeightMintAdded) + int32(laccumulator.CheckpointInterval*securityLevel)
	if levelCap < stop {
		stop = levelCap
	}
	return stop, nil
}

func (e *Engine) initialize(data *CoinWitnessData, accMap *accumulators.AccumulatorMap) error {
	c0 := mintCheckpointHeight(data.HeightMintAdded)

	e.Chain.RLock()
	bi := e.Chain.GetIndex(c0)
	var cp accumulators.Checkpoint
	if bi != nil {
		cp = bi.AccumulatorCheckpoint
	}
	e.Chain.RUnlock()
	if bi == nil {
		return errors.Wrapf(errcode.New(errcode.ErrorWitnessCheckpointMissing), "height %d", c0)
	}
	if cp == nil {
		cp = accumulators.NewCheckpoint()
	}
	if err := accMap.Load(cp, e.Store); err != nil {
		return err
	}
	acc, err := accMap.GetAccumulator(data.Denom)
	if err != nil {
		return err
	}

	start := c0 - laccumulator.CheckpointInterval
	if start < 0 {
		start = 0
	}
	data.SetNull()
	data.Accumulator = acc
	data.Witness = zerocoin.NewAccumulatorWitness(acc, data.Coin)
	data.HeightCheckpoint = c0
	data.HeightAccStart = start
	data.HeightPrecomputed = start - 1
	data.state = StatePrecomputing
	return nil
}

// replayBlock folds the mints of d at height into data. The chain lock is
// held only while resolving the block.
func (e *Engine) replayBlock(data *CoinWitnessData, height int32) error {
	e.Chain.RLock()
	bi := e.Chain.GetIndex(height)
	var minted bool
	var hash util.Hash
	if bi != nil {
		minted = bi.MintedDenomination(data.Denom)
		hash = bi.BlockHash
	}
	e.Chain.RUnlock()
	if bi == nil {
		return errors.Errorf("no active block at height %d", height)
	}
	if !minted {
		return nil
	}

	bl, err := e.Blocks.ReadBlock(hash)
	if err != nil {
		return err
	}
	coins, err := lzerocoin.BlockToPubcoinList(e.Params, bl)
	if err != nil {
		return err
	}
	for _, coin := range coins {
		if coin.Denomination() != data.Denom {
			continue
		}
		data.Accumulator.Increment(coin.Value())
		if coin.Equal(data.Coin) {
			continue
		}
		data.Witness.AddRawValue(coin.Value())
		data.MintsAdded++
	}
	return nil
}

func (e *Engine) persist(data *CoinWitnessData) {
	if e.Cache == nil {
		return
	}
	b, err := data.Bytes()
	if err == nil {
		err = e.Cache.Put(data.Coin.Hash(), b)
	}
	if err != nil {
		log.Warn("witness cache write for %s failed: %v", data.Coin.Hash().String(), err)
	}
}

// GenerateWitness extends data until its witness verifies against a
// checkpoint. Without a target the checkpoint is picked from the tip and
// the randomized securityLevel; a nonzero target names the checkpoint
// height to use. accMap is scratch space and is overwritten.
func (e *Engine) GenerateWitness(data *CoinWitnessData, accMap *accumulators.AccumulatorMap, securityLevel int,
	target int32) error {

	begin := time.Now()
	defer func() {
		witnessDuration.Observe(time.Since(begin).Seconds())
	}()

	// a reorg can move the mint, so stale data resolves it again
	if data.TxID.IsNull() || data.state == StateUninitialized || data.state == StateStale {
		if err := e.locateMint(data); err != nil {
			return err
		}
	}

	stop, err := e.stopHeight(data, RandomizeSecurityLevel(securityLevel), target)
	if err != nil {
		return err
	}
	if stop <= data.HeightMintAdded {
		log.Print("witness", "debug", "witness for mint at %d cannot stop at %d yet", data.HeightMintAdded, stop)
		return errors.Wrapf(ErrInsufficientAccumulation, "mint at %d needs a stop height above it, have %d",
			data.HeightMintAdded, stop)
	}

	if data.state == StateUninitialized || data.state == StateStale || data.HeightPrecomputed >= stop {
		if err := e.initialize(data, accMap); err != nil {
			return err
		}
		witnessResets.Inc()
	}
	data.state = StatePrecomputing

	for h := data.HeightPrecomputed + 1; h < stop; h++ {
		if err := e.replayBlock(data, h); err != nil {
			return errors.Wrapf(err, "replay height %d", h)
		}
		data.HeightPrecomputed = h
		e.persist(data)
		witnessBlocksReplayed.Inc()
	}

	checkpointHeight := stop + laccumulator.CheckpointInterval
	e.Chain.RLock()
	bi := e.Chain.GetIndex(checkpointHeight)
	var cp accumulators.Checkpoint
	if bi != nil {
		cp = bi.AccumulatorCheckpoint
	}
	e.Chain.RUnlock()
	if bi == nil {
		return errors.Wrapf(errcode.New(errcode.ErrorWitnessCheckpointMissing), "height %d", checkpointHeight)
	}
	if err := e.verify(data, accMap, cp, bi); err != nil {
		data.MarkStale()
		e.persist(data)
		return err
	}

	if data.MintsAdded < e.RequiredAccumulation {
		return errors.Wrapf(ErrInsufficientAccumulation, "%d of %d mints", data.MintsAdded, e.RequiredAccumulation)
	}
	data.HeightCheckpoint = checkpointHeight
	data.state = StateReady
	e.persist(data)
	log.Print("witness", "debug", "witness ready: %s", data)
	return nil
}

func (e *Engine) verify(data *CoinWitnessData, accMap *accumulators.AccumulatorMap, cp accumulators.Checkpoint,
	bi *blockindex.BlockIndex) error {

	if cp == nil {
		cp = accumulators.NewCheckpoint()
	}
	if err := accMap.Load(cp, e.Store); err != nil {
		return err
	}
	acc, err := accMap.GetAccumulator(data.Denom)
	if err != nil {
		return err
	}
	if !data.Accumulator.Equal(acc) || !data.Witness.VerifyWitness(acc, data.Coin) {
		witnessFailures.Inc()
		log.Error("witness does not verify against checkpoint at %d: %s", bi.Height, spew.Sdump(data))
		return errors.Wrapf(errcode.New(errcode.ErrorWitnessVerifyFailed), "checkpoint height %d", bi.Height)
	}
	return nil
}

// Load returns the cached replay state for coin, or a fresh one.
func (e *Engine) Load(coin *zerocoin.PublicCoin) (*CoinWitnessData, error) {
	if e.Cache != nil {
		b, err := e.Cache.Get(coin.Hash())
		if err != nil {
			return nil, err
		}
		if b != nil {
			data, err := ParseCoinWitnessData(e.Params, b)
			if err == nil && data.Coin.Equal(coin) {
				return data, nil
			}
			log.Warn("dropping unreadable witness cache entry for %s: %v", coin.Hash().String(), err)
		}
	}
	return NewCoinWitnessData(coin), nil
}

// Forget drops the cached state of a coin once it is spent.
func (e *Engine) Forget(coin *zerocoin.PublicCoin) error {
	if e.Cache == nil {
		return nil
	}
	return e.Cache.Delete(coin.Hash())
}

// InvalidateAbove marks every cached witness that replayed past height as
// stale, after a reorg disconnected blocks above it.
func (e *Engine) InvalidateAbove(height int32) (int, error) {
	if e.Cache == nil {
		return 0, nil
	}
	stale := make(map[util.Hash][]byte)
	err := e.Cache.ForEach(func(pubcoinHash util.Hash, b []byte) error {
		data, err := ParseCoinWitnessData(e.Params, b)
		if err != nil || data.HeightPrecomputed <= height {
			return nil
		}
		data.MarkStale()
		nb, err := data.Bytes()
		if err != nil {
			return err
		}
		stale[pubcoinHash] = nb
		return nil
	})
	if err != nil {
		return 0, err
	}
	for h, b := range stale {
		if err := e.Cache.Put(h, b); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
