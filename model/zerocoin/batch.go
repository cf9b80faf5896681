package zerocoin

import (
	"math/big"

	"github.com/copernet/zerocoin/util"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchVerifyThreshold  = 4
	DefaultBatchVerifyMaxThreads = 4
)

// SoKItem is one serial number proof together with the public inputs it
// is verified against.
type SoKItem struct {
	Proof      SerialSoK
	Serial     *big.Int
	Commitment *big.Int
	MsgHash    util.Hash
}

func (item *SoKItem) Verify() bool {
	if item.Proof == nil || item.Serial == nil || item.Commitment == nil {
		return false
	}
	return item.Proof.Verify(item.Serial, item.Commitment, item.MsgHash)
}

// BatchConfig bounds parallel verification. Batches smaller than Threshold
// are checked on the calling goroutine.
type BatchConfig struct {
	Threshold  int
	MaxThreads int
}

func DefaultBatchConfig() BatchConfig {
	return BatchConfig{Threshold: DefaultBatchVerifyThreshold, MaxThreads: DefaultBatchVerifyMaxThreads}
}

// BatchVerifySoK reports whether every item verifies. Items are split
// evenly over at most MaxThreads workers and all workers run to completion.
func BatchVerifySoK(items []SoKItem, cfg BatchConfig) bool {
	if len(items) == 0 {
		return true
	}
	if cfg.MaxThreads <= 1 || len(items) < cfg.Threshold {
		return verifyRange(items)
	}

	workers := cfg.MaxThreads
	if workers > len(items) {
		workers = len(items)
	}
	chunk := (len(items) + workers - 1) / workers
	results := make([]bool, 0, workers)
	for start := 0; start < len(items); start += chunk {
		results = append(results, false)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range results {
		i := i
		start := i * chunk
		end := start + chunk
		if end > len(items) {
			end = len(items)
		}
		g.Go(func() error {
			results[i] = verifyRange(items[start:end])
			return nil
		})
	}
	g.Wait()

	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}

func verifyRange(items []SoKItem) bool {
	ok := true
	for i := range items {
		if !items[i].Verify() {
			ok = false
		}
	}
	return ok
}
