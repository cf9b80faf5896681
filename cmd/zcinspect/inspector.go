package main

import (
	"path/filepath"

	"github.com/copernet/zerocoin/conf"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/logic/laccumulator"
	"github.com/copernet/zerocoin/logic/lwitness"
	"github.com/copernet/zerocoin/logic/lzerocoin"
	"github.com/copernet/zerocoin/model/chain"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/persist/witnessdb"
	"github.com/copernet/zerocoin/persist/zerocoindb"
	"github.com/pkg/errors"
)

const (
	zerocoinDirName  = "zerocoin"
	blockTreeDirName = "blocks"
	witnessFileName  = "witness.db"
)

// inspector holds the opened databases of one data dir.
type inspector struct {
	cfg      *conf.Configuration
	params   *zerocoin.Params
	zdb      *zerocoindb.ZerocoinDB
	blocks   *chain.BlockTreeDB
	cache    *witnessdb.WitnessDB
	chain    *chain.Chain
	store    *laccumulator.CheckpointStore
	registry *lzerocoin.Registry

	interrupt <-chan struct{}
}

// loadParams resolves the configured parameter set. The proof iteration
// count is baked into the parameter hash, so the configured value must
// agree with it.
func loadParams(cfg *conf.Configuration) (*zerocoin.Params, error) {
	p, err := zerocoin.ParamsForNetwork(cfg.Zerocoin.ParamSet)
	if err != nil {
		return nil, err
	}
	if iterations := cfg.Zerocoin.ZKPIterations; iterations != 0 && iterations != p.ZKPIterations {
		return nil, errors.Errorf("zkp iterations %d do not match parameter set %q (%d)",
			iterations, cfg.Zerocoin.ParamSet, p.ZKPIterations)
	}
	return p, nil
}

func openInspector(cfg *conf.Configuration) (*inspector, error) {
	p, err := loadParams(cfg)
	if err != nil {
		return nil, err
	}

	cacheSize := cfg.Persist.CacheSizeMB << 20
	in := &inspector{cfg: cfg, params: p, chain: chain.NewChain()}
	in.zdb, err = zerocoindb.NewZerocoinDB(&db.DBOption{
		FilePath:      filepath.Join(cfg.DataDir, zerocoinDirName),
		CacheSize:     cacheSize / 2,
		DontObfuscate: cfg.Persist.NoObfuscate,
	})
	if err != nil {
		return nil, err
	}
	in.blocks, err = chain.NewBlockTreeDB(&db.DBOption{
		FilePath:      filepath.Join(cfg.DataDir, blockTreeDirName),
		CacheSize:     cacheSize / 2,
		DontObfuscate: cfg.Persist.NoObfuscate,
	})
	if err != nil {
		in.Close()
		return nil, err
	}
	if cfg.Persist.WitnessCache {
		in.cache, err = witnessdb.Open(filepath.Join(cfg.DataDir, witnessFileName))
		if err != nil {
			in.Close()
			return nil, err
		}
	}

	in.store, err = laccumulator.NewCheckpointStore(in.zdb, cfg.Zerocoin.CheckpointCacheSize)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.registry = lzerocoin.NewRegistry(in.zdb)

	if err := in.blocks.LoadBlockIndex(in.chain); err != nil {
		in.Close()
		return nil, errors.Wrap(err, "load block index")
	}
	in.store.LoadAccumulatorValuesFromDB(in.chain.Tip())
	if !in.store.ZerocoinValidationEnabled() {
		log.Warn("zerocoin validation disabled: %d accumulator values missing, run reindex",
			len(in.store.MissingChecksums()))
	}
	return in, nil
}

func (in *inspector) engine() *lwitness.Engine {
	required := in.cfg.Zerocoin.RequiredAccumulation
	if required < 1 {
		required = lwitness.DefaultRequiredAccumulation
	}
	return &lwitness.Engine{
		Params:               in.params,
		Chain:                in.chain,
		Blocks:               in.blocks,
		Txs:                  in.blocks,
		Registry:             in.registry,
		Store:                in.store,
		Cache:                in.cache,
		RequiredAccumulation: uint32(required),
	}
}

func (in *inspector) spendContext() *lzerocoin.SpendContext {
	return &lzerocoin.SpendContext{
		Params:      in.params,
		Registry:    in.registry,
		Chain:       in.chain,
		Txs:         in.blocks,
		Checkpoints: in.store,
	}
}

func (in *inspector) batchConfig() zerocoin.BatchConfig {
	cfg := zerocoin.DefaultBatchConfig()
	if in.cfg.Zerocoin.BatchVerifyThreshold > 0 {
		cfg.Threshold = in.cfg.Zerocoin.BatchVerifyThreshold
	}
	if in.cfg.Zerocoin.BatchVerifyMaxThreads > 0 {
		cfg.MaxThreads = in.cfg.Zerocoin.BatchVerifyMaxThreads
	}
	return cfg
}

func (in *inspector) Close() {
	if in.cache != nil {
		in.cache.Close()
	}
	if in.blocks != nil {
		in.blocks.Close()
	}
	if in.zdb != nil {
		in.zdb.Close()
	}
}
