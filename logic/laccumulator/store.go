package laccumulator

import (
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/persist/zerocoindb"
	"github.com/copernet/zerocoin/util"
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"gopkg.in/fatih/set.v0"
)

const DefaultCheckpointCacheSize = 4096

// CheckpointStore maps accumulator checksums to values. Values live in the
// zerocoin database with an LRU in front. Checksums the active tip needs
// but the database lacks are tracked, and zerocoin validation stays
// disabled until they are all present.
type CheckpointStore struct {
	db      *zerocoindb.ZerocoinDB
	cache   *lru.Cache
	missing set.Interface
}

func NewCheckpointStore(zdb *zerocoindb.ZerocoinDB, cacheSize int) (*CheckpointStore, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCheckpointCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &CheckpointStore{
		db:      zdb,
		cache:   cache,
		missing: set.New(set.ThreadSafe),
	}, nil
}

// AddAccumulatorChecksum makes value resolvable by checksum. With
// memoryOnly the database is left untouched.
func (s *CheckpointStore) AddAccumulatorChecksum(checksum util.Hash, value *big.Int, memoryOnly bool) error {
	if !memoryOnly {
		if err := s.db.WriteAccumulatorValue(&checksum, value); err != nil {
			return err
		}
	}
	s.cache.Add(checksum, new(big.Int).Set(value))
	s.missing.Remove(checksum)
	missingChecksums.Set(float64(s.missing.Size()))
	return nil
}

func (s *CheckpointStore) GetAccumulatorValue(checksum util.Hash) (*big.Int, error) {
	if v, ok := s.cache.Get(checksum); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return new(big.Int).Set(v.(*big.Int)), nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	value, err := s.db.ReadAccumulatorValue(&checksum)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.Wrap(errcode.New(errcode.ErrorChecksumNotFound), checksum.String())
	}
	s.cache.Add(checksum, value)
	return new(big.Int).Set(value), nil
}

// EraseChecksum drops one checksum from the cache and the database.
func (s *CheckpointStore) EraseChecksum(checksum util.Hash) error {
	s.cache.Remove(checksum)
	return s.db.EraseAccumulatorValue(&checksum)
}

// EraseCheckpoint erases the values of a checkpoint that a disconnected
// block introduced. A checksum that replacement still holds for the same
// denomination is kept.
func (s *CheckpointStore) EraseCheckpoint(erased, replacement accumulators.Checkpoint) error {
	for _, d := range zerocoin.Denominations {
		checksum := erased[d]
		if checksum.IsNull() || checksum == replacement[d] {
			continue
		}
		if err := s.EraseChecksum(checksum); err != nil {
			return err
		}
		log.Print("accumulator", "debug", "erased accumulator checksum %s of %s", checksum.String(), d)
	}
	return nil
}

// LoadAccumulatorValuesFromDB warms the cache with the values the tip's
// checkpoint refers to. Absent values are recorded rather than returned,
// which leaves the node running with zerocoin validation disabled.
func (s *CheckpointStore) LoadAccumulatorValuesFromDB(tip *blockindex.BlockIndex) {
	if tip == nil {
		return
	}
	for _, d := range zerocoin.Denominations {
		checksum := tip.CheckpointChecksum(d)
		if checksum.IsNull() {
			continue
		}
		if _, err := s.GetAccumulatorValue(checksum); err != nil {
			log.Error("accumulator value for %s checksum %s at height %d missing: %v",
				d, checksum.String(), tip.Height, err)
			s.missing.Add(checksum)
		}
	}
	missingChecksums.Set(float64(s.missing.Size()))
}

func (s *CheckpointStore) ZerocoinValidationEnabled() bool {
	return s.missing.IsEmpty()
}

// MissingChecksums lists the checksums found missing at load time.
func (s *CheckpointStore) MissingChecksums() []util.Hash {
	items := s.missing.List()
	out := make([]util.Hash, 0, len(items))
	for _, item := range items {
		out = append(out, item.(util.Hash))
	}
	return out
}

// DatabaseChecksums persists the current value of every used accumulator
// in m in one batch.
func (s *CheckpointStore) DatabaseChecksums(m *accumulators.AccumulatorMap) error {
	values := make(map[util.Hash]*big.Int, len(zerocoin.Denominations))
	for _, d := range zerocoin.Denominations {
		if m.IsUnused(d) {
			continue
		}
		value := m.GetValue(d)
		values[accumulators.Checksum(value)] = value
	}
	if err := s.db.WriteAccumulatorValues(values); err != nil {
		return err
	}
	for checksum, value := range values {
		s.cache.Add(checksum, value)
		s.missing.Remove(checksum)
	}
	missingChecksums.Set(float64(s.missing.Size()))
	return nil
}

// Wipe deletes every stored accumulator value, used before a reindex.
func (s *CheckpointStore) Wipe() error {
	s.cache.Purge()
	s.missing.Clear()
	missingChecksums.Set(0)
	return s.db.WipeCoins(db.DbAccChecksum)
}
