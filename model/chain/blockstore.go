package chain

import (
	"sync"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// BlockReader fetches full blocks by hash.
type BlockReader interface {
	ReadBlock(hash util.Hash) (*block.Block, error)
}

// TxReader looks up a confirmed transaction and the block holding it.
type TxReader interface {
	GetTransaction(txid util.Hash) (*tx.Tx, util.Hash, error)
}

type BlockStore interface {
	BlockReader
	TxReader
}

// MemBlockStore keeps blocks in memory, indexed by block and transaction hash.
type MemBlockStore struct {
	lock   sync.RWMutex
	blocks map[util.Hash]*block.Block
	txs    map[util.Hash]util.Hash
}

func NewMemBlockStore() *MemBlockStore {
	return &MemBlockStore{
		blocks: make(map[util.Hash]*block.Block),
		txs:    make(map[util.Hash]util.Hash),
	}
}

func (s *MemBlockStore) AddBlock(bl *block.Block) {
	s.lock.Lock()
	defer s.lock.Unlock()

	hash := bl.GetHash()
	s.blocks[hash] = bl
	for _, t := range bl.Txs {
		s.txs[t.GetHash()] = hash
	}
}

func (s *MemBlockStore) ReadBlock(hash util.Hash) (*block.Block, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	bl, ok := s.blocks[hash]
	if !ok {
		return nil, errors.Wrap(errcode.New(errcode.FailedToReadBlock), hash.String())
	}
	return bl, nil
}

func (s *MemBlockStore) GetTransaction(txid util.Hash) (*tx.Tx, util.Hash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	blockHash, ok := s.txs[txid]
	if !ok {
		return nil, util.HashZero, errors.Wrap(errcode.New(errcode.FailedToReadTransaction), txid.String())
	}
	for _, t := range s.blocks[blockHash].Txs {
		if t.GetHash() == txid {
			return t, blockHash, nil
		}
	}
	return nil, util.HashZero, errors.Wrap(errcode.New(errcode.FailedToReadTransaction), txid.String())
}
