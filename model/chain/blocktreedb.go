package chain

import (
	"bytes"
	"sort"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/block"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/tx"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

// BlockTreeDB persists block indexes, block bodies and a transaction index.
type BlockTreeDB struct {
	dbw *db.DBWrapper
}

func NewBlockTreeDB(do *db.DBOption) (*BlockTreeDB, error) {
	if do == nil {
		return nil, errcode.New(errcode.ErrorOpenDatabase)
	}
	dbw, err := db.NewDBWrapper(do)
	if err != nil {
		return nil, errors.Wrap(errcode.New(errcode.ErrorOpenDatabase), err.Error())
	}
	return &BlockTreeDB{dbw: dbw}, nil
}

func (blockTreeDB *BlockTreeDB) Close() error {
	return blockTreeDB.dbw.Close()
}

func hashKey(prefix byte, hash util.Hash) []byte {
	key := make([]byte, 0, 1+util.Hash256Size)
	key = append(key, prefix)
	return append(key, hash[:]...)
}

// WriteBlock stores the block body, its index record and the tx index in one batch.
func (blockTreeDB *BlockTreeDB) WriteBlock(bl *block.Block, bi *blockindex.BlockIndex) error {
	batch := db.NewBatchWrapper(blockTreeDB.dbw)
	hash := bl.GetHash()

	buf := bytes.NewBuffer(make([]byte, 0, bl.SerializeSize()))
	if err := bl.Serialize(buf); err != nil {
		return err
	}
	batch.Write(hashKey(db.DbBlockData, hash), buf.Bytes())

	buf = bytes.NewBuffer(nil)
	if err := blockindex.NewDiskBlockIndex(bi).Serialize(buf); err != nil {
		return err
	}
	batch.Write(hashKey(db.DbBlockIndex, hash), buf.Bytes())

	for _, t := range bl.Txs {
		batch.Write(hashKey(db.DbTxIndex, t.GetHash()), hash[:])
	}
	if err := blockTreeDB.dbw.WriteBatch(batch, true); err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	return nil
}

// WriteBlockIndexes rewrites index records, for example after a checkpoint update.
func (blockTreeDB *BlockTreeDB) WriteBlockIndexes(indexes []*blockindex.BlockIndex) error {
	batch := db.NewBatchWrapper(blockTreeDB.dbw)
	for _, bi := range indexes {
		buf := bytes.NewBuffer(nil)
		if err := blockindex.NewDiskBlockIndex(bi).Serialize(buf); err != nil {
			return err
		}
		batch.Write(hashKey(db.DbBlockIndex, bi.BlockHash), buf.Bytes())
	}
	return blockTreeDB.dbw.WriteBatch(batch, true)
}

func (blockTreeDB *BlockTreeDB) WriteBestBlock(hash util.Hash) error {
	return blockTreeDB.dbw.Write([]byte{db.DbBestBlock}, hash[:], true)
}

func (blockTreeDB *BlockTreeDB) ReadBestBlock() (util.Hash, error) {
	var hash util.Hash
	buf, err := blockTreeDB.dbw.Read([]byte{db.DbBestBlock})
	if err != nil {
		return hash, err
	}
	err = hash.SetBytes(buf)
	return hash, err
}

func (blockTreeDB *BlockTreeDB) ReadBlock(hash util.Hash) (*block.Block, error) {
	buf, err := blockTreeDB.dbw.Read(hashKey(db.DbBlockData, hash))
	if err != nil {
		return nil, errors.Wrap(errcode.New(errcode.FailedToReadBlock), err.Error())
	}
	bl := block.NewBlock()
	if err = bl.Unserialize(bytes.NewReader(buf)); err != nil {
		return nil, errors.Wrap(errcode.New(errcode.FailedToReadBlock), err.Error())
	}
	return bl, nil
}

func (blockTreeDB *BlockTreeDB) GetTransaction(txid util.Hash) (*tx.Tx, util.Hash, error) {
	var blockHash util.Hash
	buf, err := blockTreeDB.dbw.Read(hashKey(db.DbTxIndex, txid))
	if err != nil {
		return nil, blockHash, errors.Wrap(errcode.New(errcode.FailedToReadTransaction), err.Error())
	}
	if err = blockHash.SetBytes(buf); err != nil {
		return nil, blockHash, err
	}
	bl, err := blockTreeDB.ReadBlock(blockHash)
	if err != nil {
		return nil, blockHash, err
	}
	for _, t := range bl.Txs {
		if t.GetHash() == txid {
			return t, blockHash, nil
		}
	}
	return nil, blockHash, errors.Wrap(errcode.New(errcode.FailedToReadTransaction), txid.String())
}

// LoadBlockIndex adds every stored index to c, links parents in height
// order and moves the tip to the recorded best block.
func (blockTreeDB *BlockTreeDB) LoadBlockIndex(c *Chain) error {
	iter := blockTreeDB.dbw.PrefixIterator(db.DbBlockIndex)
	defer iter.Close()

	indexes := make([]*blockindex.BlockIndex, 0)
	for iter.SeekToFirst(); iter.Valid(); iter.Next() {
		dbi := new(blockindex.DiskBlockIndex)
		if err := dbi.Unserialize(bytes.NewReader(iter.GetVal())); err != nil {
			return err
		}
		indexes = append(indexes, dbi.ToBlockIndex())
	}
	if err := iter.Error(); err != nil {
		return err
	}

	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].Height < indexes[j].Height
	})
	for _, bi := range indexes {
		if err := c.AddToIndexMap(bi); err != nil {
			return err
		}
	}

	best, err := blockTreeDB.ReadBestBlock()
	if err == db.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	tip := c.FindBlockIndex(best)
	if tip == nil {
		return errors.Errorf("best block %s has no index", best.String())
	}
	c.SetTip(tip)
	log.Info("LoadBlockIndex: %d indexes, tip %s height %d", len(indexes), best.String(), tip.Height)
	return nil
}
