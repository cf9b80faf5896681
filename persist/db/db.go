package db

import (
	"crypto/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	lvldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	obfuscateKeyKey = "\000obfuscate_key"
	obfuscateKeyLen = 8
)

// Record type prefixes of the zerocoin database. Every key is one prefix
// byte followed by a 32 byte hash.
const (
	DbAccChecksum  byte = 'A'
	DbMint         byte = 'm'
	DbSerial       byte = 's'
	DbPubcoinSpend byte = 'l'
	DbReindexFlag  byte = 'R'
)

// Record type prefixes of the block tree database.
const (
	DbBlockIndex byte = 'b'
	DbBlockData  byte = 'd'
	DbTxIndex    byte = 't'
	DbBestBlock  byte = 'B'
)

const (
	preallocKeySize   = 64
	preallocValueSize = 1024
)

var ErrNotFound = lvldb.ErrNotFound

type DBWrapper struct {
	option       opt.Options
	readOption   opt.ReadOptions
	iterOption   opt.ReadOptions
	writeOption  opt.WriteOptions
	syncOption   opt.WriteOptions
	db           *lvldb.DB
	name         string
	obfuscateKey []byte
}

func genObfuscateKey() ([]byte, error) {
	buf := make([]byte, obfuscateKeyLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func getOptions(cacheSize int) opt.Options {
	var opts opt.Options
	opts.BlockCacher = opt.LRUCacher
	opts.BlockCacheCapacity = cacheSize / 2
	opts.WriteBuffer = cacheSize / 4
	opts.Filter = filter.NewBloomFilter(10)
	opts.Compression = opt.NoCompression
	opts.OpenFilesCacheCapacity = 64

	return opts
}

func destroyDB(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	st, err := storage.OpenFile(path, false)
	if err != nil {
		return err
	}
	defer st.Close()
	fds, err := st.List(storage.TypeAll)
	if err != nil {
		return err
	}
	for _, fd := range fds {
		if err := st.Remove(fd); err != nil {
			return err
		}
	}
	for _, other := range []string{"CURRENT", "LOCK", "LOG", "LOG.old"} {
		if err := os.Remove(filepath.Join(path, other)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

type DBOption struct {
	FilePath       string
	CacheSize      int
	Wipe           bool
	DontObfuscate  bool
	ForceCompactdb bool
}

func NewDBWrapper(do *DBOption) (*DBWrapper, error) {
	if do == nil {
		return nil, errors.New("DBWrapper: nil DBOption")
	}
	opts := getOptions(do.CacheSize)
	if do.Wipe {
		if err := destroyDB(do.FilePath); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(do.FilePath, 0740); err != nil && !os.IsExist(err) {
		return nil, err
	}

	db, err := lvldb.OpenFile(do.FilePath, &opts)
	if err != nil {
		return nil, err
	}
	if do.ForceCompactdb {
		if err := db.CompactRange(util.Range{}); err != nil {
			db.Close()
			return nil, err
		}
	}

	strict := opt.StrictJournalChecksum | opt.StrictBlockChecksum
	dbw := &DBWrapper{
		option:      opts,
		readOption:  opt.ReadOptions{Strict: strict},
		iterOption:  opt.ReadOptions{DontFillCache: true, Strict: strict},
		writeOption: opt.WriteOptions{},
		syncOption:  opt.WriteOptions{Sync: true},
		db:          db,
		name:        filepath.Base(do.FilePath),
	}

	obk, err := dbw.db.Get([]byte(obfuscateKeyKey), &dbw.readOption)
	switch {
	case err == nil:
		dbw.obfuscateKey = obk
	case err != lvldb.ErrNotFound:
		db.Close()
		return nil, err
	case !do.DontObfuscate && dbw.IsEmpty():
		newKey, err := genObfuscateKey()
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := dbw.db.Put([]byte(obfuscateKeyKey), newKey, &dbw.syncOption); err != nil {
			db.Close()
			return nil, err
		}
		dbw.obfuscateKey = newKey
	}
	return dbw, nil
}

func xor(val, key []byte) {
	if len(key) == 0 {
		return
	}
	for i, j := 0, 0; i < len(val); i++ {
		val[i] ^= key[j]
		j++
		if j == len(key) {
			j = 0
		}
	}
}

// Read returns ErrNotFound when key is absent.
func (dbw *DBWrapper) Read(key []byte) ([]byte, error) {
	value, err := dbw.db.Get(key, &dbw.readOption)
	if err != nil {
		return nil, err
	}
	xor(value, dbw.obfuscateKey)
	return value, nil
}

func (dbw *DBWrapper) Write(key, val []byte, sync bool) error {
	bw := NewBatchWrapper(dbw)
	bw.Write(key, val)
	return dbw.WriteBatch(bw, sync)
}

func (dbw *DBWrapper) WriteBatch(bw *BatchWrapper, sync bool) error {
	opts := &dbw.writeOption
	if sync {
		opts = &dbw.syncOption
	}
	if err := dbw.db.Write(&bw.bat, opts); err != nil {
		return errors.Wrapf(err, "DBWrapper %s", dbw.name)
	}
	return nil
}

// Erase succeeds when key is already absent.
func (dbw *DBWrapper) Erase(key []byte, sync bool) error {
	bw := NewBatchWrapper(dbw)
	bw.Erase(key)
	return dbw.WriteBatch(bw, sync)
}

// PrefixIterator walks the records of one type.
func (dbw *DBWrapper) PrefixIterator(prefix byte) *IterWrapper {
	return NewIterWrapper(dbw, dbw.db.NewIterator(util.BytesPrefix([]byte{prefix}), &dbw.iterOption))
}

// WipePrefix erases every record of one type in batches of batchSize keys.
func (dbw *DBWrapper) WipePrefix(prefix byte, batchSize int) (int, error) {
	it := dbw.PrefixIterator(prefix)
	defer it.Close()

	erased := 0
	bw := NewBatchWrapper(dbw)
	for it.SeekToFirst(); it.Valid(); it.Next() {
		bw.Erase(it.GetKey())
		erased++
		if batchSize > 0 && bw.Len() >= batchSize {
			if err := dbw.WriteBatch(bw, false); err != nil {
				return erased, err
			}
			bw.Clear()
		}
	}
	if err := it.Error(); err != nil {
		return erased, err
	}
	return erased, dbw.WriteBatch(bw, true)
}

func (dbw *DBWrapper) IsEmpty() bool {
	it := NewIterWrapper(dbw, dbw.db.NewIterator(nil, &dbw.iterOption))
	defer it.Close()
	it.SeekToFirst()
	return !it.Valid()
}

func (dbw *DBWrapper) Close() error {
	if dbw.db == nil {
		return nil
	}
	return dbw.db.Close()
}

type BatchWrapper struct {
	bat     lvldb.Batch
	parent  *DBWrapper
	bval    []byte
	sizeEst int
}

func NewBatchWrapper(parent *DBWrapper) *BatchWrapper {
	return &BatchWrapper{
		parent: parent,
		bval:   make([]byte, 0, preallocValueSize),
	}
}

func (bw *BatchWrapper) Clear() {
	bw.bat.Reset()
	bw.sizeEst = 0
}

// Write queues a put. The batch copies key and value, so both may be
// reused by the caller.
func (bw *BatchWrapper) Write(key, val []byte) {
	bw.bval = append(bw.bval[:0], val...)
	xor(bw.bval, bw.parent.obfuscateKey)
	bw.bat.Put(key, bw.bval)
	// LevelDB serializes writes as a header byte, varint key length, key,
	// varint value length and value. Keys and values are assumed below 16k.
	k, v := 0, 0
	if len(key) > 127 {
		k = 1
	}
	if len(bw.bval) > 127 {
		v = 1
	}
	bw.sizeEst += 3 + k + len(key) + v + len(bw.bval)
}

func (bw *BatchWrapper) Erase(key []byte) {
	bw.bat.Delete(key)
	k := 0
	if len(key) > 127 {
		k = 1
	}
	bw.sizeEst += 2 + k + len(key)
}

func (bw *BatchWrapper) SizeEstimate() int {
	return bw.sizeEst
}

func (bw *BatchWrapper) Len() int {
	return bw.bat.Len()
}

type IterWrapper struct {
	parent *DBWrapper
	iter   iterator.Iterator
}

func NewIterWrapper(parent *DBWrapper, iter iterator.Iterator) *IterWrapper {
	return &IterWrapper{
		parent: parent,
		iter:   iter,
	}
}

func (iw *IterWrapper) Valid() bool {
	if iw.iter == nil {
		return false
	}
	return iw.iter.Valid()
}

func (iw *IterWrapper) SeekToFirst() {
	if iw.iter != nil {
		iw.iter.First()
	}
}

func (iw *IterWrapper) GetKey() []byte {
	var key []byte
	if iw.iter != nil {
		key = append(key, iw.iter.Key()...)
	}
	return key
}

func (iw *IterWrapper) GetVal() []byte {
	var val []byte
	if iw.iter != nil {
		val = append(val, iw.iter.Value()...)
	}
	xor(val, iw.parent.obfuscateKey)
	return val
}

func (iw *IterWrapper) Next() {
	if iw.iter != nil {
		iw.iter.Next()
	}
}

func (iw *IterWrapper) Error() error {
	if iw.iter == nil {
		return nil
	}
	return iw.iter.Error()
}

func (iw *IterWrapper) Close() {
	if iw.iter != nil {
		iw.iter.Release()
	}
}
