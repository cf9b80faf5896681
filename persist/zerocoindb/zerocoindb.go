package zerocoindb

import (
	"bytes"
	"math/big"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const wipeBatchSize = 1000

// ZerocoinDB stores accumulator checksums and the serial and pubcoin
// registry records.
type ZerocoinDB struct {
	dbw *db.DBWrapper
}

func NewZerocoinDB(do *db.DBOption) (*ZerocoinDB, error) {
	if do == nil {
		return nil, errcode.New(errcode.ErrorOpenDatabase)
	}
	dbw, err := db.NewDBWrapper(do)
	if err != nil {
		return nil, errors.Wrap(errcode.New(errcode.ErrorOpenDatabase), err.Error())
	}
	return &ZerocoinDB{dbw: dbw}, nil
}

func (zdb *ZerocoinDB) Close() error {
	return zdb.dbw.Close()
}

func recordKey(prefix byte, hash *util.Hash) []byte {
	key := make([]byte, 0, 1+util.Hash256Size)
	key = append(key, prefix)
	return append(key, hash[:]...)
}

func (zdb *ZerocoinDB) readHash(prefix byte, hash *util.Hash) (util.Hash, bool, error) {
	var h util.Hash
	buf, err := zdb.dbw.Read(recordKey(prefix, hash))
	if err == db.ErrNotFound {
		return h, false, nil
	}
	if err != nil {
		return h, false, err
	}
	if err := h.SetBytes(buf); err != nil {
		return h, false, err
	}
	return h, true, nil
}

// MintRecord maps a pubcoin hash to the transaction that minted it.
type MintRecord struct {
	PubcoinHash util.Hash
	TxID        util.Hash
}

// SpendRecord maps a serial hash to the transaction that spent it.
type SpendRecord struct {
	SerialHash util.Hash
	TxID       util.Hash
}

// PubcoinSpendRecord maps a pubcoin revealed by a limp mode spend to the
// spending transaction and its block.
type PubcoinSpendRecord struct {
	PubcoinHash util.Hash
	TxID        util.Hash
	BlockHash   util.Hash
}

func writeMints(batch *db.BatchWrapper, mints []MintRecord) {
	for i := range mints {
		batch.Write(recordKey(db.DbMint, &mints[i].PubcoinHash), mints[i].TxID[:])
	}
}

func writeSpends(batch *db.BatchWrapper, spends []SpendRecord) {
	for i := range spends {
		batch.Write(recordKey(db.DbSerial, &spends[i].SerialHash), spends[i].TxID[:])
	}
}

func writePubcoinSpends(batch *db.BatchWrapper, records []PubcoinSpendRecord) {
	val := make([]byte, 0, 2*util.Hash256Size)
	for i := range records {
		val = append(val[:0], records[i].TxID[:]...)
		val = append(val, records[i].BlockHash[:]...)
		batch.Write(recordKey(db.DbPubcoinSpend, &records[i].PubcoinHash), val)
	}
}

// BlockRecords are the registry entries added by one connected block.
type BlockRecords struct {
	Mints         []MintRecord
	Spends        []SpendRecord
	PubcoinSpends []PubcoinSpendRecord
}

func (r *BlockRecords) Len() int {
	return len(r.Mints) + len(r.Spends) + len(r.PubcoinSpends)
}

// WriteBlockRecords stores every record of a block in one batch, so a
// failed write leaves none of them behind. Spends overwrite any stale
// entry for the same serial.
func (zdb *ZerocoinDB) WriteBlockRecords(records *BlockRecords) error {
	batch := db.NewBatchWrapper(zdb.dbw)
	writeMints(batch, records.Mints)
	writeSpends(batch, records.Spends)
	writePubcoinSpends(batch, records.PubcoinSpends)
	log.Debug("Writing %d mints, %d spends and %d pubcoin spends to db (~%d bytes).",
		len(records.Mints), len(records.Spends), len(records.PubcoinSpends), batch.SizeEstimate())
	if err := zdb.dbw.WriteBatch(batch, true); err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	return nil
}

func (zdb *ZerocoinDB) WriteCoinMintBatch(mints []MintRecord) error {
	batch := db.NewBatchWrapper(zdb.dbw)
	writeMints(batch, mints)
	log.Debug("Writing %d coin mints to db.", len(mints))
	if err := zdb.dbw.WriteBatch(batch, true); err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	return nil
}

func (zdb *ZerocoinDB) ReadCoinMint(pubcoinHash *util.Hash) (util.Hash, bool, error) {
	return zdb.readHash(db.DbMint, pubcoinHash)
}

func (zdb *ZerocoinDB) EraseCoinMint(pubcoinHash *util.Hash) error {
	return zdb.dbw.Erase(recordKey(db.DbMint, pubcoinHash), true)
}

func (zdb *ZerocoinDB) WriteCoinSpendBatch(spends []SpendRecord) error {
	batch := db.NewBatchWrapper(zdb.dbw)
	writeSpends(batch, spends)
	log.Debug("Writing %d coin spends to db.", len(spends))
	if err := zdb.dbw.WriteBatch(batch, true); err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	return nil
}

func (zdb *ZerocoinDB) ReadCoinSpend(serialHash *util.Hash) (util.Hash, bool, error) {
	return zdb.readHash(db.DbSerial, serialHash)
}

func (zdb *ZerocoinDB) EraseCoinSpend(serialHash *util.Hash) error {
	return zdb.dbw.Erase(recordKey(db.DbSerial, serialHash), true)
}

func (zdb *ZerocoinDB) WritePubcoinSpendBatch(records []PubcoinSpendRecord) error {
	batch := db.NewBatchWrapper(zdb.dbw)
	writePubcoinSpends(batch, records)
	if err := zdb.dbw.WriteBatch(batch, true); err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	return nil
}

func (zdb *ZerocoinDB) ReadPubcoinSpend(pubcoinHash *util.Hash) (*PubcoinSpendRecord, error) {
	buf, err := zdb.dbw.Read(recordKey(db.DbPubcoinSpend, pubcoinHash))
	if err == db.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(buf) != 2*util.Hash256Size {
		return nil, errors.Errorf("pubcoin spend record has %d bytes", len(buf))
	}
	rec := &PubcoinSpendRecord{PubcoinHash: *pubcoinHash}
	copy(rec.TxID[:], buf[:util.Hash256Size])
	copy(rec.BlockHash[:], buf[util.Hash256Size:])
	return rec, nil
}

func (zdb *ZerocoinDB) ErasePubcoinSpend(pubcoinHash *util.Hash) error {
	return zdb.dbw.Erase(recordKey(db.DbPubcoinSpend, pubcoinHash), true)
}

func (zdb *ZerocoinDB) WriteAccumulatorValue(checksum *util.Hash, value *big.Int) error {
	return zdb.WriteAccumulatorValues(map[util.Hash]*big.Int{*checksum: value})
}

// WriteAccumulatorValues persists checksum to value pairs in one batch.
func (zdb *ZerocoinDB) WriteAccumulatorValues(values map[util.Hash]*big.Int) error {
	batch := db.NewBatchWrapper(zdb.dbw)
	for checksum, value := range values {
		checksum := checksum
		batch.Write(recordKey(db.DbAccChecksum, &checksum), util.BigNumBytes(value))
	}
	log.Debug("Writing %d accumulator checksums to db.", len(values))
	if err := zdb.dbw.WriteBatch(batch, true); err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	return nil
}

// ReadAccumulatorValue returns nil and no error when checksum is unknown.
func (zdb *ZerocoinDB) ReadAccumulatorValue(checksum *util.Hash) (*big.Int, error) {
	buf, err := zdb.dbw.Read(recordKey(db.DbAccChecksum, checksum))
	if err == db.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return util.BigNumFromBytes(buf), nil
}

func (zdb *ZerocoinDB) EraseAccumulatorValue(checksum *util.Hash) error {
	log.Debug("Erasing accumulator checksum %s.", checksum)
	return zdb.dbw.Erase(recordKey(db.DbAccChecksum, checksum), true)
}

// WipeCoins erases every record of one type. It is used on reindex.
func (zdb *ZerocoinDB) WipeCoins(recordType byte) error {
	switch recordType {
	case db.DbMint, db.DbSerial, db.DbAccChecksum, db.DbPubcoinSpend:
	default:
		return errors.Errorf("unknown zerocoin record type %q", recordType)
	}
	erased, err := zdb.dbw.WipePrefix(recordType, wipeBatchSize)
	if err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteToZerocoinDatabase), err.Error())
	}
	log.Info("Wiped %d zerocoin records of type %q.", erased, recordType)
	return nil
}

// ForEach calls fn for every record of one type until fn returns false.
func (zdb *ZerocoinDB) ForEach(recordType byte, fn func(key util.Hash, value []byte) bool) error {
	it := zdb.dbw.PrefixIterator(recordType)
	defer it.Close()
	for it.SeekToFirst(); it.Valid(); it.Next() {
		raw := it.GetKey()
		if len(raw) != 1+util.Hash256Size {
			continue
		}
		var key util.Hash
		copy(key[:], raw[1:])
		if !fn(key, it.GetVal()) {
			break
		}
	}
	return it.Error()
}

func (zdb *ZerocoinDB) WriteReindexing(reindexing bool) error {
	if reindexing {
		return zdb.dbw.Write([]byte{db.DbReindexFlag}, []byte{1}, true)
	}
	return zdb.dbw.Erase([]byte{db.DbReindexFlag}, true)
}

func (zdb *ZerocoinDB) ReadReindexing() (bool, error) {
	buf, err := zdb.dbw.Read([]byte{db.DbReindexFlag})
	if err == db.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, []byte{1}), nil
}
