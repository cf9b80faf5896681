package witnessdb

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

var witnessBucket = []byte("witness")

// WitnessDB caches serialized witness precomputation per pubcoin hash so
// an interrupted replay resumes instead of restarting.
type WitnessDB struct {
	db *bolt.DB
}

func Open(path string) (*WitnessDB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(errcode.New(errcode.ErrorOpenDatabase), err.Error())
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(witnessBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(errcode.New(errcode.ErrorOpenDatabase), err.Error())
	}
	return &WitnessDB{db: db}, nil
}

func (w *WitnessDB) Close() error {
	return w.db.Close()
}

func (w *WitnessDB) Path() string {
	return w.db.Path()
}

func (w *WitnessDB) Put(pubcoinHash util.Hash, data []byte) error {
	err := w.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(witnessBucket).Put(pubcoinHash[:], data)
	})
	if err != nil {
		return errors.Wrap(errcode.New(errcode.ErrorFailedToWriteWitnessCache), err.Error())
	}
	return nil
}

// Get returns nil when nothing is cached for pubcoinHash.
func (w *WitnessDB) Get(pubcoinHash util.Hash) ([]byte, error) {
	var data []byte
	err := w.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(witnessBucket).Get(pubcoinHash[:]); v != nil {
			data = append([]byte{}, v...)
		}
		return nil
	})
	return data, err
}

func (w *WitnessDB) Delete(pubcoinHash util.Hash) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(witnessBucket).Delete(pubcoinHash[:])
	})
}

// ForEach visits every cached entry. The value slice is only valid inside fn.
func (w *WitnessDB) ForEach(fn func(pubcoinHash util.Hash, data []byte) error) error {
	return w.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(witnessBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var h util.Hash
			if err := h.SetBytes(k); err != nil {
				continue
			}
			if err := fn(h, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear drops every cached witness.
func (w *WitnessDB) Clear() error {
	return w.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(witnessBucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(witnessBucket)
		return err
	})
}
