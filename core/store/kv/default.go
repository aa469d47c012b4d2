package kv

import (
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// lockTimeout is the maximum amount of time to wait for the file lock held by
// another process.
const lockTimeout = time.Second

// boltDB is the bbolt implementation of the database.
//
// - implements kv.DB
type boltDB struct {
	bolt *bbolt.DB
}

// New opens the database file at the given path, or creates it. It fails if
// another process keeps the file open for longer than a second.
func New(path string) (DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	return boltDB{bolt: db}, nil
}

// View implements kv.DB.
func (db boltDB) View(fn func(ReadableTx) error) error {
	return db.bolt.View(func(tx *bbolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
}

// Update implements kv.DB. bbolt rolls the transaction back when the function
// returns an error.
func (db boltDB) Update(fn func(WritableTx) error) error {
	return db.bolt.Update(func(tx *bbolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
}

// Close implements kv.DB. It releases the file lock.
func (db boltDB) Close() error {
	return db.bolt.Close()
}

// boltTx is a bbolt transaction.
//
// - implements kv.WritableTx
type boltTx struct {
	tx *bbolt.Tx
}

// GetBucket implements kv.ReadableTx.
func (t boltTx) GetBucket(name []byte) Bucket {
	bucket := t.tx.Bucket(name)
	if bucket == nil {
		return nil
	}

	return boltBucket{Bucket: bucket}
}

// GetBucketOrCreate implements kv.WritableTx.
func (t boltTx) GetBucketOrCreate(name []byte) (Bucket, error) {
	bucket, err := t.tx.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, xerrors.Errorf("failed to create bucket: %v", err)
	}

	return boltBucket{Bucket: bucket}, nil
}

// boltBucket is a bbolt bucket. Put is renamed Set.
//
// - implements kv.Bucket
type boltBucket struct {
	*bbolt.Bucket
}

// Set implements kv.Bucket.
func (b boltBucket) Set(key, value []byte) error {
	return b.Put(key, value)
}
