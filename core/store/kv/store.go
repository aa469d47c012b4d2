package kv

import (
	"go.dedis.ch/xcall/core/store"
	"golang.org/x/xerrors"
)

// bucketStore is a store backed by a single bucket of a database.
//
// - implements store.Store
type bucketStore struct {
	db   DB
	name []byte
}

// NewStore returns a store that keeps its state in the bucket of the given
// name. Each update of the store is a transaction of the database.
func NewStore(db DB, bucket string) store.Store {
	return bucketStore{
		db:   db,
		name: []byte(bucket),
	}
}

// View implements store.Store. An empty store is returned if the bucket does
// not exist yet.
func (s bucketStore) View(fn func(store.Readable) error) error {
	return s.db.View(func(tx ReadableTx) error {
		return fn(bucketSnapshot{bucket: tx.GetBucket(s.name)})
	})
}

// Update implements store.Store. The writes are committed with the database
// transaction, or rolled back if the function fails.
func (s bucketStore) Update(fn func(store.Snapshot) error) error {
	return s.db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate(s.name)
		if err != nil {
			return xerrors.Errorf("bucket: %v", err)
		}

		return fn(bucketSnapshot{bucket: bucket})
	})
}

// bucketSnapshot is the adapter of a bucket to a store snapshot. A nil bucket
// is considered as empty.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// Get implements store.Readable. The returned value is a copy that remains
// valid after the transaction.
func (snap bucketSnapshot) Get(key []byte) ([]byte, error) {
	if snap.bucket == nil {
		return nil, nil
	}

	value := snap.bucket.Get(key)
	if value == nil {
		return nil, nil
	}

	buffer := make([]byte, len(value))
	copy(buffer, value)

	return buffer, nil
}

// Set implements store.Writable.
func (snap bucketSnapshot) Set(key, value []byte) error {
	if snap.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	return snap.bucket.Set(key, value)
}

// Delete implements store.Writable.
func (snap bucketSnapshot) Delete(key []byte) error {
	if snap.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	return snap.bucket.Delete(key)
}
