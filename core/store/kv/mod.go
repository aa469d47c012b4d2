// Package kv defines the key/value database that persists the state of the
// contracts across runs.
//
// The default database is a bbolt file (https://github.com/etcd-io/bbolt).
// NewStore adapts one bucket of a database to the store.Store abstraction the
// host executes the calls on, so that every call is one database transaction.
package kv

// Bucket is a namespace of keys in the database.
type Bucket interface {
	// Get returns the value of the key, or nil if the key is unknown. The
	// value is only valid during the transaction.
	Get(key []byte) []byte

	Set(key, value []byte) error

	Delete(key []byte) error
}

// ReadableTx is a read-only transaction.
type ReadableTx interface {
	// GetBucket returns nil if the bucket does not exist.
	GetBucket(name []byte) Bucket
}

// WritableTx is a read-write transaction.
type WritableTx interface {
	ReadableTx

	// GetBucketOrCreate creates the bucket if it does not exist yet.
	GetBucketOrCreate(name []byte) (Bucket, error)
}

// DB is the database.
type DB interface {
	// View runs the function in a read-only transaction.
	View(fn func(ReadableTx) error) error

	// Update runs the function in a read-write transaction. Nothing is
	// committed if the function returns an error.
	Update(fn func(WritableTx) error) error

	Close() error
}
