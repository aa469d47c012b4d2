// Package store defines the primitives of a simple key/value storage.
//
// A store is the persistent state shared by the contracts of a host. Every
// update is applied atomically: either the whole function succeeds and the
// writes are visible to the next readers, or nothing is written.
package store

// Readable is the interface for a readable store.
type Readable interface {
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and write independently. A
// write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}

// Store is the interface of a store that applies updates atomically.
type Store interface {
	// View executes the read-only function on the current state of the store.
	View(fn func(Readable) error) error

	// Update executes the function on a snapshot of the store. The writes are
	// committed only if the function returns without error, otherwise they are
	// discarded.
	Update(fn func(Snapshot) error) error
}
