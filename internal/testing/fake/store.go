package fake

import "go.dedis.ch/xcall/core/store"

// InMemorySnapshot is a fake implementation of a store snapshot.
//
// - implements store.Snapshot
type InMemorySnapshot struct {
	values    map[string][]byte
	ErrRead   error
	ErrWrite  error
	ErrDelete error
}

// NewSnapshot creates a new empty snapshot.
func NewSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values: make(map[string][]byte),
	}
}

// NewBadSnapshot creates a new empty snapshot that will always return an error.
func NewBadSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values:    make(map[string][]byte),
		ErrRead:   fakeErr,
		ErrWrite:  fakeErr,
		ErrDelete: fakeErr,
	}
}

// Get implements store.Snapshot.
func (snap *InMemorySnapshot) Get(key []byte) ([]byte, error) {
	return snap.values[string(key)], snap.ErrRead
}

// Set implements store.Snapshot.
func (snap *InMemorySnapshot) Set(key, value []byte) error {
	snap.values[string(key)] = value

	return snap.ErrWrite
}

// Delete implements store.Snapshot.
func (snap *InMemorySnapshot) Delete(key []byte) error {
	delete(snap.values, string(key))

	return snap.ErrDelete
}

// Len returns the number of keys in the snapshot.
func (snap *InMemorySnapshot) Len() int {
	return len(snap.values)
}

// Store is a fake implementation of a store that executes the functions on a
// single snapshot, without any rollback.
//
// - implements store.Store
type Store struct {
	Snapshot *InMemorySnapshot
	Err      error
}

// NewStore returns a new fake store.
func NewStore() Store {
	return Store{Snapshot: NewSnapshot()}
}

// NewBadStore returns a new fake store that always returns an error.
func NewBadStore() Store {
	return Store{Snapshot: NewSnapshot(), Err: fakeErr}
}

// View implements store.Store.
func (s Store) View(fn func(store.Readable) error) error {
	if s.Err != nil {
		return s.Err
	}

	return fn(s.Snapshot)
}

// Update implements store.Store.
func (s Store) Update(fn func(store.Snapshot) error) error {
	if s.Err != nil {
		return s.Err
	}

	return fn(s.Snapshot)
}
