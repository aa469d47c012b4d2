// Package mem implements an in-memory store.
//
// Updates are staged in a child layer that only keeps the writes of the
// update. When reading, the layer falls back on its parent if the key is not
// found. The layer is merged into the parent when the update succeeds.
package mem

import (
	"sync"

	"go.dedis.ch/xcall/core/store"
)

type item struct {
	value   []byte
	deleted bool
}

// Store is an in-memory implementation of a store.
//
// - implements store.Store
type Store struct {
	sync.RWMutex

	root *layer
}

// NewStore returns a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		root: newLayer(nil),
	}
}

// View implements store.Store. It executes the function on the committed
// state of the store.
func (s *Store) View(fn func(store.Readable) error) error {
	s.RLock()
	defer s.RUnlock()

	return fn(s.root)
}

// Update implements store.Store. It executes the function on a staged layer
// that is merged only if the function succeeds.
func (s *Store) Update(fn func(store.Snapshot) error) error {
	s.Lock()
	defer s.Unlock()

	staged := newLayer(s.root)

	err := fn(staged)
	if err != nil {
		return err
	}

	staged.merge()

	return nil
}

// layer is a set of updates on top of an optional parent.
//
// - implements store.Snapshot
type layer struct {
	parent *layer
	items  map[string]item
}

func newLayer(parent *layer) *layer {
	return &layer{
		parent: parent,
		items:  make(map[string]item),
	}
}

// Get implements store.Readable. It returns the value of the key, or nil if it
// does not exist.
func (l *layer) Get(key []byte) ([]byte, error) {
	it, found := l.items[string(key)]
	if found {
		if it.deleted {
			return nil, nil
		}

		return it.value, nil
	}

	if l.parent == nil {
		return nil, nil
	}

	return l.parent.Get(key)
}

// Set implements store.Writable. It sets the value of the key in the layer.
func (l *layer) Set(key, value []byte) error {
	buffer := make([]byte, len(value))
	copy(buffer, value)

	l.items[string(key)] = item{value: buffer}

	return nil
}

// Delete implements store.Writable. It marks the key as deleted in the layer.
func (l *layer) Delete(key []byte) error {
	l.items[string(key)] = item{deleted: true}

	return nil
}

// merge applies the updates of the layer to its parent.
func (l *layer) merge() {
	for key, it := range l.items {
		if it.deleted && l.parent.parent == nil {
			delete(l.parent.items, key)
			continue
		}

		l.parent.items[key] = it
	}
}
