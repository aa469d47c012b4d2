// Package prefixed isolates the keys of one account from the keys of the
// other accounts sharing a store. Every key is stored behind the prefix of the
// account, so a contract can neither read nor overwrite the state of another
// one.
package prefixed

import (
	"encoding/binary"

	"go.dedis.ch/xcall/core/store"
)

// snapshot translates the keys before forwarding the operations to the parent.
// The writer is nil for a read-only view.
//
// - implements store.Snapshot
type snapshot struct {
	prefix []byte
	reader store.Readable
	writer store.Writable
}

// NewSnapshot returns a snapshot of the keys of the prefix.
func NewSnapshot(prefix string, parent store.Snapshot) store.Snapshot {
	return snapshot{
		prefix: []byte(prefix),
		reader: parent,
		writer: parent,
	}
}

// NewReadable returns a read-only view of the keys of the prefix.
func NewReadable(prefix string, parent store.Readable) store.Readable {
	return snapshot{
		prefix: []byte(prefix),
		reader: parent,
	}
}

// Get implements store.Readable.
func (s snapshot) Get(key []byte) ([]byte, error) {
	return s.reader.Get(NewPrefixedKey(s.prefix, key))
}

// Set implements store.Writable.
func (s snapshot) Set(key, value []byte) error {
	return s.writer.Set(NewPrefixedKey(s.prefix, key), value)
}

// Delete implements store.Writable.
func (s snapshot) Delete(key []byte) error {
	return s.writer.Delete(NewPrefixedKey(s.prefix, key))
}

// NewPrefixedKey returns the length of the prefix as a uvarint, followed by
// the prefix and the key. Two different pairs never produce the same key.
func NewPrefixedKey(prefix, key []byte) []byte {
	res := make([]byte, binary.MaxVarintLen64, binary.MaxVarintLen64+len(prefix)+len(key))
	n := binary.PutUvarint(res, uint64(len(prefix)))

	res = append(res[:n], prefix...)
	res = append(res, key...)

	return res
}
