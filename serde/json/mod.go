// Package json implements the JSON engine of the serialization contexts.
package json

import (
	"bytes"
	"encoding/json"

	"go.dedis.ch/xcall/serde"
	"golang.org/x/xerrors"
)

// engine marshals the messages with the standard JSON encoding. The decoding
// is strict: unknown fields and trailing data are rejected, so that a message
// of another schema is never silently accepted.
//
// - implements serde.ContextEngine
type engine struct{}

// NewContext returns a JSON context.
func NewContext() serde.Context {
	return serde.NewContext(engine{})
}

// GetFormat implements serde.ContextEngine.
func (engine) GetFormat() serde.Format {
	return serde.FormatJSON
}

// Marshal implements serde.ContextEngine.
func (engine) Marshal(m interface{}) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal implements serde.ContextEngine.
func (engine) Unmarshal(data []byte, m interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	err := dec.Decode(m)
	if err != nil {
		return err
	}

	if dec.More() {
		return xerrors.New("unexpected data after the message")
	}

	return nil
}
