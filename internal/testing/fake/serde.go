package fake

import "go.dedis.ch/xcall/serde"

// BadContextEngine is a context engine that fails on every operation.
//
// - implements serde.ContextEngine
type BadContextEngine struct{}

// GetFormat implements serde.ContextEngine.
func (BadContextEngine) GetFormat() serde.Format {
	return serde.Format("BAD")
}

// Marshal implements serde.ContextEngine. It always returns an error.
func (BadContextEngine) Marshal(interface{}) ([]byte, error) {
	return nil, fakeErr
}

// Unmarshal implements serde.ContextEngine. It always returns an error.
func (BadContextEngine) Unmarshal([]byte, interface{}) error {
	return fakeErr
}

// NewBadContext returns a serialization context that fails on every
// operation.
func NewBadContext() serde.Context {
	return serde.NewContext(BadContextEngine{})
}
