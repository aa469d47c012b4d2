// Package serdereflect assigns deserialized messages to their concrete type
// without a type switch at every call site.
package serdereflect

import (
	"reflect"

	"go.dedis.ch/xcall/serde"
	"golang.org/x/xerrors"
)

// AssignTo assigns the message to the value pointed by the destination. It
// returns an error if the destination is not a pointer, or if the message is
// not assignable to the type it points to.
func AssignTo(m serde.Message, dest interface{}) error {
	value := reflect.ValueOf(dest)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return xerrors.Errorf("expect a pointer but got '%T'", dest)
	}

	if m == nil {
		return xerrors.New("message is nil")
	}

	if !reflect.TypeOf(m).AssignableTo(value.Elem().Type()) {
		return xerrors.Errorf("message '%T' is not assignable to '%v'", m, value.Elem().Type())
	}

	value.Elem().Set(reflect.ValueOf(m))

	return nil
}
