package serdereflect

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/serde"
)

func TestAssignTo(t *testing.T) {
	var msg fakeMessage

	err := AssignTo(fakeMessage{value: 42}, &msg)
	require.NoError(t, err)
	require.Equal(t, 42, msg.value)

	var iface serde.Message

	err = AssignTo(fakeMessage{value: 1}, &iface)
	require.NoError(t, err)
	require.Equal(t, fakeMessage{value: 1}, iface)

	err = AssignTo(fakeMessage{}, msg)
	require.EqualError(t, err, "expect a pointer but got 'serdereflect.fakeMessage'")

	err = AssignTo(fakeMessage{}, (*fakeMessage)(nil))
	require.EqualError(t, err, "expect a pointer but got '*serdereflect.fakeMessage'")

	err = AssignTo(nil, &msg)
	require.EqualError(t, err, "message is nil")

	var str string

	err = AssignTo(fakeMessage{}, &str)
	require.EqualError(t, err, "message 'serdereflect.fakeMessage' is not assignable to 'string'")
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeMessage struct {
	value int
}

func (fakeMessage) Serialize(serde.Context) ([]byte, error) {
	return nil, nil
}
