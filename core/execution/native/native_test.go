package native

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/internal/testing/fake"
)

func TestService_Set(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeContract{})

	require.True(t, srvc.Has("abc"))
	require.False(t, srvc.Has("def"))

	require.PanicsWithError(t, "contract 'abc' already registered", func() {
		srvc.Set("abc", fakeContract{})
	})

	require.PanicsWithValue(t, "contract account must not be empty", func() {
		srvc.Set("", fakeContract{})
	})
}

func TestService_Execute(t *testing.T) {
	srvc := NewExecution()
	srvc.Set("abc", fakeContract{value: []byte("pong")})
	srvc.Set("bad", fakeContract{err: fake.GetError()})

	env := fake.NewEnv(execution.Call{Receiver: "abc"})

	res, err := srvc.Execute(env)
	require.NoError(t, err)
	require.Equal(t, []byte("pong"), res.GetValue())

	env = fake.NewEnv(execution.Call{Receiver: "bad"})
	_, err = srvc.Execute(env)
	require.EqualError(t, err, fake.GetError().Error())

	env = fake.NewEnv(execution.Call{Receiver: "none"})
	_, err = srvc.Execute(env)
	require.EqualError(t, err, "unknown contract 'none'")
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeContract struct {
	value []byte
	err   error
}

func (c fakeContract) Execute(execution.Env) (execution.Return, error) {
	return execution.NewValue(c.value), c.err
}
