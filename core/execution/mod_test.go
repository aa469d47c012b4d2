package execution

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/core/execution/promise"
)

func TestBudget_Total(t *testing.T) {
	budget := Budget{Remote: 5, Callback: 3}

	require.Equal(t, Gas(8), budget.Total())
	require.Equal(t, Gas(0), Budget{}.Total())
}

func TestReturn_Value(t *testing.T) {
	ret := NewValue([]byte("abc"))

	require.Equal(t, []byte("abc"), ret.GetValue())

	_, ok := ret.GetPromise()
	require.False(t, ok)
}

func TestReturn_Promise(t *testing.T) {
	ref := promise.NewRef()
	ret := NewPromise(ref)

	require.Nil(t, ret.GetValue())

	res, ok := ret.GetPromise()
	require.True(t, ok)
	require.Equal(t, ref, res)
}
