package deposit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/serde"
	"go.dedis.ch/xcall/serde/json"
	"golang.org/x/xerrors"
	"lukechampine.com/uint128"
)

func TestArgs_Serialize(t *testing.T) {
	ctx := json.NewContext()

	data, err := Args{Note: "hi"}.Serialize(ctx)
	require.NoError(t, err)
	require.Equal(t, `{"note":"hi"}`, string(data))

	_, err = Args{}.Serialize(badContext())
	require.EqualError(t, err, "failed to marshal: oops")
}

func TestArgsFactory_Deserialize(t *testing.T) {
	ctx := json.NewContext()

	msg, err := ArgsFactory{}.Deserialize(ctx, []byte(`{"note":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, Args{Note: "hi"}, msg)

	_, err = ArgsFactory{}.Deserialize(ctx, []byte(`{"amount":1}`))
	require.EqualError(t, err, `failed to unmarshal: json: unknown field "amount"`)
}

func TestTotal_Serialize(t *testing.T) {
	ctx := json.NewContext()

	data, err := Total{Value: uint128.From64(150)}.Serialize(ctx)
	require.NoError(t, err)
	require.Equal(t, `"150"`, string(data))

	data, err = Total{Value: uint128.Max}.Serialize(ctx)
	require.NoError(t, err)
	require.Equal(t, `"340282366920938463463374607431768211455"`, string(data))

	_, err = Total{}.Serialize(badContext())
	require.EqualError(t, err, "failed to marshal: oops")
}

func TestTotalFactory_Deserialize(t *testing.T) {
	ctx := json.NewContext()

	msg, err := TotalFactory{}.Deserialize(ctx, []byte(`"150"`))
	require.NoError(t, err)
	require.Equal(t, Total{Value: uint128.From64(150)}, msg)

	_, err = TotalFactory{}.Deserialize(ctx, []byte(`150`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to unmarshal")

	_, err = TotalFactory{}.Deserialize(ctx, []byte(`"abc"`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid total 'abc'")

	_, err = TotalFactory{}.Deserialize(ctx, []byte(`"340282366920938463463374607431768211456"`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid total")
}

// -----------------------------------------------------------------------------
// Utility functions

type badEngine struct {
	serde.ContextEngine
}

func (badEngine) Marshal(interface{}) ([]byte, error) {
	return nil, errOops
}

func badContext() serde.Context {
	return serde.NewContext(badEngine{})
}

var errOops = xerrors.New("oops")
