package deposit

import (
	"go.dedis.ch/xcall/serde"
	"golang.org/x/xerrors"
	"lukechampine.com/uint128"
)

// Args are the arguments of the deposit method.
//
// - implements serde.Message
type Args struct {
	Note string
}

type argsJSON struct {
	Note string `json:"note"`
}

// Serialize implements serde.Message.
func (a Args) Serialize(ctx serde.Context) ([]byte, error) {
	data, err := ctx.Marshal(argsJSON{Note: a.Note})
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// ArgsFactory is the factory of the arguments of the deposit method.
//
// - implements serde.Factory
type ArgsFactory struct{}

// Deserialize implements serde.Factory.
func (ArgsFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	var m argsJSON

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	return Args{Note: m.Note}, nil
}

// Total is the value returned by the methods of the contract. A 128-bit
// integer does not fit in every JSON number implementation, so the value is
// encoded as a decimal string.
//
// - implements serde.Message
type Total struct {
	Value uint128.Uint128
}

// Serialize implements serde.Message.
func (t Total) Serialize(ctx serde.Context) ([]byte, error) {
	data, err := ctx.Marshal(t.Value.String())
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// TotalFactory is the factory of the values returned by the contract.
//
// - implements serde.Factory
type TotalFactory struct{}

// Deserialize implements serde.Factory. It returns an error if the data is not
// a decimal string of a 128-bit unsigned integer.
func (TotalFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	var str string

	err := ctx.Unmarshal(data, &str)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	value, err := uint128.FromString(str)
	if err != nil {
		return nil, xerrors.Errorf("invalid total '%s': %v", str, err)
	}

	return Total{Value: value}, nil
}
