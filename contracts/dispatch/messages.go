package dispatch

import (
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/serde"
	"golang.org/x/xerrors"
)

// Args are the arguments of the dispatch method.
//
// - implements serde.Message
type Args struct {
	// Target is the account of the deposit contract.
	Target access.Account

	// Note is forwarded to the deposit contract.
	Note string

	// Budget is the optional budget of the dispatch.
	Budget *execution.Budget
}

type budgetJSON struct {
	Remote   uint64 `json:"remote"`
	Callback uint64 `json:"callback"`
}

type argsJSON struct {
	Target string      `json:"target"`
	Note   string      `json:"note"`
	Budget *budgetJSON `json:"budget,omitempty"`
}

// Serialize implements serde.Message.
func (a Args) Serialize(ctx serde.Context) ([]byte, error) {
	m := argsJSON{
		Target: a.Target.String(),
		Note:   a.Note,
	}

	if a.Budget != nil {
		m.Budget = &budgetJSON{
			Remote:   uint64(a.Budget.Remote),
			Callback: uint64(a.Budget.Callback),
		}
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// ArgsFactory is the factory of the arguments of the dispatch method.
//
// - implements serde.Factory
type ArgsFactory struct{}

// Deserialize implements serde.Factory. The target is mandatory.
func (ArgsFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	var m argsJSON

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	if m.Target == "" {
		return nil, xerrors.New("missing target")
	}

	args := Args{
		Target: access.Account(m.Target),
		Note:   m.Note,
	}

	if m.Budget != nil {
		args.Budget = &execution.Budget{
			Remote:   execution.Gas(m.Budget.Remote),
			Callback: execution.Gas(m.Budget.Callback),
		}
	}

	return args, nil
}

// Counter is the value returned by the dispatched calls method.
//
// - implements serde.Message
type Counter struct {
	Value uint32
}

// Serialize implements serde.Message.
func (c Counter) Serialize(ctx serde.Context) ([]byte, error) {
	data, err := ctx.Marshal(c.Value)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// CounterFactory is the factory of the values returned by the dispatched calls
// method.
//
// - implements serde.Factory
type CounterFactory struct{}

// Deserialize implements serde.Factory.
func (CounterFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	var value uint32

	err := ctx.Unmarshal(data, &value)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	return Counter{Value: value}, nil
}
