// Package deposit implements a native contract that keeps the running total of
// the amounts attached to its deposit calls.
package deposit

import (
	"github.com/rs/zerolog"
	"go.dedis.ch/xcall"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/store"
	"go.dedis.ch/xcall/serde"
	"go.dedis.ch/xcall/serde/json"
	"golang.org/x/xerrors"
	"lukechampine.com/uint128"
)

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/xcall.Deposit"

	// MethodDeposit is the method that adds the attached amount to the total
	// and returns the new total.
	MethodDeposit = "deposit"

	// MethodTotal is the read-only method that returns the total.
	MethodTotal = "get_current_total"
)

// stateKey is the key of the state in the storage of the contract.
var stateKey = []byte("deposited")

// State is the state of the contract.
type State struct {
	// Deposited is the sum of the amounts deposited so far. It never
	// decreases.
	Deposited uint128.Uint128
}

// Deposit adds the amount to the total and returns the new total. The state
// is left untouched if the total would overflow.
func (s *State) Deposit(amount uint128.Uint128) (uint128.Uint128, error) {
	total := s.Deposited.AddWrap(amount)
	if total.Cmp(s.Deposited) < 0 {
		return uint128.Zero, xerrors.Errorf("total overflows with %v", amount)
	}

	s.Deposited = total

	return total, nil
}

// LoadState reads the state from the storage. A missing state is the initial
// state.
func LoadState(r store.Readable) (State, error) {
	data, err := r.Get(stateKey)
	if err != nil {
		return State{}, xerrors.Errorf("failed to read state: %v", err)
	}

	if len(data) == 0 {
		return State{}, nil
	}

	if len(data) != 16 {
		return State{}, xerrors.Errorf("invalid state length %d", len(data))
	}

	return State{Deposited: uint128.FromBytes(data)}, nil
}

// Save writes the state in the storage.
func (s State) Save(w store.Writable) error {
	buffer := make([]byte, 16)
	s.Deposited.PutBytes(buffer)

	err := w.Set(stateKey, buffer)
	if err != nil {
		return xerrors.Errorf("failed to write state: %v", err)
	}

	return nil
}

// Contract is the deposit contract.
//
// - implements execution.Contract
type Contract struct {
	context serde.Context
	argsFac serde.Factory
	viewer  access.Policy
	logger  zerolog.Logger
}

// NewContract creates a new deposit contract.
func NewContract() Contract {
	return Contract{
		context: json.NewContext(),
		argsFac: ArgsFactory{},
		viewer:  access.NewPolicy(access.Compile(ContractName, MethodTotal),
			access.Anyone(access.External), access.Anyone(access.Remote)),
		logger: xcall.Logger.With().Str("contract", "deposit").Logger(),
	}
}

// Execute implements execution.Contract. It runs the method of the call.
func (c Contract) Execute(env execution.Env) (execution.Return, error) {
	method := env.GetCall().Method

	switch method {
	case MethodDeposit:
		total, err := c.deposit(env)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("failed to deposit: %v", err)
		}

		return c.encode(total)
	case MethodTotal:
		err := c.viewer.Match(env.GetAccount(), env.GetCall().Caller)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("access denied: %v", err)
		}

		state, err := LoadState(env)
		if err != nil {
			return execution.Return{}, err
		}

		return c.encode(state.Deposited)
	default:
		return execution.Return{}, xerrors.Errorf("unknown method '%s'", method)
	}
}

func (c Contract) deposit(env execution.Env) (uint128.Uint128, error) {
	call := env.GetCall()

	note := ""

	if len(call.Args) > 0 {
		msg, err := c.argsFac.Deserialize(c.context, call.Args)
		if err != nil {
			return uint128.Zero, xerrors.Errorf("invalid arguments: %v", err)
		}

		note = msg.(Args).Note
	}

	state, err := LoadState(env)
	if err != nil {
		return uint128.Zero, err
	}

	total, err := state.Deposit(call.Deposit)
	if err != nil {
		return uint128.Zero, err
	}

	err = state.Save(env)
	if err != nil {
		return uint128.Zero, err
	}

	c.logger.Info().
		Stringer("caller", call.Caller.Account).
		Str("note", note).
		Stringer("amount", call.Deposit).
		Msg("deposit")

	return total, nil
}

func (c Contract) encode(value uint128.Uint128) (execution.Return, error) {
	data, err := Total{Value: value}.Serialize(c.context)
	if err != nil {
		return execution.Return{}, xerrors.Errorf("failed to serialize total: %v", err)
	}

	return execution.NewValue(data), nil
}
