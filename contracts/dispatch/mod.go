// Package dispatch implements a native contract that forwards deposits to a
// deposit contract deployed on another account, and reconciles the outcome of
// every forwarded call in a follow-up on itself.
//
// The dispatch method never waits for the remote call. It schedules the
// remote call and the follow-up, and returns the promise of the follow-up: the
// caller of dispatch is resolved with the total decoded by the follow-up, or
// with the fault it raised.
package dispatch

import (
	"encoding/binary"
	"math"

	"github.com/rs/zerolog"
	"go.dedis.ch/xcall"
	"go.dedis.ch/xcall/contracts/deposit"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/execution/promise"
	"go.dedis.ch/xcall/core/store"
	"go.dedis.ch/xcall/internal/serdereflect"
	"go.dedis.ch/xcall/serde"
	"go.dedis.ch/xcall/serde/json"
	"golang.org/x/xerrors"
)

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/xcall.Dispatch"

	// MethodDispatch is the method that forwards a deposit to a remote
	// account.
	MethodDispatch = "dispatch"

	// MethodCallback is the follow-up that reconciles the outcome of a
	// dispatch. Only the host can invoke it.
	MethodCallback = "dispatch_callback"

	// MethodDispatchedCalls is the read-only method that returns the number of
	// dispatches.
	MethodDispatchedCalls = "get_dispatched_calls"
)

// DefaultBudget is the budget of a dispatch that does not provide one.
var DefaultBudget = execution.Budget{
	Remote:   100,
	Callback: 100,
}

// stateKey is the key of the state in the storage of the contract.
var stateKey = []byte("dispatched_calls")

// State is the state of the contract.
type State struct {
	// DispatchedCalls is the number of dispatches initiated so far, whatever
	// their outcome.
	DispatchedCalls uint32
}

// Increment counts a new dispatch.
func (s *State) Increment() error {
	if s.DispatchedCalls == math.MaxUint32 {
		return xerrors.New("dispatch counter overflows")
	}

	s.DispatchedCalls++

	return nil
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

	if len(data) != 4 {
		return State{}, xerrors.Errorf("invalid state length %d", len(data))
	}

	return State{DispatchedCalls: binary.LittleEndian.Uint32(data)}, nil
}

// Save writes the state in the storage.
func (s State) Save(w store.Writable) error {
	buffer := make([]byte, 4)
	binary.LittleEndian.PutUint32(buffer, s.DispatchedCalls)

	err := w.Set(stateKey, buffer)
	if err != nil {
		return xerrors.Errorf("failed to write state: %v", err)
	}

	return nil
}

// Contract is the dispatch contract.
//
// - implements execution.Contract
type Contract struct {
	context  serde.Context
	argsFac  serde.Factory
	totalFac serde.Factory
	budget   execution.Budget
	callback access.Policy
	viewer   access.Policy
	logger   zerolog.Logger
}

// Option is the type to set some fields when instantiating a contract.
type Option func(*Contract)

// WithBudget is an option to set the budget of the dispatches that do not
// provide one.
func WithBudget(budget execution.Budget) Option {
	return func(c *Contract) {
		c.budget = budget
	}
}

// NewContract creates a new dispatch contract.
func NewContract(opts ...Option) Contract {
	c := Contract{
		context:  json.NewContext(),
		argsFac:  ArgsFactory{},
		totalFac: deposit.TotalFactory{},
		budget:   DefaultBudget,
		callback: access.NewPolicy(access.Compile(ContractName, MethodCallback),
			access.Self(access.FollowUp)),
		viewer: access.NewPolicy(access.Compile(ContractName, MethodDispatchedCalls),
			access.Anyone(access.External), access.Anyone(access.Remote)),
		logger: xcall.Logger.With().Str("contract", "dispatch").Logger(),
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Execute implements execution.Contract. It runs the method of the call.
func (c Contract) Execute(env execution.Env) (execution.Return, error) {
	method := env.GetCall().Method

	switch method {
	case MethodDispatch:
		ref, err := c.dispatch(env)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("failed to dispatch: %w", err)
		}

		return execution.NewPromise(ref), nil
	case MethodCallback:
		total, err := c.reconcile(env)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("callback: %w", err)
		}

		data, err := total.Serialize(c.context)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("failed to serialize total: %v", err)
		}

		return execution.NewValue(data), nil
	case MethodDispatchedCalls:
		err := c.viewer.Match(env.GetAccount(), env.GetCall().Caller)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("access denied: %v", err)
		}

		state, err := LoadState(env)
		if err != nil {
			return execution.Return{}, err
		}

		data, err := Counter{Value: state.DispatchedCalls}.Serialize(c.context)
		if err != nil {
			return execution.Return{}, xerrors.Errorf("failed to serialize counter: %v", err)
		}

		return execution.NewValue(data), nil
	default:
		return execution.Return{}, xerrors.Errorf("unknown method '%s'", method)
	}
}

// dispatch counts the dispatch, schedules the deposit on the target with the
// attached amount and the follow-up that will consume its outcome. It returns
// the reference of the follow-up.
func (c Contract) dispatch(env execution.Env) (promise.Ref, error) {
	call := env.GetCall()

	msg, err := c.argsFac.Deserialize(c.context, call.Args)
	if err != nil {
		return promise.Ref{}, xerrors.Errorf("invalid arguments: %v", err)
	}

	args := msg.(Args)

	state, err := LoadState(env)
	if err != nil {
		return promise.Ref{}, err
	}

	err = state.Increment()
	if err != nil {
		return promise.Ref{}, err
	}

	err = state.Save(env)
	if err != nil {
		return promise.Ref{}, err
	}

	budget := c.budget
	if args.Budget != nil {
		budget = *args.Budget
	}

	if budget.Remote > math.MaxUint64-budget.Callback || budget.Total() > env.RemainingGas() {
		return promise.Ref{}, promise.NewFault(promise.ErrBudgetExceeded,
			xerrors.Errorf("dispatch requires %d+%d but %d remaining",
				budget.Remote, budget.Callback, env.RemainingGas()))
	}

	payload, err := deposit.Args{Note: args.Note}.Serialize(c.context)
	if err != nil {
		return promise.Ref{}, xerrors.Errorf("failed to serialize deposit: %v", err)
	}

	remote, err := env.ScheduleRemoteCall(args.Target, deposit.MethodDeposit, payload,
		call.Deposit, budget.Remote)
	if err != nil {
		return promise.Ref{}, xerrors.Errorf("failed to schedule deposit: %w", err)
	}

	followup, err := env.ScheduleFollowUp(remote, env.GetAccount(), MethodCallback, nil,
		budget.Callback)
	if err != nil {
		return promise.Ref{}, xerrors.Errorf("failed to schedule callback: %w", err)
	}

	c.logger.Info().
		Stringer("target", args.Target).
		Stringer("amount", call.Deposit).
		Stringer("remote", remote).
		Stringer("followup", followup).
		Uint32("dispatched", state.DispatchedCalls).
		Msg("dispatch")

	return followup, nil
}

// reconcile checks that the call is the follow-up scheduled by the contract
// itself, and decodes the total returned by the remote deposit.
func (c Contract) reconcile(env execution.Env) (deposit.Total, error) {
	err := c.callback.Match(env.GetAccount(), env.GetCall().Caller)
	if err != nil {
		return deposit.Total{}, promise.NewFault(promise.ErrUnauthorizedCallback, err)
	}

	payload, err := promise.Await(env)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dispatch not reconciled")

		return deposit.Total{}, err
	}

	msg, err := c.totalFac.Deserialize(c.context, payload)
	if err != nil {
		return deposit.Total{}, promise.NewFault(promise.ErrSchemaMismatch, err)
	}

	var total deposit.Total

	err = serdereflect.AssignTo(msg, &total)
	if err != nil {
		return deposit.Total{}, promise.NewFault(promise.ErrSchemaMismatch, err)
	}

	c.logger.Info().Stringer("total", total.Value).Msg("dispatch reconciled")

	return total, nil
}
