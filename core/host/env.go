package host

import (
	"math"

	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/execution/promise"
	"go.dedis.ch/xcall/core/store"
	"golang.org/x/xerrors"
	"lukechampine.com/uint128"
)

// env is the environment of a call executed by the host. It collects the
// calls scheduled by the contract so that the host can enqueue them once the
// call succeeds.
//
// - implements execution.Env
type env struct {
	store.Snapshot

	call         execution.Call
	outcomes     []promise.Outcome
	remaining    execution.Gas
	scheduleCost execution.Gas
	readOnly     bool

	scheduled []*receipt
	refs      map[promise.Ref]struct{}
}

func newEnv(call execution.Call, snap store.Snapshot, outcomes []promise.Outcome,
	scheduleCost execution.Gas) *env {

	return &env{
		Snapshot:     snap,
		call:         call,
		outcomes:     outcomes,
		remaining:    call.Gas,
		scheduleCost: scheduleCost,
		refs:         make(map[promise.Ref]struct{}),
	}
}

// GetCall implements execution.Env. It returns the call being executed.
func (e *env) GetCall() execution.Call {
	return e.call
}

// GetAccount implements execution.Env. It returns the receiver of the call.
func (e *env) GetAccount() access.Account {
	return e.call.Receiver
}

// UseGas implements execution.Env. It charges the amount to the budget of the
// call, or returns an error if the budget is not enough. Nothing is charged
// when it fails.
func (e *env) UseGas(gas execution.Gas) error {
	if gas > e.remaining {
		return promise.NewFault(promise.ErrBudgetExceeded,
			xerrors.Errorf("%d required but %d remaining", gas, e.remaining))
	}

	e.remaining -= gas

	return nil
}

// RemainingGas implements execution.Env.
func (e *env) RemainingGas() execution.Gas {
	return e.remaining
}

// ScheduleRemoteCall implements execution.Scheduler. The budget of the remote
// call and the scheduling cost are charged to the current call.
func (e *env) ScheduleRemoteCall(target access.Account, method string, args []byte,
	deposit uint128.Uint128, gas execution.Gas) (promise.Ref, error) {

	if e.readOnly {
		return promise.Ref{}, xerrors.New("read-only call")
	}

	if target == "" {
		return promise.Ref{}, xerrors.New("missing target")
	}

	err := e.charge(gas)
	if err != nil {
		return promise.Ref{}, err
	}

	ref := promise.NewRef()

	e.scheduled = append(e.scheduled, &receipt{
		call: execution.Call{
			ID:       ref,
			Receiver: target,
			Method:   method,
			Args:     args,
			Deposit:  deposit,
			Gas:      gas,
			Caller: access.Caller{
				Account: e.call.Receiver,
				Channel: access.Remote,
			},
		},
	})

	e.refs[ref] = struct{}{}

	return ref, nil
}

// ScheduleFollowUp implements execution.Scheduler. The follow-up must be
// addressed to the contract itself and depend on a call scheduled by the
// current call. It is delivered on the follow-up channel.
func (e *env) ScheduleFollowUp(dep promise.Ref, self access.Account, method string,
	args []byte, gas execution.Gas) (promise.Ref, error) {

	if e.readOnly {
		return promise.Ref{}, xerrors.New("read-only call")
	}

	if self != e.call.Receiver {
		return promise.Ref{}, xerrors.Errorf("follow-up must be addressed to '%s' but got '%s'",
			e.call.Receiver, self)
	}

	if !e.owns(dep) {
		return promise.Ref{}, xerrors.Errorf("unknown call reference %v", dep)
	}

	err := e.charge(gas)
	if err != nil {
		return promise.Ref{}, err
	}

	ref := promise.NewRef()

	e.scheduled = append(e.scheduled, &receipt{
		call: execution.Call{
			ID:       ref,
			Receiver: self,
			Method:   method,
			Args:     args,
			Deposit:  uint128.Zero,
			Gas:      gas,
			Caller: access.Caller{
				Account: self,
				Channel: access.FollowUp,
			},
		},
		dependsOn: dep,
	})

	e.refs[ref] = struct{}{}

	return ref, nil
}

// OutcomeCount implements execution.Results.
func (e *env) OutcomeCount() int {
	return len(e.outcomes)
}

// Outcome implements execution.Results.
func (e *env) Outcome(index int) (promise.Outcome, error) {
	if index < 0 || index >= len(e.outcomes) {
		return promise.Outcome{}, xerrors.Errorf("no outcome at index %d", index)
	}

	return e.outcomes[index], nil
}

func (e *env) owns(ref promise.Ref) bool {
	_, found := e.refs[ref]
	return found
}

// charge charges the budget of a scheduled call alongside the scheduling cost.
func (e *env) charge(gas execution.Gas) error {
	if gas > math.MaxUint64-e.scheduleCost {
		return promise.NewFault(promise.ErrBudgetExceeded, xerrors.Errorf("budget %d overflows", gas))
	}

	return e.UseGas(gas + e.scheduleCost)
}
