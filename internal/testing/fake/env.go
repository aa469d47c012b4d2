package fake

import (
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/execution/promise"
	"golang.org/x/xerrors"
	"lukechampine.com/uint128"
)

// Scheduled is the record of a call scheduled through the fake environment.
type Scheduled struct {
	Ref       promise.Ref
	DependsOn promise.Ref
	Target    access.Account
	Method    string
	Args      []byte
	Deposit   uint128.Uint128
	Gas       execution.Gas
}

// IsFollowUp returns true if the call is a follow-up.
func (s Scheduled) IsFollowUp() bool {
	return !s.DependsOn.IsNil()
}

// Env is a fake implementation of a contract environment. The outcomes can be
// populated to simulate a follow-up, and the scheduled calls are recorded.
//
// - implements execution.Env
type Env struct {
	*InMemorySnapshot

	Call        execution.Call
	Outcomes    []promise.Outcome
	Scheduled   []Scheduled
	Remaining   execution.Gas
	ErrOutcome  error
	ErrSchedule error
}

// NewEnv returns a new environment for the call. The budget of the
// environment is the prepaid gas of the call.
func NewEnv(call execution.Call, outcomes ...promise.Outcome) *Env {
	return &Env{
		InMemorySnapshot: NewSnapshot(),
		Call:             call,
		Outcomes:         outcomes,
		Remaining:        call.Gas,
	}
}

// NewBadEnv returns a new environment that fails on every operation.
func NewBadEnv(call execution.Call) *Env {
	env := NewEnv(call)
	env.InMemorySnapshot = NewBadSnapshot()
	env.ErrOutcome = fakeErr
	env.ErrSchedule = fakeErr

	return env
}

// GetCall implements execution.Env.
func (env *Env) GetCall() execution.Call {
	return env.Call
}

// GetAccount implements execution.Env. It returns the receiver of the call.
func (env *Env) GetAccount() access.Account {
	return env.Call.Receiver
}

// UseGas implements execution.Env.
func (env *Env) UseGas(gas execution.Gas) error {
	if gas > env.Remaining {
		return promise.NewFault(promise.ErrBudgetExceeded,
			xerrors.Errorf("%d > %d", gas, env.Remaining))
	}

	env.Remaining -= gas

	return nil
}

// RemainingGas implements execution.Env.
func (env *Env) RemainingGas() execution.Gas {
	return env.Remaining
}

// ScheduleRemoteCall implements execution.Scheduler. It records the call and
// charges its budget.
func (env *Env) ScheduleRemoteCall(target access.Account, method string, args []byte,
	deposit uint128.Uint128, gas execution.Gas) (promise.Ref, error) {

	if env.ErrSchedule != nil {
		return promise.Ref{}, env.ErrSchedule
	}

	err := env.UseGas(gas)
	if err != nil {
		return promise.Ref{}, err
	}

	ref := promise.NewRef()

	env.Scheduled = append(env.Scheduled, Scheduled{
		Ref:     ref,
		Target:  target,
		Method:  method,
		Args:    args,
		Deposit: deposit,
		Gas:     gas,
	})

	return ref, nil
}

// ScheduleFollowUp implements execution.Scheduler. It records the call and
// charges its budget.
func (env *Env) ScheduleFollowUp(dep promise.Ref, self access.Account, method string,
	args []byte, gas execution.Gas) (promise.Ref, error) {

	if env.ErrSchedule != nil {
		return promise.Ref{}, env.ErrSchedule
	}

	err := env.UseGas(gas)
	if err != nil {
		return promise.Ref{}, err
	}

	ref := promise.NewRef()

	env.Scheduled = append(env.Scheduled, Scheduled{
		Ref:       ref,
		DependsOn: dep,
		Target:    self,
		Method:    method,
		Args:      args,
		Gas:       gas,
	})

	return ref, nil
}

// OutcomeCount implements execution.Results.
func (env *Env) OutcomeCount() int {
	return len(env.Outcomes)
}

// Outcome implements execution.Results.
func (env *Env) Outcome(index int) (promise.Outcome, error) {
	if env.ErrOutcome != nil {
		return promise.Outcome{}, env.ErrOutcome
	}

	if index < 0 || index >= len(env.Outcomes) {
		return promise.Outcome{}, xerrors.Errorf("outcome %d out of range", index)
	}

	return env.Outcomes[index], nil
}
