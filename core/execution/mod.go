// Package execution defines the primitives to execute a call on a contract.
//
// A contract never blocks on another contract. It can schedule a call on a
// remote account and a follow-up on itself that will receive the outcome of
// that call once it is resolved. The method returns a promise of the
// follow-up instead of a value, and the host resolves the original call with
// the outcome of the follow-up.
package execution

import (
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution/promise"
	"go.dedis.ch/xcall/core/store"
	"lukechampine.com/uint128"
)

// Gas is an amount of execution resources.
type Gas uint64

// Budget is the pair of allowances of a dispatch: one for the remote call and
// one for the follow-up that consumes its outcome.
type Budget struct {
	Remote   Gas `yaml:"remote" json:"remote"`
	Callback Gas `yaml:"callback" json:"callback"`
}

// Total returns the sum of both allowances.
func (b Budget) Total() Gas {
	return b.Remote + b.Callback
}

// Call is the input of a contract execution.
type Call struct {
	// ID is the reference of the call in the host.
	ID promise.Ref

	// Receiver is the account of the contract executing the call.
	Receiver access.Account

	// Method is the name of the method to execute.
	Method string

	// Args are the encoded arguments of the method.
	Args []byte

	// Deposit is the amount attached to the call.
	Deposit uint128.Uint128

	// Gas is the prepaid budget of the call.
	Gas Gas

	// Caller is the author of the call.
	Caller access.Caller
}

// Scheduler is the interface the host provides to a running contract to chain
// calls. The scheduled calls are executed only if the current call succeeds.
type Scheduler interface {
	// ScheduleRemoteCall schedules a call on the target account with the given
	// deposit and budget. It returns a reference to the call.
	ScheduleRemoteCall(target access.Account, method string, args []byte,
		deposit uint128.Uint128, gas Gas) (promise.Ref, error)

	// ScheduleFollowUp schedules a call on the contract itself that will be
	// executed strictly after the referenced call is resolved, with its outcome
	// attached.
	ScheduleFollowUp(ref promise.Ref, self access.Account, method string,
		args []byte, gas Gas) (promise.Ref, error)
}

// Results gives a follow-up access to the outcomes attached to it.
type Results = promise.Results

// Env is the environment of a running contract.
type Env interface {
	// Snapshot is the storage of the contract. Other contracts cannot read nor
	// write it.
	store.Snapshot

	Scheduler

	Results

	// GetCall returns the call being executed.
	GetCall() Call

	// GetAccount returns the account of the contract being executed.
	GetAccount() access.Account

	// UseGas charges the amount to the budget of the call. It returns an error
	// if the budget is exhausted.
	UseGas(Gas) error

	// RemainingGas returns what is left from the budget of the call.
	RemainingGas() Gas
}

// Return is what a method yields: either a value, or the promise of a
// scheduled call whose outcome becomes the outcome of the method.
type Return struct {
	value   []byte
	promise promise.Ref
}

// NewValue returns a value return.
func NewValue(value []byte) Return {
	return Return{value: value}
}

// NewPromise returns a promise return.
func NewPromise(ref promise.Ref) Return {
	return Return{promise: ref}
}

// GetValue returns the value, or nil.
func (r Return) GetValue() []byte {
	return r.value
}

// GetPromise returns the reference of the promise and true if it is a promise
// return.
func (r Return) GetPromise() (promise.Ref, bool) {
	return r.promise, !r.promise.IsNil()
}

// Contract is the interface to implement to deploy a contract on a host.
type Contract interface {
	// Execute runs the method of the call in the environment.
	Execute(Env) (Return, error)
}

// Service is the execution service that defines the primitives to execute a
// call.
type Service interface {
	// Execute must run the call on the contract deployed at the receiver of
	// the call, and return what the method yields.
	Execute(Env) (Return, error)
}
