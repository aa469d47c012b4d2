// Package promise defines the outcome of a scheduled call and the
// reconciliation of that outcome inside the continuation attached to it.
//
// A continuation is always delivered after the call it depends on has either
// succeeded or failed. It therefore expects exactly one outcome that is never
// NotReady: anything else is a violation of the scheduling guarantee and is
// fatal.
package promise

import (
	"fmt"

	"github.com/rs/xid"
	"golang.org/x/xerrors"
)

var (
	// ErrRemoteExecution is the fault of a scheduled call that did not
	// complete successfully, whatever the reason.
	ErrRemoteExecution = xerrors.New("remote execution failed")

	// ErrProtocolViolation is the fault of a continuation that is not
	// delivered with exactly one resolved outcome.
	ErrProtocolViolation = xerrors.New("protocol violation")

	// ErrSchemaMismatch is the fault of a successful payload that cannot be
	// decoded into the expected type.
	ErrSchemaMismatch = xerrors.New("schema mismatch")

	// ErrUnauthorizedCallback is the fault of a continuation invoked by
	// anything else than the scheduler.
	ErrUnauthorizedCallback = xerrors.New("unauthorized callback")

	// ErrBudgetExceeded is the fault of a call that tries to spend more than
	// it was given.
	ErrBudgetExceeded = xerrors.New("budget exceeded")
)

// Ref is an opaque reference to a scheduled call.
type Ref xid.ID

// NewRef returns a new unique reference.
func NewRef() Ref {
	return Ref(xid.New())
}

// IsNil returns true if the reference is the zero value.
func (r Ref) IsNil() bool {
	return xid.ID(r).IsNil()
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	return xid.ID(r).String()
}

// Status is the tag of an outcome.
type Status int

const (
	// NotReady is the status of an outcome that is not resolved yet.
	NotReady Status = iota

	// Successful is the status of a call that completed and returned a
	// payload.
	Successful

	// Failed is the status of a call that aborted.
	Failed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case NotReady:
		return "notready"
	case Successful:
		return "successful"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of a scheduled call. The zero value is an outcome
// that is not ready.
type Outcome struct {
	status  Status
	payload []byte
	err     error
}

// NewSuccessful returns the outcome of a call that returned the payload.
func NewSuccessful(payload []byte) Outcome {
	return Outcome{
		status:  Successful,
		payload: payload,
	}
}

// NewFailed returns the outcome of a call that aborted with the error.
func NewFailed(err error) Outcome {
	return Outcome{
		status: Failed,
		err:    err,
	}
}

// GetStatus returns the tag of the outcome.
func (o Outcome) GetStatus() Status {
	return o.status
}

// GetPayload returns the payload of a successful outcome, or nil.
func (o Outcome) GetPayload() []byte {
	return o.payload
}

// GetError returns the reason of a failed outcome, or nil.
func (o Outcome) GetError() error {
	return o.err
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o.status {
	case Successful:
		return fmt.Sprintf("Successful(%x)", o.payload)
	case Failed:
		return fmt.Sprintf("Failed(%v)", o.err)
	default:
		return o.status.String()
	}
}

// Fault is an error of one of the kinds of the protocol. It can be matched
// against its kind with errors.Is, and it unwraps to its cause.
type Fault struct {
	kind  error
	cause error
}

// NewFault returns a fault of the given kind. The cause is optional.
func NewFault(kind, cause error) Fault {
	return Fault{
		kind:  kind,
		cause: cause,
	}
}

// Error implements error.
func (f Fault) Error() string {
	if f.cause == nil {
		return f.kind.Error()
	}

	return fmt.Sprintf("%v: %v", f.kind, f.cause)
}

// Is returns true when the target is the kind of the fault.
func (f Fault) Is(target error) bool {
	return target == f.kind
}

// Unwrap returns the cause of the fault.
func (f Fault) Unwrap() error {
	return f.cause
}

// Results gives a continuation access to the outcomes attached to it.
type Results interface {
	// OutcomeCount returns the number of outcomes attached to the call.
	OutcomeCount() int

	// Outcome returns the outcome at the given slot.
	Outcome(index int) (Outcome, error)
}

// Await reconciles the outcome attached to a continuation. It returns the
// payload of the single outcome if it is successful. Otherwise it returns a
// remote execution fault when the call failed, or a protocol violation when
// the continuation was not delivered with exactly one resolved outcome.
func Await(results Results) ([]byte, error) {
	count := results.OutcomeCount()
	if count != 1 {
		return nil, NewFault(ErrProtocolViolation,
			xerrors.Errorf("expected one outcome but got %d", count))
	}

	outcome, err := results.Outcome(0)
	if err != nil {
		return nil, NewFault(ErrProtocolViolation,
			xerrors.Errorf("failed to read outcome: %v", err))
	}

	switch outcome.GetStatus() {
	case Successful:
		return outcome.GetPayload(), nil
	case Failed:
		return nil, NewFault(ErrRemoteExecution, outcome.GetError())
	default:
		return nil, NewFault(ErrProtocolViolation, xerrors.Errorf("outcome is %v", outcome.GetStatus()))
	}
}
