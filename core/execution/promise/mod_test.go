package promise

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestRef(t *testing.T) {
	var ref Ref
	require.True(t, ref.IsNil())

	ref = NewRef()
	require.False(t, ref.IsNil())
	require.Len(t, ref.String(), 20)
	require.NotEqual(t, ref, NewRef())
}

func TestStatus_String(t *testing.T) {
	require.Equal(t, "notready", NotReady.String())
	require.Equal(t, "successful", Successful.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "status(5)", Status(5).String())
}

func TestOutcome(t *testing.T) {
	var outcome Outcome
	require.Equal(t, NotReady, outcome.GetStatus())
	require.Equal(t, "notready", outcome.String())

	outcome = NewSuccessful([]byte{0xab})
	require.Equal(t, Successful, outcome.GetStatus())
	require.Equal(t, []byte{0xab}, outcome.GetPayload())
	require.NoError(t, outcome.GetError())
	require.Equal(t, "Successful(ab)", outcome.String())

	outcome = NewFailed(xerrors.New("oops"))
	require.Equal(t, Failed, outcome.GetStatus())
	require.Nil(t, outcome.GetPayload())
	require.EqualError(t, outcome.GetError(), "oops")
	require.Equal(t, "Failed(oops)", outcome.String())
}

func TestFault(t *testing.T) {
	cause := xerrors.New("oops")

	fault := NewFault(ErrRemoteExecution, cause)
	require.EqualError(t, fault, "remote execution failed: oops")
	require.True(t, errors.Is(fault, ErrRemoteExecution))
	require.True(t, errors.Is(fault, cause))
	require.False(t, errors.Is(fault, ErrProtocolViolation))

	fault = NewFault(ErrProtocolViolation, nil)
	require.EqualError(t, fault, "protocol violation")

	wrapped := xerrors.Errorf("callback: %w", NewFault(ErrSchemaMismatch, cause))
	require.True(t, errors.Is(wrapped, ErrSchemaMismatch))
	require.False(t, errors.Is(wrapped, ErrRemoteExecution))
}

func TestFault_NestedKinds(t *testing.T) {
	inner := NewFault(ErrBudgetExceeded, nil)
	outer := NewFault(ErrRemoteExecution, inner)

	require.True(t, errors.Is(outer, ErrRemoteExecution))
	require.True(t, errors.Is(outer, ErrBudgetExceeded))
	require.EqualError(t, outer, "remote execution failed: budget exceeded")
}

func TestAwait(t *testing.T) {
	payload, err := Await(fakeResults{outcomes: []Outcome{NewSuccessful([]byte("42"))}})
	require.NoError(t, err)
	require.Equal(t, []byte("42"), payload)

	_, err = Await(fakeResults{outcomes: []Outcome{NewFailed(xerrors.New("oops"))}})
	require.EqualError(t, err, "remote execution failed: oops")
	require.True(t, errors.Is(err, ErrRemoteExecution))

	_, err = Await(fakeResults{outcomes: []Outcome{{}}})
	require.EqualError(t, err, "protocol violation: outcome is notready")
	require.True(t, errors.Is(err, ErrProtocolViolation))

	_, err = Await(fakeResults{})
	require.EqualError(t, err, "protocol violation: expected one outcome but got 0")
	require.True(t, errors.Is(err, ErrProtocolViolation))

	_, err = Await(fakeResults{outcomes: make([]Outcome, 2)})
	require.EqualError(t, err, "protocol violation: expected one outcome but got 2")

	_, err = Await(fakeResults{outcomes: make([]Outcome, 1), err: xerrors.New("oops")})
	require.EqualError(t, err, "protocol violation: failed to read outcome: oops")
	require.True(t, errors.Is(err, ErrProtocolViolation))
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeResults struct {
	outcomes []Outcome
	err      error
}

func (r fakeResults) OutcomeCount() int {
	return len(r.outcomes)
}

func (r fakeResults) Outcome(index int) (Outcome, error) {
	if r.err != nil {
		return Outcome{}, r.err
	}

	return r.outcomes[index], nil
}
