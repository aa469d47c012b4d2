package deposit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/internal/testing/fake"
	"go.dedis.ch/xcall/serde/json"
	"lukechampine.com/uint128"
)

func TestState_Deposit(t *testing.T) {
	state := State{}

	total, err := state.Deposit(uint128.From64(100))
	require.NoError(t, err)
	require.Equal(t, uint128.From64(100), total)

	total, err = state.Deposit(uint128.From64(50))
	require.NoError(t, err)
	require.Equal(t, uint128.From64(150), total)
	require.Equal(t, uint128.From64(150), state.Deposited)

	total, err = state.Deposit(uint128.Zero)
	require.NoError(t, err)
	require.Equal(t, uint128.From64(150), total)

	state = State{Deposited: uint128.Max}
	_, err = state.Deposit(uint128.From64(1))
	require.EqualError(t, err, "total overflows with 1")
	require.Equal(t, uint128.Max, state.Deposited)
}

func TestLoadState(t *testing.T) {
	snap := fake.NewSnapshot()

	state, err := LoadState(snap)
	require.NoError(t, err)
	require.True(t, state.Deposited.IsZero())

	state.Deposited = uint128.New(5, 7)
	require.NoError(t, state.Save(snap))

	state, err = LoadState(snap)
	require.NoError(t, err)
	require.Equal(t, uint128.New(5, 7), state.Deposited)

	require.NoError(t, snap.Set(stateKey, []byte{1, 2, 3}))
	_, err = LoadState(snap)
	require.EqualError(t, err, "invalid state length 3")

	_, err = LoadState(fake.NewBadSnapshot())
	require.EqualError(t, err, fake.Err("failed to read state"))

	err = State{}.Save(fake.NewBadSnapshot())
	require.EqualError(t, err, fake.Err("failed to write state"))
}

func TestContract_Deposit(t *testing.T) {
	contract := NewContract()

	logger, check := fake.CheckLogField("note", "hi")
	contract.logger = logger

	env := fake.NewEnv(makeCall(t, MethodDeposit, "hi", 100))

	ret, err := contract.Execute(env)
	require.NoError(t, err)
	require.Equal(t, `"100"`, string(ret.GetValue()))
	check(t)

	env.Call = makeCall(t, MethodDeposit, "again", 50)

	ret, err = contract.Execute(env)
	require.NoError(t, err)
	require.Equal(t, `"150"`, string(ret.GetValue()))

	state, err := LoadState(env)
	require.NoError(t, err)
	require.Equal(t, uint128.From64(150), state.Deposited)
}

func TestContract_DepositWithoutArgs(t *testing.T) {
	contract := NewContract()

	env := fake.NewEnv(execution.Call{
		Method:  MethodDeposit,
		Deposit: uint128.From64(3),
	})

	ret, err := contract.Execute(env)
	require.NoError(t, err)
	require.Equal(t, `"3"`, string(ret.GetValue()))
}

func TestContract_DepositFailures(t *testing.T) {
	contract := NewContract()

	env := fake.NewEnv(execution.Call{Method: MethodDeposit, Args: []byte("{")})
	_, err := contract.Execute(env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to deposit: invalid arguments: failed to unmarshal")

	env = fake.NewBadEnv(makeCall(t, MethodDeposit, "hi", 1))
	_, err = contract.Execute(env)
	require.EqualError(t, err, fake.Err("failed to deposit: failed to read state"))

	env = fake.NewEnv(makeCall(t, MethodDeposit, "hi", 1))
	env.ErrWrite = fake.GetError()
	_, err = contract.Execute(env)
	require.EqualError(t, err, fake.Err("failed to deposit: failed to write state"))

	env = fake.NewEnv(makeCall(t, MethodDeposit, "hi", 1))
	require.NoError(t, State{Deposited: uint128.Max}.Save(env))
	_, err = contract.Execute(env)
	require.EqualError(t, err, "failed to deposit: total overflows with 1")

	state, err := LoadState(env)
	require.NoError(t, err)
	require.Equal(t, uint128.Max, state.Deposited)
}

func TestContract_Total(t *testing.T) {
	contract := NewContract()

	env := fake.NewEnv(execution.Call{Method: MethodTotal})

	ret, err := contract.Execute(env)
	require.NoError(t, err)
	require.Equal(t, `"0"`, string(ret.GetValue()))

	require.NoError(t, State{Deposited: uint128.From64(42)}.Save(env))

	first, err := contract.Execute(env)
	require.NoError(t, err)

	second, err := contract.Execute(env)
	require.NoError(t, err)
	require.Equal(t, `"42"`, string(first.GetValue()))
	require.Equal(t, first, second)

	env.Call.Caller = access.Caller{Account: "dispatch", Channel: access.Remote}
	ret, err = contract.Execute(env)
	require.NoError(t, err)
	require.Equal(t, `"42"`, string(ret.GetValue()))

	env.Call.Caller = access.Caller{Account: "deposit", Channel: access.FollowUp}
	_, err = contract.Execute(env)
	require.EqualError(t, err, "access denied: deposit@followup is not allowed by "+
		"'go.dedis.ch/xcall.Deposit:get_current_total'")

	_, err = contract.Execute(fake.NewBadEnv(execution.Call{Method: MethodTotal}))
	require.EqualError(t, err, fake.Err("failed to read state"))
}

func TestContract_UnknownMethod(t *testing.T) {
	contract := NewContract()

	_, err := contract.Execute(fake.NewEnv(execution.Call{Method: "withdraw"}))
	require.EqualError(t, err, "unknown method 'withdraw'")
}

// -----------------------------------------------------------------------------
// Utility functions

func makeCall(t *testing.T, method, note string, amount uint64) execution.Call {
	args, err := Args{Note: note}.Serialize(json.NewContext())
	require.NoError(t, err)

	return execution.Call{
		Receiver: "callee",
		Method:   method,
		Args:     args,
		Deposit:  uint128.From64(amount),
		Caller:   access.Caller{Account: "caller", Channel: access.Remote},
	}
}
