package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannel_String(t *testing.T) {
	require.Equal(t, "external", External.String())
	require.Equal(t, "remote", Remote.String())
	require.Equal(t, "followup", FollowUp.String())
	require.Equal(t, "channel(42)", Channel(42).String())
}

func TestCaller_String(t *testing.T) {
	caller := Caller{Account: "alice", Channel: Remote}

	require.Equal(t, "alice@remote", caller.String())
}

func TestPolicy_Match(t *testing.T) {
	policy := NewPolicy(Compile("caller", "callback"), Self(FollowUp))

	err := policy.Match("caller", Caller{Account: "caller", Channel: FollowUp})
	require.NoError(t, err)

	err = policy.Match("caller", Caller{Account: "caller", Channel: External})
	require.EqualError(t, err, "caller@external is not allowed by 'caller:callback'")

	err = policy.Match("caller", Caller{Account: "mallory", Channel: FollowUp})
	require.EqualError(t, err, "mallory@followup is not allowed by 'caller:callback'")

	err = policy.Match("caller", Caller{Account: "caller", Channel: Remote})
	require.EqualError(t, err, "caller@remote is not allowed by 'caller:callback'")
}

func TestPolicy_RejectByDefault(t *testing.T) {
	policy := NewPolicy("empty")

	err := policy.Match("self", Caller{Account: "self", Channel: FollowUp})
	require.EqualError(t, err, "self@followup is not allowed by 'empty'")
}

func TestPolicy_Anyone(t *testing.T) {
	policy := NewPolicy("public", Anyone(External), Anyone(Remote))

	require.NoError(t, policy.Match("self", Caller{Account: "bob", Channel: External}))
	require.NoError(t, policy.Match("self", Caller{Account: "bob", Channel: Remote}))
	require.Error(t, policy.Match("self", Caller{Account: "bob", Channel: FollowUp}))
}
