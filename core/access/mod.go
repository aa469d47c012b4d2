// Package access defines the identities of the callers of a contract and the
// policies that restrict which of them can invoke a method.
//
// A policy rejects by default: a caller is accepted only if one of the rules of
// the policy explicitly allows it.
package access

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// Account is the identifier of an endpoint of the host, either a deployed
// contract or an external signer.
type Account string

// String implements fmt.Stringer.
func (a Account) String() string {
	return string(a)
}

// Channel is the way a call has been delivered to a contract.
type Channel int

const (
	// External is the channel of the calls submitted from outside the host.
	External Channel = iota

	// Remote is the channel of the calls scheduled by a contract on another
	// account.
	Remote

	// FollowUp is the channel of the continuations scheduled by a contract on
	// itself. Only the host can deliver a call on this channel.
	FollowUp
)

// String implements fmt.Stringer.
func (c Channel) String() string {
	switch c {
	case External:
		return "external"
	case Remote:
		return "remote"
	case FollowUp:
		return "followup"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Caller is the identity of the author of a call alongside the channel it has
// been delivered through.
type Caller struct {
	Account Account
	Channel Channel
}

// String implements fmt.Stringer.
func (c Caller) String() string {
	return fmt.Sprintf("%s@%v", c.Account, c.Channel)
}

// Rule is a predicate on the caller of a method. The account of the contract
// being invoked is provided so that a rule can refer to it.
type Rule func(self Account, caller Caller) bool

// Self returns a rule that allows the contract itself when it calls through
// the given channel.
func Self(channel Channel) Rule {
	return func(self Account, caller Caller) bool {
		return caller.Account == self && caller.Channel == channel
	}
}

// Anyone returns a rule that allows any account calling through the given
// channel.
func Anyone(channel Channel) Rule {
	return func(self Account, caller Caller) bool {
		return caller.Channel == channel
	}
}

// Policy is an allow-list of rules.
type Policy struct {
	name  string
	rules []Rule
}

// NewPolicy creates a policy with the given name and rules. A policy without
// rules rejects every caller.
func NewPolicy(name string, rules ...Rule) Policy {
	return Policy{
		name:  name,
		rules: rules,
	}
}

// Match returns nil if one of the rules allows the caller, otherwise an error.
func (p Policy) Match(self Account, caller Caller) error {
	for _, rule := range p.rules {
		if rule(self, caller) {
			return nil
		}
	}

	return xerrors.Errorf("%v is not allowed by '%s'", caller, p.name)
}

// Compile returns a compacted rule name from the string segments.
func Compile(segments ...string) string {
	return strings.Join(segments, ":")
}
