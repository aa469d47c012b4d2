// Package native implements an execution service to run native contracts.
//
// A native contract is written in Go and packaged with the application. It is
// deployed at an account and the service routes the calls to it according to
// the receiver of the call.
package native

import (
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"golang.org/x/xerrors"
)

// Service is an execution service for packaged contracts.
//
// - implements execution.Service
type Service struct {
	contracts map[access.Account]execution.Contract
}

// NewExecution returns a new native execution without any contract.
func NewExecution() *Service {
	return &Service{
		contracts: map[access.Account]execution.Contract{},
	}
}

// Set deploys the contract at the given account. A call can trigger this
// contract by using the account as its receiver.
func (ns *Service) Set(account access.Account, contract execution.Contract) {
	if account == "" {
		panic("contract account must not be empty")
	}

	if ns.Has(account) {
		panic(xerrors.Errorf("contract '%s' already registered", account))
	}

	ns.contracts[account] = contract
}

// Has returns true if a contract is deployed at the account.
func (ns *Service) Has(account access.Account) bool {
	_, ok := ns.contracts[account]
	return ok
}

// Execute implements execution.Service. It routes the call to the contract
// deployed at the receiver and returns what the contract yields.
func (ns *Service) Execute(env execution.Env) (execution.Return, error) {
	account := env.GetCall().Receiver

	contract := ns.contracts[account]
	if contract == nil {
		return execution.Return{}, xerrors.Errorf("unknown contract '%s'", account)
	}

	return contract.Execute(env)
}
