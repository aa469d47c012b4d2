package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.dedis.ch/xcall"
	"go.dedis.ch/xcall/cli"
	"go.dedis.ch/xcall/contracts/deposit"
	"go.dedis.ch/xcall/contracts/dispatch"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/internal/serdereflect"
	"go.dedis.ch/xcall/internal/traffic"
	"go.dedis.ch/xcall/serde"
	"go.dedis.ch/xcall/serde/json"
	"golang.org/x/xerrors"
	"lukechampine.com/uint128"
)

// dispatchAction submits a dispatch and prints the total once the deposit is
// reconciled.
type dispatchAction struct {
	out io.Writer
}

// Execute runs the dispatch command.
func (a dispatchAction) Execute(flags cli.Flags) (err error) {
	amount, err := uint128.FromString(flags.String("amount"))
	if err != nil {
		return xerrors.Errorf("invalid amount: %v", err)
	}

	n, err := openNode(flags)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := n.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	args := dispatch.Args{
		Target: depositAccount,
		Note:   flags.String("note"),
	}

	if flags.Uint64("remote-gas") != 0 || flags.Uint64("callback-gas") != 0 {
		budget := n.cfg.DefaultBudget

		if flags.Uint64("remote-gas") != 0 {
			budget.Remote = execution.Gas(flags.Uint64("remote-gas"))
		}

		if flags.Uint64("callback-gas") != 0 {
			budget.Callback = execution.Gas(flags.Uint64("callback-gas"))
		}

		args.Budget = &budget
	}

	var tr *traffic.Traffic

	if flags.Path("traffic") != "" {
		tr = traffic.NewTraffic(nil)
		n.host.Watch(tr)
	}

	ctx := json.NewContext()

	data, err := args.Serialize(ctx)
	if err != nil {
		return xerrors.Errorf("failed to serialize arguments: %v", err)
	}

	future, err := n.host.Submit(execution.Call{
		Receiver: dispatchAccount,
		Method:   dispatch.MethodDispatch,
		Args:     data,
		Deposit:  amount,
		Gas:      n.cfg.DispatchGas,
		Caller:   access.Caller{Account: access.Account(flags.String("signer"))},
	})
	if err != nil {
		return xerrors.Errorf("failed to submit: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), flags.Duration("timeout"))
	defer cancel()

	payload, err := future.Wait(waitCtx)

	if tr != nil {
		n.host.Unwatch(tr)

		saveErr := tr.Save(flags.Path("traffic"))
		if saveErr != nil {
			return xerrors.Errorf("failed to save traffic: %v", saveErr)
		}
	}

	if flags.Bool("metrics") {
		printErr := printMetrics(a.out)
		if printErr != nil {
			return xerrors.Errorf("failed to print metrics: %v", printErr)
		}
	}

	if err != nil {
		return xerrors.Errorf("dispatch %v failed: %w", future.GetRef(), err)
	}

	var total deposit.Total

	err = decode(deposit.TotalFactory{}, payload, &total)
	if err != nil {
		return xerrors.Errorf("invalid outcome: %v", err)
	}

	fmt.Fprintf(a.out, "total: %v\n", total.Value)

	return nil
}

// totalAction prints the total of the deposits.
type totalAction struct {
	out io.Writer
}

// Execute runs the total command.
func (a totalAction) Execute(flags cli.Flags) error {
	data, err := query(flags, depositAccount, deposit.MethodTotal)
	if err != nil {
		return err
	}

	var total deposit.Total

	err = decode(deposit.TotalFactory{}, data, &total)
	if err != nil {
		return xerrors.Errorf("invalid total: %v", err)
	}

	fmt.Fprintf(a.out, "total: %v\n", total.Value)

	return nil
}

// callsAction prints the number of dispatches.
type callsAction struct {
	out io.Writer
}

// Execute runs the calls command.
func (a callsAction) Execute(flags cli.Flags) error {
	data, err := query(flags, dispatchAccount, dispatch.MethodDispatchedCalls)
	if err != nil {
		return err
	}

	var counter dispatch.Counter

	err = decode(dispatch.CounterFactory{}, data, &counter)
	if err != nil {
		return xerrors.Errorf("invalid counter: %v", err)
	}

	fmt.Fprintf(a.out, "dispatched calls: %d\n", counter.Value)

	return nil
}

func query(flags cli.Flags, account access.Account, method string) (data []byte, err error) {
	n, err := openNode(flags)
	if err != nil {
		return nil, err
	}

	defer func() {
		closeErr := n.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	data, err = n.host.Query(execution.Call{Receiver: account, Method: method})
	if err != nil {
		return nil, xerrors.Errorf("query failed: %v", err)
	}

	return data, nil
}

// decode deserializes the data with the factory into the destination.
func decode(fac serde.Factory, data []byte, dest interface{}) error {
	msg, err := fac.Deserialize(json.NewContext(), data)
	if err != nil {
		return err
	}

	return serdereflect.AssignTo(msg, dest)
}

// printMetrics writes the metrics of the module in the Prometheus text format.
func printMetrics(out io.Writer) error {
	registry := prometheus.NewRegistry()

	for _, c := range xcall.PromCollectors {
		err := registry.Register(c)
		if err != nil {
			return xerrors.Errorf("failed to register: %v", err)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		return xerrors.Errorf("failed to gather: %v", err)
	}

	encoder := expfmt.NewEncoder(out, expfmt.FmtText)

	for _, family := range families {
		err = encoder.Encode(family)
		if err != nil {
			return xerrors.Errorf("failed to encode: %v", err)
		}
	}

	return nil
}
