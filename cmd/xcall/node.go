package main

import (
	"github.com/hashicorp/go-multierror"
	"go.dedis.ch/xcall/cli"
	"go.dedis.ch/xcall/config"
	"go.dedis.ch/xcall/contracts/deposit"
	"go.dedis.ch/xcall/contracts/dispatch"
	"go.dedis.ch/xcall/core/access"
	"go.dedis.ch/xcall/core/execution/native"
	"go.dedis.ch/xcall/core/host"
	"go.dedis.ch/xcall/core/store/kv"
	"go.dedis.ch/xcall/internal/tracing"
	"golang.org/x/xerrors"
)

const (
	// depositAccount is the account of the deposit contract.
	depositAccount access.Account = "deposit.xcall"

	// dispatchAccount is the account of the dispatch contract.
	dispatchAccount access.Account = "dispatch.xcall"

	bucketName  = "contracts"
	serviceName = "xcall"
)

// node is the runtime opened by a command: the contracts deployed on a host
// that stores their state in the database.
type node struct {
	cfg  config.Config
	db   kv.DB
	host *host.Host
}

func openNode(flags cli.Flags) (*node, error) {
	cfg, err := config.FromFile(flags.Path("config"))
	if err != nil {
		return nil, xerrors.Errorf("failed to load config: %v", err)
	}

	db, err := kv.New(flags.Path("db"))
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	tracer, err := tracing.GetTracer(serviceName, cfg.Tracing)
	if err != nil {
		db.Close()
		return nil, xerrors.Errorf("failed to get tracer: %v", err)
	}

	exec := native.NewExecution()
	exec.Set(depositAccount, deposit.NewContract())
	exec.Set(dispatchAccount, dispatch.NewContract(cfg.DispatchOptions()...))

	opts := append(cfg.HostOptions(), host.WithTracer(tracer))

	h := host.NewHost(exec, kv.NewStore(db, bucketName), opts...)

	err = h.Start()
	if err != nil {
		db.Close()
		return nil, xerrors.Errorf("failed to start host: %v", err)
	}

	n := &node{
		cfg:  cfg,
		db:   db,
		host: h,
	}

	return n, nil
}

// Close stops the host and closes the database and the tracers. Every step is
// attempted even if one fails.
func (n *node) Close() error {
	var result error

	err := n.host.Stop()
	if err != nil {
		result = multierror.Append(result, xerrors.Errorf("failed to stop host: %v", err))
	}

	err = n.db.Close()
	if err != nil {
		result = multierror.Append(result, xerrors.Errorf("failed to close db: %v", err))
	}

	err = tracing.CloseAll()
	if err != nil {
		result = multierror.Append(result, xerrors.Errorf("failed to close tracers: %v", err))
	}

	return result
}
