// Package main implements a command line to dispatch deposits between two
// contracts deployed on a local runtime. The state of the contracts is stored
// in a bbolt database.
//
//	xcall --db /tmp/xcall.db dispatch --amount 100 --note "hello"
//	xcall --db /tmp/xcall.db dispatch --amount 50 --remote-gas 80 --metrics
//	xcall --db /tmp/xcall.db dispatch --amount 10 --traffic calls.dot
//	xcall --db /tmp/xcall.db total
//	xcall --db /tmp/xcall.db --config xcall.yml calls
//
// The configuration file and the XCALL_* environment variables set the gas
// costs and the default budget of the dispatches. The logging level is set
// with LLVL.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.dedis.ch/xcall"
	"go.dedis.ch/xcall/cli"
	"go.dedis.ch/xcall/cli/ucli"
)

const (
	defaultDB      = "xcall.db"
	defaultTimeout = 10 * time.Second
	defaultSigner  = "signer.xcall"
)

type appConfig struct {
	Writer io.Writer
}

func main() {
	err := run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// The output of the commands is printed on stdout.
	xcall.Logger = xcall.Logger.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	return runWithCfg(args, appConfig{Writer: os.Stdout})
}

func runWithCfg(args []string, cfg appConfig) error {
	builder := ucli.NewBuilder("xcall",
		ucli.WithUsage("asynchronous cross-contract deposits"),
		ucli.WithWriter(cfg.Writer),
		ucli.WithFlags(
			cli.PathFlag{
				Name:  "db",
				Usage: "path to the database of the contracts",
				Value: defaultDB,
			},
			cli.PathFlag{
				Name:  "config",
				Usage: "path to the YAML configuration",
			},
		),
	)

	cmd := builder.SetCommand("dispatch")
	cmd.SetDescription("dispatch a deposit to the deposit contract")
	cmd.SetFlags(
		cli.StringFlag{
			Name:     "amount",
			Usage:    "amount attached to the deposit, up to 2^128-1",
			Required: true,
		},
		cli.StringFlag{
			Name:  "note",
			Usage: "note forwarded to the deposit contract",
		},
		cli.StringFlag{
			Name:  "signer",
			Usage: "account of the signer of the dispatch",
			Value: defaultSigner,
		},
		cli.Uint64Flag{
			Name:  "remote-gas",
			Usage: "budget of the remote deposit, the default is used if zero",
		},
		cli.Uint64Flag{
			Name:  "callback-gas",
			Usage: "budget of the callback, the default is used if zero",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "maximum amount of time to wait for the outcome",
			Value: defaultTimeout,
		},
		cli.PathFlag{
			Name:  "traffic",
			Usage: "save a graphviz representation of the calls to the file",
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "print the metrics of the runtime after the dispatch",
		},
	)
	cmd.SetAction(dispatchAction{out: cfg.Writer}.Execute)

	cmd = builder.SetCommand("total")
	cmd.SetDescription("print the total of the deposits")
	cmd.SetAction(totalAction{out: cfg.Writer}.Execute)

	cmd = builder.SetCommand("calls")
	cmd.SetDescription("print the number of dispatches")
	cmd.SetAction(callsAction{out: cfg.Writer}.Execute)

	app := builder.Build()

	return app.Run(args)
}
