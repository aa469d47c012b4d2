// Package config defines the configuration of the runtime. A configuration is
// read from a YAML file, if any, and the environment variables prefixed with
// XCALL override the values of the file.
//
// Example of a configuration file:
//
//	call_cost: 10
//	schedule_cost: 5
//	dispatch_gas: 1000
//	default_budget:
//	  remote: 100
//	  callback: 100
//	tracing: false
package config

import (
	"io"
	"io/ioutil"
	"math"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.dedis.ch/xcall/contracts/dispatch"
	"go.dedis.ch/xcall/core/execution"
	"go.dedis.ch/xcall/core/host"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of the environment variables that override the
// configuration, e.g. XCALL_CALL_COST or XCALL_BUDGET_REMOTE.
const EnvPrefix = "XCALL"

// Config is the configuration of the runtime.
type Config struct {
	// CallCost is the gas charged to every call before its execution.
	CallCost execution.Gas `yaml:"call_cost" envconfig:"CALL_COST"`

	// ScheduleCost is the gas charged on top of the budget of a scheduled
	// call.
	ScheduleCost execution.Gas `yaml:"schedule_cost" envconfig:"SCHEDULE_COST"`

	// DispatchGas is the gas prepaid by a dispatch submitted from the command
	// line.
	DispatchGas execution.Gas `yaml:"dispatch_gas" envconfig:"DISPATCH_GAS"`

	// DefaultBudget is the budget of the dispatches that do not provide one.
	DefaultBudget execution.Budget `yaml:"default_budget" envconfig:"BUDGET"`

	// Tracing enables the jaeger tracer.
	Tracing bool `yaml:"tracing" envconfig:"TRACING"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		CallCost:      host.DefaultCallCost,
		ScheduleCost:  host.DefaultScheduleCost,
		DispatchGas:   1000,
		DefaultBudget: dispatch.DefaultBudget,
	}
}

// FromFile loads the configuration of the file. An empty path returns the
// default configuration with the environment overrides.
func FromFile(path string) (Config, error) {
	if path == "" {
		return FromReader(nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to open config: %v", err)
	}

	defer file.Close()

	return FromReader(file)
}

// FromReader loads the configuration from the reader on top of the default
// one, and applies the environment overrides. A nil reader is allowed.
func FromReader(r io.Reader) (Config, error) {
	cfg := Default()

	if r != nil {
		data, err := ioutil.ReadAll(r)
		if err != nil {
			return Config{}, xerrors.Errorf("failed to read config: %v", err)
		}

		err = yaml.UnmarshalStrict(data, &cfg)
		if err != nil {
			return Config{}, xerrors.Errorf("failed to unmarshal config: %v", err)
		}
	}

	err := envconfig.Process(EnvPrefix, &cfg)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to process env overrides: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, nil
}

// Validate returns an error if a dispatch with the default budget could never
// be executed with the dispatch gas.
func (c Config) Validate() error {
	budget := c.DefaultBudget

	if budget.Remote < c.CallCost {
		return xerrors.Errorf("remote budget %d is lower than the call cost %d",
			budget.Remote, c.CallCost)
	}

	if budget.Callback < c.CallCost {
		return xerrors.Errorf("callback budget %d is lower than the call cost %d",
			budget.Callback, c.CallCost)
	}

	required, ok := sumGas(c.CallCost, budget.Remote, budget.Callback, c.ScheduleCost, c.ScheduleCost)
	if !ok {
		return xerrors.New("gas required by a dispatch overflows")
	}

	if required > c.DispatchGas {
		return xerrors.Errorf("dispatch gas %d is lower than %d", c.DispatchGas, required)
	}

	return nil
}

// sumGas returns the sum of the amounts, or false if it overflows.
func sumGas(amounts ...execution.Gas) (execution.Gas, bool) {
	var sum execution.Gas

	for _, gas := range amounts {
		if gas > math.MaxUint64-sum {
			return 0, false
		}

		sum += gas
	}

	return sum, true
}

// HostOptions returns the options of the host for the configuration.
func (c Config) HostOptions() []host.Option {
	return []host.Option{
		host.WithCallCost(c.CallCost),
		host.WithScheduleCost(c.ScheduleCost),
	}
}

// DispatchOptions returns the options of the dispatch contract for the
// configuration.
func (c Config) DispatchOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithBudget(c.DefaultBudget),
	}
}
