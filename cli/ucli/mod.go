// Package ucli implements the cli builder with the urfave/cli library.
package ucli

import (
	"fmt"
	"io"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/xcall/cli"
	"golang.org/x/xerrors"
)

// Option is the type to set some fields when instantiating a builder.
type Option func(*Builder)

// WithUsage is an option to set the one-line description of the application.
func WithUsage(usage string) Option {
	return func(b *Builder) {
		b.usage = usage
	}
}

// WithFlags is an option to set the flags of the application. They are
// readable from every command.
func WithFlags(flags ...cli.Flag) Option {
	return func(b *Builder) {
		b.flags = flags
	}
}

// WithWriter is an option to set the output of the help.
func WithWriter(out io.Writer) Option {
	return func(b *Builder) {
		b.out = out
	}
}

// Builder is the urfave implementation of the cli builder.
//
// - implements cli.Builder
type Builder struct {
	name     string
	usage    string
	flags    []cli.Flag
	out      io.Writer
	commands []*command
}

// NewBuilder returns a new builder of the application with the given name.
func NewBuilder(name string, opts ...Option) *Builder {
	b := &Builder{
		name: name,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// SetCommand implements cli.Builder.
func (b *Builder) SetCommand(name string) cli.CommandBuilder {
	cmd := &command{name: name}
	b.commands = append(b.commands, cmd)

	return cmd
}

// Build implements cli.Builder. It panics if a flag is not supported.
func (b *Builder) Build() cli.Application {
	commands := make([]*urfave.Command, len(b.commands))
	for i, cmd := range b.commands {
		commands[i] = cmd.build()
	}

	app := &urfave.App{
		Name:        b.name,
		Usage:       b.usage,
		Flags:       convertFlags(b.flags),
		Commands:    commands,
		HideVersion: true,
	}

	if b.out != nil {
		app.Writer = b.out
	}

	return app
}

// command is the definition of a command.
//
// - implements cli.CommandBuilder
type command struct {
	name        string
	description string
	flags       []cli.Flag
	action      cli.Action
}

// SetDescription implements cli.CommandBuilder.
func (c *command) SetDescription(value string) {
	c.description = value
}

// SetFlags implements cli.CommandBuilder.
func (c *command) SetFlags(flags ...cli.Flag) {
	c.flags = flags
}

// SetAction implements cli.CommandBuilder.
func (c *command) SetAction(action cli.Action) {
	c.action = action
}

func (c *command) build() *urfave.Command {
	return &urfave.Command{
		Name:  c.name,
		Usage: c.description,
		Flags: convertFlags(c.flags),
		Action: func(ctx *urfave.Context) error {
			if c.action == nil {
				return xerrors.Errorf("command '%s' has no action", c.name)
			}

			return c.action(ctx)
		},
	}
}

// convertFlags returns the urfave definitions of the flags.
func convertFlags(flags []cli.Flag) []urfave.Flag {
	res := make([]urfave.Flag, len(flags))

	for i, f := range flags {
		switch e := f.(type) {
		case cli.StringFlag:
			res[i] = &urfave.StringFlag{Name: e.Name, Usage: e.Usage, Required: e.Required, Value: e.Value}
		case cli.PathFlag:
			res[i] = &urfave.PathFlag{Name: e.Name, Usage: e.Usage, Required: e.Required, Value: e.Value,
				TakesFile: true}
		case cli.DurationFlag:
			res[i] = &urfave.DurationFlag{Name: e.Name, Usage: e.Usage, Value: e.Value}
		case cli.Uint64Flag:
			res[i] = &urfave.Uint64Flag{Name: e.Name, Usage: e.Usage, Value: e.Value}
		case cli.BoolFlag:
			res[i] = &urfave.BoolFlag{Name: e.Name, Usage: e.Usage}
		default:
			panic(fmt.Sprintf("flag type '%T' not supported", f))
		}
	}

	return res
}
