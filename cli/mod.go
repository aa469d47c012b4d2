// Package cli defines the abstraction of a command line application, so that
// the commands are declared independently of the library parsing the
// arguments.
//
//	cmd := builder.SetCommand("total")
//	cmd.SetDescription("print the total of the deposits")
//	cmd.SetAction(func(flags cli.Flags) error {
//		fmt.Println(flags.Path("db"))
//		return nil
//	})
//
//	err := builder.Build().Run(os.Args)
package cli

import "time"

// Builder collects the commands of an application.
type Builder interface {
	// SetCommand adds a command and returns its builder.
	SetCommand(name string) CommandBuilder

	Build() Application
}

// Application runs the command selected by the arguments.
type Application interface {
	Run(arguments []string) error
}

// CommandBuilder defines a command of the application.
type CommandBuilder interface {
	SetDescription(value string)

	SetFlags(...Flag)

	SetAction(Action)
}

// Action is the function executed when its command is selected.
type Action func(Flags) error

// Flag is the definition of a flag.
type Flag interface {
	GetName() string
}

// Flags gives an action access to the values of the flags. The flags of the
// application are readable from every command.
type Flags interface {
	String(name string) string

	Path(name string) string

	Duration(name string) time.Duration

	Uint64(name string) uint64

	Bool(name string) bool
}
