package cli

import "time"

// StringFlag is a flag parsed as a string.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
}

// GetName implements cli.Flag.
func (f StringFlag) GetName() string {
	return f.Name
}

// PathFlag is a flag parsed as the path of a file.
//
// - implements cli.Flag
type PathFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
}

// GetName implements cli.Flag.
func (f PathFlag) GetName() string {
	return f.Name
}

// DurationFlag is a flag parsed as a duration, e.g. "1m30s".
//
// - implements cli.Flag
type DurationFlag struct {
	Name  string
	Usage string
	Value time.Duration
}

// GetName implements cli.Flag.
func (f DurationFlag) GetName() string {
	return f.Name
}

// Uint64Flag is a flag parsed as an unsigned integer.
//
// - implements cli.Flag
type Uint64Flag struct {
	Name  string
	Usage string
	Value uint64
}

// GetName implements cli.Flag.
func (f Uint64Flag) GetName() string {
	return f.Name
}

// BoolFlag is a flag that is true when present.
//
// - implements cli.Flag
type BoolFlag struct {
	Name  string
	Usage string
}

// GetName implements cli.Flag.
func (f BoolFlag) GetName() string {
	return f.Name
}
