// Package command implements the aagent subcommands.
package command

import (
	"flag"
	"io"
)

// Command is one subcommand of the aagent binary.
type Command interface {
	Name() string
	// Description is a one-line summary for help output.
	Description() string
	Usage() string
	// SetupFlags registers the command's flags on fs before parsing.
	SetupFlags(fs *flag.FlagSet)
	// Execute runs the command with the arguments left after flag parsing.
	Execute(args []string, stdout, stderr io.Writer) error
}

// BaseCommand carries the descriptive parts of a Command and can be
// embedded by implementations.
type BaseCommand struct {
	name        string
	description string
	usage       string
}

// NewBaseCommand returns a BaseCommand with the given help texts.
func NewBaseCommand(name, description, usage string) *BaseCommand {
	return &BaseCommand{
		name:        name,
		description: description,
		usage:       usage,
	}
}

// Name returns the name the command is invoked by.
func (c *BaseCommand) Name() string { return c.name }

// Description returns the one-line summary shown by help.
func (c *BaseCommand) Description() string { return c.description }

// Usage returns the usage line, without the program name.
func (c *BaseCommand) Usage() string { return c.usage }

// SetupFlags registers nothing.
func (c *BaseCommand) SetupFlags(fs *flag.FlagSet) {}
