package command

import (
	"flag"
	"io"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Represents a pairdist verb: report, history, daemon

type Command interface {
	// Add all arguments including shared arguments
	Add(fs *flag.FlagSet)

	// Validate all arguments including shared arguments, and apply defaults from the config file
	Validate() error

	// Lines of text for the usage message
	Summary() []string
}

// Commands that run to completion and write their output to `out`.

type PerformingCommand interface {
	Command
	Perform(out io.Writer) error
}

// Commands that accept arguments after the options.

type SetRestArgumentsAPI interface {
	SetRestArguments(args []string)
}
