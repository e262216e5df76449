// `pairdist` -- Distance and similarity between the two columns of a file of integer pairs
//
// Run without arguments to analyze ./input.txt, or run `pairdist help` for brief help.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	. "pairdist/command"
	"pairdist/daemon"
	"pairdist/history"
	"pairdist/report"
)

// v0.1.0 - report verb
// v0.2.0 - history, daemon, result sinks

const PairdistVersion = "0.2.0"

func main() {
	err := pairdist()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pairdist() error {
	switch cmd := commandLine().(type) {
	case *daemon.DaemonCommand:
		return cmd.RunDaemon()
	case PerformingCommand:
		return cmd.Perform(os.Stdout)
	default:
		return errors.New("NYI command")
	}
}

func commandLine() Command {
	out := flag.CommandLine.Output()

	// No verb at all is a report, with options if any are given.
	verb := "report"
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-h" || !strings.HasPrefix(args[0], "-")) {
		verb = args[0]
		args = args[1:]
	}

	var cmd Command
	switch verb {
	case "help", "-h":
		fmt.Fprintf(out, "Usage: %s [command [options] [input-file]]\n", os.Args[0])
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  report   - analyze an input file (the default, on %s)\n", report.DefaultInputFile)
		fmt.Fprintf(out, "  history  - list stored results\n")
		fmt.Fprintf(out, "  daemon   - run the analysis as an HTTP service\n")
		fmt.Fprintf(out, "  version  - print information about the program\n")
		fmt.Fprintf(out, "  help     - print this message\n")
		fmt.Fprintf(out, "Each command accepts -h to further explain options.\n")
		os.Exit(0)
	case "report":
		cmd = report.New()
	case "history":
		cmd = history.New()
	case "daemon":
		cmd = daemon.New(PairdistVersion)
	case "version":
		fmt.Printf("pairdist version(%s)\n", PairdistVersion)
		os.Exit(0)
	default:
		fmt.Fprintf(out, "Unknown operation %q, try `pairdist help`\n", verb)
		os.Exit(2)
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cmd.Add(fs)

	fs.Usage = func() {
		restargs := ""
		if _, ok := cmd.(SetRestArgumentsAPI); ok {
			restargs = " [input-file]"
		}
		fmt.Fprintf(out, "Usage: %s %s [options]%s\n\n", os.Args[0], verb, restargs)
		for _, s := range cmd.Summary() {
			fmt.Fprintln(out, "  ", s)
		}
		fmt.Fprintln(out, "\nOptions:")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) > 0 {
		if raCmd, ok := cmd.(SetRestArgumentsAPI); ok {
			raCmd.SetRestArguments(rest)
		} else {
			fmt.Fprintf(out, "Rest arguments not accepted by `%s`.\n", verb)
			os.Exit(2)
		}
	}

	err := cmd.Validate()
	if err != nil {
		fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err.Error())
		os.Exit(2)
	}

	return cmd
}
