package report

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	. "pairdist/command"
	. "pairdist/common"
	"pairdist/pairs"
)

const DefaultInputFile = "./input.txt"

type ReportCommand struct {
	VerboseArgs
	FormatArgs
	SinkArgs
	Input        string
	DistanceOnly bool

	rest []string
}

var _ = PerformingCommand((*ReportCommand)(nil))
var _ = SetRestArgumentsAPI((*ReportCommand)(nil))

func New() *ReportCommand {
	return &ReportCommand{FormatArgs: NewFormatArgs(Formats...)}
}

func (rc *ReportCommand) Add(fs *flag.FlagSet) {
	rc.VerboseArgs.Add(fs)
	rc.FormatArgs.Add(fs)
	rc.SinkArgs.Add(fs)
	fs.StringVar(&rc.Input, "input", "", "Read pairs from `filename` [default: "+DefaultInputFile+"]")
	fs.BoolVar(&rc.DistanceOnly, "distance-only", false, "Compute the distance but not the similarity score")
}

func (rc *ReportCommand) SetRestArguments(args []string) {
	rc.rest = args
}

func (rc *ReportCommand) Summary() []string {
	return []string{
		"Read pairs of integers, one pair per line, and print the total distance",
		"between the sorted left and right columns and the similarity score of",
		"the left column relative to the right.",
	}
}

func (rc *ReportCommand) Validate() error {
	var e1, e2, e3, e4 error
	e1 = rc.VerboseArgs.Validate()
	e2 = rc.FormatArgs.Validate()
	e3 = rc.SinkArgs.Validate()
	switch {
	case len(rc.rest) > 1:
		e4 = errors.New("At most one input file")
	case len(rc.rest) == 1 && rc.Input != "":
		e4 = errors.New("Input file given both with -input and as argument")
	case len(rc.rest) == 1:
		rc.Input = rc.rest[0]
	}
	ApplyDefault(&rc.Input, InputFile)
	if rc.Input == "" {
		rc.Input = DefaultInputFile
	}
	return errors.Join(e1, e2, e3, e4)
}

// In the text format every input line is traced to `out` before the result is printed.  The input
// and the sinks are opened before anything is printed, so if either fails there is no output.

func (rc *ReportCommand) Perform(out io.Writer) error {
	input, err := pairs.OpenFile(rc.Input)
	if err != nil {
		return err
	}
	defer input.Close()

	cx := context.Background()
	sinks, err := rc.OpenSinks(cx)
	if err != nil {
		return err
	}
	defer sinks.Close()

	var trace io.Writer
	if rc.Fmt == FormatText {
		trace = out
	}
	lists, err := pairs.Read(input, trace)
	if err != nil {
		return fmt.Errorf("Failed to read %s\n%w", rc.Input, err)
	}
	Log.Infof("%d pairs read from %s", lists.Len(), rc.Input)

	r := NewResult(rc.Input, lists, Analyze(lists, !rc.DistanceOnly))
	if err := WriteResult(out, rc.Fmt, r); err != nil {
		return err
	}
	if err := sinks.Store(cx, r); err != nil {
		return fmt.Errorf("Failed to store result %s\n%w", r.RunId, err)
	}
	return nil
}
