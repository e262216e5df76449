package command

import (
	"flag"
	"io"
	"os"
	"strings"
	"testing"

	"pairdist/common"
)

// Ignore any ~/.pairdist so that tests never reach real stores.
func TestMain(m *testing.M) {
	common.LoadConfig(strings.NewReader(""))
	os.Exit(m.Run())
}

func parse(t *testing.T, add func(*flag.FlagSet), args ...string) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	add(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
}

func TestFormatArgs(t *testing.T) {
	fa := NewFormatArgs("text", "json")
	parse(t, fa.Add)
	if fa.Fmt != "text" || fa.Validate() != nil {
		t.Fatalf("Default: %q", fa.Fmt)
	}
	fa = NewFormatArgs("text", "json")
	parse(t, fa.Add, "-fmt", "json")
	if fa.Fmt != "json" || fa.Validate() != nil {
		t.Fatalf("Explicit: %q", fa.Fmt)
	}
	fa = NewFormatArgs("text", "json")
	parse(t, fa.Add, "-fmt", "csv")
	if fa.Validate() == nil {
		t.Fatalf("Expected error for csv")
	}
}

func TestSinkArgsTopicNeedsBroker(t *testing.T) {
	var sa SinkArgs
	parse(t, sa.Add, "-kafka-topic", "x")
	if sa.Validate() == nil {
		t.Fatalf("Expected error")
	}
	sa = SinkArgs{}
	parse(t, sa.Add, "-kafka-topic", "x", "-kafka-broker", "localhost:9092")
	if err := sa.Validate(); err != nil {
		t.Fatal(err)
	}
}
