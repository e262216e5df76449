package report

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"pairdist/common"
	"pairdist/db"
	"pairdist/pairs"
)

const exampleInput = "3   4\n4   3\n2   5\n1   3\n3   9\n3   3\n"

// Ignore any ~/.pairdist so that tests never reach real stores.
func TestMain(m *testing.M) {
	common.LoadConfig(strings.NewReader(""))
	os.Exit(m.Run())
}

func writeInput(t *testing.T, contents string) string {
	t.Helper()
	fn := path.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(fn, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func newCommand(t *testing.T, args ...string) *ReportCommand {
	t.Helper()
	rc := New()
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rc.Add(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		rc.SetRestArguments(rest)
	}
	if err := rc.Validate(); err != nil {
		t.Fatal(err)
	}
	return rc
}

func TestAnalyzeExample(t *testing.T) {
	lists := &pairs.Lists{
		Left:  []uint32{3, 4, 2, 1, 3, 3},
		Right: []uint32{4, 3, 5, 3, 9, 3},
	}
	s := Analyze(lists, true)
	if s.Distance != 11 || s.Similarity == nil || *s.Similarity != 31 {
		t.Fatalf("Analyze: %d %v", s.Distance, s.Similarity)
	}
	// The input is not sorted in place
	if lists.Left[0] != 3 || lists.Right[0] != 4 {
		t.Fatalf("Input mutated: %v %v", lists.Left, lists.Right)
	}
	s = Analyze(lists, false)
	if s.Distance != 11 || s.Similarity != nil {
		t.Fatalf("Distance only: %d %v", s.Distance, s.Similarity)
	}
}

func TestReportText(t *testing.T) {
	fn := writeInput(t, exampleInput)
	rc := newCommand(t, fn)
	var stdout strings.Builder
	if err := rc.Perform(&stdout); err != nil {
		t.Fatal(err)
	}
	expect := []string{
		"line: 3   4, left: 3, right: 4",
		"line: 4   3, left: 4, right: 3",
		"line: 2   5, left: 2, right: 5",
		"line: 1   3, left: 1, right: 3",
		"line: 3   9, left: 3, right: 9",
		"line: 3   3, left: 3, right: 3",
		"distance: 11",
		"similarity score: 31",
		"",
	}
	checkLines(t, stdout.String(), expect)
}

func TestReportDistanceOnly(t *testing.T) {
	fn := writeInput(t, exampleInput)
	rc := newCommand(t, "-distance-only", "-input", fn)
	var stdout strings.Builder
	if err := rc.Perform(&stdout); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(stdout.String(), "\n")
	if lines[len(lines)-2] != "distance: 11" || strings.Contains(stdout.String(), "similarity") {
		t.Fatalf("Output:\n%s", stdout.String())
	}
}

// The bad token becomes 0 in the right column and the line is kept, which changes both numbers.
func TestReportBadTokenSkewsResult(t *testing.T) {
	fn := writeInput(t, "3   4\n4   x\n")
	rc := newCommand(t, "-fmt", "json", fn)
	var stdout strings.Builder
	if err := rc.Perform(&stdout); err != nil {
		t.Fatal(err)
	}
	var r db.Result
	if err := json.Unmarshal([]byte(stdout.String()), &r); err != nil {
		t.Fatal(err)
	}
	// left [3,4] right [0,4]: |3-0| + |4-4| = 3, score 4*1 = 4
	if r.Pairs != 2 || r.Distance != 3 || r.Similarity == nil || *r.Similarity != 4 {
		t.Fatalf("Result: %+v", r)
	}
	if len(r.Diagnostics) != 1 || !strings.HasPrefix(r.Diagnostics[0], "failed to convert right to int") {
		t.Fatalf("Diagnostics: %v", r.Diagnostics)
	}
	if r.Source != fn || r.RunId == "" || r.Checksum == 0 {
		t.Fatalf("Metadata: %+v", r)
	}
}

func TestReportCBOR(t *testing.T) {
	fn := writeInput(t, exampleInput)
	rc := newCommand(t, "-fmt", "cbor", fn)
	var stdout strings.Builder
	if err := rc.Perform(&stdout); err != nil {
		t.Fatal(err)
	}
	var r db.Result
	if err := cbor.Unmarshal([]byte(stdout.String()), &r); err != nil {
		t.Fatal(err)
	}
	if r.Distance != 11 || r.Similarity == nil || *r.Similarity != 31 || r.Pairs != 6 {
		t.Fatalf("Result: %+v", r)
	}
}

func TestReportMissingFile(t *testing.T) {
	rc := newCommand(t, path.Join(t.TempDir(), "nope.txt"))
	var stdout strings.Builder
	err := rc.Perform(&stdout)
	if err == nil {
		t.Fatalf("Expected error")
	}
	if !errors.Is(err, os.ErrNotExist) || !strings.Contains(err.Error(), "open file") {
		t.Fatalf("Error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("Partial output: %q", stdout.String())
	}
}

func TestReportSinkFailsBeforeOutput(t *testing.T) {
	fn := writeInput(t, exampleInput)
	notADir := writeInput(t, "")
	rc := newCommand(t, "-history-dir", notADir, fn)
	var stdout strings.Builder
	if err := rc.Perform(&stdout); err == nil {
		t.Fatalf("Expected error")
	}
	if stdout.Len() != 0 {
		t.Fatalf("Partial output: %q", stdout.String())
	}
}

func TestReportStoresHistory(t *testing.T) {
	fn := writeInput(t, exampleInput)
	dir := t.TempDir()
	rc := newCommand(t, "-fmt", "json", "-history-dir", dir, fn)
	var stdout strings.Builder
	if err := rc.Perform(&stdout); err != nil {
		t.Fatal(err)
	}
	h, err := db.OpenHistory(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	rs, err := h.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 || rs[0].Distance != 11 {
		t.Fatalf("History: %v", rs)
	}
	if !strings.Contains(stdout.String(), rs[0].RunId) {
		t.Fatalf("Stored run id %s not in output %s", rs[0].RunId, stdout.String())
	}
}

func TestReportArguments(t *testing.T) {
	rc := newCommand(t)
	if rc.Input != DefaultInputFile {
		t.Fatalf("Default input: %q", rc.Input)
	}
	rc = newCommand(t, "-input", "a.txt")
	if rc.Input != "a.txt" {
		t.Fatalf("Input: %q", rc.Input)
	}
	rc = New()
	rc.SetRestArguments([]string{"a", "b"})
	if rc.Validate() == nil {
		t.Fatalf("Two files accepted")
	}
	rc = New()
	rc.Fmt = "xml"
	if rc.Validate() == nil {
		t.Fatalf("Bad format accepted")
	}
}

func checkLines(t *testing.T, got string, expect []string) {
	t.Helper()
	lines := strings.Split(got, "\n")
	if len(lines) != len(expect) {
		t.Fatalf("Length: got %d wanted %d\n%s", len(lines), len(expect), got)
	}
	for i, e := range expect {
		if lines[i] != e {
			t.Fatalf("Line %d:\ngot    %s\nexpect %s", i, lines[i], e)
		}
	}
}
