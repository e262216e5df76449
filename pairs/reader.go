// Read paired integer records from text input.
//
// Each non-empty line holds two whitespace-separated non-negative integers, the left and right
// value.  The reader is tolerant: a token that does not parse becomes 0 and a diagnostic is
// recorded, and a line that is not valid UTF-8 is dropped.  Only I/O errors are returned.
//
// Substituting 0 keeps the pair in both sequences, so a malformed token will skew both the distance
// and the similarity score.  This is the established behavior of the tool and tests depend on it.

package pairs

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	. "pairdist/common"
)

// Where a token came from in its line.

type Slot string

const (
	Left  Slot = "left"
	Right Slot = "right"
)

// A tolerated problem with one token.  Line numbers are 1-based and count every physical line,
// including empty and undecodable ones.

type Diagnostic struct {
	Line  int
	Slot  Slot
	Token string
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("failed to convert %s to int, error: %v", d.Slot, d.Err)
}

// The two sequences are always the same length and in input order.

type Lists struct {
	Left        []uint32
	Right       []uint32
	Diagnostics []Diagnostic
	BadLines    int

	// Of the raw input
	Checksum uint64
}

func (lists *Lists) Len() int {
	return len(lists.Left)
}

// Parse a token as a uint32.  On failure the value is 0 and the error is returned alongside it; the
// caller decides what to do with the error but should use the value regardless.  A single leading
// '+' is accepted.

func ParseIntOrDefault(token string) (uint32, error) {
	s := token
	if len(s) > 1 && s[0] == '+' {
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Failure to open is the only fatal condition besides I/O errors during reading.

func OpenFile(filename string) (*os.File, error) {
	input, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return input, nil
}

// Open `filename` and read it with Read.

func ReadFile(filename string, trace io.Writer) (*Lists, error) {
	input, err := OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	return Read(input, trace)
}

// Read all of `input` and Parse it.  If `trace` is not nil then every accepted line, every
// tolerated parse error, and every dropped line is echoed to it.

func Read(input io.Reader, trace io.Writer) (*Lists, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}
	return Parse(data, trace), nil
}

// Lines are separated by \n, a trailing \r is removed, and a final line without a newline counts.

func Parse(data []byte, trace io.Writer) *Lists {
	lists := &Lists{
		Left:     make([]uint32, 0),
		Right:    make([]uint32, 0),
		Checksum: Checksum(data),
	}
	rest := string(data)
	for lineNo := 1; rest != ""; lineNo++ {
		var l string
		l, rest, _ = strings.Cut(rest, "\n")
		lists.addLine(lineNo, strings.TrimSuffix(l, "\r"), trace)
	}
	if len(lists.Diagnostics) > 0 || lists.BadLines > 0 {
		Log.Infof("%d pairs read, %d bad tokens, %d bad lines",
			lists.Len(), len(lists.Diagnostics), lists.BadLines)
	}
	return lists
}

func (lists *Lists) addLine(lineNo int, l string, trace io.Writer) {
	if !utf8.ValidString(l) {
		lists.BadLines++
		Log.Warningf("Line %d: not valid UTF-8, skipped", lineNo)
		if trace != nil {
			fmt.Fprintln(trace, "bad line")
		}
		return
	}
	if l == "" {
		return
	}

	// Missing tokens read as "", which fails to parse and so becomes 0 with a diagnostic.
	var tokens [2]string
	copy(tokens[:], strings.Fields(l))

	left := lists.parseToken(lineNo, Left, tokens[0], trace)
	right := lists.parseToken(lineNo, Right, tokens[1], trace)

	if trace != nil {
		fmt.Fprintf(trace, "line: %s, left: %d, right: %d\n", l, left, right)
	}
	lists.Left = append(lists.Left, left)
	lists.Right = append(lists.Right, right)
}

func (lists *Lists) parseToken(lineNo int, slot Slot, token string, trace io.Writer) uint32 {
	v, err := ParseIntOrDefault(token)
	if err != nil {
		d := Diagnostic{Line: lineNo, Slot: slot, Token: token, Err: err}
		lists.Diagnostics = append(lists.Diagnostics, d)
		Log.Warningf("Line %d: %s", lineNo, d.String())
		if trace != nil {
			fmt.Fprintln(trace, d.String())
		}
	}
	return v
}
