package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"pairdist/db"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

var Formats = []string{FormatText, FormatJSON, FormatCBOR}

// The text format is the fixed human-readable one:
//
//   distance: <N>
//   similarity score: <N>
//
// where the second line is present only if the score was computed.

func WriteResult(out io.Writer, format string, r *db.Result) error {
	switch format {
	case FormatText:
		if _, err := fmt.Fprintf(out, "distance: %d\n", r.Distance); err != nil {
			return err
		}
		if r.Similarity != nil {
			if _, err := fmt.Fprintf(out, "similarity score: %d\n", *r.Similarity); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(out)
		return enc.Encode(r)
	case FormatCBOR:
		buf, err := cbor.Marshal(r)
		if err != nil {
			return err
		}
		_, err = out.Write(buf)
		return err
	default:
		return fmt.Errorf("Unknown format %q", format)
	}
}
