// `pairdist history` - list results stored in the history database.

package history

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	. "pairdist/command"
	. "pairdist/common"
	"pairdist/db"
)

const defaultCount = 10

type HistoryCommand struct {
	VerboseArgs
	FormatArgs
	HistoryDir string
	Count      int
	RunId      string
}

var _ = PerformingCommand((*HistoryCommand)(nil))

func New() *HistoryCommand {
	return &HistoryCommand{FormatArgs: NewFormatArgs("text", "json")}
}

func (hc *HistoryCommand) Add(fs *flag.FlagSet) {
	hc.VerboseArgs.Add(fs)
	hc.FormatArgs.Add(fs)
	fs.StringVar(&hc.HistoryDir, "history-dir", "", "Read results from the history database in `directory`")
	fs.IntVar(&hc.Count, "n", defaultCount, "List at most `count` results, 0 for all")
	fs.StringVar(&hc.RunId, "run", "", "List only the result with this run `id`")
}

func (hc *HistoryCommand) Summary() []string {
	return []string{
		"List stored results, most recent first.",
	}
}

func (hc *HistoryCommand) Validate() error {
	var e1, e2, e3, e4 error
	e1 = hc.VerboseArgs.Validate()
	e2 = hc.FormatArgs.Validate()
	ApplyDefault(&hc.HistoryDir, StoreHistoryDir)
	if hc.HistoryDir == "" {
		e3 = errors.New("-history-dir is required")
	}
	if hc.Count < 0 {
		e4 = errors.New("-n must not be negative")
	}
	return errors.Join(e1, e2, e3, e4)
}

func (hc *HistoryCommand) Perform(out io.Writer) error {
	h, err := db.OpenHistory(hc.HistoryDir)
	if err != nil {
		return fmt.Errorf("Failed to open history store\n%w", err)
	}
	defer h.Close()

	var results []*db.Result
	if hc.RunId != "" {
		r, err := h.Lookup(hc.RunId)
		if err != nil {
			return fmt.Errorf("%s: %w", hc.RunId, err)
		}
		results = []*db.Result{r}
	} else {
		results, err = h.Recent(hc.Count)
		if err != nil {
			return err
		}
	}
	Log.Infof("%d results", len(results))
	return writeResults(out, hc.Fmt, results)
}

func writeResults(out io.Writer, format string, results []*db.Result) error {
	if format == "json" {
		return json.NewEncoder(out).Encode(results)
	}
	for _, r := range results {
		similarity := "-"
		if r.Similarity != nil {
			similarity = fmt.Sprint(*r.Similarity)
		}
		_, err := fmt.Fprintf(out, "%s  %s  %s  pairs=%d distance=%d similarity=%s bad=%d\n",
			r.Time.Format(time.RFC3339), r.RunId, r.Source, r.Pairs, r.Distance, similarity,
			len(r.Diagnostics)+r.BadLines)
		if err != nil {
			return err
		}
	}
	return nil
}
