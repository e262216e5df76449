// Turn parsed pairs into a result and print it.

package report

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"pairdist/aggregate"
	. "pairdist/common"
	"pairdist/db"
	"pairdist/pairs"
)

type Summary struct {
	Distance   uint64
	Similarity *uint64
}

// Sort copies of both sequences ascending and aggregate them.  The similarity score is computed on
// the sorted copies too, it does not care about order.

func Analyze(lists *pairs.Lists, withSimilarity bool) Summary {
	left := slices.Clone(lists.Left)
	right := slices.Clone(lists.Right)
	slices.Sort(left)
	slices.Sort(right)

	s := Summary{Distance: aggregate.Distance(left, right)}
	if withSimilarity {
		score := aggregate.SimilarityScore(left, right)
		s.Similarity = &score
	}
	return s
}

func NewRunId() string {
	id, err := uuid.NewUUID()
	if err != nil {
		// NewUUID fails only if no node id can be obtained at all.
		Log.Warningf("Time-based run id unavailable, using random: %v", err)
		return uuid.New().String()
	}
	return id.String()
}

func NewResult(source string, lists *pairs.Lists, s Summary) *db.Result {
	diags := make([]string, 0, len(lists.Diagnostics))
	for _, d := range lists.Diagnostics {
		diags = append(diags, d.String())
	}
	return &db.Result{
		RunId:       NewRunId(),
		Source:      source,
		Checksum:    lists.Checksum,
		Time:        time.Now().UTC(),
		Pairs:       lists.Len(),
		Diagnostics: diags,
		BadLines:    lists.BadLines,
		Distance:    s.Distance,
		Similarity:  s.Similarity,
	}
}
