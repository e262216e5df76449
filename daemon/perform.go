package daemon

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	lru "github.com/hashicorp/golang-lru"

	. "pairdist/common"
	"pairdist/db"
	"pairdist/pairs"
	"pairdist/report"
)

const defaultSource = "request"

// Thread-safe: the cache locks internally and the sinks are thread-safe.
type service struct {
	cache   *lru.ARCCache
	history *db.History
	sinks   db.Sinks
}

type analysis struct {
	lists   *pairs.Lists
	summary report.Summary
}

// The service owns the sinks, including the history store, and closes them.

func newService(cacheSize int, history *db.History, sinks db.Sinks) (*service, error) {
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		sinks.Close()
		return nil, err
	}
	return &service{cache: cache, history: history, sinks: sinks}, nil
}

func (svc *service) close() {
	if err := svc.sinks.Close(); err != nil {
		Log.Warningf("Closing sinks: %v", err)
	}
}

// The key is the input itself, not its checksum: distinct inputs can have the same CRC.

func cacheKey(input []byte, withSimilarity bool) string {
	if withSimilarity {
		return "s/" + string(input)
	}
	return "d/" + string(input)
}

// Storing is best effort, a failing sink is logged but the result is returned anyway.

func (svc *service) analyze(cx context.Context, source string, input []byte, withSimilarity bool) *db.Result {
	key := cacheKey(input, withSimilarity)
	var a *analysis
	if cached, found := svc.cache.Get(key); found {
		a = cached.(*analysis)
		Log.Infof("Cache hit for input %016x", a.lists.Checksum)
	} else {
		lists := pairs.Parse(input, nil)
		a = &analysis{lists: lists, summary: report.Analyze(lists, withSimilarity)}
		svc.cache.Add(key, a)
	}
	r := report.NewResult(source, a.lists, a.summary)
	if err := svc.sinks.Store(cx, r); err != nil {
		Log.Errorf("SOFT ERROR: Failed to store result %s: %v", r.RunId, err)
	}
	return r
}

type reportInput struct {
	Similarity bool   `query:"similarity" default:"true" doc:"Also compute the similarity score"`
	Source     string `query:"source" doc:"Name recorded as the source of the input"`
	RawBody    []byte
}

type reportOutput struct {
	Body *db.Result
}

type historyInput struct {
	Count int `query:"n" default:"10" minimum:"0" doc:"Number of results, 0 for all"`
}

type historyOutput struct {
	Body []*db.Result
}

type versionOutput struct {
	Body struct {
		Version string `json:"version"`
	}
}

func newAPI(mux *http.ServeMux, svc *service, version string) huma.API {
	api := humago.New(mux, huma.DefaultConfig("pairdist", version))

	huma.Register(api, huma.Operation{
		OperationID: "post-report",
		Method:      http.MethodPost,
		Path:        "/report",
		Summary:     "Analyze pairs of integers",
	}, func(cx context.Context, input *reportInput) (*reportOutput, error) {
		source := input.Source
		if source == "" {
			source = defaultSource
		}
		return &reportOutput{Body: svc.analyze(cx, source, input.RawBody, input.Similarity)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-history",
		Method:      http.MethodGet,
		Path:        "/history",
		Summary:     "List stored results, most recent first",
	}, func(cx context.Context, input *historyInput) (*historyOutput, error) {
		if svc.history == nil {
			return nil, huma.Error404NotFound("No history store configured")
		}
		results, err := svc.history.Recent(input.Count)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to read history", err)
		}
		return &historyOutput{Body: results}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/version",
		Summary:     "Program version",
	}, func(cx context.Context, input *struct{}) (*versionOutput, error) {
		out := new(versionOutput)
		out.Body.Version = version
		return out, nil
	})

	return api
}
