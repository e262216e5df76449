// The history store keeps every result in a local LevelDB database.  Keys sort by time so that
// the most recent results can be listed by walking the keyspace backwards:
//
//   result/<unix-nanoseconds, 20 digits>/<run-id>  ->  JSON-encoded Result

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const resultKeyPrefix = "result/"

var ErrNoSuchResult = errors.New("No such result")

type History struct {
	sync.Mutex
	db     *leveldb.DB
	closed bool
}

var _ = Sink((*History)(nil))

func OpenHistory(dir string) (*History, error) {
	ldb, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &History{db: ldb}, nil
}

func resultKey(r *Result) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", resultKeyPrefix, r.Time.UnixNano(), r.RunId))
}

func (h *History) Store(_ context.Context, r *Result) error {
	h.Lock()
	defer h.Unlock()

	if h.closed {
		return leveldb.ErrClosed
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return h.db.Put(resultKey(r), buf, nil)
}

// Return up to n results, most recent first.  n <= 0 means all of them.

func (h *History) Recent(n int) ([]*Result, error) {
	h.Lock()
	defer h.Unlock()

	if h.closed {
		return nil, leveldb.ErrClosed
	}
	iter := h.db.NewIterator(util.BytesPrefix([]byte(resultKeyPrefix)), nil)
	defer iter.Release()
	results := make([]*Result, 0)
	for ok := iter.Last(); ok && (n <= 0 || len(results) < n); ok = iter.Prev() {
		r := new(Result)
		if err := json.Unmarshal(iter.Value(), r); err != nil {
			return nil, fmt.Errorf("Corrupt history record %s\n%w", iter.Key(), err)
		}
		results = append(results, r)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return results, nil
}

// Find a result by its run id.  This is a scan, the store is keyed by time.

func (h *History) Lookup(runId string) (*Result, error) {
	all, err := h.Recent(0)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.RunId == runId {
			return r, nil
		}
	}
	return nil, ErrNoSuchResult
}

func (h *History) Close() error {
	h.Lock()
	defer h.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.db.Close()
}
