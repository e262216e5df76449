// Results can be written to a PostgreSQL database.  The table is created if it does not exist.
// Nothing is read back from the database by pairdist; it is there for downstream reporting.

package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

const (
	createResultTable = `CREATE TABLE IF NOT EXISTS pairdist_result (
	run_id           TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	checksum         BIGINT NOT NULL,
	time             TIMESTAMPTZ NOT NULL,
	pairs            INTEGER NOT NULL,
	bad_tokens       INTEGER NOT NULL,
	bad_lines        INTEGER NOT NULL,
	distance         BIGINT NOT NULL,
	similarity_score BIGINT
)`
	insertResult = `INSERT INTO pairdist_result
	(run_id, source, checksum, time, pairs, bad_tokens, bad_lines, distance, similarity_score)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

type Postgres struct {
	// The connection is not thread-safe, all uses must hold the lock.
	lock       sync.Mutex
	connection *pgx.Conn
}

var _ = Sink((*Postgres)(nil))

func OpenPostgres(cx context.Context, databaseURI string) (*Postgres, error) {
	connection, err := pgx.Connect(cx, databaseURI)
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to database: %w", err)
	}
	if _, err := connection.Exec(cx, createResultTable); err != nil {
		connection.Close(cx)
		return nil, fmt.Errorf("Unable to create result table: %w", err)
	}
	return &Postgres{connection: connection}, nil
}

// BIGINT is signed; the unsigned values are stored with their bit patterns intact.

func resultRow(r *Result) []any {
	var similarity *int64
	if r.Similarity != nil {
		s := int64(*r.Similarity)
		similarity = &s
	}
	return []any{
		r.RunId,
		r.Source,
		int64(r.Checksum),
		r.Time,
		r.Pairs,
		len(r.Diagnostics),
		r.BadLines,
		int64(r.Distance),
		similarity,
	}
}

func (p *Postgres) Store(cx context.Context, r *Result) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	_, err := p.connection.Exec(cx, insertResult, resultRow(r)...)
	return err
}

func (p *Postgres) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.connection.Close(context.Background())
}
