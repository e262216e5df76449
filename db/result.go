package db

import (
	"time"
)

// The outcome of one analysis run.  This is what the reporter prints in the machine-readable
// formats and what the sinks persist.  Similarity is nil when only the distance was computed.

type Result struct {
	RunId       string    `json:"run_id" cbor:"run_id"`
	Source      string    `json:"source" cbor:"source"`
	Checksum    uint64    `json:"checksum" cbor:"checksum"`
	Time        time.Time `json:"time" cbor:"time"`
	Pairs       int       `json:"pairs" cbor:"pairs"`
	Diagnostics []string  `json:"diagnostics,omitempty" cbor:"diagnostics,omitempty"`
	BadLines    int       `json:"bad_lines" cbor:"bad_lines"`
	Distance    uint64    `json:"distance" cbor:"distance"`
	Similarity  *uint64   `json:"similarity_score,omitempty" cbor:"similarity_score,omitempty"`
}
