package db

import (
	"context"
	"errors"
	"fmt"
)

// A Sink receives results after they have been reported.  Implementations must be thread-safe, the
// daemon stores from concurrent handlers.

type Sink interface {
	Store(cx context.Context, r *Result) error
	Close() error
}

// Fan a result out to every sink.  All sinks are tried even if some fail.

type Sinks []Sink

func (ss Sinks) Store(cx context.Context, r *Result) error {
	var errs []error
	for _, s := range ss {
		if err := s.Store(cx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ss Sinks) Close() error {
	var errs []error
	for _, s := range ss {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open the sinks that are configured, ie, whose locator is not "".  On error, sinks already opened
// are closed again.

func OpenSinks(cx context.Context, historyDir, databaseURI, kafkaBroker, kafkaTopic string) (Sinks, error) {
	var sinks Sinks
	fail := func(what string, err error) (Sinks, error) {
		sinks.Close()
		return nil, fmt.Errorf("Failed to open %s\n%w", what, err)
	}
	if historyDir != "" {
		h, err := OpenHistory(historyDir)
		if err != nil {
			return fail("history store", err)
		}
		sinks = append(sinks, h)
	}
	if databaseURI != "" {
		p, err := OpenPostgres(cx, databaseURI)
		if err != nil {
			return fail("database", err)
		}
		sinks = append(sinks, p)
	}
	if kafkaBroker != "" {
		k, err := OpenKafka(kafkaBroker, kafkaTopic)
		if err != nil {
			return fail("broker connection", err)
		}
		sinks = append(sinks, k)
	}
	return sinks, nil
}
