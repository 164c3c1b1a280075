// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package fake provides sink implementations for tests.
package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/source"
)

// Sink records every table it receives and can be primed with an error.
type Sink interface {
	sink.Writer
	sink.Closable

	// Tables returns the tables received so far.
	Tables() []*source.Table
	// Closed reports whether Close was called.
	Closed() bool
}

var _ Sink = &fakeSink{}

type fakeSink struct {
	tb  testing.TB
	err error

	lock   sync.Mutex
	tables []*source.Table
	closed bool
}

// NewSink returns a recording Sink.
func NewSink(tb testing.TB) Sink {
	tb.Helper()

	return &fakeSink{tb: tb}
}

// NewSinkWithError returns a Sink failing every write with err.
func NewSinkWithError(tb testing.TB, err error) Sink {
	tb.Helper()

	return &fakeSink{tb: tb, err: err}
}

func (f *fakeSink) WriteTable(_ context.Context, table *source.Table) error {
	f.tb.Helper()

	if f.err != nil {
		return f.err
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.tables = append(f.tables, table)
	return nil
}

func (f *fakeSink) Close(context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.closed = true
	return nil
}

func (f *fakeSink) Closed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.closed
}

func (f *fakeSink) Tables() []*source.Table {
	f.lock.Lock()
	defer f.lock.Unlock()

	tables := make([]*source.Table, len(f.tables))
	copy(tables, f.tables)
	return tables
}
