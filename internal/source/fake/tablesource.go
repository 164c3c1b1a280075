// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package fake provides source implementations for tests.
package fake

import (
	"context"
	"testing"
	"time"

	"github.com/rowmill/rowmill/internal/source"
)

// TableSource exposes export, failure reporting, and close behaviour for tests.
type TableSource interface {
	source.TableSource
	source.FailureReporter
	source.ClosableSource
}

var _ TableSource = &fakeTableSource{}

// fakeTableSource emits canned tables and supports cancellation.
type fakeTableSource struct {
	tb           testing.TB
	tables       []*source.Table
	failedTables []string
	err          error
	stopChannel  chan struct{}
}

// NewTableSource returns a TableSource emitting tables in order.
func NewTableSource(tb testing.TB, tables []*source.Table) TableSource {
	tb.Helper()

	return &fakeTableSource{
		tb:          tb,
		tables:      tables,
		stopChannel: make(chan struct{}, 1),
	}
}

// NewTableSourceWithError returns a TableSource whose export fails with err
// after emitting its tables.
func NewTableSourceWithError(tb testing.TB, tables []*source.Table, err error) TableSource {
	tb.Helper()

	return &fakeTableSource{
		tb:          tb,
		tables:      tables,
		err:         err,
		stopChannel: make(chan struct{}, 1),
	}
}

// NewTableSourceWithFailedTables returns a TableSource that emits tables and
// reports failedTables as tables it could not read.
func NewTableSourceWithFailedTables(tb testing.TB, tables []*source.Table, failedTables []string) TableSource {
	tb.Helper()

	return &fakeTableSource{
		tb:           tb,
		tables:       tables,
		failedTables: failedTables,
		stopChannel:  make(chan struct{}, 1),
	}
}

// StartExport emits the configured tables until completion, cancellation, or close.
func (f *fakeTableSource) StartExport(ctx context.Context, results chan<- *source.Table) error {
	f.tb.Helper()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, table := range f.tables {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.stopChannel:
			return nil
		default:
			results <- table
		}
	}

	return f.err
}

// FailedTables returns the configured unreadable table names.
func (f *fakeTableSource) FailedTables() []string {
	f.tb.Helper()
	return f.failedTables
}

// Close signals the export loop to stop.
func (f *fakeTableSource) Close(_ context.Context, _ time.Duration) error {
	f.tb.Helper()
	close(f.stopChannel)
	return nil
}
