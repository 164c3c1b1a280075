// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package fake

import (
	"context"
	"testing"

	"github.com/rowmill/rowmill/internal/source"
)

var _ source.StreamSource = &fakeStreamSource{}

// fakeStreamSource forwards tables pushed through Push until the context ends.
type fakeStreamSource struct {
	tb       testing.TB
	incoming chan *source.Table
}

// NewStreamSource returns a StreamSource fed through Push.
func NewStreamSource(tb testing.TB) *fakeStreamSource {
	tb.Helper()

	return &fakeStreamSource{
		tb:       tb,
		incoming: make(chan *source.Table),
	}
}

// Push hands a table to the running stream.
func (f *fakeStreamSource) Push(table *source.Table) {
	f.tb.Helper()
	f.incoming <- table
}

// StartStream forwards pushed tables to results until ctx is cancelled.
func (f *fakeStreamSource) StartStream(ctx context.Context, results chan<- *source.Table) error {
	f.tb.Helper()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case table := <-f.incoming:
			results <- table
		}
	}
}
