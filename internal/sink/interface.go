// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package sink defines the primitives used to implement rowmill data sinks.
// It standardizes the writing and lifecycle contracts so exporters can be
// swapped behind the same pipeline.
package sink

import (
	"context"

	"github.com/rowmill/rowmill/internal/source"
)

// Writer persists tables to a destination, one call per table.
type Writer interface {
	WriteTable(ctx context.Context, table *source.Table) error
}

// Closable is implemented by sinks that buffer output and need a final flush.
type Closable interface {
	Close(ctx context.Context) error
}
