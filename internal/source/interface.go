// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"time"
)

// TableSource defines the interface for a data source that supports batch exports.
type TableSource interface {
	// StartExport will be called to start a batch export from the data source.
	// It receives a channel through which it sends every exported table, or it can
	// return an error if the export cannot run at all. Failures limited to a single
	// table must not abort the remaining ones.
	StartExport(ctx context.Context, results chan<- *Table) (err error)
}

// StreamSource defines the interface for a data source that receives tables
// continuously, for example through a webhook.
type StreamSource interface {
	// StartStream will be called to start the table stream for the data source.
	// It receives a channel through which it forwards every incoming table and
	// returns when the stream terminates or the context is cancelled.
	StartStream(ctx context.Context, results chan<- *Table) (err error)
}

// FailureReporter defines the interface for a data source that keeps track of
// the tables it could not export. The reported names are folded into the run
// summary once the export completes.
type FailureReporter interface {
	// FailedTables returns the names of the tables skipped during the last export.
	FailedTables() []string
}

// ClosableSource defines the interface for a data source that holds resources
// needing an explicit shutdown.
type ClosableSource interface {
	// Close releases the source resources, waiting at most timeout for in-flight work.
	Close(ctx context.Context, timeout time.Duration) error
}
