// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/processor"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/source"
)

const loggerName = "rowmill:pipeline"

// Summary reports the outcome of a pipeline run, mirroring the final report
// printed by database export jobs.
type Summary struct {
	// Exported counts the tables written to the sink.
	Exported int
	// Failed counts the tables lost to processor or sink errors.
	Failed int
	// FailedTables lists the names of the failed tables.
	FailedTables []string
}

type Pipeline struct {
	source     any
	processors []processor.Processor
	sink       sink.Writer
}

func New(src any, processors []processor.Processor, dst sink.Writer) *Pipeline {
	return &Pipeline{
		source:     src,
		processors: processors,
		sink:       dst,
	}
}

// Run executes a batch export: the source emits every table once, and the run
// terminates when the source is done. Per-table failures are collected in the
// summary without stopping the run.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	tableSource, ok := p.source.(source.TableSource)
	if !ok {
		return Summary{}, &unsupportedSourceError{
			Message: "source does not support batch exports",
		}
	}

	log.Trace("starting batch pipeline")
	channel := make(chan *source.Table)

	// use channel to signal when the consumer has drained all the queued tables
	consumerDone := make(chan Summary)
	go func() {
		log.Trace("starting table consumer goroutine")
		consumerDone <- p.consumeTables(ctx, channel)
	}()

	err := tableSource.StartExport(ctx, channel)
	log.Trace("export finished, closing table channel")
	close(channel)

	summary := <-consumerDone

	// Tables that never reached the channel because the source could not read
	// them still count as failures.
	if reporter, ok := p.source.(source.FailureReporter); ok {
		failed := reporter.FailedTables()
		summary.Failed += len(failed)
		summary.FailedTables = append(summary.FailedTables, failed...)
	}

	log.Info("pipeline run completed",
		"exported", summary.Exported,
		"failed", summary.Failed,
		"failedTables", summary.FailedTables,
	)
	return summary, err
}

// Stream executes a long-running pipeline over a StreamSource, terminating
// when the source does.
func (p *Pipeline) Stream(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	streamSource, ok := p.source.(source.StreamSource)
	if !ok {
		return &unsupportedSourceError{
			Message: "source does not support streaming tables",
		}
	}

	log.Trace("starting stream pipeline")
	channel := make(chan *source.Table)

	consumerDone := make(chan Summary)
	go func() {
		consumerDone <- p.consumeTables(ctx, channel)
	}()

	err := streamSource.StartStream(ctx, channel)
	log.Trace("stream finished, closing table channel")
	close(channel)

	<-consumerDone
	return err
}

// Stop closes the source and the sink when they support an explicit shutdown.
func (p *Pipeline) Stop(ctx context.Context, timeout time.Duration) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	var errs error
	if closableSource, ok := p.source.(source.ClosableSource); ok {
		log.Debug("stop source")
		errs = closableSource.Close(ctx, timeout)
	} else {
		log.Debug("source does not implement ClosableSource, skipping close")
	}

	if closableSink, ok := p.sink.(sink.Closable); ok {
		log.Debug("stop sink")
		errs = errors.Join(errs, closableSink.Close(ctx))
	}

	return errs
}

func (p *Pipeline) consumeTables(ctx context.Context, channel <-chan *source.Table) Summary {
	log := logger.FromContext(ctx).WithName(loggerName)

	summary := Summary{}
	for {
		select {
		case <-ctx.Done():
			log.Debug("pipeline cancelled from context", "error", ctx.Err())
			return summary
		case table, ok := <-channel:
			if !ok {
				return summary
			}

			output, err := p.processTable(ctx, table)
			if err != nil {
				log.Error("error processing table", "table", table.Schema.Name, "error", err)
				summary.Failed++
				summary.FailedTables = append(summary.FailedTables, table.Schema.Name)
				continue
			}

			log.Debug("writing table", "table", output.Schema.Name, "rows", len(output.Rows))
			if err := p.sink.WriteTable(ctx, output); err != nil {
				log.Error("error writing table to sink", "table", output.Schema.Name, "error", err)
				summary.Failed++
				summary.FailedTables = append(summary.FailedTables, table.Schema.Name)
				continue
			}

			summary.Exported++
			log.Debug("table written", "table", output.Schema.Name)
		}
	}
}

func (p *Pipeline) processTable(ctx context.Context, table *source.Table) (*source.Table, error) {
	output := table
	for _, proc := range p.processors {
		var err error
		output, err = proc.Apply(ctx, output)
		if err != nil {
			return nil, err
		}
	}

	return output, nil
}
