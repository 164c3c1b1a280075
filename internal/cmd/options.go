// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/pipeline"
	"github.com/rowmill/rowmill/internal/processor"
	"github.com/rowmill/rowmill/internal/server"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/sink/writer"
	"github.com/rowmill/rowmill/internal/source"
)

// closeTimeout bounds the time granted to sources for releasing their resources.
const closeTimeout = 30 * time.Second

// options configures pipelines for export, convert and serve runs.
type options struct {
	sourceName   string
	jobPaths     []string
	localOutput  bool
	out          io.Writer
	sourceGetter func(context.Context, config.SourceConfig) (any, error)

	lock sync.Mutex
}

// validate checks the configured values and reports invalid setups.
func (o *options) validate() error {
	if o.sourceName == "" {
		return errNoArguments
	}

	if _, ok := availableExportSources[o.sourceName]; !ok {
		return fmt.Errorf("%w: %s", errInvalidSource, o.sourceName)
	}

	return nil
}

// executeExport runs every job of the loaded job files whose source matches
// the selected database source.
func (o *options) executeExport(ctx context.Context) error {
	return o.executeBatch(ctx, func(job *config.Job) bool {
		return job.Source.Type == o.sourceName
	})
}

// executeConvert runs every file-source job of the loaded job files.
func (o *options) executeConvert(ctx context.Context) error {
	return o.executeBatch(ctx, func(job *config.Job) bool {
		return job.Source.Type == "file"
	})
}

// executeBatch runs the jobs selected by match one after the other. A failing
// job is reported but does not prevent the following ones from running.
func (o *options) executeBatch(ctx context.Context, match func(*config.Job) bool) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	log := logger.FromContext(ctx)

	jobs, err := o.selectJobs(match)
	if err != nil {
		return err
	}

	var errs error
	for _, job := range jobs {
		log.Info("starting job", "job", job.Name, "source", job.Source.Type)

		if err := o.runJob(ctx, job); err != nil {
			log.Error("job failed", "job", job.Name, "error", err)
			errs = errors.Join(errs, fmt.Errorf("job %q: %w", job.Name, err))
		}
	}

	return errs
}

// executeServe runs the first webhook job of the loaded job files behind the
// HTTP server, streaming the received tables until the context ends.
func (o *options) executeServe(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	log := logger.FromContext(ctx)

	jobs, err := o.selectJobs(func(job *config.Job) bool {
		return job.Source.Type == "webhook"
	})
	if err != nil {
		return err
	}

	job := jobs[0]
	if len(jobs) > 1 {
		log.Warn("multiple webhook jobs configured, only the first one is served", "job", job.Name)
	}

	pipe, src, err := o.pipeline(ctx, job)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(ctx)
	if err != nil {
		return err
	}

	if webhookSource, ok := src.(source.WebhookSource); ok {
		for _, hook := range webhookSource.Webhooks() {
			srv.AddRoute(hook.Method, hook.Path, hook.Handler)
		}
	}

	srv.StartAsync(ctx)
	defer func() {
		if err := srv.Stop(); err != nil {
			log.Error("error stopping server", "error", err)
		}
	}()

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- pipe.Stream(ctx)
	}()

	select {
	case <-ctx.Done():
		if err := pipe.Stop(context.WithoutCancel(ctx), closeTimeout); err != nil {
			log.Error("error stopping source", "error", err)
		}

		return <-streamDone
	case err := <-streamDone:
		if stopErr := pipe.Stop(context.WithoutCancel(ctx), closeTimeout); stopErr != nil {
			log.Error("error stopping source", "error", stopErr)
		}

		return err
	}
}

// selectJobs loads the configured job files and filters them through match.
func (o *options) selectJobs(match func(*config.Job) bool) ([]*config.Job, error) {
	jobs, err := loadJobs(o.jobPaths)
	if err != nil {
		return nil, err
	}

	selected := make([]*config.Job, 0, len(jobs))
	for _, job := range jobs {
		if match(job) {
			selected = append(selected, job)
		}
	}

	if len(selected) == 0 {
		return nil, errNoJobs
	}

	return selected, nil
}

// runJob executes a single batch job from source to sink.
func (o *options) runJob(ctx context.Context, job *config.Job) error {
	pipe, _, err := o.pipeline(ctx, job)
	if err != nil {
		return err
	}

	summary, err := pipe.Run(ctx)
	if stopErr := pipe.Stop(ctx, closeTimeout); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d tables failed: %v",
			summary.Failed, summary.Failed+summary.Exported, summary.FailedTables)
	}

	return nil
}

// pipeline assembles a pipeline from the job source, processors, and sink.
func (o *options) pipeline(ctx context.Context, job *config.Job) (*pipeline.Pipeline, any, error) {
	src, err := o.sourceGetter(ctx, job.Source)
	if err != nil {
		return nil, nil, err
	}

	processors, err := processor.FromConfigs(job.Processors)
	if err != nil {
		return nil, nil, err
	}

	var dst sink.Writer
	if o.localOutput {
		dst = writer.NewSink(o.out)
	} else {
		dst, err = sinkFromConfig(job.Sink, o.out)
		if err != nil {
			return nil, nil, err
		}
	}

	return pipeline.New(src, processors, dst), src, nil
}
