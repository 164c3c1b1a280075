// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/sink/blob"
	"github.com/rowmill/rowmill/internal/sink/csvfile"
	"github.com/rowmill/rowmill/internal/sink/excel"
	"github.com/rowmill/rowmill/internal/sink/textfile"
	"github.com/rowmill/rowmill/internal/sink/writer"
	"github.com/rowmill/rowmill/internal/source/file"
	"github.com/rowmill/rowmill/internal/source/hive"
	"github.com/rowmill/rowmill/internal/source/mysql"
	"github.com/rowmill/rowmill/internal/source/webhook"
)

var (
	errNoArguments   = errors.New("no source name provided")
	errInvalidSource = errors.New("invalid source name provided")
	errInvalidSink   = errors.New("invalid sink type provided")
	errNoJobs        = errors.New("no matching jobs in the provided job files")

	// availableExportSources holds the list of available database sources and their
	// description for command completion and help messages.
	availableExportSources = map[string]string{
		"hive":  "Apache Hive database export",
		"mysql": "MySQL database export",
	}

	// sourceGetter is a function that returns a pipeline source based on the provided
	// job source configuration. It can be overridden for testing purposes.
	sourceGetter = sourceFromConfig

	// webhookBufferSize bounds the tables queued between the HTTP handler and
	// the stream pipeline of the serve command.
	webhookBufferSize = 16
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errNoArguments):
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return nil
	case errors.Is(err, errInvalidSource):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// unwrappedError returns the unwrapped error if available, otherwise it returns the original error.
func unwrappedError(err error) error {
	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		return unwrapped
	}

	return err
}

func validArgsFunc(sources map[string]string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var comps []string
		if len(args) == 0 {
			for name, description := range sources {
				if strings.HasPrefix(name, toComplete) {
					comps = append(comps, cobra.CompletionWithDesc(name, description))
				}
			}
		}

		return comps, cobra.ShellCompDirectiveNoFileComp
	}
}

func collectPaths(paths []string) ([]string, error) {
	collected := make([]string, 0)
	for _, p := range paths {
		cleanedPath := filepath.Clean(p)
		err := filepath.Walk(cleanedPath, func(walkedPath string, info fs.FileInfo, err error) error {
			if err != nil {
				return fmt.Errorf("job file %q: %w", walkedPath, unwrappedError(err))
			}

			switch {
			case !info.IsDir(): // it's a file add to the collection
				collected = append(collected, walkedPath)
			case info.IsDir() && cleanedPath != walkedPath: // skip directories if is not the root path
				return filepath.SkipDir
			}

			return nil
		})

		if err != nil {
			return nil, err
		}
	}

	return collected, nil
}

// loadJobs loads all job configurations from the provided paths.
func loadJobs(paths []string) ([]*config.Job, error) {
	jobs := make([]*config.Job, 0)
	for _, path := range paths {
		fileJobs, err := config.NewJobsFromPath(path)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, fileJobs...)
	}

	return jobs, nil
}

// sourceFromConfig returns a pipeline source based on the job source configuration.
func sourceFromConfig(ctx context.Context, cfg config.SourceConfig) (any, error) {
	switch cfg.Type {
	case "hive":
		return hive.NewSource(ctx, cfg.Database, cfg.TablePrefix, cfg.Tables)
	case "mysql":
		return mysql.NewSource(ctx, cfg.Database, cfg.TablePrefix, cfg.Tables)
	case "file":
		paths, err := collectPaths(cfg.Paths)
		if err != nil {
			return nil, err
		}
		return file.NewSource(paths), nil
	case "webhook":
		return webhook.NewSource(webhookBufferSize), nil
	}

	return nil, fmt.Errorf("%w: %s", errInvalidSource, cfg.Type)
}

// sinkFromConfig returns a pipeline sink based on the job sink configuration.
// The out writer backs the stdout sink type.
func sinkFromConfig(cfg config.SinkConfig, out io.Writer) (sink.Writer, error) {
	switch cfg.Type {
	case "excel":
		return excel.NewSink(cfg.OutputDir, cfg.NullValue), nil
	case "csv":
		return csvfile.NewSink(cfg.OutputDir, cfg.NullValue), nil
	case "text":
		return textfile.NewSink(cfg.OutputDir, cfg.NullValue), nil
	case "blob":
		return blob.NewSink(cfg.Container)
	case "stdout":
		return writer.NewSink(out), nil
	}

	return nil, fmt.Errorf("%w: %s", errInvalidSink, cfg.Type)
}
