// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	exportCmdUsageTemplate = "export [%s]"
	exportCmdShort         = "export the tables of a database to the configured sink"
	exportCmdLong          = `Export the tables of a database to the configured sink.
	The jobs to run are read from one or more YAML job files. Every job selects
	the tables to export with a name prefix or an explicit list, an optional
	chain of processors, and the sink receiving the data.

	The available sources are:
	- hive: Apache Hive database export
	- mysql: MySQL database export`

	exportCmdExample = `# Export the hive jobs of job.yaml
	rowmill export hive --job-file job.yaml

	# Print the exported tables to stdout instead of the configured sink
	rowmill export mysql --job-file job.yaml --local-output`

	convertCmdUsage = "convert"
	convertCmdShort = "convert local data files through the configured jobs"
	convertCmdLong  = `Convert local data files through the configured jobs.
	Every file-source job of the provided job files is run once: its input
	files are parsed, piped through the configured processors, and written
	to the configured sink.`

	convertCmdExample = `# Convert the files configured in job.yaml
	rowmill convert --job-file job.yaml`

	serveCmdUsage = "serve"
	serveCmdShort = "receive tables over HTTP and pipe them to the configured sink"
	serveCmdLong  = `Receive tables over HTTP and pipe them to the configured sink.
	The first webhook-source job of the provided job files is served: the
	HTTP server exposes the source routes and every received table flows
	through the configured processors into the sink until the process
	is terminated.`

	serveCmdExample = `# Serve the webhook job of job.yaml
	rowmill serve --job-file job.yaml`
)

// ExportCmd returns the Cobra command that runs database export jobs.
func ExportCmd() *cobra.Command {
	flags := &flags{}
	allSources := make([]string, 0, len(availableExportSources))
	for source := range availableExportSources {
		allSources = append(allSources, source)
	}
	slices.Sort(allSources)
	cmd := &cobra.Command{
		Use:     fmt.Sprintf(exportCmdUsageTemplate, strings.Join(allSources, "|")),
		Short:   heredoc.Doc(exportCmdShort),
		Long:    heredoc.Doc(exportCmdLong),
		Example: heredoc.Doc(exportCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc(availableExportSources),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd, args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeExport(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ConvertCmd returns the Cobra command that runs file conversion jobs.
func ConvertCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     convertCmdUsage,
		Short:   heredoc.Doc(convertCmdShort),
		Long:    heredoc.Doc(convertCmdLong),
		Example: heredoc.Doc(convertCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd, args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeConvert(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ServeCmd returns the Cobra command that serves webhook jobs over HTTP.
func ServeCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(cmd, args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.executeServe(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
