// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	jobPathFlagName  = "job-file"
	jobPathFlagShort = "f"
	jobPathFlagUsage = "Path to a file or directory containing job configurations. Can be specified multiple times."

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes the output to stdout instead of the sink configured in the job"
	defaultLocalOutput   = false
)

// flags collects the CLI options shared by the export, convert and serve commands.
type flags struct {
	jobPaths    []string
	localOutput bool
}

// addFlags registers the CLI flags on cmd.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(
		&f.jobPaths,
		jobPathFlagName,
		jobPathFlagShort,
		nil,
		jobPathFlagUsage)

	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions builds an options instance from the parsed flags and CLI arguments.
func (f *flags) toOptions(cmd *cobra.Command, args []string) (*options, error) {
	sourceName := ""
	if len(args) > 0 {
		sourceName = args[0]
	}

	jobPaths, err := collectPaths(f.jobPaths)
	if err != nil {
		return nil, err
	}

	return &options{
		sourceName:   strings.ToLower(sourceName),
		jobPaths:     jobPaths,
		localOutput:  f.localOutput,
		out:          cmd.OutOrStdout(),
		sourceGetter: sourceGetter,
	}, nil
}
