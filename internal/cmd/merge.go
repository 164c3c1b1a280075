// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/merge"
)

const (
	mergeCmdUsage = "merge"
	mergeCmdShort = "merge exported Excel workbooks into grouped workbooks"
	mergeCmdLong  = `Merge exported Excel workbooks into grouped workbooks.
	The .xlsx files of the input directory are grouped by the file name prefix
	up to the first underscore, or by an explicit prefix, and every group is
	written as a single workbook with one sheet per copied source sheet.`

	mergeCmdExample = `# Merge all the workbooks of the exports directory
	rowmill merge --input-dir exports --output-dir merged

	# Merge only the sales workbooks, copying the first and third sheet of each
	rowmill merge --input-dir exports --output-dir merged --file-prefix sales --sheets 1,3`

	inputDirFlagName      = "input-dir"
	inputDirFlagUsage     = "Directory scanned for the .xlsx files to merge"
	outputDirFlagName     = "output-dir"
	outputDirFlagUsage    = "Directory receiving the merged workbooks"
	filePrefixFlagName    = "file-prefix"
	filePrefixFlagUsage   = "Only merge the files starting with this prefix"
	sheetPrefixFlagName   = "sheet-prefix"
	sheetPrefixFlagUsage  = "Prefix prepended to every merged sheet name"
	sheetsFlagName        = "sheets"
	sheetsFlagUsage       = "1-based indexes of the sheets to copy from every source workbook"
	deleteSourceFlagName  = "delete-source"
	deleteSourceFlagUsage = "Delete the source files after a successful merge"
)

// mergeFlags holds the flags for the "merge" command.
type mergeFlags struct {
	inputDir     string
	outputDir    string
	filePrefix   string
	sheetPrefix  string
	sheets       []int
	deleteSource bool
}

// addFlags registers the CLI flags on cmd.
func (f *mergeFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inputDir, inputDirFlagName, "", inputDirFlagUsage)
	cmd.Flags().StringVar(&f.outputDir, outputDirFlagName, "", outputDirFlagUsage)
	cmd.Flags().StringVar(&f.filePrefix, filePrefixFlagName, "", filePrefixFlagUsage)
	cmd.Flags().StringVar(&f.sheetPrefix, sheetPrefixFlagName, "", sheetPrefixFlagUsage)
	cmd.Flags().IntSliceVar(&f.sheets, sheetsFlagName, nil, sheetsFlagUsage)
	cmd.Flags().BoolVar(&f.deleteSource, deleteSourceFlagName, false, deleteSourceFlagUsage)

	_ = cmd.MarkFlagRequired(inputDirFlagName)
	_ = cmd.MarkFlagRequired(outputDirFlagName)
	_ = cmd.MarkFlagDirname(inputDirFlagName)
	_ = cmd.MarkFlagDirname(outputDirFlagName)
}

// MergeCmd returns the Cobra command that merges exported Excel workbooks.
func MergeCmd() *cobra.Command {
	flags := &mergeFlags{}
	cmd := &cobra.Command{
		Use:     mergeCmdUsage,
		Short:   heredoc.Doc(mergeCmdShort),
		Long:    heredoc.Doc(mergeCmdLong),
		Example: heredoc.Doc(mergeCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			outputs, err := merge.Merge(ctx, merge.Options{
				InputDir:     flags.inputDir,
				OutputDir:    flags.outputDir,
				FilePrefix:   flags.filePrefix,
				SheetPrefix:  flags.sheetPrefix,
				SheetIndexes: flags.sheets,
				DeleteSource: flags.deleteSource,
			})
			if err != nil {
				return handleError(cmd, err)
			}

			log := logger.FromContext(ctx)
			for _, output := range outputs {
				log.Info("workbook written", "path", output)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
