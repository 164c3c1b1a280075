// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package merge combines exported Excel workbooks into one workbook per
// file-name prefix group, one sheet per copied source sheet.
package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/sink/excel"
	"github.com/rowmill/rowmill/internal/strutil"
)

const loggerName = "rowmill:merge"

// maxSheetNameLength is the sheet name limit imposed by the xlsx format.
const maxSheetNameLength = 31

// defaultGroupName names the group of files that carry no underscore prefix,
// and the output file when the sanitized prefix comes out empty.
const defaultGroupName = "merged"

// ErrInvalidSheetIndexes is returned when a requested sheet index is not 1-based.
var ErrInvalidSheetIndexes = errors.New("sheet indexes must be 1 or greater")

// ErrNoFiles is returned when the input directory holds no workbook to merge.
var ErrNoFiles = errors.New("no excel files to merge")

// Options control a merge run.
type Options struct {
	// InputDir is the directory scanned for .xlsx files.
	InputDir string
	// OutputDir receives the merged workbooks, created when missing.
	OutputDir string
	// FilePrefix restricts the merge to files starting with it. When empty
	// the files are grouped by their name up to the first underscore.
	FilePrefix string
	// SheetPrefix is prepended to every merged sheet name.
	SheetPrefix string
	// SheetIndexes selects the 1-based sheets to take from every source
	// workbook. Defaults to the first sheet.
	SheetIndexes []int
	// DeleteSource removes the source files after a successful merge.
	DeleteSource bool
}

// Merge combines the workbooks of options.InputDir and returns the paths of
// the written output files.
func Merge(ctx context.Context, options Options) ([]string, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	indexes := options.SheetIndexes
	if len(indexes) == 0 {
		indexes = []int{1}
	}
	for _, index := range indexes {
		if index < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidSheetIndexes, index)
		}
	}

	files, err := excelFiles(options.InputDir)
	if err != nil {
		return nil, err
	}

	groups := groupFiles(files, options.FilePrefix)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoFiles, options.InputDir)
	}

	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return nil, err
	}

	prefixes := make([]string, 0, len(groups))
	for prefix := range groups {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	outputs := make([]string, 0, len(groups))
	for _, prefix := range prefixes {
		log.Info("merging group", "prefix", prefix, "files", len(groups[prefix]))

		output, err := mergeGroup(ctx, options, prefix, groups[prefix], indexes)
		if err != nil {
			return outputs, err
		}

		outputs = append(outputs, output)
	}

	return outputs, nil
}

func excelFiles(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}

		files = append(files, entry.Name())
	}

	return files, nil
}

// groupFiles splits file names into merge groups. With an explicit prefix a
// single group holds the matching files; otherwise the name up to and
// including the first underscore is the group key.
func groupFiles(files []string, filePrefix string) map[string][]string {
	groups := make(map[string][]string)

	if filePrefix != "" {
		for _, file := range files {
			if strings.HasPrefix(file, filePrefix) {
				groups[filePrefix] = append(groups[filePrefix], file)
			}
		}

		return groups
	}

	for _, file := range files {
		prefix := defaultGroupName
		if idx := strings.Index(file, "_"); idx >= 0 {
			prefix = file[:idx+1]
		}

		groups[prefix] = append(groups[prefix], file)
	}

	return groups
}

func mergeGroup(ctx context.Context, options Options, prefix string, files []string, indexes []int) (string, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	outputPath := outputFilename(options.OutputDir, prefix)
	output := excelize.NewFile()
	defer output.Close()

	usedNames := make(map[string]bool)
	for _, file := range files {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		path := filepath.Join(options.InputDir, file)
		if err := copySheets(output, path, options.SheetPrefix, indexes, usedNames, log); err != nil {
			log.Error("error merging workbook, skipping", "path", path, "error", err)
			continue
		}
	}

	if len(usedNames) == 0 {
		return "", fmt.Errorf("%w: group %q produced no sheets", ErrNoFiles, prefix)
	}

	// Drop the default sheet the new workbook starts with.
	if !usedNames["Sheet1"] {
		if err := output.DeleteSheet("Sheet1"); err != nil {
			return "", err
		}
	}

	if err := output.SaveAs(outputPath); err != nil {
		return "", err
	}

	log.Info("group merged", "output", outputPath, "sheets", len(usedNames))

	if options.DeleteSource {
		for _, file := range files {
			path := filepath.Join(options.InputDir, file)
			if err := os.Remove(path); err != nil {
				log.Error("error deleting source file", "path", path, "error", err)
			}
		}
	}

	return outputPath, nil
}

func copySheets(output *excelize.File, path, sheetPrefix string, indexes []int, usedNames map[string]bool, log logger.Logger) error {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for _, index := range indexes {
		if index > len(sheets) {
			log.Warn("workbook has no such sheet, skipping", "path", path, "sheet", index)
			continue
		}

		sourceSheet := sheets[index-1]
		baseName := sheetPrefix + stem
		if len(sheets) > 1 {
			baseName += "_" + sourceSheet
		}

		name := uniqueSheetName(baseName, usedNames)
		usedNames[name] = true

		if err := copySheet(output, workbook, sourceSheet, name); err != nil {
			return err
		}
	}

	return nil
}

func copySheet(output *excelize.File, workbook *excelize.File, sourceSheet, name string) error {
	rows, err := workbook.GetRows(sourceSheet)
	if err != nil {
		return err
	}

	if _, err := output.NewSheet(name); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := output.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	return excel.AdjustColumnWidths(output, name)
}

// outputFilename builds a free path for the group output, appending a
// counter when a file with the same name already exists.
func outputFilename(outputDir, prefix string) string {
	base := strutil.SanitizeFilename(strings.TrimSuffix(prefix, "_"))
	if base == "" {
		base = defaultGroupName
	}

	path := filepath.Join(outputDir, base+".xlsx")
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}

		path = filepath.Join(outputDir, fmt.Sprintf("%s_%d.xlsx", base, counter))
	}
}

// uniqueSheetName clamps base to the xlsx sheet name limit and appends a
// counter until the name is unused in the output workbook.
func uniqueSheetName(base string, usedNames map[string]bool) string {
	name := clampSheetName(base, "")
	for counter := 1; usedNames[name]; counter++ {
		name = clampSheetName(base, fmt.Sprintf("_%d", counter))
	}

	return name
}

func clampSheetName(base, suffix string) string {
	limit := maxSheetNameLength - len(suffix)
	if runes := []rune(base); len(runes) > limit {
		base = string(runes[:limit])
	}

	return base + suffix
}
