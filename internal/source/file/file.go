// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package file implements a source reading tables from local files. Every
// path becomes one table named after its base name; the format is selected
// by the file extension.
package file

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const loggerName = "rowmill:source:file"

// ErrUnsupportedFormat is returned for paths with an extension no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoData is returned for files without a header row and at least one data row.
var ErrNoData = errors.New("file contains no data rows")

var _ source.TableSource = &fileSource{}
var _ source.FailureReporter = &fileSource{}

type fileSource struct {
	paths  []string
	failed []string
}

// NewSource returns a source parsing every path into a table.
func NewSource(paths []string) *fileSource {
	return &fileSource{paths: paths}
}

// StartExport parses the configured paths in order and emits each table on
// results. A file that fails to parse is logged, recorded for the run
// summary, and does not abort the others.
func (s *fileSource) StartExport(ctx context.Context, results chan<- *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Info("files selected for export", "count", len(s.paths))
	s.failed = nil

	for _, path := range s.paths {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		table, err := ParseFile(path)
		if err != nil {
			log.Error("error parsing file", "path", path, "error", err)
			s.failed = append(s.failed, tableName(path))
			continue
		}

		results <- table
	}

	return nil
}

// FailedTables returns the table names of the files skipped during the last export.
func (s *fileSource) FailedTables() []string {
	return s.failed
}

// ParseFile reads a single file into a table, dispatching on its extension.
func ParseFile(path string) (*source.Table, error) {
	var parse func(string) ([]string, []map[string]any, error)

	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".csv":
		parse = parseCSV
	case ".xlsx", ".xlsm":
		parse = parseExcel
	case ".json", ".ndjson", ".jsonl":
		parse = parseJSON
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, extension)
	}

	header, rows, err := parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}

	columns := make([]source.Column, 0, len(header))
	for _, name := range header {
		columns = append(columns, source.Column{Name: name})
	}

	return &source.Table{
		Schema: source.Schema{
			Name:    tableName(path),
			Columns: columns,
		},
		Rows: rows,
	}, nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// rowsFromRecords pairs header names with record cells. Missing trailing
// cells become nil, extra cells are dropped.
func rowsFromRecords(header []string, records [][]string) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = nil
			}
		}

		rows = append(rows, row)
	}

	return rows
}
