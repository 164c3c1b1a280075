// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package csvfile implements the CSV sink: one .csv file per table with a
// header row built from the column names.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/source"
	"github.com/rowmill/rowmill/internal/strutil"
)

const (
	loggerName       = "rowmill:sink:csv"
	fallbackFilename = "export"
)

var _ sink.Writer = &csvSink{}

type csvSink struct {
	outputDir string
	nullValue string

	usedFilenames map[string]int
}

// NewSink returns a sink.Writer producing CSV files in outputDir.
func NewSink(outputDir, nullValue string) sink.Writer {
	return &csvSink{
		outputDir:     outputDir,
		nullValue:     nullValue,
		usedFilenames: make(map[string]int),
	}
}

func (s *csvSink) WriteTable(ctx context.Context, table *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	filename := s.uniqueFilename(table.Title())
	path := filepath.Join(s.outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file %q: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Schema.ColumnNames()); err != nil {
		return err
	}

	columnNames := table.Schema.ColumnNames()
	for _, row := range table.Rows {
		record := make([]string, len(columnNames))
		for i, name := range columnNames {
			record[i] = CellString(row[name], s.nullValue)
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writing csv file %q: %w", path, err)
	}

	log.Info("table exported", "table", table.Schema.Name, "file", filename, "rows", len(table.Rows))
	return nil
}

func (s *csvSink) uniqueFilename(title string) string {
	base := strutil.SanitizeFilename(title)
	if base == "" {
		base = fallbackFilename
	}

	count := s.usedFilenames[base]
	s.usedFilenames[base] = count + 1
	if count == 0 {
		return base + ".csv"
	}

	return fmt.Sprintf("%s_%d.csv", base, count+1)
}

// CellString renders a cell for textual output, replacing nil with nullValue.
func CellString(value any, nullValue string) string {
	if value == nil {
		return nullValue
	}

	if str, ok := value.(string); ok {
		return str
	}

	return fmt.Sprintf("%v", value)
}
