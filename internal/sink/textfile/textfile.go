// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package textfile implements the plain-text sink: one .txt file per table
// with columns aligned by display width.
package textfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/sink/csvfile"
	"github.com/rowmill/rowmill/internal/source"
	"github.com/rowmill/rowmill/internal/strutil"
)

const (
	loggerName       = "rowmill:sink:text"
	fallbackFilename = "export"

	columnSeparator = "  "
)

var _ sink.Writer = &textSink{}

type textSink struct {
	outputDir string
	nullValue string

	usedFilenames map[string]int
}

// NewSink returns a sink.Writer producing aligned text files in outputDir.
func NewSink(outputDir, nullValue string) sink.Writer {
	return &textSink{
		outputDir:     outputDir,
		nullValue:     nullValue,
		usedFilenames: make(map[string]int),
	}
}

func (s *textSink) WriteTable(ctx context.Context, table *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	filename := s.uniqueFilename(table.Title())
	path := filepath.Join(s.outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating text file %q: %w", path, err)
	}
	defer file.Close()

	lines := s.renderLines(table)
	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("writing text file %q: %w", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("writing text file %q: %w", path, err)
	}

	log.Info("table exported", "table", table.Schema.Name, "file", filename, "rows", len(table.Rows))
	return nil
}

// renderLines lays the table out as rows of cells padded to the widest value
// of each column, measured by display width so CJK text stays aligned.
func (s *textSink) renderLines(table *source.Table) []string {
	columnNames := table.Schema.ColumnNames()

	cells := make([][]string, 0, len(table.Rows)+1)
	headers := make([]string, len(columnNames))
	for i := range table.Schema.Columns {
		headers[i] = table.Schema.Header(i)
	}
	cells = append(cells, headers)

	for _, row := range table.Rows {
		line := make([]string, len(columnNames))
		for i, name := range columnNames {
			line[i] = csvfile.CellString(row[name], s.nullValue)
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(columnNames))
	for _, line := range cells {
		for i, cell := range line {
			if width := strutil.DisplayWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	lines := make([]string, 0, len(cells))
	for _, line := range cells {
		builder := new(strings.Builder)
		for i, cell := range line {
			builder.WriteString(cell)
			if i < len(line)-1 {
				builder.WriteString(strings.Repeat(" ", widths[i]-strutil.DisplayWidth(cell)))
				builder.WriteString(columnSeparator)
			}
		}
		lines = append(lines, builder.String())
	}

	return lines
}

func (s *textSink) uniqueFilename(title string) string {
	base := strutil.SanitizeFilename(title)
	if base == "" {
		base = fallbackFilename
	}

	count := s.usedFilenames[base]
	s.usedFilenames[base] = count + 1
	if count == 0 {
		return base + ".txt"
	}

	return fmt.Sprintf("%s_%d.txt", base, count+1)
}
