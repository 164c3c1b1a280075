// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package excel implements the Excel sink: one workbook per table, with the
// data, the table description and the column listing on separate sheets.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/source"
	"github.com/rowmill/rowmill/internal/strutil"
)

const (
	loggerName = "rowmill:sink:excel"

	dataSheetName       = "Data"
	tableInfoSheetName  = "Table Info"
	columnInfoSheetName = "Column Info"

	fallbackFilename = "export"
)

var _ sink.Writer = &excelSink{}

// excelSink writes every table to its own .xlsx file inside outputDir.
// File names come from the table comment and are de-duplicated with numeric
// suffixes when two tables share one.
type excelSink struct {
	outputDir string
	nullValue string

	usedFilenames map[string]int
}

// NewSink returns a sink.Writer producing Excel workbooks in outputDir.
func NewSink(outputDir, nullValue string) sink.Writer {
	return &excelSink{
		outputDir:     outputDir,
		nullValue:     nullValue,
		usedFilenames: make(map[string]int),
	}
}

func (s *excelSink) WriteTable(ctx context.Context, table *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	filename := s.uniqueFilename(table.Title())
	path := filepath.Join(s.outputDir, filename)

	file := excelize.NewFile()
	defer file.Close()

	if err := s.writeDataSheet(file, table); err != nil {
		return err
	}
	if err := s.writeTableInfoSheet(file, table); err != nil {
		return err
	}
	if err := s.writeColumnInfoSheet(file, table); err != nil {
		return err
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %q: %w", path, err)
	}

	log.Info("table exported", "table", table.Schema.Name, "file", filename, "rows", len(table.Rows))
	return nil
}

// uniqueFilename sanitizes title into a file name and appends a counter when
// the name was already handed out during this run.
func (s *excelSink) uniqueFilename(title string) string {
	base := strutil.SanitizeFilename(title)
	if base == "" {
		base = fallbackFilename
	}

	count := s.usedFilenames[base]
	s.usedFilenames[base] = count + 1
	if count == 0 {
		return base + ".xlsx"
	}

	return fmt.Sprintf("%s_%d.xlsx", base, count+1)
}

func (s *excelSink) writeDataSheet(file *excelize.File, table *source.Table) error {
	if err := file.SetSheetName(file.GetSheetName(0), dataSheetName); err != nil {
		return err
	}

	headers := make([]any, len(table.Schema.Columns))
	for i := range table.Schema.Columns {
		headers[i] = table.Schema.Header(i)
	}
	if err := setRow(file, dataSheetName, 1, headers); err != nil {
		return err
	}

	columnNames := table.Schema.ColumnNames()
	for i, row := range table.Rows {
		cells := make([]any, len(columnNames))
		for j, name := range columnNames {
			cells[j] = s.cellValue(row[name])
		}

		if err := setRow(file, dataSheetName, i+2, cells); err != nil {
			return err
		}
	}

	return AdjustColumnWidths(file, dataSheetName)
}

func (s *excelSink) writeTableInfoSheet(file *excelize.File, table *source.Table) error {
	if _, err := file.NewSheet(tableInfoSheetName); err != nil {
		return err
	}

	rows := [][]any{
		{"Field", "Value"},
		{"Table", table.Schema.Name},
		{"Comment", table.Schema.Comment},
		{"Rows", len(table.Rows)},
	}
	for i, row := range rows {
		if err := setRow(file, tableInfoSheetName, i+1, row); err != nil {
			return err
		}
	}

	return AdjustColumnWidths(file, tableInfoSheetName)
}

func (s *excelSink) writeColumnInfoSheet(file *excelize.File, table *source.Table) error {
	if _, err := file.NewSheet(columnInfoSheetName); err != nil {
		return err
	}

	if err := setRow(file, columnInfoSheetName, 1, []any{"Name", "Type", "Comment"}); err != nil {
		return err
	}
	for i, column := range table.Schema.Columns {
		if err := setRow(file, columnInfoSheetName, i+2, []any{column.Name, column.Type, column.Comment}); err != nil {
			return err
		}
	}

	return AdjustColumnWidths(file, columnInfoSheetName)
}

// cellValue converts a table cell to a value excelize can store, replacing
// nil with the configured null marker.
func (s *excelSink) cellValue(value any) any {
	if value == nil {
		return s.nullValue
	}

	return value
}

func setRow(file *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	return file.SetSheetRow(sheet, cell, &cells)
}
