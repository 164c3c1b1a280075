// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package excel

import (
	"github.com/xuri/excelize/v2"

	"github.com/rowmill/rowmill/internal/strutil"
)

const (
	// maxColumnWidth caps the width of any auto-sized column.
	maxColumnWidth = 100
	// widthPadding is the extra room added around the widest cell.
	widthPadding = 2
)

// AdjustColumnWidths sizes every column of sheet to its widest cell, measured
// by display width so CJK text fits, capped at maxColumnWidth.
func AdjustColumnWidths(file *excelize.File, sheet string) error {
	rows, err := file.GetRows(sheet)
	if err != nil {
		return err
	}

	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			for len(widths) <= i {
				widths = append(widths, 0)
			}

			if width := strutil.DisplayWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		adjusted := min(width+widthPadding, maxColumnWidth)
		if err := file.SetColWidth(sheet, name, name, float64(adjusted)); err != nil {
			return err
		}
	}

	return nil
}
