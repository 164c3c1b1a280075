// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"errors"

	"github.com/xuri/excelize/v2"
)

var errNoSheets = errors.New("workbook has no sheets")

func parseExcel(path string) ([]string, []map[string]any, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errNoSheets
	}

	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return nil, nil, ErrNoData
	}

	return records[0], rowsFromRecords(records[0], records[1:]), nil
}
