// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"encoding/csv"
	"os"
)

func parseCSV(path string) ([]string, []map[string]any, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer handle.Close()

	reader := csv.NewReader(handle)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return nil, nil, ErrNoData
	}

	return records[0], rowsFromRecords(records[0], records[1:]), nil
}
