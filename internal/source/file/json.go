// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// parseJSON accepts either an array of flat objects or NDJSON, one object
// per line. Columns are the union of object keys in first-seen order, which
// a plain map decode would lose, so objects are walked token by token.
func parseJSON(path string) ([]string, []map[string]any, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer handle.Close()

	decoder := json.NewDecoder(handle)

	header := make([]string, 0)
	seen := make(map[string]bool)
	rows := make([]map[string]any, 0)

	token, err := decoder.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoData
	}
	if err != nil {
		return nil, nil, err
	}

	switch token {
	case json.Delim('['):
		for decoder.More() {
			if _, err := decoder.Token(); err != nil {
				return nil, nil, err
			}

			row, err := decodeObject(decoder, &header, seen)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, row)
		}

	case json.Delim('{'):
		for {
			row, err := decodeObject(decoder, &header, seen)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, row)

			token, err := decoder.Token()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, nil, err
			}
			if token != json.Delim('{') {
				return nil, nil, fmt.Errorf("unexpected token %v, expected an object", token)
			}
		}

	default:
		return nil, nil, fmt.Errorf("unexpected token %v, expected an array or an object", token)
	}

	if len(rows) == 0 {
		return nil, nil, ErrNoData
	}

	return header, rows, nil
}

// decodeObject reads the members of an object whose opening brace was
// already consumed, recording new keys in first-seen order.
func decodeObject(decoder *json.Decoder, header *[]string, seen map[string]bool) (map[string]any, error) {
	row := make(map[string]any)

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v, expected an object key", token)
		}

		var value any
		if err := decoder.Decode(&value); err != nil {
			return nil, err
		}

		row[key] = value
		if !seen[key] {
			seen[key] = true
			*header = append(*header, key)
		}
	}

	// Consume the closing brace.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	return row, nil
}
