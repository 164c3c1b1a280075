// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const cleanerLoggerName = "rowmill:processor:clean"

var _ Processor = &cleaner{}

// cleaner normalizes cell values and removes useless rows.
type cleaner struct {
	trimSpace      bool
	nullValues     map[string]struct{}
	dropEmptyRows  bool
	dropDuplicates bool
}

// NewCleaner returns the clean processor configured by cfg.
func NewCleaner(cfg config.ProcessorConfig) Processor {
	nullValues := make(map[string]struct{}, len(cfg.NullValues))
	for _, value := range cfg.NullValues {
		nullValues[value] = struct{}{}
	}

	return &cleaner{
		trimSpace:      cfg.TrimSpace,
		nullValues:     nullValues,
		dropEmptyRows:  cfg.DropEmptyRows,
		dropDuplicates: cfg.DropDuplicates,
	}
}

func (c *cleaner) Name() string {
	return "clean"
}

func (c *cleaner) Apply(ctx context.Context, table *source.Table) (*source.Table, error) {
	log := logger.FromContext(ctx).WithName(cleanerLoggerName)

	output := cloneTable(table)
	columnNames := output.Schema.ColumnNames()

	rows := make([]map[string]any, 0, len(output.Rows))
	seen := make(map[string]struct{})

	droppedEmpty, droppedDuplicates := 0, 0
	for _, row := range output.Rows {
		for _, name := range columnNames {
			row[name] = c.cleanValue(row[name])
		}

		if c.dropEmptyRows && emptyRow(row, columnNames) {
			droppedEmpty++
			continue
		}

		if c.dropDuplicates {
			fingerprint := rowFingerprint(row, columnNames)
			if _, ok := seen[fingerprint]; ok {
				droppedDuplicates++
				continue
			}
			seen[fingerprint] = struct{}{}
		}

		rows = append(rows, row)
	}

	if droppedEmpty > 0 || droppedDuplicates > 0 {
		log.Debug("rows dropped during cleaning",
			"table", output.Schema.Name,
			"empty", droppedEmpty,
			"duplicates", droppedDuplicates,
		)
	}

	output.Rows = rows
	return output, nil
}

// cleanValue trims string cells and maps configured null markers to nil.
func (c *cleaner) cleanValue(value any) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	if c.trimSpace {
		str = strings.TrimSpace(str)
	}

	if _, isNull := c.nullValues[str]; isNull {
		return nil
	}

	return str
}

// emptyRow reports whether every cell is nil or an empty string.
func emptyRow(row map[string]any, columnNames []string) bool {
	for _, name := range columnNames {
		switch value := row[name].(type) {
		case nil:
		case string:
			if value != "" {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// rowFingerprint builds a duplicate-detection key from the ordered cell values.
func rowFingerprint(row map[string]any, columnNames []string) string {
	builder := new(strings.Builder)
	for _, name := range columnNames {
		fmt.Fprintf(builder, "%v\x1f", row[name])
	}

	return builder.String()
}
