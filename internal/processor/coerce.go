// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package processor

import (
	"context"
	"strconv"
	"time"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const coercerLoggerName = "rowmill:processor:coerce"

// timeLayouts are tried in order when parsing string cells as timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var _ Processor = &coercer{}

// coercer upgrades string columns to typed values when every non-nil cell of
// the column converts cleanly to the same kind.
type coercer struct {
	columns map[string]struct{}
}

// NewCoercer returns the coerce processor configured by cfg. An empty column
// list means every column is a candidate.
func NewCoercer(cfg config.ProcessorConfig) Processor {
	columns := make(map[string]struct{}, len(cfg.Columns))
	for _, name := range cfg.Columns {
		columns[name] = struct{}{}
	}

	return &coercer{columns: columns}
}

func (c *coercer) Name() string {
	return "coerce"
}

func (c *coercer) Apply(ctx context.Context, table *source.Table) (*source.Table, error) {
	log := logger.FromContext(ctx).WithName(coercerLoggerName)

	output := cloneTable(table)
	for _, column := range output.Schema.Columns {
		if len(c.columns) > 0 {
			if _, ok := c.columns[column.Name]; !ok {
				continue
			}
		}

		kind := columnKind(output.Rows, column.Name)
		if kind == kindString {
			continue
		}

		coerceColumn(output.Rows, column.Name, kind)
		log.Trace("column coerced", "table", output.Schema.Name, "column", column.Name, "kind", kind.String())
	}

	return output, nil
}

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindTime
)

func (k valueKind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindBool:
		return "bool"
	case kindTime:
		return "time"
	default:
		return "string"
	}
}

// columnKind inspects every non-nil string cell of the column and reports the
// single kind they all convert to, or kindString when they do not agree.
// Columns mixing ints and floats settle on float.
func columnKind(rows []map[string]any, name string) valueKind {
	allInt, allFloat, allBool, allTime := true, true, true, true
	sawValue := false

	for _, row := range rows {
		value := row[name]
		if value == nil {
			continue
		}

		str, ok := value.(string)
		if !ok || str == "" {
			return kindString
		}
		sawValue = true

		if _, err := strconv.ParseInt(str, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(str, 64); err != nil {
			allFloat = false
		}
		if _, err := strconv.ParseBool(str); err != nil {
			allBool = false
		}
		if _, ok := parseTime(str); !ok {
			allTime = false
		}

		if !allInt && !allFloat && !allBool && !allTime {
			return kindString
		}
	}

	if !sawValue {
		return kindString
	}

	switch {
	case allInt:
		return kindInt
	case allFloat:
		return kindFloat
	case allBool:
		return kindBool
	case allTime:
		return kindTime
	default:
		return kindString
	}
}

func coerceColumn(rows []map[string]any, name string, kind valueKind) {
	for _, row := range rows {
		str, ok := row[name].(string)
		if !ok {
			continue
		}

		switch kind {
		case kindInt:
			parsed, _ := strconv.ParseInt(str, 10, 64)
			row[name] = parsed
		case kindFloat:
			parsed, _ := strconv.ParseFloat(str, 64)
			row[name] = parsed
		case kindBool:
			parsed, _ := strconv.ParseBool(str)
			row[name] = parsed
		case kindTime:
			parsed, _ := parseTime(str)
			row[name] = parsed
		}
	}
}

func parseTime(str string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}
