// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package processor

import (
	"context"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const statsLoggerName = "rowmill:processor:stats"

var _ Processor = &statsProcessor{}

// statsProcessor computes per-column numeric summaries and can drop rows
// whose values sit too many standard deviations from the column mean.
type statsProcessor struct {
	columns      map[string]struct{}
	zscore       float64
	dropOutliers bool
}

// NewStats returns the stats processor configured by cfg. An empty column
// list means every numeric column is summarized.
func NewStats(cfg config.ProcessorConfig) Processor {
	columns := make(map[string]struct{}, len(cfg.Columns))
	for _, name := range cfg.Columns {
		columns[name] = struct{}{}
	}

	return &statsProcessor{
		columns:      columns,
		zscore:       cfg.ZScore,
		dropOutliers: cfg.DropOutliers,
	}
}

func (s *statsProcessor) Name() string {
	return "stats"
}

func (s *statsProcessor) Apply(ctx context.Context, table *source.Table) (*source.Table, error) {
	log := logger.FromContext(ctx).WithName(statsLoggerName)

	output := cloneTable(table)

	outlierRows := make(map[int]struct{})
	for _, column := range output.Schema.Columns {
		if len(s.columns) > 0 {
			if _, ok := s.columns[column.Name]; !ok {
				continue
			}
		}

		values, rowIndexes := numericColumn(output.Rows, column.Name)
		if len(values) == 0 {
			continue
		}

		minimum, _ := stats.Min(values)
		maximum, _ := stats.Max(values)
		mean, _ := stats.Mean(values)
		median, _ := stats.Median(values)
		stdDev, _ := stats.StandardDeviation(values)

		log.Info("column summary",
			"table", output.Schema.Name,
			"column", column.Name,
			"count", len(values),
			"min", minimum,
			"max", maximum,
			"mean", mean,
			"median", median,
			"stddev", stdDev,
		)

		if !s.dropOutliers || s.zscore <= 0 || stdDev == 0 {
			continue
		}

		for i, value := range values {
			if math.Abs(value-mean)/stdDev > s.zscore {
				outlierRows[rowIndexes[i]] = struct{}{}
			}
		}
	}

	if len(outlierRows) > 0 {
		rows := make([]map[string]any, 0, len(output.Rows)-len(outlierRows))
		for i, row := range output.Rows {
			if _, dropped := outlierRows[i]; dropped {
				continue
			}
			rows = append(rows, row)
		}

		log.Debug("outlier rows dropped", "table", output.Schema.Name, "rows", len(outlierRows))
		output.Rows = rows
	}

	return output, nil
}

// numericColumn extracts the float values of a column together with the index
// of the row each value came from.
func numericColumn(rows []map[string]any, name string) ([]float64, []int) {
	values := make([]float64, 0, len(rows))
	rowIndexes := make([]int, 0, len(rows))

	for i, row := range rows {
		value, ok := numericValue(row[name])
		if !ok {
			continue
		}

		values = append(values, value)
		rowIndexes = append(rowIndexes, i)
	}

	return values, rowIndexes
}

func numericValue(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
