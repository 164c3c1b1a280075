// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package processor implements the table transformation steps that run
// between a source and a sink. Processors are assembled into a chain from the
// job configuration and applied in order to every table.
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/source"
)

// ErrUnknownProcessor reports a processor type not known to the factory.
var ErrUnknownProcessor = errors.New("unknown processor type")

// Processor transforms a table into a new table. Implementations must not
// mutate the input table, callers may still hold it.
type Processor interface {
	// Name identifies the processor in logs.
	Name() string
	// Apply returns the transformed table.
	Apply(ctx context.Context, table *source.Table) (*source.Table, error)
}

// FromConfigs builds the processor chain described by configs, preserving order.
func FromConfigs(configs []config.ProcessorConfig) ([]Processor, error) {
	processors := make([]Processor, 0, len(configs))
	for _, cfg := range configs {
		processor, err := fromConfig(cfg)
		if err != nil {
			return nil, err
		}

		processors = append(processors, processor)
	}

	return processors, nil
}

func fromConfig(cfg config.ProcessorConfig) (Processor, error) {
	switch cfg.Type {
	case "clean":
		return NewCleaner(cfg), nil
	case "transform":
		return NewTransformer(cfg)
	case "coerce":
		return NewCoercer(cfg), nil
	case "stats":
		return NewStats(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, cfg.Type)
	}
}

// cloneTable returns a table sharing nothing with the original except the
// cell values themselves.
func cloneTable(table *source.Table) *source.Table {
	columns := make([]source.Column, len(table.Schema.Columns))
	copy(columns, table.Schema.Columns)

	rows := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		cloned := make(map[string]any, len(row))
		for key, value := range row {
			cloned[key] = value
		}
		rows = append(rows, cloned)
	}

	return &source.Table{
		Schema: source.Schema{
			Name:    table.Schema.Name,
			Comment: table.Schema.Comment,
			Columns: columns,
		},
		Rows: rows,
	}
}
