// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package processor

import (
	"context"
	"slices"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/mapper"
	"github.com/rowmill/rowmill/internal/source"
)

const transformerLoggerName = "rowmill:processor:transform"

var _ Processor = &transformer{}

// transformer reshapes a table: dropping and renaming columns, switching
// headers to the column comments, and deriving new columns from templates.
type transformer struct {
	useComments bool
	rename      map[string]string
	drop        map[string]struct{}
	derive      mapper.Mapper
	deriveKeys  []string
}

// NewTransformer returns the transform processor configured by cfg.
// Derived column templates are parsed eagerly so that template errors
// surface at job load time instead of mid-run.
func NewTransformer(cfg config.ProcessorConfig) (Processor, error) {
	drop := make(map[string]struct{}, len(cfg.Drop))
	for _, name := range cfg.Drop {
		drop[name] = struct{}{}
	}

	var derive mapper.Mapper
	var deriveKeys []string
	if len(cfg.Derive) > 0 {
		var err error
		derive, err = mapper.New(cfg.Derive)
		if err != nil {
			return nil, err
		}

		for key := range cfg.Derive {
			deriveKeys = append(deriveKeys, key)
		}
		slices.Sort(deriveKeys)
	}

	return &transformer{
		useComments: cfg.UseComments,
		rename:      cfg.Rename,
		drop:        drop,
		derive:      derive,
		deriveKeys:  deriveKeys,
	}, nil
}

func (t *transformer) Name() string {
	return "transform"
}

func (t *transformer) Apply(ctx context.Context, table *source.Table) (*source.Table, error) {
	log := logger.FromContext(ctx).WithName(transformerLoggerName)

	output := cloneTable(table)

	t.dropColumns(output)
	t.renameColumns(output)

	if t.derive != nil {
		if err := t.deriveColumns(output); err != nil {
			return nil, err
		}
	}

	log.Trace("table transformed", "table", output.Schema.Name, "columns", len(output.Schema.Columns))
	return output, nil
}

func (t *transformer) dropColumns(table *source.Table) {
	if len(t.drop) == 0 {
		return
	}

	columns := make([]source.Column, 0, len(table.Schema.Columns))
	for _, column := range table.Schema.Columns {
		if _, dropped := t.drop[column.Name]; dropped {
			for _, row := range table.Rows {
				delete(row, column.Name)
			}
			continue
		}

		columns = append(columns, column)
	}

	table.Schema.Columns = columns
}

// renameColumns applies the explicit rename map and, when useComments is set,
// promotes column comments to column names the way the Hive exporter labels
// its output columns.
func (t *transformer) renameColumns(table *source.Table) {
	for i, column := range table.Schema.Columns {
		newName := column.Name
		if renamed, ok := t.rename[column.Name]; ok && renamed != "" {
			newName = renamed
		} else if t.useComments && column.Comment != "" {
			newName = column.Comment
		}

		if newName == column.Name {
			continue
		}

		table.Schema.Columns[i].Name = newName
		for _, row := range table.Rows {
			if value, ok := row[column.Name]; ok {
				row[newName] = value
				delete(row, column.Name)
			}
		}
	}
}

func (t *transformer) deriveColumns(table *source.Table) error {
	existing := make(map[string]struct{}, len(table.Schema.Columns))
	for _, column := range table.Schema.Columns {
		existing[column.Name] = struct{}{}
	}

	for _, key := range t.deriveKeys {
		if _, ok := existing[key]; !ok {
			table.Schema.Columns = append(table.Schema.Columns, source.Column{Name: key})
		}
	}

	for _, row := range table.Rows {
		rendered, err := t.derive.Apply(row)
		if err != nil {
			return err
		}

		for key, value := range rendered {
			row[key] = value
		}
	}

	return nil
}
