// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowmill/rowmill/internal/source"
)

// fakeCatalog serves canned metadata and rows, with optional per-table errors.
type fakeCatalog struct {
	tb testing.TB

	metadata   []tableMetadata
	listErr    error
	columns    map[string][]source.Column
	columnErrs map[string]error
	rows       map[string][]map[string]any

	requestedPrefix string
	closed          bool
}

func (c *fakeCatalog) TableComments(_ context.Context, prefix string) ([]tableMetadata, error) {
	c.tb.Helper()
	c.requestedPrefix = prefix
	return c.metadata, c.listErr
}

func (c *fakeCatalog) TableColumns(_ context.Context, table string) ([]source.Column, error) {
	c.tb.Helper()
	if err := c.columnErrs[table]; err != nil {
		return nil, err
	}

	return c.columns[table], nil
}

func (c *fakeCatalog) TableRows(_ context.Context, table string) ([]map[string]any, error) {
	c.tb.Helper()
	return c.rows[table], nil
}

func (c *fakeCatalog) Close() error {
	c.closed = true
	return nil
}

func collectTables(tb testing.TB, export func(chan<- *source.Table) error) ([]*source.Table, error) {
	tb.Helper()

	results := make(chan *source.Table, 8)
	err := export(results)
	close(results)

	tables := make([]*source.Table, 0)
	for table := range results {
		tables = append(tables, table)
	}

	return tables, err
}

func TestStartExport(t *testing.T) {
	t.Parallel()

	t.Run("tables discovered by prefix", func(t *testing.T) {
		t.Parallel()

		catalog := &fakeCatalog{
			tb: t,
			metadata: []tableMetadata{
				{Name: "t_broken", Comment: ""},
				{Name: "t_plain", Comment: ""},
				{Name: "t_users", Comment: "registered users"},
			},
			columns: map[string][]source.Column{
				"t_users": {
					{Name: "id", Type: "int(11)", Comment: "identifier"},
					{Name: "name", Type: "varchar(64)"},
				},
			},
			columnErrs: map[string]error{"t_broken": assert.AnError},
			rows: map[string][]map[string]any{
				"t_users": {{"id": int64(1), "name": "ann"}},
			},
		}

		mysqlSource := &mysqlSource{
			database:    "analytics",
			tablePrefix: "t_",
			catalog:     catalog,
		}

		tables, err := collectTables(t, func(results chan<- *source.Table) error {
			return mysqlSource.StartExport(context.Background(), results)
		})
		require.NoError(t, err)

		assert.Equal(t, "t_", catalog.requestedPrefix)
		require.Len(t, tables, 2)

		// Without a table comment the table name stands in.
		plain := tables[0]
		assert.Equal(t, "t_plain", plain.Schema.Name)
		assert.Equal(t, "t_plain", plain.Schema.Comment)

		users := tables[1]
		assert.Equal(t, "t_users", users.Schema.Name)
		assert.Equal(t, "registered users", users.Schema.Comment)
		assert.Equal(t, []source.Column{
			{Name: "id", Type: "int(11)", Comment: "identifier"},
			{Name: "name", Type: "varchar(64)"},
		}, users.Schema.Columns)
		assert.Equal(t, []map[string]any{{"id": int64(1), "name": "ann"}}, users.Rows)

		assert.Equal(t, []string{"t_broken"}, mysqlSource.FailedTables())
	})

	t.Run("explicit tables skip discovery", func(t *testing.T) {
		t.Parallel()

		catalog := &fakeCatalog{
			tb: t,
			metadata: []tableMetadata{
				{Name: "t_users"},
				{Name: "t_orders"},
			},
			columns: map[string][]source.Column{
				"t_users": {{Name: "id", Type: "int(11)"}},
			},
		}

		mysqlSource := &mysqlSource{
			database: "analytics",
			tables:   []string{"t_users"},
			catalog:  catalog,
		}

		tables, err := collectTables(t, func(results chan<- *source.Table) error {
			return mysqlSource.StartExport(context.Background(), results)
		})
		require.NoError(t, err)

		require.Len(t, tables, 1)
		assert.Equal(t, "t_users", tables[0].Schema.Name)
		assert.Empty(t, mysqlSource.FailedTables())
	})

	t.Run("listing failure aborts the export", func(t *testing.T) {
		t.Parallel()

		catalog := &fakeCatalog{tb: t, listErr: assert.AnError}
		mysqlSource := &mysqlSource{tablePrefix: "t_", catalog: catalog}

		tables, err := collectTables(t, func(results chan<- *source.Table) error {
			return mysqlSource.StartExport(context.Background(), results)
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, tables)
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{tb: t}
	mysqlSource := &mysqlSource{catalog: catalog}

	require.NoError(t, mysqlSource.Close(context.Background(), time.Second))
	assert.True(t, catalog.closed)
}
