// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package mysql implements the MySQL source. Table and column metadata come
// from information_schema so exports carry the same comments Hive exports do.
package mysql

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const loggerName = "rowmill:source:mysql"

var _ source.TableSource = &mysqlSource{}
var _ source.FailureReporter = &mysqlSource{}
var _ source.ClosableSource = &mysqlSource{}

type tableMetadata struct {
	Name    string `db:"table_name"`
	Comment string `db:"table_comment"`
}

// catalog covers the database operations the source relies on.
type catalog interface {
	TableComments(ctx context.Context, prefix string) ([]tableMetadata, error)
	TableColumns(ctx context.Context, table string) ([]source.Column, error)
	TableRows(ctx context.Context, table string) ([]map[string]any, error)
	Close() error
}

type mysqlSource struct {
	database    string
	tablePrefix string
	tables      []string
	failed      []string

	catalog catalog
}

// NewSource opens a connection pool with the environment configuration and
// returns a source exporting the tables of database selected by tablePrefix,
// or the explicit tables list when provided.
func NewSource(ctx context.Context, database, tablePrefix string, tables []string) (*mysqlSource, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if database == "" {
		database = config.Database
	}

	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("connecting to mysql", "host", config.Host, "port", config.Port, "database", database)

	db, err := sqlx.ConnectContext(ctx, "mysql", config.DSN(database))
	if err != nil {
		return nil, fmt.Errorf("connecting to mysql %s:%d: %w", config.Host, config.Port, err)
	}

	return &mysqlSource{
		database:    database,
		tablePrefix: tablePrefix,
		tables:      tables,
		catalog:     &sqlxCatalog{db: db, database: database},
	}, nil
}

// StartExport walks the selected tables and emits each one on results.
// A failure limited to one table is logged, recorded for the run summary,
// and does not abort the others.
func (s *mysqlSource) StartExport(ctx context.Context, results chan<- *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	s.failed = nil

	comments, err := s.catalog.TableComments(ctx, s.tablePrefix)
	if err != nil {
		return err
	}

	tables := s.tables
	if len(tables) == 0 {
		tables = make([]string, 0, len(comments))
		for _, table := range comments {
			tables = append(tables, table.Name)
		}
	}

	log.Info("tables selected for export", "count", len(tables), "prefix", s.tablePrefix)

	for _, table := range tables {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		comment := table
		for _, metadata := range comments {
			if metadata.Name == table && metadata.Comment != "" {
				comment = metadata.Comment
				break
			}
		}

		exported, err := s.exportTable(ctx, table, comment)
		if err != nil {
			log.Error("error exporting table", "table", table, "error", err)
			s.failed = append(s.failed, table)
			continue
		}

		results <- exported
	}

	return nil
}

// FailedTables returns the tables skipped during the last export.
func (s *mysqlSource) FailedTables() []string {
	return s.failed
}

// Close drains the connection pool.
func (s *mysqlSource) Close(ctx context.Context, _ time.Duration) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("closing mysql connection")
	return s.catalog.Close()
}

func (s *mysqlSource) exportTable(ctx context.Context, table, comment string) (*source.Table, error) {
	columns, err := s.catalog.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := s.catalog.TableRows(ctx, table)
	if err != nil {
		return nil, err
	}

	return &source.Table{
		Schema: source.Schema{
			Name:    table,
			Comment: comment,
			Columns: columns,
		},
		Rows: rows,
	}, nil
}

// sqlxCatalog implements catalog over a sqlx connection pool.
type sqlxCatalog struct {
	db       *sqlx.DB
	database string
}

func (c *sqlxCatalog) TableComments(ctx context.Context, prefix string) ([]tableMetadata, error) {
	query := `SELECT table_name, table_comment
FROM information_schema.tables
WHERE table_schema = ? AND table_name LIKE ?
ORDER BY table_name`

	metadata := make([]tableMetadata, 0)
	if err := c.db.SelectContext(ctx, &metadata, query, c.database, prefix+"%"); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	return metadata, nil
}

func (c *sqlxCatalog) TableColumns(ctx context.Context, table string) ([]source.Column, error) {
	query := `SELECT column_name, column_type, column_comment
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`

	rows, err := c.db.QueryxContext(ctx, query, c.database, table)
	if err != nil {
		return nil, fmt.Errorf("describing table %q: %w", table, err)
	}
	defer rows.Close()

	columns := make([]source.Column, 0)
	for rows.Next() {
		var name, columnType, comment string
		if err := rows.Scan(&name, &columnType, &comment); err != nil {
			return nil, fmt.Errorf("describing table %q: %w", table, err)
		}

		columns = append(columns, source.Column{
			Name:    name,
			Type:    columnType,
			Comment: comment,
		})
	}

	return columns, rows.Err()
}

func (c *sqlxCatalog) TableRows(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := c.db.QueryxContext(ctx, "SELECT * FROM `"+table+"`")
	if err != nil {
		return nil, fmt.Errorf("fetching rows from %q: %w", table, err)
	}
	defer rows.Close()

	exported := make([]map[string]any, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("fetching rows from %q: %w", table, err)
		}

		exported = append(exported, normalizeRow(row))
	}

	return exported, rows.Err()
}

func (c *sqlxCatalog) Close() error {
	return c.db.Close()
}

// normalizeRow converts the []byte values the driver returns for text
// columns into strings so downstream processors see comparable cells.
func normalizeRow(row map[string]any) map[string]any {
	for key, value := range row {
		if raw, ok := value.([]byte); ok {
			row[key] = string(raw)
		}
	}

	return row
}
