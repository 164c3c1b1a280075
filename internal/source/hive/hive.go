// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package hive implements the Hive source. It discovers the tables matching a
// name prefix, reads their comments and column metadata, and exports every row.
package hive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beltran/gohive"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const loggerName = "rowmill:source:hive"

var _ source.TableSource = &hiveSource{}
var _ source.FailureReporter = &hiveSource{}
var _ source.ClosableSource = &hiveSource{}

// cursor covers the gohive cursor operations the source relies on.
type cursor interface {
	Exec(ctx context.Context, query string)
	HasMore(ctx context.Context) bool
	FetchOne(ctx context.Context, dests ...any)
	RowMap(ctx context.Context) map[string]any
	Err() error
	Close()
}

// connection hands out cursors over an open Hive session.
type connection interface {
	Cursor() cursor
	Close()
}

type gohiveConnection struct {
	conn *gohive.Connection
}

func (c gohiveConnection) Cursor() cursor {
	return gohiveCursor{cursor: c.conn.Cursor()}
}

func (c gohiveConnection) Close() {
	c.conn.Close()
}

type gohiveCursor struct {
	cursor *gohive.Cursor
}

func (c gohiveCursor) Exec(ctx context.Context, query string) {
	c.cursor.Exec(ctx, query)
}

func (c gohiveCursor) HasMore(ctx context.Context) bool {
	return c.cursor.HasMore(ctx)
}

func (c gohiveCursor) FetchOne(ctx context.Context, dests ...any) {
	c.cursor.FetchOne(ctx, dests...)
}

func (c gohiveCursor) RowMap(ctx context.Context) map[string]any {
	return c.cursor.RowMap(ctx)
}

func (c gohiveCursor) Err() error {
	return c.cursor.Err
}

func (c gohiveCursor) Close() {
	c.cursor.Close()
}

type hiveSource struct {
	database    string
	tablePrefix string
	tables      []string
	failed      []string

	connection connection
}

// NewSource connects to Hive with the environment configuration and returns a
// source exporting the tables of database selected by tablePrefix, or the
// explicit tables list when provided.
func NewSource(ctx context.Context, database, tablePrefix string, tables []string) (*hiveSource, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("connecting to hive", "host", config.Host, "port", config.Port)

	configuration := gohive.NewConnectConfiguration()
	configuration.Username = config.Username
	configuration.Password = config.Password

	conn, err := gohive.Connect(config.Host, config.Port, "CUSTOM", configuration)
	if err != nil {
		return nil, fmt.Errorf("connecting to hive %s:%d: %w", config.Host, config.Port, err)
	}

	return &hiveSource{
		database:    database,
		tablePrefix: tablePrefix,
		tables:      tables,
		connection:  gohiveConnection{conn: conn},
	}, nil
}

// StartExport walks the selected tables and emits each one on results.
// A failure limited to one table is logged, recorded for the run summary,
// and does not abort the others.
func (s *hiveSource) StartExport(ctx context.Context, results chan<- *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	s.failed = nil

	cursor := s.connection.Cursor()
	defer cursor.Close()

	if s.database != "" {
		if err := execute(ctx, cursor, "USE `"+s.database+"`"); err != nil {
			return err
		}
	}

	tables := s.tables
	if len(tables) == 0 {
		var err error
		tables, err = s.tablesByPrefix(ctx, cursor)
		if err != nil {
			return err
		}
	}

	log.Info("tables selected for export", "count", len(tables), "prefix", s.tablePrefix)

	for _, table := range tables {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		exported, err := s.exportTable(ctx, cursor, table)
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
func (s *hiveSource) FailedTables() []string {
	return s.failed
}

// Close terminates the Hive connection.
func (s *hiveSource) Close(ctx context.Context, _ time.Duration) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("closing hive connection")
	s.connection.Close()
	return nil
}

func (s *hiveSource) tablesByPrefix(ctx context.Context, cursor cursor) ([]string, error) {
	if err := execute(ctx, cursor, fmt.Sprintf("SHOW TABLES LIKE '%s*'", s.tablePrefix)); err != nil {
		return nil, err
	}

	tables := make([]string, 0)
	for cursor.HasMore(ctx) {
		var name string
		cursor.FetchOne(ctx, &name)
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}

		tables = append(tables, name)
	}

	return tables, nil
}

func (s *hiveSource) exportTable(ctx context.Context, cursor cursor, table string) (*source.Table, error) {
	schema := source.Schema{
		Name:    table,
		Comment: s.tableComment(ctx, cursor, table),
	}

	columns, err := s.describeTable(ctx, cursor, table)
	if err != nil {
		return nil, err
	}
	schema.Columns = columns

	rows, err := s.fetchRows(ctx, cursor, table)
	if err != nil {
		return nil, err
	}

	return &source.Table{
		Schema: schema,
		Rows:   rows,
	}, nil
}

// tableComment reads the table comment from its properties; on any failure
// the table name is used, matching the labels users expect on exports.
func (s *hiveSource) tableComment(ctx context.Context, cursor cursor, table string) string {
	if err := execute(ctx, cursor, fmt.Sprintf("SHOW TBLPROPERTIES `%s`('comment')", table)); err != nil {
		return table
	}

	for cursor.HasMore(ctx) {
		var comment string
		cursor.FetchOne(ctx, &comment)
		if cursor.Err() != nil {
			return table
		}

		if comment = strings.TrimSpace(comment); comment != "" {
			return comment
		}
	}

	return table
}

func (s *hiveSource) describeTable(ctx context.Context, cursor cursor, table string) ([]source.Column, error) {
	if err := execute(ctx, cursor, "DESCRIBE `"+table+"`"); err != nil {
		return nil, err
	}

	columns := make([]source.Column, 0)
	for cursor.HasMore(ctx) {
		var name, columnType, comment string
		cursor.FetchOne(ctx, &name, &columnType, &comment)
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("describing table %q: %w", table, err)
		}

		name = strings.TrimSpace(name)
		// DESCRIBE appends partition information after a separator row.
		if name == "" || strings.HasPrefix(name, "#") {
			break
		}

		columns = append(columns, source.Column{
			Name:    name,
			Type:    strings.TrimSpace(columnType),
			Comment: strings.TrimSpace(comment),
		})
	}

	return columns, nil
}

func (s *hiveSource) fetchRows(ctx context.Context, cursor cursor, table string) ([]map[string]any, error) {
	if err := execute(ctx, cursor, "SELECT * FROM `"+table+"`"); err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0)
	for cursor.HasMore(ctx) {
		row := cursor.RowMap(ctx)
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("fetching rows from %q: %w", table, err)
		}

		rows = append(rows, normalizeRow(row))
	}

	return rows, nil
}

// normalizeRow strips the table qualifier Hive prepends to result column names.
func normalizeRow(row map[string]any) map[string]any {
	normalized := make(map[string]any, len(row))
	for key, value := range row {
		if idx := strings.LastIndex(key, "."); idx >= 0 {
			key = key[idx+1:]
		}

		normalized[key] = value
	}

	return normalized
}

func execute(ctx context.Context, cursor cursor, query string) error {
	cursor.Exec(ctx, query)
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("executing %q: %w", query, err)
	}

	return nil
}
