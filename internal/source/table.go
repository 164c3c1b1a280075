// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package source

// Column describes a single column of a table.
type Column struct {
	// Name is the physical column name.
	Name string `json:"name"`
	// Type is the column type as reported by the source, free form.
	Type string `json:"type,omitempty"`
	// Comment is the human readable column description, when the source has one.
	Comment string `json:"comment,omitempty"`
}

// Schema describes the identity and shape of a table emitted by a source.
type Schema struct {
	// Name is the table name at the source.
	Name string `json:"name"`
	// Comment is the table description; exporters prefer it over Name when present.
	Comment string `json:"comment,omitempty"`
	// Columns holds the ordered column list.
	Columns []Column `json:"columns"`
}

// Table is the unit of data flowing through a pipeline. Row values are keyed
// by column Name; nil represents a missing value or SQL NULL.
type Table struct {
	Schema Schema           `json:"schema"`
	Rows   []map[string]any `json:"rows"`
}

// Title returns the display name for the table: the comment when available,
// otherwise the table name.
func (t *Table) Title() string {
	if t.Schema.Comment != "" {
		return t.Schema.Comment
	}

	return t.Schema.Name
}

// Header returns the display header for column at index i: the column comment
// when available, otherwise the column name.
func (s Schema) Header(i int) string {
	if i < 0 || i >= len(s.Columns) {
		return ""
	}

	if comment := s.Columns[i].Comment; comment != "" {
		return comment
	}

	return s.Columns[i].Name
}

// ColumnNames returns the ordered physical column names.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, column := range s.Columns {
		names[i] = column.Name
	}

	return names
}
