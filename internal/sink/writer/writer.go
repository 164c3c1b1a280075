// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package writer implements a sink that dumps tables to an io.Writer in a
// human readable form. The CLI uses it for the --local-output mode.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/source"
)

var _ sink.Writer = &writerSink{}

type writerSink struct {
	writer io.Writer

	lock sync.Mutex
}

// NewSink returns a sink.Writer printing every table to w.
func NewSink(w io.Writer) sink.Writer {
	return &writerSink{
		writer: w,
	}
}

func (s *writerSink) WriteTable(_ context.Context, table *source.Table) error {
	builder := new(strings.Builder)

	builder.WriteString("Table:\n")
	builder.WriteString("\tName: " + table.Schema.Name + "\n")
	if table.Schema.Comment != "" {
		builder.WriteString("\tComment: " + table.Schema.Comment + "\n")
	}
	builder.WriteString(fmt.Sprintf("\tRows: %d\n", len(table.Rows)))
	builder.WriteString("\tData:\n\t\t")

	encoder := json.NewEncoder(builder)
	encoder.SetIndent("\t\t", "\t")
	if err := encoder.Encode(table.Rows); err != nil {
		return err
	}
	builder.WriteString("\n")

	s.lock.Lock()
	defer s.lock.Unlock()
	fmt.Fprint(s.writer, builder.String())
	return nil
}
