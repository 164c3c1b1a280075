// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package webhook implements a source fed by HTTP. Tables arrive as JSON
// payloads on a registered route and are forwarded to the running stream.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/source"
)

const loggerName = "rowmill:source:webhook"

// ErrInvalidPayload wraps malformed table payloads received on the webhook.
var ErrInvalidPayload = errors.New("invalid table payload")

var _ source.StreamSource = &Source{}
var _ source.WebhookSource = &Source{}
var _ source.ClosableSource = &Source{}

// Source implements both source.StreamSource and source.WebhookSource.
type Source struct {
	tables chan *source.Table
	done   chan struct{}
}

// tablePayload is the body accepted on the tables route.
type tablePayload struct {
	Name    string           `json:"name"`
	Comment string           `json:"comment"`
	Columns []source.Column  `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// NewSource creates a webhook source buffering up to bufferSize tables
// between the HTTP handler and the stream consumer.
func NewSource(bufferSize int) *Source {
	if bufferSize < 1 {
		bufferSize = 1
	}

	return &Source{
		tables: make(chan *source.Table, bufferSize),
		done:   make(chan struct{}),
	}
}

// Webhooks implement source.WebhookSource interface.
func (s *Source) Webhooks() []source.Webhook {
	return []source.Webhook{
		{
			Method:  http.MethodPost,
			Path:    "/v1/tables",
			Handler: s.handleTable,
		},
	}
}

// StartStream implement source.StreamSource interface. It forwards every
// received table on results until the context ends or the source is closed.
func (s *Source) StartStream(ctx context.Context, results chan<- *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Info("webhook stream started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case table := <-s.tables:
			results <- table
		}
	}
}

// Close implement source.ClosableSource interface.
func (s *Source) Close(ctx context.Context, _ time.Duration) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("closing webhook source")

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	return nil
}

func (s *Source) handleTable(ctx context.Context, _ http.Header, body []byte) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	payload := new(tablePayload)
	if err := json.Unmarshal(body, payload); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err.Error())
	}

	if payload.Name == "" {
		return fmt.Errorf("%w: missing table name", ErrInvalidPayload)
	}

	table := &source.Table{
		Schema: source.Schema{
			Name:    payload.Name,
			Comment: payload.Comment,
			Columns: payload.Columns,
		},
		Rows: payload.Rows,
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return errors.New("webhook source is closed")
	case s.tables <- table:
		log.Debug("table received", "table", payload.Name, "rows", len(payload.Rows))
		return nil
	}
}
