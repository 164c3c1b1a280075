// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"net/http"
)

// WebhookHandler processes the raw body of an incoming webhook request.
type WebhookHandler func(ctx context.Context, headers http.Header, body []byte) error

// Webhook describes an HTTP route that a source needs registered on the server.
type Webhook struct {
	Method  string
	Path    string
	Handler WebhookHandler
}

// WebhookSource defines the interface for a data source fed through HTTP routes.
type WebhookSource interface {
	// Webhooks returns the routes to register on the HTTP server.
	Webhooks() []Webhook
}
