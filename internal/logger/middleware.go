// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	forwardedHostHeaderKey = "x-forwarded-host"
	forwardedForHeaderKey  = "x-forwarded-for"
	requestIDHeaderName    = "x-request-id"

	IncomingRequestMessage  = "incoming request"
	RequestCompletedMessage = "request completed"
)

// httpLog is the struct of the request log entry.
type httpLog struct {
	Request  *requestLog  `json:"request,omitempty"`
	Response *responseLog `json:"response,omitempty"`
}

// requestLog contains the items of request info log.
type requestLog struct {
	Method    string `json:"method,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// responseLog contains the items of response info log.
type responseLog struct {
	StatusCode int `json:"statusCode,omitempty"`
	Bytes      int `json:"bytes,omitempty"`
}

// hostLog has the host information.
type hostLog struct {
	Hostname      string `json:"hostname,omitempty"`
	ForwardedHost string `json:"forwardedHost,omitempty"`
	IP            string `json:"ip,omitempty"`
}

func removePort(host string) string {
	return strings.Split(host, ":")[0]
}

// requestID returns the id from the x-request-id header or generates a new one.
func requestID(c *fiber.Ctx) string {
	if id := c.Get(requestIDHeaderName, ""); id != "" {
		return id
	}

	id, err := uuid.NewRandom()
	if err != nil {
		panic(fmt.Errorf("error generating request id: %w", err))
	}
	return id.String()
}

func statusCode(c *fiber.Ctx, handlerErr error) int {
	if fiberErr, ok := handlerErr.(*fiber.Error); handlerErr != nil && ok {
		return fiberErr.Code
	}

	return c.Response().StatusCode()
}

// RequestMiddlewareLogger is a fiber middleware to log all requests.
// It logs the incoming request and when request is completed, adding latency of the request.
func RequestMiddlewareLogger(logger Logger, excludedPrefix []string) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		path := string(c.Request().URI().RequestURI())
		for _, prefix := range excludedPrefix {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()

		requestLogger := logger.WithName("request").WithName(requestID(c))
		ctx := WithContext(c.UserContext(), requestLogger)
		c.SetUserContext(ctx)

		host := hostLog{
			Hostname:      removePort(string(c.Request().Host())),
			ForwardedHost: c.Get(forwardedHostHeaderKey, ""),
			IP:            c.Get(forwardedForHeaderKey, ""),
		}

		requestLogger.Trace(IncomingRequestMessage,
			"http", httpLog{
				Request: &requestLog{
					Method:    c.Method(),
					UserAgent: c.Get(fiber.HeaderUserAgent, ""),
				},
			},
			"path", path,
			"host", host,
		)

		err := c.Next()

		requestLogger.Info(RequestCompletedMessage,
			"http", httpLog{
				Request: &requestLog{
					Method:    c.Method(),
					UserAgent: c.Get(fiber.HeaderUserAgent, ""),
				},
				Response: &responseLog{
					StatusCode: statusCode(c, err),
					Bytes:      len(c.Response().Body()),
				},
			},
			"path", path,
			"host", host,
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return err
	}
}
