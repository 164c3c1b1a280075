// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package server contains the HTTP server used by the serve command.
// It sets up the Fiber application, configures middleware for logging,
// and defines routes for health checks and service status.
package server
