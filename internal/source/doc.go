// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package source defines the contracts and helpers used to implement rowmill data sources.
// Sources expose batch exports, table streams, webhooks setup and optional shutdown semantics
// through shared interfaces.
package source
