// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline provides the core building blocks to create and manage
// data processing pipelines.
// A pipeline is composed of a source, a chain of processors and a sink.
package pipeline
