// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "errors"

// unsupportedSourceError signals that the configured source does not implement the required capability.
type unsupportedSourceError struct {
	Message string
}

func (e *unsupportedSourceError) Error() string {
	return e.Message
}

func (e *unsupportedSourceError) Unwrap() error {
	return errors.ErrUnsupported
}
