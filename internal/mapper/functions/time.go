// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package functions

import "time"

var nowFn = time.Now

// Now returns the current time in UTC in RFC3339 format.
func Now() string {
	return nowFn().UTC().Format(time.RFC3339)
}
