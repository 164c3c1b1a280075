// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package functions collects the helpers exposed to mapper templates.
package functions

import "text/template"

// FuncMap returns the function map registered on every mapper template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"quote":      Quote,
		"trimSpace":  TrimSpace,
		"trimPrefix": TrimPrefix,
		"trimSuffix": TrimSuffix,
		"replace":    Replace,
		"toUpper":    ToUpper,
		"toLower":    ToLower,
		"truncate":   Truncate,
		"now":        Now,
		"uuidv4":     UUIDV4,
		"uuidv7":     UUIDV7,
	}
}
