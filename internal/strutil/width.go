// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package strutil holds string helpers shared by exporters: display width
// measurement for column sizing and file name sanitizing.
package strutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wideRanges covers the scripts rendered as double-width cells by
// spreadsheet applications and terminals.
var wideRanges = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hangul,
	unicode.Hiragana,
	unicode.Katakana,
}

// DisplayWidth returns the rendered width of s, counting CJK characters
// as two columns and everything else as one.
func DisplayWidth(s string) int {
	width := 0
	for _, r := range s {
		if unicode.IsOneOf(wideRanges, r) || (r >= 0xFF00 && r <= 0xFF60) {
			width += 2
			continue
		}
		width++
	}

	return width
}

const maxFilenameLength = 255

// SanitizeFilename removes characters that are not valid in file names on
// common filesystems and truncates the result to a safe length.
func SanitizeFilename(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		return r
	}, name)

	if len(sanitized) > maxFilenameLength {
		cut := maxFilenameLength
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut]
	}

	return sanitized
}
