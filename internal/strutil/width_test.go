// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package strutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayWidth(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input         string
		expectedWidth int
	}{
		"empty string": {
			input:         "",
			expectedWidth: 0,
		},
		"ascii only": {
			input:         "table_name",
			expectedWidth: 10,
		},
		"chinese characters count double": {
			input:         "教学活动",
			expectedWidth: 8,
		},
		"mixed ascii and chinese": {
			input:         "表信息 info",
			expectedWidth: 11,
		},
		"fullwidth punctuation": {
			input:         "（）",
			expectedWidth: 4,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expectedWidth, DisplayWidth(testCase.input))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input    string
		expected string
	}{
		"clean name untouched": {
			input:    "activity_report",
			expected: "activity_report",
		},
		"illegal characters removed": {
			input:    `a<b>c:d"e/f\g|h?i*j`,
			expected: "abcdefghij",
		},
		"long name truncated": {
			input:    strings.Repeat("x", 300),
			expected: strings.Repeat("x", 255),
		},
		"truncation keeps multibyte characters whole": {
			input:    "x" + strings.Repeat("汉", 100),
			expected: "x" + strings.Repeat("汉", 84),
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, SanitizeFilename(testCase.input))
		})
	}
}
