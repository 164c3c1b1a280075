// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableTitle(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		table         *Table
		expectedTitle string
	}{
		"comment wins over name": {
			table: &Table{
				Schema: Schema{Name: "dws_activity", Comment: "教学活动"},
			},
			expectedTitle: "教学活动",
		},
		"name used when comment is empty": {
			table: &Table{
				Schema: Schema{Name: "dws_activity"},
			},
			expectedTitle: "dws_activity",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expectedTitle, testCase.table.Title())
		})
	}
}

func TestSchemaHeader(t *testing.T) {
	t.Parallel()

	schema := Schema{
		Name: "activities",
		Columns: []Column{
			{Name: "id", Type: "bigint"},
			{Name: "title", Type: "string", Comment: "activity title"},
		},
	}

	assert.Equal(t, "id", schema.Header(0))
	assert.Equal(t, "activity title", schema.Header(1))
	assert.Equal(t, "", schema.Header(2))
	assert.Equal(t, []string{"id", "title"}, schema.ColumnNames())
}
