// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/mapper"
	"github.com/rowmill/rowmill/internal/source"
)

func testTable(tb testing.TB) *source.Table {
	tb.Helper()

	return &source.Table{
		Schema: source.Schema{
			Name:    "activities",
			Comment: "教学活动",
			Columns: []source.Column{
				{Name: "id", Type: "bigint", Comment: "identifier"},
				{Name: "title", Type: "string", Comment: "活动名称"},
				{Name: "score", Type: "string"},
			},
		},
		Rows: []map[string]any{
			{"id": "1", "title": "  seminar  ", "score": "10"},
			{"id": "2", "title": "NULL", "score": "12"},
			{"id": "3", "title": "", "score": ""},
			{"id": "1", "title": "  seminar  ", "score": "10"},
		},
	}
}

func TestFromConfigs(t *testing.T) {
	t.Parallel()

	t.Run("known types build a chain in order", func(t *testing.T) {
		t.Parallel()

		processors, err := FromConfigs([]config.ProcessorConfig{
			{Type: "clean"},
			{Type: "transform"},
			{Type: "coerce"},
			{Type: "stats"},
		})
		require.NoError(t, err)
		require.Len(t, processors, 4)
		assert.Equal(t, "clean", processors[0].Name())
		assert.Equal(t, "transform", processors[1].Name())
		assert.Equal(t, "coerce", processors[2].Name())
		assert.Equal(t, "stats", processors[3].Name())
	})

	t.Run("unknown type returns error", func(t *testing.T) {
		t.Parallel()

		processors, err := FromConfigs([]config.ProcessorConfig{{Type: "shuffle"}})
		assert.Nil(t, processors)
		assert.ErrorIs(t, err, ErrUnknownProcessor)
	})

	t.Run("broken derive template fails at build time", func(t *testing.T) {
		t.Parallel()

		processors, err := FromConfigs([]config.ProcessorConfig{{
			Type:   "transform",
			Derive: map[string]string{"broken": "{{ .open"},
		}})
		assert.Nil(t, processors)
		assert.IsType(t, &mapper.ParsingError{}, err)
	})
}

func TestCleaner(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(config.ProcessorConfig{
		Type:           "clean",
		TrimSpace:      true,
		NullValues:     []string{"NULL"},
		DropEmptyRows:  true,
		DropDuplicates: true,
	})

	original := testTable(t)
	cleaned, err := cleaner.Apply(context.Background(), original)
	require.NoError(t, err)

	require.Len(t, cleaned.Rows, 2)
	assert.Equal(t, "seminar", cleaned.Rows[0]["title"])
	assert.Nil(t, cleaned.Rows[1]["title"])

	// input table untouched
	assert.Len(t, original.Rows, 4)
	assert.Equal(t, "  seminar  ", original.Rows[0]["title"])
}

func TestTransformer(t *testing.T) {
	t.Parallel()

	t.Run("drop rename and comments as headers", func(t *testing.T) {
		t.Parallel()

		transformer, err := NewTransformer(config.ProcessorConfig{
			Type:        "transform",
			UseComments: true,
			Rename:      map[string]string{"id": "activity_id"},
			Drop:        []string{"score"},
		})
		require.NoError(t, err)

		transformed, err := transformer.Apply(context.Background(), testTable(t))
		require.NoError(t, err)

		require.Len(t, transformed.Schema.Columns, 2)
		assert.Equal(t, "activity_id", transformed.Schema.Columns[0].Name)
		assert.Equal(t, "活动名称", transformed.Schema.Columns[1].Name)
		assert.Equal(t, "1", transformed.Rows[0]["activity_id"])
		assert.NotContains(t, transformed.Rows[0], "score")
	})

	t.Run("derived columns appended", func(t *testing.T) {
		t.Parallel()

		transformer, err := NewTransformer(config.ProcessorConfig{
			Type:   "transform",
			Derive: map[string]string{"label": "{{ .id }}-{{ trimSpace .title }}"},
		})
		require.NoError(t, err)

		transformed, err := transformer.Apply(context.Background(), testTable(t))
		require.NoError(t, err)

		require.Len(t, transformed.Schema.Columns, 4)
		assert.Equal(t, "label", transformed.Schema.Columns[3].Name)
		assert.Equal(t, "1-seminar", transformed.Rows[0]["label"])
	})
}

func TestCoercer(t *testing.T) {
	t.Parallel()

	table := &source.Table{
		Schema: source.Schema{
			Name: "mixed",
			Columns: []source.Column{
				{Name: "count"},
				{Name: "ratio"},
				{Name: "active"},
				{Name: "when"},
				{Name: "label"},
			},
		},
		Rows: []map[string]any{
			{"count": "1", "ratio": "1.5", "active": "true", "when": "2024-06-01", "label": "a"},
			{"count": "2", "ratio": "2", "active": "false", "when": "2024-06-02", "label": "2"},
			{"count": nil, "ratio": "-0.5", "active": "true", "when": "2024-06-03", "label": "c"},
		},
	}

	coerced, err := NewCoercer(config.ProcessorConfig{Type: "coerce"}).Apply(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, int64(1), coerced.Rows[0]["count"])
	assert.Nil(t, coerced.Rows[2]["count"])
	assert.Equal(t, 1.5, coerced.Rows[0]["ratio"])
	assert.Equal(t, 2.0, coerced.Rows[1]["ratio"])
	assert.Equal(t, true, coerced.Rows[0]["active"])
	assert.Equal(t, "a", coerced.Rows[0]["label"], "mixed column stays string")
	assert.IsType(t, coerced.Rows[0]["when"], coerced.Rows[1]["when"])
}

func TestStats(t *testing.T) {
	t.Parallel()

	table := &source.Table{
		Schema: source.Schema{
			Name:    "scores",
			Columns: []source.Column{{Name: "score"}},
		},
		Rows: []map[string]any{
			{"score": "10"},
			{"score": "11"},
			{"score": "9"},
			{"score": "10"},
			{"score": "1000"},
		},
	}

	t.Run("summary only keeps rows", func(t *testing.T) {
		t.Parallel()

		output, err := NewStats(config.ProcessorConfig{Type: "stats"}).Apply(context.Background(), table)
		require.NoError(t, err)
		assert.Len(t, output.Rows, 5)
	})

	t.Run("outliers dropped by zscore", func(t *testing.T) {
		t.Parallel()

		output, err := NewStats(config.ProcessorConfig{
			Type:         "stats",
			Columns:      []string{"score"},
			ZScore:       1.5,
			DropOutliers: true,
		}).Apply(context.Background(), table)
		require.NoError(t, err)

		require.Len(t, output.Rows, 4)
		for _, row := range output.Rows {
			assert.NotEqual(t, "1000", row["score"])
		}
	})
}
