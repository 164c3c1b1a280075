// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowmill/rowmill/internal/config"
	"github.com/rowmill/rowmill/internal/processor"
	fakesink "github.com/rowmill/rowmill/internal/sink/fake"
	"github.com/rowmill/rowmill/internal/source"
	fakesource "github.com/rowmill/rowmill/internal/source/fake"
)

func tableFixture(name string, rows ...map[string]any) *source.Table {
	return &source.Table{
		Schema: source.Schema{
			Name: name,
			Columns: []source.Column{
				{Name: "id"},
				{Name: "value"},
			},
		},
		Rows: rows,
	}
}

func TestRunPipeline(t *testing.T) {
	t.Parallel()

	table1 := tableFixture("table1", map[string]any{"id": "1", "value": " a "})
	table2 := tableFixture("table2", map[string]any{"id": "2", "value": "b"})

	testCases := map[string]struct {
		source           any
		processors       []config.ProcessorConfig
		sinkErr          error
		expectedErr      error
		expectedSummary  Summary
		expectedWritten  int
		expectedFirstVal any
	}{
		"unsupported source error": {
			source:      "not a valid source",
			expectedErr: errors.ErrUnsupported,
		},
		"source returns an error after emitting": {
			source:      fakesource.NewTableSourceWithError(t, []*source.Table{table1}, assert.AnError),
			expectedErr: assert.AnError,
			expectedSummary: Summary{
				Exported: 1,
			},
			expectedWritten:  1,
			expectedFirstVal: " a ",
		},
		"tables flow through processors to the sink": {
			source: fakesource.NewTableSource(t, []*source.Table{table1, table2}),
			processors: []config.ProcessorConfig{
				{Type: "clean", TrimSpace: true},
			},
			expectedSummary: Summary{
				Exported: 2,
			},
			expectedWritten:  2,
			expectedFirstVal: "a",
		},
		"tables the source could not read are counted": {
			source: fakesource.NewTableSourceWithFailedTables(t, []*source.Table{table1}, []string{"t_orders"}),
			expectedSummary: Summary{
				Exported:     1,
				Failed:       1,
				FailedTables: []string{"t_orders"},
			},
			expectedWritten:  1,
			expectedFirstVal: " a ",
		},
		"sink failures are counted and do not stop the run": {
			source:  fakesource.NewTableSource(t, []*source.Table{table1, table2}),
			sinkErr: assert.AnError,
			expectedSummary: Summary{
				Failed:       2,
				FailedTables: []string{"table1", "table2"},
			},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			processors, err := processor.FromConfigs(testCase.processors)
			require.NoError(t, err)

			testSink := fakesink.NewSink(t)
			if testCase.sinkErr != nil {
				testSink = fakesink.NewSinkWithError(t, testCase.sinkErr)
			}

			pipeline := New(testCase.source, processors, testSink)
			summary, err := pipeline.Run(context.Background())

			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, testCase.expectedSummary, summary)

			written := testSink.Tables()
			require.Len(t, written, testCase.expectedWritten)
			if testCase.expectedWritten > 0 {
				assert.Equal(t, testCase.expectedFirstVal, written[0].Rows[0]["value"])
			}
		})
	}
}

func TestStreamPipeline(t *testing.T) {
	t.Parallel()

	t.Run("unsupported source", func(t *testing.T) {
		t.Parallel()

		pipeline := New("not a stream", nil, fakesink.NewSink(t))
		err := pipeline.Stream(context.Background())
		assert.ErrorIs(t, err, errors.ErrUnsupported)
	})

	t.Run("streamed tables reach the sink", func(t *testing.T) {
		t.Parallel()

		streamSource := fakesource.NewStreamSource(t)
		testSink := fakesink.NewSink(t)
		pipeline := New(streamSource, nil, testSink)

		ctx, cancel := context.WithCancel(context.Background())
		streamDone := make(chan error)
		go func() {
			streamDone <- pipeline.Stream(ctx)
		}()

		streamSource.Push(tableFixture("streamed", map[string]any{"id": "1", "value": "x"}))

		assert.Eventually(t, func() bool {
			return len(testSink.Tables()) == 1
		}, time.Second, 10*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-streamDone, context.Canceled)
	})
}

func TestStopPipeline(t *testing.T) {
	t.Parallel()

	t.Run("closable source and sink are closed", func(t *testing.T) {
		t.Parallel()

		tableSource := fakesource.NewTableSource(t, nil)
		testSink := fakesink.NewSink(t)
		pipeline := New(tableSource, nil, testSink)
		assert.NoError(t, pipeline.Stop(context.Background(), time.Second))
		assert.True(t, testSink.Closed())
	})

	t.Run("non closable source is a no-op", func(t *testing.T) {
		t.Parallel()

		pipeline := New("plain source", nil, fakesink.NewSink(t))
		assert.NoError(t, pipeline.Stop(context.Background(), time.Second))
	})
}
