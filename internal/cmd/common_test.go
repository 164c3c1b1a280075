// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowmill/rowmill/internal/config"
)

func TestCollectPaths(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(baseDir, "jobs", "subdir"), os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "jobs", "first.yaml"), []byte("job"), os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "jobs", "second.yaml"), []byte("job"), os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "jobs", "subdir", "nested.yaml"), []byte("job"), os.ModePerm))

	testCases := map[string]struct {
		paths         []string
		expectedPaths []string
		expectedError bool
	}{
		"nil paths": {
			expectedPaths: []string{},
		},
		"single file": {
			paths:         []string{filepath.Join(baseDir, "jobs", "first.yaml")},
			expectedPaths: []string{filepath.Join(baseDir, "jobs", "first.yaml")},
		},
		"directory is walked without recursion": {
			paths: []string{filepath.Join(baseDir, "jobs")},
			expectedPaths: []string{
				filepath.Join(baseDir, "jobs", "first.yaml"),
				filepath.Join(baseDir, "jobs", "second.yaml"),
			},
		},
		"missing path": {
			paths:         []string{filepath.Join(baseDir, "missing")},
			expectedError: true,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			paths, err := collectPaths(testCase.paths)
			if testCase.expectedError {
				require.Error(t, err)
				assert.Nil(t, paths)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expectedPaths, paths)
		})
	}
}

func TestSourceFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("file source", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), os.ModePerm))

		src, err := sourceFromConfig(context.Background(), config.SourceConfig{Type: "file", Paths: []string{path}})
		require.NoError(t, err)
		assert.NotNil(t, src)
	})

	t.Run("webhook source", func(t *testing.T) {
		t.Parallel()

		src, err := sourceFromConfig(context.Background(), config.SourceConfig{Type: "webhook"})
		require.NoError(t, err)
		assert.NotNil(t, src)
	})

	t.Run("unknown source type", func(t *testing.T) {
		t.Parallel()

		src, err := sourceFromConfig(context.Background(), config.SourceConfig{Type: "mongo"})
		require.ErrorIs(t, err, errInvalidSource)
		assert.Nil(t, src)
	})
}

func TestSinkFromConfig(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		config        config.SinkConfig
		expectedError error
	}{
		"excel sink":  {config: config.SinkConfig{Type: "excel", OutputDir: "out"}},
		"csv sink":    {config: config.SinkConfig{Type: "csv", OutputDir: "out"}},
		"text sink":   {config: config.SinkConfig{Type: "text", OutputDir: "out"}},
		"stdout sink": {config: config.SinkConfig{Type: "stdout"}},
		"unknown sink": {
			config:        config.SinkConfig{Type: "parquet"},
			expectedError: errInvalidSink,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dst, err := sinkFromConfig(testCase.config, os.Stdout)
			if testCase.expectedError != nil {
				require.ErrorIs(t, err, testCase.expectedError)
				assert.Nil(t, dst)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, dst)
		})
	}
}
