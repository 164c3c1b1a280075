// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJobFile(tb testing.TB, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "jobs.yaml")
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewJobsFromPath(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		jobs, err := NewJobsFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Nil(t, jobs)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("multiple documents are all parsed", func(t *testing.T) {
		t.Parallel()

		path := writeJobFile(t, `name: export-activities
source:
  type: hive
  database: dws
  tablePrefix: dws_teaching_
processors:
- type: clean
  trimSpace: true
  nullValues: ["NULL", "\\N"]
- type: transform
  useComments: true
sink:
  type: excel
  outputDir: out
---
name: convert-files
source:
  type: file
  paths:
  - input/data.csv
sink:
  type: csv
  outputDir: out
`)

		jobs, err := NewJobsFromPath(path)
		require.NoError(t, err)
		require.Len(t, jobs, 2)

		assert.Equal(t, "export-activities", jobs[0].Name)
		assert.Equal(t, "hive", jobs[0].Source.Type)
		assert.Equal(t, "dws_teaching_", jobs[0].Source.TablePrefix)
		require.Len(t, jobs[0].Processors, 2)
		assert.True(t, jobs[0].Processors[0].TrimSpace)
		assert.Equal(t, []string{"NULL", `\N`}, jobs[0].Processors[0].NullValues)
		assert.Equal(t, "excel", jobs[0].Sink.Type)

		assert.Equal(t, "convert-files", jobs[1].Name)
		assert.Equal(t, []string{"input/data.csv"}, jobs[1].Source.Paths)
	})

	t.Run("empty documents are skipped", func(t *testing.T) {
		t.Parallel()

		path := writeJobFile(t, `---
name: only-job
source:
  type: mysql
sink:
  type: stdout
---
`)

		jobs, err := NewJobsFromPath(path)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "only-job", jobs[0].Name)
	})

	t.Run("missing required fields", func(t *testing.T) {
		t.Parallel()

		path := writeJobFile(t, `name: ""
source:
  type: ""
sink:
  type: ""
`)

		jobs, err := NewJobsFromPath(path)
		assert.Nil(t, jobs)
		assert.ErrorIs(t, err, ErrParsing)
		assert.ErrorContains(t, err, "name, source.type, sink.type")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()

		path := writeJobFile(t, `name: job
source:
  type: hive
  unknownKey: true
sink:
  type: excel
`)

		jobs, err := NewJobsFromPath(path)
		assert.Nil(t, jobs)
		assert.ErrorIs(t, err, ErrParsing)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := writeJobFile(t, "\tname: broken")

		jobs, err := NewJobsFromPath(path)
		assert.Nil(t, jobs)
		assert.ErrorIs(t, err, ErrParsing)
	})
}
