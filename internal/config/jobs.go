// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	NameField       = "name"
	SourceTypeField = "source.type"
	SinkTypeField   = "sink.type"
)

// ErrParsing reports failures that occur while decoding job files.
var ErrParsing = errors.New("error parsing")

// Job holds the configuration of a single pipeline run: where the tables come
// from, how they are processed, and where they are written.
type Job struct {
	Name       string            `json:"name" yaml:"name"`
	Source     SourceConfig      `json:"source" yaml:"source"`
	Processors []ProcessorConfig `json:"processors,omitempty" yaml:"processors,omitempty"`
	Sink       SinkConfig        `json:"sink" yaml:"sink"`
}

// SourceConfig selects and configures the job source.
type SourceConfig struct {
	// Type is one of hive, mysql, file, webhook.
	Type string `json:"type" yaml:"type"`
	// Database restricts database sources to a single schema.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	// TablePrefix restricts database sources to tables with this name prefix.
	TablePrefix string `json:"tablePrefix,omitempty" yaml:"tablePrefix,omitempty"`
	// Tables restricts database sources to an explicit table list.
	Tables []string `json:"tables,omitempty" yaml:"tables,omitempty"`
	// Paths lists the input files for the file source.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// ProcessorConfig configures one step of the processor chain. The set of
// meaningful fields depends on Type.
type ProcessorConfig struct {
	// Type is one of clean, transform, coerce, stats.
	Type string `json:"type" yaml:"type"`

	// clean options
	TrimSpace      bool     `json:"trimSpace,omitempty" yaml:"trimSpace,omitempty"`
	NullValues     []string `json:"nullValues,omitempty" yaml:"nullValues,omitempty"`
	DropEmptyRows  bool     `json:"dropEmptyRows,omitempty" yaml:"dropEmptyRows,omitempty"`
	DropDuplicates bool     `json:"dropDuplicates,omitempty" yaml:"dropDuplicates,omitempty"`

	// transform options
	UseComments bool              `json:"useComments,omitempty" yaml:"useComments,omitempty"`
	Rename      map[string]string `json:"rename,omitempty" yaml:"rename,omitempty"`
	Drop        []string          `json:"drop,omitempty" yaml:"drop,omitempty"`
	Derive      map[string]string `json:"derive,omitempty" yaml:"derive,omitempty"`

	// coerce and stats options
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`

	// stats options
	ZScore       float64 `json:"zscore,omitempty" yaml:"zscore,omitempty"`
	DropOutliers bool    `json:"dropOutliers,omitempty" yaml:"dropOutliers,omitempty"`
}

// SinkConfig selects and configures the job sink.
type SinkConfig struct {
	// Type is one of excel, csv, text, blob, stdout.
	Type string `json:"type" yaml:"type"`
	// OutputDir is the destination directory for file sinks.
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	// Container overrides the configured storage container for the blob sink.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`
	// NullValue is the cell content written in place of nil values.
	NullValue string `json:"nullValue,omitempty" yaml:"nullValue,omitempty"`
}

// NewJobsFromPath parses the file at path and returns any job configurations
// it contains. It reports failures encountered while reading or decoding the data.
func NewJobsFromPath(path string) ([]*Job, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	jobs := make([]*Job, 0)

	// Continue parsing until the end of the file.
	for {
		job := new(Job)
		err := decoder.Decode(&job)
		if err != nil {
			// End of file reached, stop parsing.
			if errors.Is(err, io.EOF) {
				break
			}

			// A different parsing error occurred; return it.
			return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
		}

		// Skip empty documents.
		if job == nil {
			continue
		}

		missingFields := []string{}
		if job.Name == "" {
			missingFields = append(missingFields, NameField)
		}
		if job.Source.Type == "" {
			missingFields = append(missingFields, SourceTypeField)
		}
		if job.Sink.Type == "" {
			missingFields = append(missingFields, SinkTypeField)
		}

		if len(missingFields) > 0 {
			return nil, fmt.Errorf("%w %q: missing required fields: %v", ErrParsing, path, strings.Join(missingFields, ", "))
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
