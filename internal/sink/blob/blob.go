// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

// Package blob implements the Azure Blob Storage sink. Tables are rendered to
// CSV and uploaded to a container configured through environment variables.
package blob

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/caarlos0/env/v11"

	"github.com/rowmill/rowmill/internal/logger"
	"github.com/rowmill/rowmill/internal/sink"
	"github.com/rowmill/rowmill/internal/sink/csvfile"
	"github.com/rowmill/rowmill/internal/source"
	"github.com/rowmill/rowmill/internal/strutil"
)

const loggerName = "rowmill:sink:blob"

// ErrEnvVariablesNotValid wraps failures reading the sink configuration.
var ErrEnvVariablesNotValid = errors.New("environment variables not valid")

var _ sink.Writer = &blobSink{}

// blobConfig is read from the environment; the connection string carries the
// account credentials so no further identity setup is needed.
type blobConfig struct {
	ConnectionString string `env:"AZURE_STORAGE_CONNECTION_STRING,required"`
	Container        string `env:"AZURE_STORAGE_CONTAINER,required"`
	NullValue        string `env:"AZURE_STORAGE_NULL_VALUE"`
}

type blobSink struct {
	config blobConfig
	client uploader
}

// uploader abstracts the azblob client so tests can record uploads.
type uploader interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// NewSink returns a sink.Writer uploading tables to Azure Blob Storage.
// Its configuration is read from environment variables; a non empty
// container overrides the configured one.
func NewSink(container string) (sink.Writer, error) {
	var config blobConfig
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}

	if container != "" {
		config.Container = container
	}

	client, err := azblob.NewClientFromConnectionString(config.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &blobSink{
		config: config,
		client: client,
	}, nil
}

func (s *blobSink) WriteTable(ctx context.Context, table *source.Table) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	blobName := strutil.SanitizeFilename(table.Title())
	if blobName == "" {
		blobName = table.Schema.Name
	}
	blobName += ".csv"

	buffer, err := renderCSV(table, s.config.NullValue)
	if err != nil {
		return err
	}

	if _, err := s.client.UploadBuffer(ctx, s.config.Container, blobName, buffer, nil); err != nil {
		return fmt.Errorf("uploading blob %q: %w", blobName, err)
	}

	log.Info("table uploaded", "table", table.Schema.Name, "container", s.config.Container, "blob", blobName)
	return nil
}

func renderCSV(table *source.Table, nullValue string) ([]byte, error) {
	buffer := new(bytes.Buffer)
	writer := csv.NewWriter(buffer)

	columnNames := table.Schema.ColumnNames()
	if err := writer.Write(columnNames); err != nil {
		return nil, err
	}

	for _, row := range table.Rows {
		record := make([]string, len(columnNames))
		for i, name := range columnNames {
			record[i] = csvfile.CellString(row[name], nullValue)
		}

		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
