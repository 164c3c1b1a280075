// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowmill/rowmill/internal/source"
)

type recordingUploader struct {
	container string
	blobName  string
	buffer    []byte
}

func (r *recordingUploader) UploadBuffer(_ context.Context, containerName string, blobName string, buffer []byte, _ *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
	r.container = containerName
	r.blobName = blobName
	r.buffer = buffer
	return azblob.UploadBufferResponse{}, nil
}

func TestNewSinkEnvValidation(t *testing.T) {
	blobSink, err := NewSink("")
	assert.Nil(t, blobSink)
	assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
}

func TestBlobSinkWriteTable(t *testing.T) {
	t.Parallel()

	uploader := &recordingUploader{}
	testSink := &blobSink{
		config: blobConfig{Container: "exports", NullValue: "N/A"},
		client: uploader,
	}

	require.NoError(t, testSink.WriteTable(context.Background(), &source.Table{
		Schema: source.Schema{
			Name:    "users",
			Comment: "platform users",
			Columns: []source.Column{{Name: "id"}, {Name: "name"}},
		},
		Rows: []map[string]any{
			{"id": int64(1), "name": "ada"},
			{"id": int64(2), "name": nil},
		},
	}))

	assert.Equal(t, "exports", uploader.container)
	assert.Equal(t, "platform users.csv", uploader.blobName)
	assert.Equal(t, "id,name\n1,ada\n2,N/A\n", string(uploader.buffer))
}
