package service

import (
	"context"
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage(t *testing.T) {
	payload := []byte("jpeg bytes here")
	encoded := base64.StdEncoding.EncodeToString(payload)

	data, err := DecodeImage(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// A data-URI prefix is tolerated.
	data, err = DecodeImage("data:image/jpeg;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = DecodeImage("not base64 at all!!!")
	assert.Error(t, err)

	_, err = DecodeImage("")
	assert.Error(t, err)
}

func TestWriteTempRoundTrip(t *testing.T) {
	photos := NewPhotoService(nil)
	payload := []byte("jpeg bytes here")
	encoded := base64.StdEncoding.EncodeToString(payload)

	path, data, cleanup, err := photos.WriteTemp(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, written)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteTempRejectsBadPayload(t *testing.T) {
	photos := NewPhotoService(nil)

	_, _, cleanup, err := photos.WriteTemp("@@@ definitely not base64")
	assert.Error(t, err)
	assert.Nil(t, cleanup)
}

func TestArchiveNoopWithoutS3(t *testing.T) {
	photos := NewPhotoService(nil)
	photos.Archive(context.Background(), "scan-1", []byte("data"))

	_, err := photos.ArchiveURL(context.Background(), "scan-1")
	assert.Error(t, err)
}
