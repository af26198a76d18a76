package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/storage"
)

const mib = 1024 * 1024

func imageBytes(mimeType string, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	var header []byte
	switch mimeType {
	case "image/jpeg":
		header = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	case "image/png":
		header = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	case "image/gif":
		header = []byte("GIF89a")
	}
	copy(data, header)
	return data
}

func upload(filename, mimeType string, data []byte) ImageUpload {
	return ImageUpload{Filename: filename, Size: int64(len(data)), MimeType: mimeType, Content: bytes.NewReader(data)}
}

type memoryBlobStore struct {
	blobs  map[string]*storage.Blob
	putErr error
	puts   int
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string]*storage.Blob)}
}

func (m *memoryBlobStore) Put(data []byte, mimeType string) (string, error) {
	m.puts++
	if m.putErr != nil {
		return "", m.putErr
	}
	address := "blob-" + string(rune('a'+len(m.blobs)))
	m.blobs[address] = &storage.Blob{Data: append([]byte(nil), data...), MimeType: mimeType}
	return address, nil
}

func (m *memoryBlobStore) Get(address string) (*storage.Blob, error) {
	blob, ok := m.blobs[address]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return blob, nil
}

func requireCode(t *testing.T, err error, expected *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	assert.Equal(t, expected.Code, appErr.Code)
	assert.Equal(t, expected.Status, appErr.Status)
}

func TestImageServiceSizeLimit(t *testing.T) {
	svc := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{})

	_, err := svc.Ingest(context.Background(), upload("big.jpg", "image/jpeg", imageBytes("image/jpeg", 6*mib)))
	requireCode(t, err, appErrors.ErrValidation)

	image, err := svc.Ingest(context.Background(), upload("ok.jpg", "image/jpeg", imageBytes("image/jpeg", 4*mib)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", image.MimeType)
	assert.EqualValues(t, 4*mib, image.SizeBytes)
}

func TestImageServiceEnforcesLimitWhenSizeUnderreported(t *testing.T) {
	svc := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{MaxFileSize: 1024})
	data := imageBytes("image/png", 2048)

	_, err := svc.Ingest(context.Background(), ImageUpload{Filename: "a.png", Size: 10, MimeType: "image/png", Content: bytes.NewReader(data)})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestImageServiceRejectsRenamedText(t *testing.T) {
	store := newMemoryBlobStore()
	svc := NewImageService(store, nil, nil, ImageServiceConfig{})

	_, err := svc.Ingest(context.Background(), upload("notes.jpg", "image/jpeg", []byte("just some plain text, not a picture\n")))
	requireCode(t, err, appErrors.ErrValidation)
	assert.Zero(t, store.puts)
}

func TestImageServiceRejectsDisallowedTypes(t *testing.T) {
	svc := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{})
	png := imageBytes("image/png", 128)

	cases := []struct {
		name   string
		upload ImageUpload
	}{
		{name: "extension", upload: upload("photo.bmp", "image/png", png)},
		{name: "declared mime", upload: upload("photo.png", "application/octet-stream", png)},
		{name: "declared and sniffed disagree", upload: upload("photo.gif", "image/gif", png)},
		{name: "empty", upload: upload("photo.png", "image/png", nil)},
		{name: "missing", upload: ImageUpload{Filename: "photo.png", MimeType: "image/png"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), tc.upload)
			requireCode(t, err, appErrors.ErrValidation)
		})
	}
}

func TestImageServiceAcceptsJpgAlias(t *testing.T) {
	svc := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{})

	image, err := svc.Ingest(context.Background(), upload("photo.JPEG", "image/jpg", imageBytes("image/jpeg", 256)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", image.MimeType)
}

func TestImageServiceRoundTripOnDisk(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewImageService(store, NewMetricsService(), nil, ImageServiceConfig{})

	for _, mimeType := range []string{"image/jpeg", "image/png", "image/gif"} {
		original := imageBytes(mimeType, 64*1024)
		ext := map[string]string{"image/jpeg": "a.jpg", "image/png": "a.png", "image/gif": "a.gif"}[mimeType]

		image, err := svc.Ingest(context.Background(), upload(ext, mimeType, original))
		require.NoError(t, err)

		content, err := svc.Open(context.Background(), *image)
		require.NoError(t, err)
		assert.Equal(t, mimeType, content.MimeType)
		assert.True(t, bytes.Equal(original, content.Data))
	}
}

func TestImageServiceOpenMissingBlob(t *testing.T) {
	svc := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{})

	_, err := svc.Open(context.Background(), models.Image{Path: "nope", MimeType: "image/png"})
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = svc.Open(context.Background(), models.Image{})
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestImageServiceBlobWriteFailureIsRetryable(t *testing.T) {
	store := newMemoryBlobStore()
	store.putErr = errors.New("disk full")
	svc := NewImageService(store, nil, nil, ImageServiceConfig{})

	_, err := svc.Ingest(context.Background(), upload("a.png", "image/png", imageBytes("image/png", 64)))
	requireCode(t, err, appErrors.ErrStoreUnavailable)
	assert.True(t, appErrors.FromError(err).Retryable())
}
