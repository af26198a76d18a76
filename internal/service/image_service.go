package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/storage"
)

const defaultMaxImageSize = 5 * 1024 * 1024

type blobStore interface {
	Put(data []byte, mimeType string) (string, error)
	Get(address string) (*storage.Blob, error)
}

// ImageUpload carries upload metadata and the uploaded stream.
type ImageUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// ImageContent is a stored image ready to be served.
type ImageContent struct {
	Data     []byte
	MimeType string
}

// ImageServiceConfig holds validation parameters.
type ImageServiceConfig struct {
	MaxFileSize int64
}

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

var canonicalImageMimes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/gif":  "image/gif",
}

// ImageService validates uploaded images and moves bytes in and out of the blob store.
type ImageService struct {
	store   blobStore
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ImageServiceConfig
}

// NewImageService constructs the service with defaults.
func NewImageService(store blobStore, metrics *MetricsService, logger *zap.Logger, cfg ImageServiceConfig) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxImageSize
	}
	return &ImageService{store: store, metrics: metrics, logger: logger, cfg: cfg}
}

// MaxFileSize returns the configured upload limit in bytes.
func (s *ImageService) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// Ingest validates the upload and persists its exact bytes. Extension,
// declared MIME type and sniffed content must all agree on an allowed image type.
func (s *ImageService) Ingest(ctx context.Context, upload ImageUpload) (*models.Image, error) {
	image, err := s.ingest(ctx, upload)
	if err != nil {
		s.metrics.RecordImageIngest("rejected")
		return nil, err
	}
	s.metrics.RecordImageIngest("accepted")
	return image, nil
}

func (s *ImageService) ingest(ctx context.Context, upload ImageUpload) (*models.Image, error) {
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, s.tooLarge()
	}
	extMime, ok := allowedImageExtensions[strings.ToLower(filepath.Ext(upload.Filename))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image must be a jpg, jpeg, png or gif file")
	}
	declared, ok := canonicalImageMimes[strings.ToLower(strings.TrimSpace(mediaType(upload.MimeType)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image type %q not allowed", upload.MimeType))
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read image")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image is required")
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, s.tooLarge()
	}

	sniffed := mimetype.Detect(data)
	detected, ok := canonicalImageMimes[sniffed.String()]
	if !ok || detected != declared || detected != extMime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image content does not match its declared type")
	}

	address, err := s.store.Put(data, detected)
	if err != nil {
		s.logger.Error("blob store write failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to store image")
	}
	if ctx.Err() != nil {
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	return &models.Image{Path: address, MimeType: detected, SizeBytes: int64(len(data))}, nil
}

// Open loads the bytes of a previously ingested image.
func (s *ImageService) Open(ctx context.Context, image models.Image) (*ImageContent, error) {
	if image.Path == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "image not found")
	}
	blob, err := s.store.Get(image.Path)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "image not found")
		}
		s.logger.Error("blob store read failed", zap.String("path", image.Path), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load image")
	}
	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = blob.MimeType
	}
	return &ImageContent{Data: blob.Data, MimeType: mimeType}, nil
}

func (s *ImageService) tooLarge() error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes limit", s.cfg.MaxFileSize))
}

// mediaType strips parameters such as charset from a Content-Type value.
func mediaType(value string) string {
	if idx := strings.Index(value, ";"); idx >= 0 {
		return value[:idx]
	}
	return value
}
