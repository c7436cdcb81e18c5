package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/observability"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// ErrUploadTooLarge indicates the file exceeds the configured size limit.
var ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")

// ErrUnsupportedFileType indicates the file is not a PDF or supported image.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// allowedUploadTypes covers scanned homework: PDFs plus common photo formats.
var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/heic":      {},
}

// FileStorage abstracts the blob store holding raw submission files.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores submitted files.
type UploadService interface {
	Store(ctx context.Context, userID uint, fileName string, reader io.Reader) (models.FileUpload, error)
	ListByUser(ctx context.Context, userID uint) ([]models.FileUpload, error)
}

type uploadService struct {
	uploads      repository.UploadRepository
	storage      FileStorage
	maxSizeBytes int64
	logger       zerolog.Logger
	now          func() time.Time
}

// NewUploadService constructs an UploadService instance.
func NewUploadService(uploadRepo repository.UploadRepository, storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &uploadService{
		uploads:      uploadRepo,
		storage:      storage,
		maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
		logger:       logger.With().Str("component", "upload_service").Logger(),
		now:          time.Now,
	}
}

func (s *uploadService) Store(ctx context.Context, userID uint, fileName string, reader io.Reader) (models.FileUpload, error) {
	started := s.now()

	data, err := io.ReadAll(io.LimitReader(reader, s.maxSizeBytes+1))
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	if int64(len(data)) > s.maxSizeBytes {
		observability.UploadRejected().WithLabelValues("too_large").Inc()
		return models.FileUpload{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(data)
	mime := normalizeMime(detected.String())
	if _, ok := allowedUploadTypes[mime]; !ok {
		observability.UploadRejected().WithLabelValues("unsupported_type").Inc()
		return models.FileUpload{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, detected.String())
	}

	observability.UploadRequests().WithLabelValues(mime).Inc()

	checksum := sha256.Sum256(data)

	url, err := s.storage.Upload(ctx, fileName, bytes.NewReader(data))
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to store file: %w", err)
	}

	upload := models.FileUpload{
		UserID:    userID,
		URL:       url,
		FileName:  fileName,
		MimeType:  mime,
		SizeBytes: int64(len(data)),
		Checksum:  hex.EncodeToString(checksum[:]),
		Metadata: datatypes.JSONMap{
			"extension": detected.Extension(),
		},
	}

	if err := s.uploads.Create(ctx, &upload); err != nil {
		return models.FileUpload{}, err
	}

	observability.UploadLatency().Observe(s.now().Sub(started).Seconds())
	s.logger.Info().
		Uint("upload_id", upload.ID).
		Str("mime_type", upload.MimeType).
		Int64("size_bytes", upload.SizeBytes).
		Msg("file stored")

	return upload, nil
}

func (s *uploadService) ListByUser(ctx context.Context, userID uint) ([]models.FileUpload, error) {
	return s.uploads.ListByUser(ctx, userID)
}

// normalizeMime strips parameters such as charset from a detected mime string.
func normalizeMime(mime string) string {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}
