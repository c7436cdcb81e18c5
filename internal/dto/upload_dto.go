package dto

import (
	"time"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// UploadResponse describes a stored file returned to API clients.
type UploadResponse struct {
	ID        uint      `json:"id"`
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUploadResponse maps a FileUpload row to its API shape.
func NewUploadResponse(upload models.FileUpload) UploadResponse {
	return UploadResponse{
		ID:        upload.ID,
		URL:       upload.URL,
		FileName:  upload.FileName,
		MimeType:  upload.MimeType,
		SizeBytes: upload.SizeBytes,
		Checksum:  upload.Checksum,
		CreatedAt: upload.CreatedAt,
	}
}
