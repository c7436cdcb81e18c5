package models

import (
	"time"

	"gorm.io/datatypes"
)

// FileUpload records a stored file. Uploads are immutable once created except
// for the metadata column; submissions reference them but never own them.
type FileUpload struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null" json:"user_id"`
	URL       string            `gorm:"size:512;not null" json:"url"`
	FileName  string            `gorm:"size:255;not null" json:"file_name"`
	MimeType  string            `gorm:"size:128" json:"mime_type"`
	SizeBytes int64             `json:"size_bytes"`
	Checksum  string            `gorm:"size:64" json:"checksum"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	User      User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}
