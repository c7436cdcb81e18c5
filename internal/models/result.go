package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// OCRResult stores one OCR provider response for a submission. Rows accumulate
// when a submission is reprocessed; readers take the latest by creation time.
type OCRResult struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	SubmissionID     uint              `gorm:"not null;index" json:"submission_id"`
	RecognizedText   string            `gorm:"type:text" json:"recognized_text"`
	Confidence       float64           `json:"confidence"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	Raw              datatypes.JSONMap `gorm:"type:json" json:"raw"`
	CreatedAt        time.Time         `json:"created_at"`
	Submission       Submission        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasText reports whether the OCR pass produced usable text.
func (r OCRResult) HasText() bool {
	return strings.TrimSpace(r.RecognizedText) != ""
}

// GradingResult stores one AI grading response for a submission. Same
// latest-by-created-at retrieval pattern as OCRResult.
type GradingResult struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	SubmissionID     uint              `gorm:"not null;index" json:"submission_id"`
	Score            *float64          `json:"score"`
	MaxScore         float64           `gorm:"not null;default:100" json:"max_score"`
	Feedback         string            `gorm:"type:text" json:"feedback"`
	Errors           datatypes.JSON    `gorm:"type:json" json:"errors"`
	Suggestions      datatypes.JSON    `gorm:"type:json" json:"suggestions"`
	Strengths        datatypes.JSON    `gorm:"type:json" json:"strengths"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	Raw              datatypes.JSONMap `gorm:"type:json" json:"raw"`
	CreatedAt        time.Time         `json:"created_at"`
	Submission       Submission        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasOutcome reports whether the grading pass produced a score or feedback.
func (r GradingResult) HasOutcome() bool {
	return r.Score != nil || r.Feedback != ""
}
