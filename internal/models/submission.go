package models

import "time"

// Submission pairs one uploaded file with its grading lifecycle.
type Submission struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null" json:"user_id"`
	FileUploadID uint        `gorm:"not null" json:"file_upload_id"`
	AssignmentID *uint       `json:"assignment_id"`
	WorkMode     string      `gorm:"size:16;not null;default:practice" json:"work_mode"`
	Status       string      `gorm:"size:16;not null;default:UPLOADED" json:"status"`
	SubmittedAt  time.Time   `gorm:"autoCreateTime" json:"submitted_at"`
	CompletedAt  *time.Time  `json:"completed_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	User         User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	FileUpload   FileUpload  `gorm:"constraint:OnUpdate:CASCADE" json:"file_upload"`
	Assignment   *Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"assignment,omitempty"`
}

const (
	// SubmissionStatusUploaded indicates the file is stored but processing has not begun.
	SubmissionStatusUploaded = "UPLOADED"
	// SubmissionStatusProcessing indicates a pipeline run is in flight.
	SubmissionStatusProcessing = "PROCESSING"
	// SubmissionStatusCompleted is the terminal state after a pipeline run.
	SubmissionStatusCompleted = "COMPLETED"
	// SubmissionStatusFailed indicates the pipeline aborted with an unrecoverable error.
	SubmissionStatusFailed = "FAILED"
)

// Work mode values.
const (
	WorkModePractice = "practice"
	WorkModeHomework = "homework"
)

// IsTerminal reports whether the submission reached a final state.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusCompleted || s.Status == SubmissionStatusFailed
}
