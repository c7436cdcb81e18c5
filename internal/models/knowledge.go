package models

import "time"

// KnowledgePoint is a node in the calculus concept taxonomy used to tag errors.
// Names are unique; the pipeline resolves unseen names with a get-or-create.
type KnowledgePoint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Chapter   string    `gorm:"size:128;not null" json:"chapter"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	ParentID  *uint     `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorAnalysis tags one identified mistake in a submission with a knowledge
// point. Created only when the grading score falls below the analysis threshold.
type ErrorAnalysis struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SubmissionID     uint           `gorm:"not null;index" json:"submission_id"`
	KnowledgePointID uint           `gorm:"not null" json:"knowledge_point_id"`
	ErrorType        string         `gorm:"size:64;not null" json:"error_type"`
	Description      string         `gorm:"type:text" json:"description"`
	Severity         string         `gorm:"size:16;not null;default:medium" json:"severity"`
	AISuggestion     string         `gorm:"type:text" json:"ai_suggestion"`
	CreatedAt        time.Time      `json:"created_at"`
	Submission       Submission     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	KnowledgePoint   KnowledgePoint `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"knowledge_point"`
}
