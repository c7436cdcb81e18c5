package models

import "time"

// Assignment represents a homework assignment published to a classroom.
type Assignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClassroomID  uint      `gorm:"not null" json:"classroom_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Subject      string    `gorm:"size:64;not null;default:微积分" json:"subject"`
	ExerciseType string    `gorm:"size:64" json:"exercise_type"`
	MaxScore     float64   `gorm:"not null;default:100" json:"max_score"`
	DueDate      time.Time `gorm:"not null" json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Classroom    Classroom `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"classroom"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
