package dto

import (
	"time"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// AssignmentCreateRequest describes the payload for publishing an assignment.
type AssignmentCreateRequest struct {
	ClassroomID  uint   `json:"classroom_id" validate:"required,gt=0"`
	Title        string `json:"title" validate:"required,min=3,max=255"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Subject      string `json:"subject" validate:"omitempty,max=64"`
	ExerciseType string `json:"exercise_type" validate:"omitempty,max=64"`
	MaxScore     float64 `json:"max_score" validate:"omitempty,gt=0"`
	DueDate      string `json:"due_date" validate:"required"`
}

// AssignmentUpdateRequest describes the payload for editing an assignment.
type AssignmentUpdateRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string  `json:"description" validate:"omitempty,max=5000"`
	ExerciseType *string  `json:"exercise_type" validate:"omitempty,max=64"`
	MaxScore     *float64 `json:"max_score" validate:"omitempty,gt=0"`
	DueDate      *string  `json:"due_date"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID           uint      `json:"id"`
	ClassroomID  uint      `json:"classroom_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Subject      string    `json:"subject"`
	ExerciseType string    `json:"exercise_type"`
	MaxScore     float64   `json:"max_score"`
	DueDate      time.Time `json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAssignmentResponse maps an Assignment row to its API shape.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           assignment.ID,
		ClassroomID:  assignment.ClassroomID,
		Title:        assignment.Title,
		Description:  assignment.Description,
		Subject:      assignment.Subject,
		ExerciseType: assignment.ExerciseType,
		MaxScore:     assignment.MaxScore,
		DueDate:      assignment.DueDate,
		CreatedAt:    assignment.CreatedAt,
	}
}

// NewAssignmentResponseSlice maps a slice of assignments.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
