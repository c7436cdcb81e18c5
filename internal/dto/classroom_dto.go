package dto

import (
	"time"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// ClassroomCreateRequest describes the payload for opening a classroom.
type ClassroomCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ClassroomUpdateRequest describes the payload for editing a classroom.
type ClassroomUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ClassroomJoinRequest carries the join code presented by a student.
type ClassroomJoinRequest struct {
	JoinCode string `json:"join_code" validate:"required,min=4,max=16"`
}

// ClassroomResponse is returned to API clients when viewing classrooms.
type ClassroomResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	JoinCode    string    `json:"join_code,omitempty"`
	TeacherID   uint      `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClassroomMemberResponse lists one enrolled student.
type ClassroomMemberResponse struct {
	UserID   uint      `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// NewClassroomResponse maps a Classroom row to its API shape. The join code is
// only included for the owning teacher.
func NewClassroomResponse(classroom models.Classroom, includeJoinCode bool) ClassroomResponse {
	response := ClassroomResponse{
		ID:          classroom.ID,
		Name:        classroom.Name,
		Description: classroom.Description,
		TeacherID:   classroom.TeacherID,
		CreatedAt:   classroom.CreatedAt,
	}
	if includeJoinCode {
		response.JoinCode = classroom.JoinCode
	}
	return response
}

// NewClassroomMemberResponseSlice maps membership rows.
func NewClassroomMemberResponseSlice(members []models.ClassroomMember) []ClassroomMemberResponse {
	responses := make([]ClassroomMemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, ClassroomMemberResponse{
			UserID:   member.UserID,
			Name:     member.User.Name,
			Email:    member.User.Email,
			JoinedAt: member.JoinedAt,
		})
	}
	return responses
}
