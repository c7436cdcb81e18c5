package models

import "time"

// User represents a student or teacher account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleStudent identifies learner accounts.
	RoleStudent = "student"
	// RoleTeacher identifies accounts allowed to manage classrooms and assignments.
	RoleTeacher = "teacher"
)

// IsTeacher reports whether the user may manage classrooms and assignments.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
