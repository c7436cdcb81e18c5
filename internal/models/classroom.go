package models

import "time"

// Classroom groups students under a teacher for assignment distribution.
type Classroom struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	JoinCode    string    `gorm:"size:16;uniqueIndex;not null" json:"join_code"`
	TeacherID   uint      `gorm:"not null" json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Teacher     User      `gorm:"foreignKey:TeacherID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	Members     []ClassroomMember
}

// ClassroomMember records a student's membership in a classroom.
type ClassroomMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassroomID uint      `gorm:"not null;uniqueIndex:idx_classroom_user" json:"classroom_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_classroom_user" json:"user_id"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}
