package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
)

func newAssignmentFixture() (*fakeAssignmentRepo, *fakeClassroomRepo, AssignmentService) {
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	classrooms := &fakeClassroomRepo{classrooms: map[uint]models.Classroom{
		1: {ID: 1, Name: "高数一班", TeacherID: 10, JoinCode: "AB12CD34"},
	}}

	svc := NewAssignmentService(
		assignments, classrooms,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.New(io.Discard),
	)

	return assignments, classrooms, svc
}

func TestCreateAssignmentDefaults(t *testing.T) {
	_, _, svc := newAssignmentFixture()

	due := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	response, err := svc.Create(context.Background(), 10, dto.AssignmentCreateRequest{
		ClassroomID: 1,
		Title:       "第三章 导数习题",
		DueDate:     due,
	})
	require.NoError(t, err)
	require.Equal(t, "微积分", response.Subject)
	require.InDelta(t, 100, response.MaxScore, 0.001)
}

func TestCreateAssignmentRequiresClassroomOwnership(t *testing.T) {
	_, _, svc := newAssignmentFixture()

	due := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	_, err := svc.Create(context.Background(), 99, dto.AssignmentCreateRequest{
		ClassroomID: 1,
		Title:       "第三章 导数习题",
		DueDate:     due,
	})
	require.ErrorIs(t, err, ErrClassroomForbidden)
}

func TestCreateAssignmentRejectsPastDueDate(t *testing.T) {
	_, _, svc := newAssignmentFixture()

	due := time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err := svc.Create(context.Background(), 10, dto.AssignmentCreateRequest{
		ClassroomID: 1,
		Title:       "第三章 导数习题",
		DueDate:     due,
	})
	require.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestCreateAssignmentRejectsMalformedDate(t *testing.T) {
	_, _, svc := newAssignmentFixture()

	_, err := svc.Create(context.Background(), 10, dto.AssignmentCreateRequest{
		ClassroomID: 1,
		Title:       "第三章 导数习题",
		DueDate:     "next tuesday",
	})
	require.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestUpdateAssignmentAppliesPartialFields(t *testing.T) {
	assignments, _, svc := newAssignmentFixture()
	assignments.assignments[1] = models.Assignment{
		ID: 1, ClassroomID: 1, Title: "旧标题", MaxScore: 100,
		DueDate:   time.Now().Add(24 * time.Hour),
		Classroom: models.Classroom{ID: 1, TeacherID: 10},
	}

	title := "新标题三字"
	maxScore := 50.0
	response, err := svc.Update(context.Background(), 10, 1, dto.AssignmentUpdateRequest{
		Title:    &title,
		MaxScore: &maxScore,
	})
	require.NoError(t, err)
	require.Equal(t, title, response.Title)
	require.InDelta(t, 50, response.MaxScore, 0.001)
}

func TestListAssignmentsChecksClassroomAccess(t *testing.T) {
	_, classrooms, svc := newAssignmentFixture()
	classrooms.members = []models.ClassroomMember{{ClassroomID: 1, UserID: 7}}

	classroomID := uint(1)
	_, err := svc.List(context.Background(), 7, &classroomID)
	require.NoError(t, err)

	_, err = svc.List(context.Background(), 99, &classroomID)
	require.ErrorIs(t, err, ErrClassroomForbidden)
}
