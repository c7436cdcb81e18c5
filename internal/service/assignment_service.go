package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrInvalidDueDate indicates a due date that could not be parsed or lies in the past.
var ErrInvalidDueDate = errors.New("invalid due date")

// AssignmentService manages the assignment lifecycle. Creation and edits are
// restricted to the teacher who owns the classroom.
type AssignmentService interface {
	List(ctx context.Context, userID uint, classroomID *uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, teacherID uint, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, teacherID uint, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classrooms  repository.ClassroomRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	classroomRepo repository.ClassroomRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		classrooms:  classroomRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, userID uint, classroomID *uint) ([]dto.AssignmentResponse, error) {
	if classroomID != nil {
		if err := s.requireAccess(ctx, *classroomID, userID); err != nil {
			return nil, err
		}
	}

	assignments, err := s.assignments.List(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassroomNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if classroom.TeacherID != teacherID {
		return dto.AssignmentResponse{}, ErrClassroomForbidden
	}

	dueDate, err := s.parseDueDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		ClassroomID:  payload.ClassroomID,
		Title:        payload.Title,
		Description:  payload.Description,
		Subject:      payload.Subject,
		ExerciseType: payload.ExerciseType,
		MaxScore:     payload.MaxScore,
		DueDate:      dueDate,
	}

	if assignment.Subject == "" {
		assignment.Subject = "微积分"
	}
	if assignment.MaxScore == 0 {
		assignment.MaxScore = 100
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("classroom_id", assignment.ClassroomID).
		Msg("assignment published")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, teacherID uint, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadOwned(ctx, teacherID, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.ExerciseType != nil {
		assignment.ExerciseType = *payload.ExerciseType
	}
	if payload.MaxScore != nil {
		assignment.MaxScore = *payload.MaxScore
	}
	if payload.DueDate != nil {
		dueDate, err := s.parseDueDate(*payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, teacherID uint, id uint) error {
	if _, err := s.loadOwned(ctx, teacherID, id); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) loadOwned(ctx context.Context, teacherID, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if assignment.Classroom.TeacherID != teacherID {
		return models.Assignment{}, ErrClassroomForbidden
	}

	return assignment, nil
}

func (s *assignmentService) requireAccess(ctx context.Context, classroomID, userID uint) error {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		return err
	}

	if classroom.TeacherID == userID {
		return nil
	}

	member, err := s.classrooms.IsMember(ctx, classroomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrClassroomForbidden
	}

	return nil
}

func (s *assignmentService) parseDueDate(raw string) (time.Time, error) {
	dueDate, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDueDate, raw)
	}

	if dueDate.Before(s.now()) {
		return time.Time{}, fmt.Errorf("%w: due date already passed", ErrInvalidDueDate)
	}

	return dueDate, nil
}
