package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// ErrClassroomNotFound indicates a classroom could not be found.
var ErrClassroomNotFound = errors.New("classroom not found")

// ErrClassroomForbidden indicates the caller does not own or belong to the classroom.
var ErrClassroomForbidden = errors.New("classroom access denied")

// ErrInvalidJoinCode indicates the join code matches no classroom.
var ErrInvalidJoinCode = errors.New("invalid join code")

// ErrAlreadyMember indicates the student is already enrolled.
var ErrAlreadyMember = errors.New("already a member of this classroom")

// ClassroomService manages classrooms and enrollment.
type ClassroomService interface {
	List(ctx context.Context, userID uint) ([]dto.ClassroomResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.ClassroomResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error)
	Update(ctx context.Context, teacherID uint, id uint, payload dto.ClassroomUpdateRequest) (dto.ClassroomResponse, error)
	Delete(ctx context.Context, teacherID uint, id uint) error
	Join(ctx context.Context, userID uint, payload dto.ClassroomJoinRequest) (dto.ClassroomResponse, error)
	Members(ctx context.Context, id, userID uint) ([]dto.ClassroomMemberResponse, error)
}

type classroomService struct {
	classrooms repository.ClassroomRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClassroomService constructs a ClassroomService instance.
func NewClassroomService(classroomRepo repository.ClassroomRepository, validate *validator.Validate, logger zerolog.Logger) ClassroomService {
	return &classroomService{
		classrooms: classroomRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "classroom_service").Logger(),
		now:        time.Now,
	}
}

func (s *classroomService) List(ctx context.Context, userID uint) ([]dto.ClassroomResponse, error) {
	classrooms, err := s.classrooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ClassroomResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		responses = append(responses, dto.NewClassroomResponse(classroom, classroom.TeacherID == userID))
	}

	return responses, nil
}

func (s *classroomService) Get(ctx context.Context, id, userID uint) (dto.ClassroomResponse, error) {
	classroom, err := s.loadVisible(ctx, id, userID)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	return dto.NewClassroomResponse(classroom, classroom.TeacherID == userID), nil
}

func (s *classroomService) Create(ctx context.Context, teacherID uint, payload dto.ClassroomCreateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom := models.Classroom{
		Name:        payload.Name,
		Description: payload.Description,
		TeacherID:   teacherID,
		JoinCode:    newJoinCode(),
	}

	if err := s.classrooms.Create(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Uint("teacher_id", teacherID).Msg("classroom created")

	return dto.NewClassroomResponse(classroom, true), nil
}

func (s *classroomService) Update(ctx context.Context, teacherID uint, id uint, payload dto.ClassroomUpdateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom, err := s.loadOwned(ctx, id, teacherID)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}

	if payload.Name != nil {
		classroom.Name = *payload.Name
	}
	if payload.Description != nil {
		classroom.Description = *payload.Description
	}

	if err := s.classrooms.Update(ctx, &classroom); err != nil {
		return dto.ClassroomResponse{}, err
	}

	return dto.NewClassroomResponse(classroom, true), nil
}

func (s *classroomService) Delete(ctx context.Context, teacherID uint, id uint) error {
	if _, err := s.loadOwned(ctx, id, teacherID); err != nil {
		return err
	}

	if err := s.classrooms.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("classroom_id", id).Msg("classroom deleted")
	return nil
}

func (s *classroomService) Join(ctx context.Context, userID uint, payload dto.ClassroomJoinRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassroomResponse{}, err
	}

	classroom, err := s.classrooms.GetByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(payload.JoinCode)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomResponse{}, ErrInvalidJoinCode
		}
		return dto.ClassroomResponse{}, err
	}

	if classroom.TeacherID == userID {
		return dto.ClassroomResponse{}, ErrAlreadyMember
	}

	member, err := s.classrooms.IsMember(ctx, classroom.ID, userID)
	if err != nil {
		return dto.ClassroomResponse{}, err
	}
	if member {
		return dto.ClassroomResponse{}, ErrAlreadyMember
	}

	if err := s.classrooms.AddMember(ctx, &models.ClassroomMember{
		ClassroomID: classroom.ID,
		UserID:      userID,
		JoinedAt:    s.now(),
	}); err != nil {
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", classroom.ID).Uint("user_id", userID).Msg("student joined classroom")

	return dto.NewClassroomResponse(classroom, false), nil
}

func (s *classroomService) Members(ctx context.Context, id, userID uint) ([]dto.ClassroomMemberResponse, error) {
	classroom, err := s.loadVisible(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.classrooms.ListMembers(ctx, classroom.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewClassroomMemberResponseSlice(members), nil
}

func (s *classroomService) loadOwned(ctx context.Context, id, teacherID uint) (models.Classroom, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Classroom{}, ErrClassroomNotFound
		}
		return models.Classroom{}, err
	}

	if classroom.TeacherID != teacherID {
		return models.Classroom{}, ErrClassroomForbidden
	}

	return classroom, nil
}

func (s *classroomService) loadVisible(ctx context.Context, id, userID uint) (models.Classroom, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Classroom{}, ErrClassroomNotFound
		}
		return models.Classroom{}, err
	}

	if classroom.TeacherID == userID {
		return classroom, nil
	}

	member, err := s.classrooms.IsMember(ctx, id, userID)
	if err != nil {
		return models.Classroom{}, err
	}
	if !member {
		return models.Classroom{}, ErrClassroomForbidden
	}

	return classroom, nil
}

// newJoinCode derives a short uppercase code from a fresh UUID. Eight hex
// characters keeps collisions unlikely at classroom scale while staying easy
// to read out loud.
func newJoinCode() string {
	id := uuid.NewString()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
