package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// ClassroomRepository defines data operations for classrooms and membership.
type ClassroomRepository interface {
	ListForUser(ctx context.Context, userID uint) ([]models.Classroom, error)
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	GetByJoinCode(ctx context.Context, code string) (models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id uint) error
	AddMember(ctx context.Context, member *models.ClassroomMember) error
	IsMember(ctx context.Context, classroomID, userID uint) (bool, error)
	ListMembers(ctx context.Context, classroomID uint) ([]models.ClassroomMember, error)
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository instantiates the repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

// ListForUser returns classrooms the user teaches or is a member of.
func (r *classroomRepository) ListForUser(ctx context.Context, userID uint) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	err := r.db.WithContext(ctx).
		Distinct("classrooms.*").
		Joins("LEFT JOIN classroom_members ON classroom_members.classroom_id = classrooms.id").
		Where("classrooms.teacher_id = ? OR classroom_members.user_id = ?", userID, userID).
		Order("classrooms.created_at DESC").
		Find(&classrooms).Error
	if err != nil {
		return nil, err
	}

	return classrooms, nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) GetByJoinCode(ctx context.Context, code string) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&classroom).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Save(classroom).Error
}

func (r *classroomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("classroom_id = ?", id).Delete(&models.ClassroomMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Classroom{}, id).Error
	})
}

func (r *classroomRepository) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *classroomRepository) IsMember(ctx context.Context, classroomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClassroomMember{}).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *classroomRepository) ListMembers(ctx context.Context, classroomID uint) ([]models.ClassroomMember, error) {
	var members []models.ClassroomMember
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Preload("User").
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}
