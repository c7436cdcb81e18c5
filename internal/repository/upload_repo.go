package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// UploadRepository defines data operations for stored file records.
type UploadRepository interface {
	Create(ctx context.Context, upload *models.FileUpload) error
	GetByID(ctx context.Context, id uint) (models.FileUpload, error)
	ListByUser(ctx context.Context, userID uint) ([]models.FileUpload, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository instantiates the repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.FileUpload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) GetByID(ctx context.Context, id uint) (models.FileUpload, error) {
	var upload models.FileUpload
	if err := r.db.WithContext(ctx).First(&upload, id).Error; err != nil {
		return models.FileUpload{}, err
	}

	return upload, nil
}

func (r *uploadRepository) ListByUser(ctx context.Context, userID uint) ([]models.FileUpload, error) {
	var uploads []models.FileUpload
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&uploads).Error; err != nil {
		return nil, err
	}

	return uploads, nil
}
