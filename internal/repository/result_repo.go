package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// ResultRepository persists and retrieves pipeline result rows. Readers always
// take the latest row by creation time; reprocessing appends, never replaces.
type ResultRepository interface {
	CreateOCR(ctx context.Context, result *models.OCRResult) error
	CreateGrading(ctx context.Context, result *models.GradingResult) error
	CreateErrorAnalysis(ctx context.Context, analysis *models.ErrorAnalysis) error
	LatestOCR(ctx context.Context, submissionID uint) (*models.OCRResult, error)
	LatestGrading(ctx context.Context, submissionID uint) (*models.GradingResult, error)
	ListErrorAnalyses(ctx context.Context, submissionID uint) ([]models.ErrorAnalysis, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates the repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) CreateOCR(ctx context.Context, result *models.OCRResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) CreateGrading(ctx context.Context, result *models.GradingResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) CreateErrorAnalysis(ctx context.Context, analysis *models.ErrorAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *resultRepository) LatestOCR(ctx context.Context, submissionID uint) (*models.OCRResult, error) {
	var result models.OCRResult
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC, id DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &result, nil
}

func (r *resultRepository) LatestGrading(ctx context.Context, submissionID uint) (*models.GradingResult, error) {
	var result models.GradingResult
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC, id DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &result, nil
}

func (r *resultRepository) ListErrorAnalyses(ctx context.Context, submissionID uint) ([]models.ErrorAnalysis, error) {
	var analyses []models.ErrorAnalysis
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Preload("KnowledgePoint").
		Order("created_at ASC").
		Find(&analyses).Error; err != nil {
		return nil, err
	}

	return analyses, nil
}
