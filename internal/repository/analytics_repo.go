package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// StatusCount is one row of the submissions-by-status aggregate.
type StatusCount struct {
	Status string
	Count  int64
}

// KnowledgePointErrors aggregates error analyses per knowledge point.
type KnowledgePointErrors struct {
	KnowledgePointID uint
	Name             string
	Chapter          string
	Count            int64
	LastErrorAt      time.Time
}

// ErrorTypeCount aggregates error analyses per error type.
type ErrorTypeCount struct {
	ErrorType string
	Count     int64
}

// AnalyticsRepository supplies grouped data for dashboards and review scheduling.
type AnalyticsRepository interface {
	CountSubmissionsByStatus(ctx context.Context, userID uint) ([]StatusCount, error)
	ListGradingForUser(ctx context.Context, userID uint) ([]models.GradingResult, error)
	CountErrorsByKnowledgePoint(ctx context.Context, userID uint) ([]KnowledgePointErrors, error)
	CountErrorsByType(ctx context.Context, userID uint) ([]ErrorTypeCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountSubmissionsByStatus(ctx context.Context, userID uint) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// ListGradingForUser returns all grading rows across the user's submissions,
// newest first, so callers can take the latest row per submission.
func (r *analyticsRepository) ListGradingForUser(ctx context.Context, userID uint) ([]models.GradingResult, error) {
	var results []models.GradingResult
	err := r.db.WithContext(ctx).
		Joins("JOIN submissions ON submissions.id = grading_results.submission_id").
		Where("submissions.user_id = ?", userID).
		Order("grading_results.submission_id ASC, grading_results.created_at DESC, grading_results.id DESC").
		Find(&results).Error
	return results, err
}

func (r *analyticsRepository) CountErrorsByKnowledgePoint(ctx context.Context, userID uint) ([]KnowledgePointErrors, error) {
	var rows []KnowledgePointErrors
	err := r.db.WithContext(ctx).
		Model(&models.ErrorAnalysis{}).
		Select("error_analyses.knowledge_point_id, knowledge_points.name, knowledge_points.chapter, COUNT(*) AS count, MAX(error_analyses.created_at) AS last_error_at").
		Joins("JOIN submissions ON submissions.id = error_analyses.submission_id").
		Joins("JOIN knowledge_points ON knowledge_points.id = error_analyses.knowledge_point_id").
		Where("submissions.user_id = ?", userID).
		Group("error_analyses.knowledge_point_id, knowledge_points.name, knowledge_points.chapter").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CountErrorsByType(ctx context.Context, userID uint) ([]ErrorTypeCount, error) {
	var rows []ErrorTypeCount
	err := r.db.WithContext(ctx).
		Model(&models.ErrorAnalysis{}).
		Select("error_type, COUNT(*) AS count").
		Joins("JOIN submissions ON submissions.id = error_analyses.submission_id").
		Where("submissions.user_id = ?", userID).
		Group("error_type").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
