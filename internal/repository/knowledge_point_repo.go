package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// KnowledgePointRepository resolves and lists taxonomy nodes.
type KnowledgePointRepository interface {
	GetOrCreate(ctx context.Context, name, chapter string) (models.KnowledgePoint, error)
	GetByID(ctx context.Context, id uint) (models.KnowledgePoint, error)
	List(ctx context.Context) ([]models.KnowledgePoint, error)
}

type knowledgePointRepository struct {
	db *gorm.DB
}

// NewKnowledgePointRepository instantiates the repository.
func NewKnowledgePointRepository(db *gorm.DB) KnowledgePointRepository {
	return &knowledgePointRepository{db: db}
}

// GetOrCreate resolves a knowledge point by exact name, creating it with the
// inferred chapter when absent. The unique index on name makes concurrent
// creates collapse to one row.
func (r *knowledgePointRepository) GetOrCreate(ctx context.Context, name, chapter string) (models.KnowledgePoint, error) {
	point := models.KnowledgePoint{Name: name}
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Attrs(models.KnowledgePoint{Chapter: chapter, Level: 1}).
		FirstOrCreate(&point).Error
	if err != nil {
		return models.KnowledgePoint{}, err
	}

	return point, nil
}

func (r *knowledgePointRepository) GetByID(ctx context.Context, id uint) (models.KnowledgePoint, error) {
	var point models.KnowledgePoint
	if err := r.db.WithContext(ctx).First(&point, id).Error; err != nil {
		return models.KnowledgePoint{}, err
	}

	return point, nil
}

func (r *knowledgePointRepository) List(ctx context.Context) ([]models.KnowledgePoint, error) {
	var points []models.KnowledgePoint
	if err := r.db.WithContext(ctx).
		Order("chapter ASC, level ASC, name ASC").
		Find(&points).Error; err != nil {
		return nil, err
	}

	return points, nil
}
