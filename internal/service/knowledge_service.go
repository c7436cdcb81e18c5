package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// DefaultChapter is assigned to knowledge points no inference rule matches.
const DefaultChapter = "微积分基础"

// chapterRules map concept-name keywords to textbook chapters, first match wins.
var chapterRules = []struct {
	keywords []string
	chapter  string
}{
	{[]string{"极限", "连续", "无穷小", "夹逼"}, "极限与连续"},
	{[]string{"中值定理", "洛必达", "泰勒", "拉格朗日"}, "微分中值定理"},
	{[]string{"导数", "微分", "求导", "切线"}, "导数与微分"},
	{[]string{"级数", "收敛", "发散", "幂级数"}, "无穷级数"},
	{[]string{"微分方程", "齐次方程"}, "微分方程"},
	{[]string{"积分", "原函数", "换元", "分部"}, "积分学"},
}

// InferChapter picks the chapter for a knowledge-point name by keyword match.
func InferChapter(name string) string {
	for _, rule := range chapterRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.chapter
			}
		}
	}
	return DefaultChapter
}

// KnowledgeService resolves and lists taxonomy nodes.
type KnowledgeService interface {
	Resolve(ctx context.Context, name string) (models.KnowledgePoint, error)
	List(ctx context.Context) ([]dto.KnowledgePointResponse, error)
}

type knowledgeService struct {
	repo   repository.KnowledgePointRepository
	logger zerolog.Logger
}

// NewKnowledgeService constructs the knowledge-point service.
func NewKnowledgeService(repo repository.KnowledgePointRepository, logger zerolog.Logger) KnowledgeService {
	return &knowledgeService{
		repo:   repo,
		logger: logger.With().Str("component", "knowledge_service").Logger(),
	}
}

// Resolve performs a get-or-create by exact name. Repeated calls with the same
// name return the same row.
func (s *knowledgeService) Resolve(ctx context.Context, name string) (models.KnowledgePoint, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = "未分类"
	}

	point, err := s.repo.GetOrCreate(ctx, trimmed, InferChapter(trimmed))
	if err != nil {
		return models.KnowledgePoint{}, err
	}

	return point, nil
}

func (s *knowledgeService) List(ctx context.Context) ([]dto.KnowledgePointResponse, error) {
	points, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.KnowledgePointResponse, 0, len(points))
	for _, point := range points {
		responses = append(responses, dto.KnowledgePointResponse{
			ID:       point.ID,
			Name:     point.Name,
			Chapter:  point.Chapter,
			Level:    point.Level,
			ParentID: point.ParentID,
		})
	}

	return responses, nil
}
