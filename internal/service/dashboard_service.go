package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// DashboardService aggregates a user's submission history and weak points.
type DashboardService interface {
	Dashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
}

type dashboardService struct {
	analytics repository.AnalyticsRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewDashboardService constructs a DashboardService. The cache client may be
// nil, in which case every request recomputes the aggregate.
func NewDashboardService(analyticsRepo repository.AnalyticsRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &dashboardService{
		analytics: analyticsRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("inkgrade:dashboard:%d", userID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached dto.DashboardResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	response, err := s.compute(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache dashboard")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) compute(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	statusCounts, err := s.analytics.CountSubmissionsByStatus(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	var response dto.DashboardResponse
	for _, row := range statusCounts {
		response.TotalSubmissions += row.Count
		switch row.Status {
		case models.SubmissionStatusCompleted:
			response.Completed = row.Count
		case models.SubmissionStatusProcessing:
			response.Processing = row.Count
		case models.SubmissionStatusFailed:
			response.Failed = row.Count
		}
	}

	gradings, err := s.analytics.ListGradingForUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.AverageScore = averageLatestScore(gradings)

	weakPoints, err := s.analytics.CountErrorsByKnowledgePoint(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.WeakPoints = make([]dto.KnowledgePointErrors, 0, len(weakPoints))
	for _, row := range weakPoints {
		response.WeakPoints = append(response.WeakPoints, dto.KnowledgePointErrors{
			KnowledgePointID: row.KnowledgePointID,
			Name:             row.Name,
			Chapter:          row.Chapter,
			Count:            row.Count,
			LastErrorAt:      row.LastErrorAt,
		})
	}

	errorTypes, err := s.analytics.CountErrorsByType(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.ErrorTypes = make([]dto.ErrorTypeCount, 0, len(errorTypes))
	for _, row := range errorTypes {
		response.ErrorTypes = append(response.ErrorTypes, dto.ErrorTypeCount{
			ErrorType: row.ErrorType,
			Count:     row.Count,
		})
	}

	return response, nil
}

// averageLatestScore averages the newest scored grading row per submission.
// The input is ordered by submission then recency, so the first row seen for a
// submission is its latest.
func averageLatestScore(gradings []models.GradingResult) *float64 {
	var (
		sum   float64
		count int
		seen  = make(map[uint]struct{})
	)

	for _, grading := range gradings {
		if _, ok := seen[grading.SubmissionID]; ok {
			continue
		}
		seen[grading.SubmissionID] = struct{}{}

		if grading.Score == nil {
			continue
		}
		sum += *grading.Score
		count++
	}

	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	return &avg
}
