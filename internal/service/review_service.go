package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// reviewIntervals are the spaced-repetition offsets from the most recent
// mistake on a knowledge point. Once every boundary has passed the point is
// considered mastered and drops out of the due queue.
var reviewIntervals = []time.Duration{
	24 * time.Hour,
	2 * 24 * time.Hour,
	4 * 24 * time.Hour,
	7 * 24 * time.Hour,
	15 * 24 * time.Hour,
}

// ReviewService derives a review schedule from the user's error history.
type ReviewService interface {
	Queue(ctx context.Context, userID uint) (dto.ReviewQueueResponse, error)
}

type reviewService struct {
	analytics repository.AnalyticsRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(analyticsRepo repository.AnalyticsRepository, logger zerolog.Logger) ReviewService {
	return &reviewService{
		analytics: analyticsRepo,
		logger:    logger.With().Str("component", "review_service").Logger(),
		now:       time.Now,
	}
}

func (s *reviewService) Queue(ctx context.Context, userID uint) (dto.ReviewQueueResponse, error) {
	weakPoints, err := s.analytics.CountErrorsByKnowledgePoint(ctx, userID)
	if err != nil {
		return dto.ReviewQueueResponse{}, err
	}

	now := s.now()
	items := make([]dto.ReviewItem, 0, len(weakPoints))
	dueCount := 0

	for _, point := range weakPoints {
		item := buildReviewItem(point, now)
		if item.Due {
			dueCount++
		}
		items = append(items, item)
	}

	// Due items first, then by error count so the weakest concepts surface
	// at the top of the queue.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Due != items[j].Due {
			return items[i].Due
		}
		return items[i].ErrorCount > items[j].ErrorCount
	})

	return dto.ReviewQueueResponse{Items: items, DueCount: dueCount}, nil
}

// buildReviewItem positions one knowledge point on the interval ladder. The
// stage is the number of interval boundaries already behind us; each passed
// boundary raises mastery, and a point with pending boundaries is due.
func buildReviewItem(point repository.KnowledgePointErrors, now time.Time) dto.ReviewItem {
	stage := 0
	for _, interval := range reviewIntervals {
		if now.Sub(point.LastErrorAt) >= interval {
			stage++
		}
	}

	mastered := stage >= len(reviewIntervals)

	var nextReviewAt time.Time
	if mastered {
		nextReviewAt = point.LastErrorAt.Add(reviewIntervals[len(reviewIntervals)-1])
	} else {
		nextReviewAt = point.LastErrorAt.Add(reviewIntervals[stage])
	}

	return dto.ReviewItem{
		KnowledgePointID: point.KnowledgePointID,
		Name:             point.Name,
		Chapter:          point.Chapter,
		ErrorCount:       point.Count,
		Mastery:          float64(stage) / float64(len(reviewIntervals)),
		LastErrorAt:      point.LastErrorAt,
		NextReviewAt:     nextReviewAt,
		Due:              stage > 0 && !mastered,
	}
}
