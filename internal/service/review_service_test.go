package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

type fakeAnalyticsRepo struct {
	statusCounts []repository.StatusCount
	gradings     []models.GradingResult
	weakPoints   []repository.KnowledgePointErrors
	errorTypes   []repository.ErrorTypeCount
}

func (f *fakeAnalyticsRepo) CountSubmissionsByStatus(context.Context, uint) ([]repository.StatusCount, error) {
	return f.statusCounts, nil
}

func (f *fakeAnalyticsRepo) ListGradingForUser(context.Context, uint) ([]models.GradingResult, error) {
	return f.gradings, nil
}

func (f *fakeAnalyticsRepo) CountErrorsByKnowledgePoint(context.Context, uint) ([]repository.KnowledgePointErrors, error) {
	return f.weakPoints, nil
}

func (f *fakeAnalyticsRepo) CountErrorsByType(context.Context, uint) ([]repository.ErrorTypeCount, error) {
	return f.errorTypes, nil
}

func newFixedReviewService(repo repository.AnalyticsRepository, now time.Time) *reviewService {
	svc := NewReviewService(repo, zerolog.New(io.Discard)).(*reviewService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestReviewQueueIntervalLadder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := &fakeAnalyticsRepo{weakPoints: []repository.KnowledgePointErrors{
		// Fresh mistake: first boundary not reached yet.
		{KnowledgePointID: 1, Name: "导数", Count: 3, LastErrorAt: now.Add(-6 * time.Hour)},
		// Three days ago: two boundaries behind, review pending.
		{KnowledgePointID: 2, Name: "极限", Count: 5, LastErrorAt: now.Add(-3 * 24 * time.Hour)},
		// Twenty days ago: whole ladder passed, mastered.
		{KnowledgePointID: 3, Name: "积分", Count: 1, LastErrorAt: now.Add(-20 * 24 * time.Hour)},
	}}

	svc := newFixedReviewService(repo, now)

	queue, err := svc.Queue(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, queue.Items, 3)
	require.Equal(t, 1, queue.DueCount)

	// Due item sorts first.
	require.Equal(t, uint(2), queue.Items[0].KnowledgePointID)
	require.True(t, queue.Items[0].Due)
	require.InDelta(t, 0.4, queue.Items[0].Mastery, 0.001)
	require.Equal(t, repo.weakPoints[1].LastErrorAt.Add(4*24*time.Hour), queue.Items[0].NextReviewAt)

	byID := map[uint]int{}
	for i, item := range queue.Items {
		byID[item.KnowledgePointID] = i
	}

	fresh := queue.Items[byID[1]]
	require.False(t, fresh.Due)
	require.Zero(t, fresh.Mastery)
	require.Equal(t, repo.weakPoints[0].LastErrorAt.Add(24*time.Hour), fresh.NextReviewAt)

	mastered := queue.Items[byID[3]]
	require.False(t, mastered.Due)
	require.InDelta(t, 1.0, mastered.Mastery, 0.001)
}

func TestReviewQueueEmptyHistory(t *testing.T) {
	svc := newFixedReviewService(&fakeAnalyticsRepo{}, time.Now())

	queue, err := svc.Queue(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, queue.Items)
	require.Zero(t, queue.DueCount)
}
