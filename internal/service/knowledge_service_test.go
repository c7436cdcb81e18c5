package service

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

type fakeKnowledgeRepo struct {
	points  map[string]models.KnowledgePoint
	creates int
}

func (f *fakeKnowledgeRepo) GetOrCreate(_ context.Context, name, chapter string) (models.KnowledgePoint, error) {
	if f.points == nil {
		f.points = make(map[string]models.KnowledgePoint)
	}
	if point, ok := f.points[name]; ok {
		return point, nil
	}
	f.creates++
	point := models.KnowledgePoint{ID: uint(len(f.points) + 1), Name: name, Chapter: chapter, Level: 1}
	f.points[name] = point
	return point, nil
}

func (f *fakeKnowledgeRepo) GetByID(_ context.Context, id uint) (models.KnowledgePoint, error) {
	for _, point := range f.points {
		if point.ID == id {
			return point, nil
		}
	}
	return models.KnowledgePoint{}, nil
}

func (f *fakeKnowledgeRepo) List(context.Context) ([]models.KnowledgePoint, error) {
	points := make([]models.KnowledgePoint, 0, len(f.points))
	for _, point := range f.points {
		points = append(points, point)
	}
	return points, nil
}

func TestInferChapter(t *testing.T) {
	cases := []struct {
		name    string
		chapter string
	}{
		{"函数极限", "极限与连续"},
		{"洛必达法则", "微分中值定理"},
		{"复合函数求导", "导数与微分"},
		{"幂级数展开", "无穷级数"},
		{"一阶微分方程", "微分方程"},
		{"分部积分法", "积分学"},
		{"三角恒等式", DefaultChapter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.chapter, InferChapter(tc.name))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	svc := NewKnowledgeService(repo, zerolog.New(io.Discard))

	first, err := svc.Resolve(context.Background(), "链式法则求导")
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), "链式法则求导")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, repo.creates)
	require.Equal(t, "导数与微分", first.Chapter)
}

func TestResolveBlankNameFallsBack(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	svc := NewKnowledgeService(repo, zerolog.New(io.Discard))

	point, err := svc.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	require.Equal(t, "未分类", point.Name)
	require.Equal(t, DefaultChapter, point.Chapter)
}
