package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
	"github.com/inkgrade/inkgrade-api/pkg/ai"
	"github.com/inkgrade/inkgrade-api/pkg/ocr"
)

type statusUpdate struct {
	status      string
	completedAt *time.Time
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	updates     []statusUpdate
	updateErr   error
}

func (f *fakeSubmissionRepo) List(context.Context, repository.SubmissionFilter) ([]models.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if submission.ID == 0 {
		submission.ID = uint(len(f.submissions) + 1)
	}
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) UpdateStatus(_ context.Context, id uint, status string, completedAt *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, statusUpdate{status: status, completedAt: completedAt})
	submission := f.submissions[id]
	submission.Status = status
	submission.CompletedAt = completedAt
	f.submissions[id] = submission
	return nil
}

func (f *fakeSubmissionRepo) Delete(_ context.Context, id uint) error {
	delete(f.submissions, id)
	return nil
}

func (f *fakeSubmissionRepo) lastStatus() string {
	if len(f.updates) == 0 {
		return ""
	}
	return f.updates[len(f.updates)-1].status
}

type fakeResultRepo struct {
	ocrRows       []models.OCRResult
	gradingRows   []models.GradingResult
	analysisRows  []models.ErrorAnalysis
	createOCRErr  error
	createGradErr error
}

func (f *fakeResultRepo) CreateOCR(_ context.Context, result *models.OCRResult) error {
	if f.createOCRErr != nil {
		return f.createOCRErr
	}
	result.ID = uint(len(f.ocrRows) + 1)
	f.ocrRows = append(f.ocrRows, *result)
	return nil
}

func (f *fakeResultRepo) CreateGrading(_ context.Context, result *models.GradingResult) error {
	if f.createGradErr != nil {
		return f.createGradErr
	}
	result.ID = uint(len(f.gradingRows) + 1)
	f.gradingRows = append(f.gradingRows, *result)
	return nil
}

func (f *fakeResultRepo) CreateErrorAnalysis(_ context.Context, analysis *models.ErrorAnalysis) error {
	analysis.ID = uint(len(f.analysisRows) + 1)
	f.analysisRows = append(f.analysisRows, *analysis)
	return nil
}

func (f *fakeResultRepo) LatestOCR(_ context.Context, submissionID uint) (*models.OCRResult, error) {
	for i := len(f.ocrRows) - 1; i >= 0; i-- {
		if f.ocrRows[i].SubmissionID == submissionID {
			row := f.ocrRows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeResultRepo) LatestGrading(_ context.Context, submissionID uint) (*models.GradingResult, error) {
	for i := len(f.gradingRows) - 1; i >= 0; i-- {
		if f.gradingRows[i].SubmissionID == submissionID {
			row := f.gradingRows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeResultRepo) ListErrorAnalyses(_ context.Context, submissionID uint) ([]models.ErrorAnalysis, error) {
	var rows []models.ErrorAnalysis
	for _, row := range f.analysisRows {
		if row.SubmissionID == submissionID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeRecognizer struct {
	result ocr.Result
	err    error
	calls  int
}

func (f *fakeRecognizer) Recognize(context.Context, string) (ocr.Result, error) {
	f.calls++
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return f.result, nil
}

type fakeGrader struct {
	verdict      ai.GradingResult
	gradeErr     error
	gradeCalls   int
	entries      []ai.ErrorEntry
	analyzeErr   error
	analyzeCalls int
}

func (f *fakeGrader) Grade(context.Context, ai.GradingInput) (ai.GradingResult, error) {
	f.gradeCalls++
	if f.gradeErr != nil {
		return ai.GradingResult{}, f.gradeErr
	}
	return f.verdict, nil
}

func (f *fakeGrader) AnalyzeErrors(context.Context, ai.ErrorAnalysisInput) ([]ai.ErrorEntry, error) {
	f.analyzeCalls++
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.entries, nil
}

type fakeResolver struct {
	points map[string]uint
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, name string) (models.KnowledgePoint, error) {
	f.calls++
	if f.points == nil {
		f.points = make(map[string]uint)
	}
	id, ok := f.points[name]
	if !ok {
		id = uint(len(f.points) + 1)
		f.points[name] = id
	}
	return models.KnowledgePoint{ID: id, Name: name}, nil
}

type capturingPublisher struct {
	events []SubmissionEvent
}

func (c *capturingPublisher) Publish(event SubmissionEvent) {
	c.events = append(c.events, event)
}

func newPipelineFixture() (*fakeSubmissionRepo, *fakeResultRepo, *fakeRecognizer, *fakeGrader, *fakeResolver, *capturingPublisher) {
	submissions := &fakeSubmissionRepo{submissions: map[uint]models.Submission{
		1: {
			ID:           1,
			UserID:       7,
			FileUploadID: 3,
			Status:       models.SubmissionStatusUploaded,
			WorkMode:     models.WorkModePractice,
			FileUpload:   models.FileUpload{ID: 3, URL: "https://cdn.example.com/scan.pdf"},
		},
	}}

	return submissions, &fakeResultRepo{}, &fakeRecognizer{}, &fakeGrader{}, &fakeResolver{}, &capturingPublisher{}
}

func newTestPipeline(
	submissions *fakeSubmissionRepo,
	results *fakeResultRepo,
	recognizer *fakeRecognizer,
	grader *fakeGrader,
	resolver *fakeResolver,
	events *capturingPublisher,
) PipelineService {
	logger := zerolog.New(io.Discard)
	return NewPipelineService(submissions, results, recognizer, grader, resolver, events, logger)
}

func floatPtr(v float64) *float64 { return &v }

func TestPipelineOCRProviderFailureCompletesWithoutGrading(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.err = errors.New("connection refused")

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.Nil(t, result.OCR)
	require.Nil(t, result.Grading)
	require.Zero(t, grader.gradeCalls, "grading must not run when OCR fails")
	require.Zero(t, grader.analyzeCalls)
	require.Empty(t, results.ocrRows)
	require.Empty(t, results.gradingRows)
	require.Equal(t, models.SubmissionStatusCompleted, submissions.lastStatus())
}

func TestPipelineEmptyTranscriptionSkipsGrading(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "   ", Confidence: 0.2}

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.NotNil(t, result.OCR)
	require.Len(t, results.ocrRows, 1)
	require.Zero(t, grader.gradeCalls)
	require.Empty(t, results.gradingRows)
	require.Equal(t, models.SubmissionStatusCompleted, submissions.lastStatus())
}

func TestPipelineLowScoreRunsErrorAnalysisOnce(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "f'(x) = 2x", Confidence: 0.97}
	grader.verdict = ai.GradingResult{
		Score:    floatPtr(55),
		MaxScore: 100,
		Feedback: "链式法则使用错误",
		Errors:   []string{"导数计算错误"},
	}
	grader.entries = []ai.ErrorEntry{
		{ErrorType: "计算错误", KnowledgePointName: "导数", ErrorDescription: "漏乘内层导数", Severity: "high"},
		{ErrorType: "概念混淆", KnowledgePointName: "链式法则", ErrorDescription: "复合函数求导顺序颠倒", Severity: "medium"},
	}

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.Equal(t, 1, grader.gradeCalls)
	require.Equal(t, 1, grader.analyzeCalls, "exactly one analysis call for a low score")
	require.Len(t, results.analysisRows, 2)
	require.Equal(t, "high", results.analysisRows[0].Severity)
	require.Equal(t, models.SubmissionStatusCompleted, submissions.lastStatus())
}

func TestPipelineHighScoreSkipsErrorAnalysis(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "∫x dx = x²/2 + C", Confidence: 0.99}
	grader.verdict = ai.GradingResult{Score: floatPtr(92), MaxScore: 100, Feedback: "解答完整"}

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.Equal(t, 1, grader.gradeCalls)
	require.Zero(t, grader.analyzeCalls)
	require.Empty(t, results.analysisRows)
}

func TestPipelineGradingProviderFailureStillCompletes(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "lim x→0 sin(x)/x = 1", Confidence: 0.95}
	grader.gradeErr = errors.New("upstream timeout")

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.NotNil(t, result.OCR)
	require.Nil(t, result.Grading)
	require.Empty(t, results.gradingRows)
	require.Zero(t, grader.analyzeCalls)
	require.Equal(t, models.SubmissionStatusCompleted, submissions.lastStatus())
}

func TestPipelineMalformedGradingResponseMarksFailed(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "∬ xy dA", Confidence: 0.93}
	grader.gradeErr = fmt.Errorf("%w: parse grading json: unexpected end of input", ai.ErrMalformedResponse)

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.False(t, result.Success)
	require.Empty(t, results.gradingRows)
	require.Zero(t, grader.analyzeCalls)
	require.Equal(t, models.SubmissionStatusFailed, submissions.lastStatus())

	require.Len(t, events.events, 1)
	require.Equal(t, EventSubmissionFailed, events.events[0].Type)
}

func TestPipelineOCRPersistenceFailureMarksFailed(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "y = x²", Confidence: 0.9}
	results.createOCRErr = errors.New("disk full")

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.False(t, result.Success)
	require.Zero(t, grader.gradeCalls)
	require.Equal(t, models.SubmissionStatusFailed, submissions.lastStatus())

	require.Len(t, events.events, 1)
	require.Equal(t, EventSubmissionFailed, events.events[0].Type)
}

func TestPipelineAnalysisFailureDoesNotAffectStatus(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "dy/dx = 3x²", Confidence: 0.96}
	grader.verdict = ai.GradingResult{Score: floatPtr(40), MaxScore: 100}
	grader.analyzeErr = errors.New("rate limited")

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.Equal(t, 1, grader.analyzeCalls)
	require.Empty(t, results.analysisRows)
	require.Equal(t, models.SubmissionStatusCompleted, submissions.lastStatus())
}

func TestPipelineCompletedEventCarriesScore(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "f(x) = eˣ", Confidence: 0.98}
	grader.verdict = ai.GradingResult{Score: floatPtr(88), MaxScore: 100}

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.Len(t, events.events, 1)
	require.Equal(t, EventSubmissionCompleted, events.events[0].Type)
	require.Equal(t, uint(7), events.events[0].UserID)
	require.NotNil(t, events.events[0].Score)
	require.InDelta(t, 88, *events.events[0].Score, 0.001)
}

func TestPipelineSkipAIOption(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "x + y = 2", Confidence: 0.9}

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{SkipAI: true})

	require.True(t, result.Success)
	require.Len(t, results.ocrRows, 1)
	require.Zero(t, grader.gradeCalls)
}

func TestPipelineSanitizesFeedback(t *testing.T) {
	submissions, results, recognizer, grader, resolver, events := newPipelineFixture()
	recognizer.result = ocr.Result{Text: "∂f/∂x", Confidence: 0.91}
	grader.verdict = ai.GradingResult{
		Score:    floatPtr(85),
		MaxScore: 100,
		Feedback: `<script>alert("x")</script>步骤清晰`,
	}

	pipeline := newTestPipeline(submissions, results, recognizer, grader, resolver, events)
	result := pipeline.Process(context.Background(), 1, PipelineOptions{})

	require.True(t, result.Success)
	require.Len(t, results.gradingRows, 1)
	require.Equal(t, "步骤清晰", results.gradingRows[0].Feedback)
}
