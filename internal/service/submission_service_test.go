package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
)

type fakeUploadRepo struct {
	uploads map[uint]models.FileUpload
}

func (f *fakeUploadRepo) Create(_ context.Context, upload *models.FileUpload) error {
	if f.uploads == nil {
		f.uploads = make(map[uint]models.FileUpload)
	}
	if upload.ID == 0 {
		upload.ID = uint(len(f.uploads) + 1)
	}
	f.uploads[upload.ID] = *upload
	return nil
}

func (f *fakeUploadRepo) GetByID(_ context.Context, id uint) (models.FileUpload, error) {
	upload, ok := f.uploads[id]
	if !ok {
		return models.FileUpload{}, gorm.ErrRecordNotFound
	}
	return upload, nil
}

func (f *fakeUploadRepo) ListByUser(_ context.Context, userID uint) ([]models.FileUpload, error) {
	var uploads []models.FileUpload
	for _, upload := range f.uploads {
		if upload.UserID == userID {
			uploads = append(uploads, upload)
		}
	}
	return uploads, nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.Assignment
}

func (f *fakeAssignmentRepo) List(_ context.Context, classroomID *uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	for _, assignment := range f.assignments {
		if classroomID == nil || assignment.ClassroomID == *classroomID {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	if f.assignments == nil {
		f.assignments = make(map[uint]models.Assignment)
	}
	if assignment.ID == 0 {
		assignment.ID = uint(len(f.assignments) + 1)
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id uint) error {
	delete(f.assignments, id)
	return nil
}

type fakeDispatcher struct {
	dispatched []uint
	err        error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, submissionID uint, _ PipelineOptions) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, submissionID)
	return nil
}

func newSubmissionFixture() (*fakeSubmissionRepo, *fakeUploadRepo, *fakeAssignmentRepo, *fakeResultRepo, *fakeDispatcher, SubmissionService) {
	submissions := &fakeSubmissionRepo{submissions: map[uint]models.Submission{}}
	uploads := &fakeUploadRepo{uploads: map[uint]models.FileUpload{
		3: {ID: 3, UserID: 7, URL: "https://cdn.example.com/scan.pdf"},
	}}
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{
		5: {ID: 5, ClassroomID: 1, Title: "第三章习题", MaxScore: 100, DueDate: time.Now().Add(48 * time.Hour)},
	}}
	results := &fakeResultRepo{}
	dispatcher := &fakeDispatcher{}

	svc := NewSubmissionService(
		submissions, uploads, assignments, results, dispatcher,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.New(io.Discard),
	)

	return submissions, uploads, assignments, results, dispatcher, svc
}

func TestCreateSubmissionDispatchesPipeline(t *testing.T) {
	submissions, _, _, _, dispatcher, svc := newSubmissionFixture()

	response, err := svc.Create(context.Background(), 7, dto.SubmissionCreateRequest{FileUploadID: 3})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusUploaded, response.Status)
	require.Equal(t, models.WorkModePractice, response.WorkMode)
	require.Len(t, dispatcher.dispatched, 1)
	require.Len(t, submissions.submissions, 1)
}

func TestCreateSubmissionWithAssignmentForcesHomeworkMode(t *testing.T) {
	_, _, _, _, _, svc := newSubmissionFixture()

	assignmentID := uint(5)
	response, err := svc.Create(context.Background(), 7, dto.SubmissionCreateRequest{
		FileUploadID: 3,
		AssignmentID: &assignmentID,
	})
	require.NoError(t, err)
	require.Equal(t, models.WorkModeHomework, response.WorkMode)
	require.NotNil(t, response.AssignmentID)
	require.Equal(t, assignmentID, *response.AssignmentID)
}

func TestCreateSubmissionRejectsForeignUpload(t *testing.T) {
	_, _, _, _, dispatcher, svc := newSubmissionFixture()

	_, err := svc.Create(context.Background(), 99, dto.SubmissionCreateRequest{FileUploadID: 3})
	require.ErrorIs(t, err, ErrSubmissionForbidden)
	require.Empty(t, dispatcher.dispatched)
}

func TestCreateSubmissionUnknownUpload(t *testing.T) {
	_, _, _, _, _, svc := newSubmissionFixture()

	_, err := svc.Create(context.Background(), 7, dto.SubmissionCreateRequest{FileUploadID: 404})
	require.ErrorIs(t, err, ErrUploadNotFound)
}

func TestCreateSubmissionDispatchFailureSurfaces(t *testing.T) {
	_, _, _, _, dispatcher, svc := newSubmissionFixture()
	dispatcher.err = errors.New("queue unavailable")

	_, err := svc.Create(context.Background(), 7, dto.SubmissionCreateRequest{FileUploadID: 3})
	require.Error(t, err)
}

func TestStatusProjectsFromLatestResults(t *testing.T) {
	submissions, _, _, results, _, svc := newSubmissionFixture()
	submissions.submissions[1] = models.Submission{
		ID: 1, UserID: 7, FileUploadID: 3, Status: models.SubmissionStatusProcessing,
	}
	results.ocrRows = []models.OCRResult{
		{ID: 1, SubmissionID: 1, RecognizedText: "f(x) = x²", Confidence: 0.9},
	}

	status, err := svc.Status(context.Background(), 1, 7, models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, 60, status.Progress)
	require.Equal(t, StageGrading, status.Stage)
	require.NotNil(t, status.OCR)
	require.Nil(t, status.Grading)
}

func TestStatusIncludesAnalysesWithGrading(t *testing.T) {
	submissions, _, _, results, _, svc := newSubmissionFixture()
	score := 55.0
	submissions.submissions[1] = models.Submission{
		ID: 1, UserID: 7, FileUploadID: 3, Status: models.SubmissionStatusCompleted,
	}
	results.ocrRows = []models.OCRResult{{ID: 1, SubmissionID: 1, RecognizedText: "y' = 2x"}}
	results.gradingRows = []models.GradingResult{{ID: 1, SubmissionID: 1, Score: &score, Feedback: "存在计算错误"}}
	results.analysisRows = []models.ErrorAnalysis{
		{ID: 1, SubmissionID: 1, KnowledgePointID: 1, ErrorType: "计算错误",
			KnowledgePoint: models.KnowledgePoint{ID: 1, Name: "导数", Chapter: "导数与微分"}},
	}

	status, err := svc.Status(context.Background(), 1, 7, models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, 100, status.Progress)
	require.Len(t, status.ErrorAnalyses, 1)
	require.Equal(t, "导数", status.ErrorAnalyses[0].KnowledgePoint)
}

func TestStatusEnforcesOwnership(t *testing.T) {
	submissions, _, _, _, _, svc := newSubmissionFixture()
	submissions.submissions[1] = models.Submission{ID: 1, UserID: 7, FileUploadID: 3}

	_, err := svc.Status(context.Background(), 1, 99, models.RoleStudent)
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	// Teachers can read any submission.
	_, err = svc.Status(context.Background(), 1, 99, models.RoleTeacher)
	require.NoError(t, err)
}

func TestReprocessRejectsInFlightRun(t *testing.T) {
	submissions, _, _, _, dispatcher, svc := newSubmissionFixture()
	submissions.submissions[1] = models.Submission{
		ID: 1, UserID: 7, FileUploadID: 3, Status: models.SubmissionStatusProcessing,
	}

	_, err := svc.Reprocess(context.Background(), 1, 7, models.RoleStudent)
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	require.Empty(t, dispatcher.dispatched)
}

func TestReprocessDispatchesTerminalSubmission(t *testing.T) {
	submissions, _, _, _, dispatcher, svc := newSubmissionFixture()
	submissions.submissions[1] = models.Submission{
		ID: 1, UserID: 7, FileUploadID: 3, Status: models.SubmissionStatusCompleted,
		WorkMode: models.WorkModeHomework,
	}

	_, err := svc.Reprocess(context.Background(), 1, 7, models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, []uint{1}, dispatcher.dispatched)
}

func TestDeleteUnknownSubmission(t *testing.T) {
	_, _, _, _, _, svc := newSubmissionFixture()

	err := svc.Delete(context.Background(), 42, 7, models.RoleStudent)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
