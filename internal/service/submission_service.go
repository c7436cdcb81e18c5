package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/dto"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUploadNotFound indicates the referenced file upload does not exist.
var ErrUploadNotFound = errors.New("file upload not found")

// ErrSubmissionForbidden indicates the caller may not access the submission.
var ErrSubmissionForbidden = errors.New("forbidden")

// ErrSubmissionInFlight indicates the submission is currently processing.
var ErrSubmissionInFlight = errors.New("submission is currently processing")

// ErrAssignmentPastDue indicates the assignment deadline has passed.
var ErrAssignmentPastDue = errors.New("assignment is past due")

// PipelineDispatcher hands a submission to the background worker. The creating
// request returns as soon as the task is queued.
type PipelineDispatcher interface {
	Dispatch(ctx context.Context, submissionID uint, opts PipelineOptions) error
}

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	Create(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	List(ctx context.Context, userID uint, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionResponse, error)
	Status(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionStatusResponse, error)
	Delete(ctx context.Context, id, viewerID uint, role string) error
	Reprocess(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	uploads     repository.UploadRepository
	assignments repository.AssignmentRepository
	results     repository.ResultRepository
	dispatcher  PipelineDispatcher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	uploadRepo repository.UploadRepository,
	assignmentRepo repository.AssignmentRepository,
	resultRepo repository.ResultRepository,
	dispatcher PipelineDispatcher,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		uploads:     uploadRepo,
		assignments: assignmentRepo,
		results:     resultRepo,
		dispatcher:  dispatcher,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	upload, err := s.uploads.GetByID(ctx, payload.FileUploadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrUploadNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if upload.UserID != userID {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	workMode := payload.WorkMode
	if workMode == "" {
		workMode = models.WorkModePractice
	}

	if payload.AssignmentID != nil {
		assignment, err := s.assignments.GetByID(ctx, *payload.AssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SubmissionResponse{}, ErrAssignmentNotFound
			}
			return dto.SubmissionResponse{}, err
		}

		if assignment.IsPastDue(s.now()) {
			return dto.SubmissionResponse{}, ErrAssignmentPastDue
		}

		workMode = models.WorkModeHomework
	}

	submission := models.Submission{
		UserID:       userID,
		FileUploadID: upload.ID,
		AssignmentID: payload.AssignmentID,
		WorkMode:     workMode,
		Status:       models.SubmissionStatusUploaded,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.dispatcher.Dispatch(ctx, submission.ID, PipelineOptions{Mode: workMode}); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to dispatch pipeline")
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Str("work_mode", workMode).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) List(ctx context.Context, userID uint, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		UserID:       &userID,
		AssignmentID: filter.AssignmentID,
		Status:       filter.Status,
		WorkMode:     filter.WorkMode,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id, viewerID, role)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Status(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionStatusResponse, error) {
	submission, err := s.load(ctx, id, viewerID, role)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	ocrRow, err := s.results.LatestOCR(ctx, id)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	gradingRow, err := s.results.LatestGrading(ctx, id)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	progress, stage := ProjectProgress(ocrRow, gradingRow)

	response := dto.SubmissionStatusResponse{
		SubmissionID: submission.ID,
		Status:       submission.Status,
		Progress:     progress,
		Stage:        stage,
	}

	if ocrRow != nil {
		ocr := dto.NewOCRResultResponse(*ocrRow)
		response.OCR = &ocr
	}

	if gradingRow != nil {
		grading := dto.NewGradingResultResponse(*gradingRow)
		response.Grading = &grading

		analyses, err := s.results.ListErrorAnalyses(ctx, id)
		if err != nil {
			return dto.SubmissionStatusResponse{}, err
		}
		response.ErrorAnalyses = dto.NewErrorAnalysisResponseSlice(analyses)
	}

	return response, nil
}

func (s *submissionService) Delete(ctx context.Context, id, viewerID uint, role string) error {
	if _, err := s.load(ctx, id, viewerID, role); err != nil {
		return err
	}

	if err := s.submissions.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("submission_id", id).Msg("submission deleted")
	return nil
}

// Reprocess re-enqueues a pipeline run. Result rows from the previous run stay
// in place; readers only consult the latest row per kind.
func (s *submissionService) Reprocess(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionResponse, error) {
	submission, err := s.load(ctx, id, viewerID, role)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status == models.SubmissionStatusProcessing {
		return dto.SubmissionResponse{}, ErrSubmissionInFlight
	}

	if err := s.dispatcher.Dispatch(ctx, submission.ID, PipelineOptions{Mode: submission.WorkMode}); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission reprocess requested")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) load(ctx context.Context, id, viewerID uint, role string) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	if submission.UserID != viewerID && role != models.RoleTeacher {
		return models.Submission{}, ErrSubmissionForbidden
	}

	return submission, nil
}
