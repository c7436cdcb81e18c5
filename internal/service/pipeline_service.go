package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/observability"
	"github.com/inkgrade/inkgrade-api/internal/repository"
	"github.com/inkgrade/inkgrade-api/pkg/ai"
	"github.com/inkgrade/inkgrade-api/pkg/ocr"
)

// Grading scores below this trigger the error-analysis stage.
const analysisScoreThreshold = 80.0

// PipelineOptions controls a single processing run.
type PipelineOptions struct {
	Mode   string `json:"mode"`
	SkipAI bool   `json:"skip_ai"`
}

// PipelineResult reports the outcome of one run. Provider failures degrade the
// run (missing OCR/Grading) without flipping Success; only persistence
// failures inside the run produce Success=false.
type PipelineResult struct {
	Success bool
	Error   string
	OCR     *models.OCRResult
	Grading *models.GradingResult
}

// KnowledgePointResolver narrows KnowledgeService to what the pipeline needs.
type KnowledgePointResolver interface {
	Resolve(ctx context.Context, name string) (models.KnowledgePoint, error)
}

// PipelineService drives a submission from UPLOADED to a terminal state:
// OCR, optional AI grading, optional error analysis, then the status write.
// Process never returns an error to its caller; every failure is folded into
// the result or a FAILED status write.
type PipelineService interface {
	Process(ctx context.Context, submissionID uint, opts PipelineOptions) PipelineResult
}

type pipelineService struct {
	submissions repository.SubmissionRepository
	results     repository.ResultRepository
	recognizer  ocr.Recognizer
	grader      ai.Grader
	knowledge   KnowledgePointResolver
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewPipelineService constructs the processing pipeline.
func NewPipelineService(
	submissions repository.SubmissionRepository,
	results repository.ResultRepository,
	recognizer ocr.Recognizer,
	grader ai.Grader,
	knowledge KnowledgePointResolver,
	events EventPublisher,
	logger zerolog.Logger,
) PipelineService {
	return &pipelineService{
		submissions: submissions,
		results:     results,
		recognizer:  recognizer,
		grader:      grader,
		knowledge:   knowledge,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "pipeline").Logger(),
		tracer:      otel.Tracer("github.com/inkgrade/inkgrade-api/internal/service/pipeline"),
		now:         time.Now,
	}
}

func (s *pipelineService) Process(parent context.Context, submissionID uint, opts PipelineOptions) PipelineResult {
	ctx, span := s.tracer.Start(parent, "pipeline.process", trace.WithAttributes(
		attribute.Int64("submission_id", int64(submissionID)),
		attribute.String("mode", opts.Mode),
		attribute.Bool("skip_ai", opts.SkipAI),
	))
	defer span.End()

	start := s.now()
	defer func() {
		observability.PipelineDuration().Observe(time.Since(start).Seconds())
	}()

	logger := s.logger.With().Uint("submission_id", submissionID).Logger()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		observability.PipelineRuns().WithLabelValues("failed").Inc()
		logger.Error().Err(err).Msg("pipeline aborted: submission not found")
		return PipelineResult{Success: false, Error: "submission not found"}
	}

	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusProcessing, nil); err != nil {
		return s.fail(ctx, span, logger, submission, err)
	}

	result := PipelineResult{Success: true}

	ocrRow, ocrErr := s.runOCR(ctx, logger, submission)
	if ocrErr != nil {
		// Persistence failure, not a provider failure.
		return s.fail(ctx, span, logger, submission, ocrErr)
	}
	result.OCR = ocrRow

	// AI grading is skipped entirely when OCR failed or produced no text.
	if ocrRow != nil && ocrRow.HasText() && !opts.SkipAI {
		gradingRow, gradeErr := s.runGrading(ctx, logger, submission, ocrRow)
		if gradeErr != nil {
			return s.fail(ctx, span, logger, submission, gradeErr)
		}
		result.Grading = gradingRow

		if gradingRow != nil && gradingRow.Score != nil && *gradingRow.Score < analysisScoreThreshold {
			s.runErrorAnalysis(ctx, logger, submission, ocrRow, gradingRow)
		}
	}

	// The run completes even when providers degraded; only an escaping error
	// above produces FAILED. Clients observe degradation through the progress
	// projection, not the status field.
	completedAt := s.now()
	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusCompleted, &completedAt); err != nil {
		return s.fail(ctx, span, logger, submission, err)
	}

	observability.PipelineRuns().WithLabelValues("completed").Inc()
	span.SetStatus(codes.Ok, "completed")

	if s.events != nil {
		event := SubmissionEvent{
			Type:         EventSubmissionCompleted,
			SubmissionID: submission.ID,
			UserID:       submission.UserID,
		}
		if result.Grading != nil {
			event.Score = result.Grading.Score
		}
		s.events.Publish(event)
	}

	logger.Info().Bool("graded", result.Grading != nil).Msg("pipeline completed")
	return result
}

// runOCR invokes the provider and persists the transcription. A provider
// failure returns (nil, nil): the run continues without an OCR row. Only a
// database write failure is returned as an error.
func (s *pipelineService) runOCR(ctx context.Context, logger zerolog.Logger, submission models.Submission) (*models.OCRResult, error) {
	start := s.now()
	recognized, err := s.recognizer.Recognize(ctx, submission.FileUpload.URL)
	elapsed := time.Since(start)

	if err != nil {
		observability.PipelineStageFailures().WithLabelValues("ocr").Inc()
		logger.Warn().Err(err).Msg("ocr provider failed, continuing without text")
		return nil, nil
	}

	row := models.OCRResult{
		SubmissionID:     submission.ID,
		RecognizedText:   recognized.Text,
		Confidence:       recognized.Confidence,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Raw:              datatypes.JSONMap(recognized.Raw),
	}
	if err := s.results.CreateOCR(ctx, &row); err != nil {
		return nil, err
	}

	return &row, nil
}

// runGrading invokes the LLM and persists the verdict. Transport failures
// degrade the run; a malformed provider payload or a write failure aborts it.
func (s *pipelineService) runGrading(ctx context.Context, logger zerolog.Logger, submission models.Submission, ocrRow *models.OCRResult) (*models.GradingResult, error) {
	input := ai.GradingInput{
		RecognizedText: ocrRow.RecognizedText,
		Subject:        "微积分",
		MaxScore:       100,
	}
	if submission.Assignment != nil {
		if submission.Assignment.Subject != "" {
			input.Subject = submission.Assignment.Subject
		}
		input.ExerciseType = submission.Assignment.ExerciseType
		if submission.Assignment.MaxScore > 0 {
			input.MaxScore = submission.Assignment.MaxScore
		}
	}

	start := s.now()
	verdict, err := s.grader.Grade(ctx, input)
	elapsed := time.Since(start)

	if err != nil {
		observability.PipelineStageFailures().WithLabelValues("grading").Inc()
		if errors.Is(err, ai.ErrMalformedResponse) {
			return nil, err
		}
		logger.Warn().Err(err).Msg("ai grading failed, completing without grade")
		return nil, nil
	}

	row := models.GradingResult{
		SubmissionID:     submission.ID,
		Score:            verdict.Score,
		MaxScore:         verdict.MaxScore,
		Feedback:         s.sanitizer.Sanitize(verdict.Feedback),
		Errors:           s.encodeStrings(verdict.Errors),
		Suggestions:      s.encodeStrings(verdict.Suggestions),
		Strengths:        s.encodeStrings(verdict.Strengths),
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
	if verdict.Raw != nil {
		row.Raw = datatypes.JSONMap(verdict.Raw)
	}
	if err := s.results.CreateGrading(ctx, &row); err != nil {
		return nil, err
	}

	return &row, nil
}

// runErrorAnalysis is best effort: any failure is logged and swallowed so a
// flaky analysis call never affects the submission status.
func (s *pipelineService) runErrorAnalysis(ctx context.Context, logger zerolog.Logger, submission models.Submission, ocrRow *models.OCRResult, gradingRow *models.GradingResult) {
	entries, err := s.grader.AnalyzeErrors(ctx, ai.ErrorAnalysisInput{
		RecognizedText: ocrRow.RecognizedText,
		Feedback:       gradingRow.Feedback,
		Errors:         decodeStrings(gradingRow.Errors),
	})
	if err != nil {
		observability.PipelineStageFailures().WithLabelValues("analysis").Inc()
		logger.Warn().Err(err).Msg("error analysis failed, skipping")
		return
	}

	for _, entry := range entries {
		point, err := s.knowledge.Resolve(ctx, entry.KnowledgePointName)
		if err != nil {
			logger.Warn().Err(err).Str("knowledge_point", entry.KnowledgePointName).Msg("failed to resolve knowledge point")
			continue
		}

		analysis := models.ErrorAnalysis{
			SubmissionID:     submission.ID,
			KnowledgePointID: point.ID,
			ErrorType:        entry.ErrorType,
			Description:      s.sanitizer.Sanitize(entry.ErrorDescription),
			Severity:         normalizeSeverity(entry.Severity),
			AISuggestion:     s.sanitizer.Sanitize(entry.AISuggestion),
		}
		if err := s.results.CreateErrorAnalysis(ctx, &analysis); err != nil {
			logger.Warn().Err(err).Msg("failed to persist error analysis entry")
		}
	}
}

// fail attempts the FAILED status write; when that write itself fails there is
// nothing left to do but log and give up.
func (s *pipelineService) fail(ctx context.Context, span trace.Span, logger zerolog.Logger, submission models.Submission, cause error) PipelineResult {
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())
	observability.PipelineRuns().WithLabelValues("failed").Inc()
	logger.Error().Err(cause).Msg("pipeline failed")

	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusFailed, nil); err != nil {
		logger.Error().Err(err).Msg("failed to mark submission FAILED, giving up")
	}

	if s.events != nil {
		s.events.Publish(SubmissionEvent{
			Type:         EventSubmissionFailed,
			SubmissionID: submission.ID,
			UserID:       submission.UserID,
		})
	}

	return PipelineResult{Success: false, Error: cause.Error()}
}

func (s *pipelineService) encodeStrings(items []string) datatypes.JSON {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		cleaned = append(cleaned, s.sanitizer.Sanitize(item))
	}

	payload, err := json.Marshal(cleaned)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(payload)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func normalizeSeverity(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return "low"
	case "high":
		return "high"
	default:
		return "medium"
	}
}
