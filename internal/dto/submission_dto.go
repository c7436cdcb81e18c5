package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting a file for grading.
type SubmissionCreateRequest struct {
	FileUploadID uint   `json:"file_upload_id" validate:"required,gt=0"`
	AssignmentID *uint  `json:"assignment_id" validate:"omitempty,gt=0"`
	WorkMode     string `json:"work_mode" validate:"omitempty,oneof=practice homework"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=UPLOADED PROCESSING COMPLETED FAILED"`
	WorkMode     *string `query:"work_mode" validate:"omitempty,oneof=practice homework"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	FileUploadID uint       `json:"file_upload_id"`
	FileURL      string     `json:"file_url"`
	AssignmentID *uint      `json:"assignment_id,omitempty"`
	WorkMode     string     `json:"work_mode"`
	Status       string     `json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewSubmissionResponse maps a Submission row to its API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           submission.ID,
		UserID:       submission.UserID,
		FileUploadID: submission.FileUploadID,
		FileURL:      submission.FileUpload.URL,
		AssignmentID: submission.AssignmentID,
		WorkMode:     submission.WorkMode,
		Status:       submission.Status,
		SubmittedAt:  submission.SubmittedAt,
		CompletedAt:  submission.CompletedAt,
	}
}

// NewSubmissionResponseSlice maps a slice of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// OCRResultResponse is the API shape of an OCR pass.
type OCRResultResponse struct {
	RecognizedText   string    `json:"recognized_text"`
	Confidence       float64   `json:"confidence"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// GradingResultResponse is the API shape of a grading pass.
type GradingResultResponse struct {
	Score            *float64  `json:"score"`
	MaxScore         float64   `json:"max_score"`
	Feedback         string    `json:"feedback"`
	Errors           []string  `json:"errors"`
	Suggestions      []string  `json:"suggestions"`
	Strengths        []string  `json:"strengths"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// ErrorAnalysisResponse is the API shape of one tagged mistake.
type ErrorAnalysisResponse struct {
	ID             uint   `json:"id"`
	ErrorType      string `json:"error_type"`
	KnowledgePoint string `json:"knowledge_point"`
	Chapter        string `json:"chapter"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	AISuggestion   string `json:"ai_suggestion"`
}

// SubmissionStatusResponse combines the derived progress projection with the
// latest result rows for the status polling endpoint.
type SubmissionStatusResponse struct {
	SubmissionID  uint                    `json:"submission_id"`
	Status        string                  `json:"status"`
	Progress      int                     `json:"progress"`
	Stage         string                  `json:"stage"`
	OCR           *OCRResultResponse      `json:"ocr,omitempty"`
	Grading       *GradingResultResponse  `json:"grading,omitempty"`
	ErrorAnalyses []ErrorAnalysisResponse `json:"error_analyses,omitempty"`
}

// NewOCRResultResponse maps an OCRResult row to its API shape.
func NewOCRResultResponse(result models.OCRResult) OCRResultResponse {
	return OCRResultResponse{
		RecognizedText:   result.RecognizedText,
		Confidence:       result.Confidence,
		ProcessingTimeMs: result.ProcessingTimeMs,
		CreatedAt:        result.CreatedAt,
	}
}

// NewGradingResultResponse maps a GradingResult row to its API shape.
func NewGradingResultResponse(result models.GradingResult) GradingResultResponse {
	return GradingResultResponse{
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		Feedback:         result.Feedback,
		Errors:           decodeStringArray(result.Errors),
		Suggestions:      decodeStringArray(result.Suggestions),
		Strengths:        decodeStringArray(result.Strengths),
		ProcessingTimeMs: result.ProcessingTimeMs,
		CreatedAt:        result.CreatedAt,
	}
}

// NewErrorAnalysisResponseSlice maps error analyses with their knowledge points.
func NewErrorAnalysisResponseSlice(analyses []models.ErrorAnalysis) []ErrorAnalysisResponse {
	responses := make([]ErrorAnalysisResponse, 0, len(analyses))
	for _, analysis := range analyses {
		responses = append(responses, ErrorAnalysisResponse{
			ID:             analysis.ID,
			ErrorType:      analysis.ErrorType,
			KnowledgePoint: analysis.KnowledgePoint.Name,
			Chapter:        analysis.KnowledgePoint.Chapter,
			Description:    analysis.Description,
			Severity:       analysis.Severity,
			AISuggestion:   analysis.AISuggestion,
		})
	}
	return responses
}

func decodeStringArray(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	return items
}
