package ai

import (
	"context"
	"errors"
)

// ErrMalformedResponse reports that the provider answered but its payload
// could not be parsed as the requested JSON shape. Callers can distinguish
// this from transport failures with errors.Is.
var ErrMalformedResponse = errors.New("malformed provider response")

// GradingInput carries the recognized text and assignment context for grading.
type GradingInput struct {
	RecognizedText string
	Subject        string
	ExerciseType   string
	MaxScore       float64
}

// GradingResult is the structured outcome returned by the grader.
type GradingResult struct {
	Score       *float64               `json:"score"`
	MaxScore    float64                `json:"max_score"`
	Feedback    string                 `json:"feedback"`
	Errors      []string               `json:"errors"`
	Suggestions []string               `json:"suggestions"`
	Strengths   []string               `json:"strengths"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// ErrorAnalysisInput carries the material for the error-analysis call.
type ErrorAnalysisInput struct {
	RecognizedText string
	Feedback       string
	Errors         []string
}

// ErrorEntry is one structured mistake identified by the analysis call.
type ErrorEntry struct {
	ErrorType          string `json:"errorType"`
	KnowledgePointName string `json:"knowledgePointName"`
	ErrorDescription   string `json:"errorDescription"`
	Severity           string `json:"severity"`
	AISuggestion       string `json:"aiSuggestion"`
}

// Grader describes an AI model capable of grading handwritten calculus work.
type Grader interface {
	Grade(ctx context.Context, input GradingInput) (GradingResult, error)
	AnalyzeErrors(ctx context.Context, input ErrorAnalysisInput) ([]ErrorEntry, error)
}
