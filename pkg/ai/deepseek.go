package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inkgrade",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI grading and analysis requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inkgrade",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI grading and analysis requests",
	}, []string{"model", "operation"})
)

// DeepseekConfig defines configuration options for the Deepseek grader.
type DeepseekConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// DeepseekGrader implements Grader against the Deepseek chat completion API,
// which is wire-compatible with the OpenAI client.
type DeepseekGrader struct {
	client *openai.Client
	cfg    DeepseekConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewDeepseekGrader builds a grader using the provided configuration.
func NewDeepseekGrader(cfg DeepseekConfig) (*DeepseekGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com"
	}

	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/inkgrade/inkgrade-api/pkg/ai/deepseek")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	client := openai.NewClientWithConfig(config)

	return &DeepseekGrader{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Grade sends the recognized text to Deepseek and parses the structured verdict.
func (g *DeepseekGrader) Grade(parent context.Context, input GradingInput) (GradingResult, error) {
	ctx, span := g.tracer.Start(parent, "deepseek.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("subject", input.Subject),
	))
	defer span.End()

	content, usage, err := g.complete(ctx, "grade", gradingSystemPrompt(), buildGradingPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	result, err := parseGradingResponse(content, input.MaxScore)
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	result.Raw = map[string]interface{}{"usage": usage}
	return result, nil
}

// AnalyzeErrors asks Deepseek to break grading feedback into structured error entries.
func (g *DeepseekGrader) AnalyzeErrors(parent context.Context, input ErrorAnalysisInput) ([]ErrorEntry, error) {
	ctx, span := g.tracer.Start(parent, "deepseek.analyze_errors", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	content, _, err := g.complete(ctx, "analyze", analysisSystemPrompt(), buildAnalysisPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var payload struct {
		ErrorAnalysis []ErrorEntry `json:"errorAnalysis"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "analyze").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: parse error analysis json: %v", ErrMalformedResponse, err)
	}

	return payload.ErrorAnalysis, nil
}

func (g *DeepseekGrader) complete(ctx context.Context, operation, system, user string) (string, openai.Usage, error) {
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(g.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, operation).Inc()
		return "", openai.Usage{}, fmt.Errorf("deepseek %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(g.cfg.Model, operation).Inc()
		return "", openai.Usage{}, fmt.Errorf("no choices returned from deepseek")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage, nil
}

func gradingSystemPrompt() string {
	return "You are an experienced calculus teacher grading handwritten student work that was transcribed by OCR. " +
		"Respond with a JSON object containing score (number), maxScore, feedback (string), and arrays errors, " +
		"suggestions, and strengths. Judge mathematical correctness step by step and be tolerant of OCR noise."
}

func buildGradingPrompt(input GradingInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Subject\n")
	builder.WriteString(input.Subject)
	builder.WriteString("\n\n# Exercise Type\n")
	builder.WriteString(input.ExerciseType)
	builder.WriteString("\n\n# Max Score\n")
	fmt.Fprintf(&builder, "%.0f", input.MaxScore)
	builder.WriteString("\n\n# Student Work (OCR transcription)\n")
	builder.WriteString(input.RecognizedText)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func analysisSystemPrompt() string {
	return "You are a calculus tutor classifying the mistakes in a graded submission. Respond with a JSON object " +
		`{"errorAnalysis": [{"errorType", "knowledgePointName", "errorDescription", "severity", "aiSuggestion"}]}. ` +
		"severity is one of low, medium, high. knowledgePointName is the calculus concept the mistake belongs to, " +
		"in Chinese (for example 洛必达法则, 分部积分法)."
}

func buildAnalysisPrompt(input ErrorAnalysisInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Student Work (OCR transcription)\n")
	builder.WriteString(input.RecognizedText)
	builder.WriteString("\n\n# Grading Feedback\n")
	builder.WriteString(input.Feedback)
	if len(input.Errors) > 0 {
		builder.WriteString("\n\n# Identified Errors\n")
		for _, item := range input.Errors {
			builder.WriteString("- ")
			builder.WriteString(item)
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseGradingResponse(content string, maxScore float64) (GradingResult, error) {
	type payload struct {
		Score       *float64 `json:"score"`
		MaxScore    float64  `json:"maxScore"`
		Feedback    string   `json:"feedback"`
		Errors      []string `json:"errors"`
		Suggestions []string `json:"suggestions"`
		Strengths   []string `json:"strengths"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return GradingResult{}, fmt.Errorf("%w: parse grading json: %v", ErrMalformedResponse, err)
	}

	if data.MaxScore <= 0 {
		data.MaxScore = maxScore
	}
	if data.MaxScore <= 0 {
		data.MaxScore = 100
	}

	if data.Score != nil {
		if *data.Score < 0 {
			zero := 0.0
			data.Score = &zero
		}
		if *data.Score > data.MaxScore {
			capped := data.MaxScore
			data.Score = &capped
		}
	}

	return GradingResult{
		Score:       data.Score,
		MaxScore:    data.MaxScore,
		Feedback:    data.Feedback,
		Errors:      data.Errors,
		Suggestions: data.Suggestions,
		Strengths:   data.Strengths,
	}, nil
}
