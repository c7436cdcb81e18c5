package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ocrDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "inkgrade",
		Subsystem: "ocr",
		Name:      "request_duration_seconds",
		Help:      "Duration of OCR provider requests",
	})

	ocrFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inkgrade",
		Subsystem: "ocr",
		Name:      "request_failures_total",
		Help:      "Number of failed OCR provider requests",
	})
)

// Result is the recognized content returned by the OCR provider.
type Result struct {
	Text       string
	Confidence float64
	Raw        map[string]interface{}
}

// Recognizer describes a provider that can transcribe a stored file by URL.
type Recognizer interface {
	Recognize(ctx context.Context, fileURL string) (Result, error)
}

// Config contains credentials and endpoint settings for the Mathpix-style API.
type Config struct {
	BaseURL string
	AppID   string
	AppKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to a Mathpix-compatible text recognition endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	appID   string
	appKey  string
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// New constructs an OCR client.
func New(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("ocr credentials must be provided")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mathpix.com/v3"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
		tracer:  otel.Tracer("github.com/inkgrade/inkgrade-api/pkg/ocr"),
		logger:  cfg.Logger.With().Str("component", "ocr_client").Logger(),
	}, nil
}

type textRequest struct {
	Src     string   `json:"src"`
	Formats []string `json:"formats"`
}

type textResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// Recognize submits the file URL for transcription and returns the recognized text.
func (c *Client) Recognize(parent context.Context, fileURL string) (Result, error) {
	ctx, span := c.tracer.Start(parent, "ocr.recognize", trace.WithAttributes(
		attribute.String("ocr.endpoint", c.baseURL),
	))
	defer span.End()

	body, err := json.Marshal(textRequest{Src: fileURL, Formats: []string{"text"}})
	if err != nil {
		return Result{}, fmt.Errorf("encode ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("app_id", c.appID)
	req.Header.Set("app_key", c.appKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	ocrDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		ocrFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		ocrFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("read ocr response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		ocrFailures.Inc()
		err := fmt.Errorf("ocr provider returned status %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	var parsed textResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		ocrFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("parse ocr response: %w", err)
	}

	if parsed.Error != "" {
		ocrFailures.Inc()
		err := fmt.Errorf("ocr provider error: %s", parsed.Error)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		raw = map[string]interface{}{"body": string(payload)}
	}

	c.logger.Debug().Float64("confidence", parsed.Confidence).Int("text_len", len(parsed.Text)).Msg("ocr completed")

	return Result{
		Text:       parsed.Text,
		Confidence: parsed.Confidence,
		Raw:        raw,
	}, nil
}
