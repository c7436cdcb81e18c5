package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/inkgrade/inkgrade-api/internal/queue"
	"github.com/inkgrade/inkgrade-api/internal/service"
)

// Processor is plugged into the asynq worker loop and runs the submission
// pipeline for each dequeued task.
type Processor struct {
	pipeline service.PipelineService
	logger   zerolog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(pipeline service.PipelineService, logger zerolog.Logger) *Processor {
	return &Processor{
		pipeline: pipeline,
		logger:   logger.With().Str("component", "worker").Logger(),
	}
}

// Handler registers the task handlers consumed by the worker binary.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskSubmissionProcess, p.handleProcess)
	return mux
}

func (p *Processor) handleProcess(ctx context.Context, task *asynq.Task) error {
	var payload queue.ProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode process payload: %w", err)
	}

	result := p.pipeline.Process(ctx, payload.SubmissionID, service.PipelineOptions{
		Mode:   payload.Mode,
		SkipAI: payload.SkipAI,
	})

	// The pipeline records its own failure state; returning an error here
	// would only make asynq mark the task failed a second time.
	if !result.Success {
		p.logger.Warn().Uint("submission_id", payload.SubmissionID).Str("error", result.Error).Msg("pipeline run failed")
	}

	return nil
}
