package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/inkgrade/inkgrade-api/internal/service"
)

const (
	// TaskSubmissionProcess is scheduled each time a submission is created or reprocessed.
	TaskSubmissionProcess = "submission:process"

	// QueueDefault is the asynq queue pipeline tasks run on.
	QueueDefault = "default"
)

// ProcessPayload is serialized into the task so the worker knows which
// submission to run the pipeline against.
type ProcessPayload struct {
	SubmissionID uint   `json:"submission_id"`
	Mode         string `json:"mode"`
	SkipAI       bool   `json:"skip_ai"`
}

// Enqueuer schedules pipeline runs on the shared asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// Dispatch enqueues one pipeline run. Provider calls are not retried, so the
// task itself carries MaxRetry(0): a failed run stays FAILED until a client
// explicitly reprocesses.
func (e *Enqueuer) Dispatch(ctx context.Context, submissionID uint, opts service.PipelineOptions) error {
	payload := ProcessPayload{
		SubmissionID: submissionID,
		Mode:         opts.Mode,
		SkipAI:       opts.SkipAI,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal process payload: %w", err)
	}

	task := asynq.NewTask(TaskSubmissionProcess, data)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue process task: %w", err)
	}

	return nil
}
