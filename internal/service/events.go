package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubmissionEvent announces a submission reaching a terminal state. Downstream
// consumers (notification fan-out, the extension's push channel) subscribe to
// `<base>.submission.*`.
type SubmissionEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	SubmissionID uint      `json:"submission_id"`
	UserID       uint      `json:"user_id"`
	Score        *float64  `json:"score,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Event type values.
const (
	EventSubmissionCompleted = "submission.completed"
	EventSubmissionFailed    = "submission.failed"
)

// EventPublisher emits submission lifecycle events. Publishing is best effort;
// failures never affect pipeline outcome.
type EventPublisher interface {
	Publish(event SubmissionEvent)
}

type natsPublisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewNATSPublisher constructs a nil-safe NATS-backed event publisher. A nil
// connection turns publishing into a no-op, which keeps tests and single-node
// deployments free of a broker dependency.
func NewNATSPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	base := strings.Trim(strings.ReplaceAll(subjectBase, ":", "."), ".")
	if base == "" {
		base = "inkgrade"
	}

	return &natsPublisher{
		conn:        conn,
		subjectBase: base,
		logger:      logger.With().Str("component", "event_publisher").Logger(),
		now:         time.Now,
	}
}

func (p *natsPublisher) Publish(event SubmissionEvent) {
	if p.conn == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to encode submission event")
		return
	}

	subject := p.subjectBase + "." + event.Type
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish submission event")
	}
}
