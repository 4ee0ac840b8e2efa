package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRecorder writes events as structured log lines.
type LogRecorder struct {
	logger zerolog.Logger
}

func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.With().Str("component", "audit").Logger()}
}

func (r *LogRecorder) Record(ctx context.Context, event *Event) error {
	prepare(ctx, event)

	level := zerolog.InfoLevel
	if event.Status != StatusSuccess {
		level = zerolog.WarnLevel
	}

	e := r.logger.WithLevel(level).
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Str("status", string(event.Status)).
		Str("subject", event.Subject).
		Str("ip", event.IPAddress).
		Str("request_id", event.RequestID)
	if event.ActorID != nil {
		e = e.Str("actor_id", event.ActorID.String())
	}
	if len(event.Metadata) > 0 {
		e = e.Fields(event.Metadata)
	}
	e.Time("at", event.CreatedAt).Msg("auth event")
	return nil
}
