package server

import (
	"log/slog"

	"corridord/core/events"
	"corridord/core/types"
)

type eventPayload interface {
	Event() *types.Event
}

// EventLogger is an events.Emitter that mirrors every engine event into the
// structured log, making settlements and flow transitions observable without
// a dedicated indexer.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger constructs an emitter writing to the supplied logger.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLogger{logger: logger}
}

// Emit implements events.Emitter.
func (l *EventLogger) Emit(evt events.Event) {
	if l == nil || evt == nil {
		return
	}
	args := []any{"event", evt.EventType()}
	if payload, ok := evt.(eventPayload); ok {
		if inner := payload.Event(); inner != nil {
			for key, value := range inner.Attributes {
				args = append(args, key, value)
			}
		}
	}
	l.logger.Info("engine event", args...)
}

var _ events.Emitter = (*EventLogger)(nil)
