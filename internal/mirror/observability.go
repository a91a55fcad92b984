package mirror

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// EventKind distinguishes remote calls from cache reloads.
type EventKind string

const (
	EventRemoteCall EventKind = "mirror_remote_call"
	EventReload     EventKind = "mirror_reload"
)

// Event captures lightweight execution telemetry for one remote call or
// domain reload.
type Event struct {
	Kind      EventKind
	Name      string
	Domain    Domain
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// Observer receives mirror events.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) Observe(context.Context, Event) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes mirror events to the provided writer.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) Observe(ctx context.Context, event Event) {
	attrs := make([]any, 0, 10+len(event.Fields)*2)
	attrs = append(attrs,
		"name", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	if event.Domain != "" {
		attrs = append(attrs, "domain", string(event.Domain))
	}
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, string(event.Kind), attrs...)
		return
	}
	o.logger.InfoContext(ctx, string(event.Kind), attrs...)
}
