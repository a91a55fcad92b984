// Package mirror keeps a local, lazily refreshed copy of remote course state.
//
// Every container tracks one validity flag per domain it owns. A read of an
// invalid domain reloads it from the transport first. Writes whose remote
// effect cannot be reproduced locally (the service does not return new ids)
// invalidate the domain; writes that can be applied locally update the copy
// in place and leave the domain valid.
package mirror

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Session is the explicit context shared by every container created from it.
type Session struct {
	Email     string
	transport Transport
	observer  Observer
	tracer    trace.Tracer
	now       func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithObserver sets the event observer. A nil observer is ignored.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock replaces time.Now for duration measurement and export deadlines.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracerProvider sends remote-call spans to tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) SessionOption {
	return func(s *Session) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewSession binds an authenticated account email to its transport.
func NewSession(email string, t Transport, opts ...SessionOption) *Session {
	s := &Session{
		Email:     email,
		transport: t,
		observer:  NoopObserver{},
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transport returns the session's remote collaborator.
func (s *Session) Transport() Transport {
	return s.transport
}

// call runs one transport operation inside a span and records its outcome.
func (s *Session) call(ctx context.Context, op string, fields map[string]any, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "scopesync."+op, trace.WithAttributes(spanAttrs(fields)...))
	defer span.End()

	start := s.now()
	err := fn(ctx)
	dur := s.now().Sub(start)

	result := "ok"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	remoteCallsTotal.WithLabelValues(op, result).Inc()
	remoteCallDuration.WithLabelValues(op).Observe(dur.Seconds())

	s.observer.Observe(ctx, Event{
		Kind:      EventRemoteCall,
		Name:      op,
		Duration:  dur,
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
	return err
}

// reloaded records a completed reload of d.
func (s *Session) reloaded(ctx context.Context, d Domain, fields map[string]any, start time.Time, err error) {
	if err == nil {
		reloadsTotal.WithLabelValues(string(d)).Inc()
	}
	s.observer.Observe(ctx, Event{
		Kind:      EventReload,
		Name:      "reload_" + string(d),
		Domain:    d,
		Duration:  s.now().Sub(start),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
}

func spanAttrs(fields map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		}
	}
	return attrs
}
