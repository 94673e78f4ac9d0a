package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

var errSpanFailed = zerr.New("failed")

// Bridge is an sdktrace.SpanProcessor that replays span lifecycles on a
// Renderer. Task spans carry ports.AttrTaskTitle and are labelled
// "<id> <title>". Spans nested in them, such as edit attempts, keep their
// own name and are reported with their parent's id.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge. A nil renderer makes it a no-op.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart implements sdktrace.SpanProcessor.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}
	b.renderer.OnTaskStart(sc.SpanID().String(), parentSpanID(parent), label(s.Name(), s.Attributes()), s.StartTime())
}

// OnEnd implements sdktrace.SpanProcessor.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}
	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), failure(s))
}

// ForceFlush implements sdktrace.SpanProcessor. Nothing is buffered.
func (b *Bridge) ForceFlush(context.Context) error { return nil }

// Shutdown implements sdktrace.SpanProcessor.
func (b *Bridge) Shutdown(context.Context) error { return nil }

func parentSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

func label(name string, attrs []attribute.KeyValue) string {
	for _, kv := range attrs {
		if string(kv.Key) == ports.AttrTaskTitle {
			if title := kv.Value.Emit(); title != "" {
				return name + " " + title
			}
		}
	}
	return name
}

// failure is nil unless s ended with an error status. The status description
// wins, then the message of the last recorded exception.
func failure(s sdktrace.ReadOnlySpan) error {
	status := s.Status()
	if status.Code != codes.Error {
		return nil
	}
	if status.Description != "" {
		return errors.New(status.Description)
	}
	events := s.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name != "exception" {
			continue
		}
		for _, kv := range events[i].Attributes {
			if kv.Key == "exception.message" && kv.Value.AsString() != "" {
				return errors.New(kv.Value.AsString())
			}
		}
	}
	return errSpanFailed
}
