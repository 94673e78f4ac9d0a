package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/patchwork/internal/core/ports"
)

// LogBufferSize determines the size of the async log channel.
const LogBufferSize = 4096

type taskLog struct {
	spanID string
	data   []byte
}

// OTelTracer implements ports.Tracer using OpenTelemetry.
// Span output is batched and forwarded to the renderer on a background goroutine.
type OTelTracer struct {
	tracer   trace.Tracer
	renderer ports.Renderer
	logChan  chan taskLog
	done     chan struct{}
	once     sync.Once
	mu       sync.RWMutex
}

// NewOTelTracer creates a new OTelTracer with the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	t := &OTelTracer{
		tracer:  otel.Tracer(name),
		logChan: make(chan taskLog, LogBufferSize),
		done:    make(chan struct{}),
	}
	go t.runLoop()
	return t
}

func (t *OTelTracer) runLoop() {
	defer close(t.done)
	for msg := range t.logChan {
		if r := t.currentRenderer(); r != nil {
			r.OnTaskLog(msg.spanID, msg.data)
		}
	}
}

func (t *OTelTracer) currentRenderer() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

// Shutdown stops the background log processor after draining queued logs.
func (t *OTelTracer) Shutdown(_ context.Context) error {
	t.once.Do(func() {
		close(t.logChan)
		<-t.done
	})
	return nil
}

// WithRenderer sets the renderer receiving plans and span output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

// Start creates a new span. Attributes from opts are set at start.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		attrs = append(attrs, keyValue(k, v))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	s := &OTelSpan{span: span}

	if t.currentRenderer() != nil {
		spanID := span.SpanContext().SpanID().String()
		s.log = NewSpanLog(0, 0, func(data []byte) {
			select {
			case t.logChan <- taskLog{spanID: spanID, data: data}:
			default:
				// Drop output rather than block the run.
			}
		})
	}
	return ctx, s
}

// EmitPlan records the plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, taskIDs []string, deps map[string][]string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("tasks", taskIDs),
		))
	}
	if r := t.currentRenderer(); r != nil {
		r.OnPlanEmit(taskIDs, deps)
	}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span trace.Span
	log  *SpanLog
}

// Log returns the buffer collecting span output, or nil when no renderer is attached.
func (s *OTelSpan) Log() *SpanLog {
	return s.log
}

// End flushes buffered output and completes the span.
func (s *OTelSpan) End() {
	if s.log != nil {
		_ = s.log.Close()
	}
	s.span.End()
}

// RecordError records an error and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(keyValue(key, value))
}

func keyValue(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

// Write adds output to the span: through the span log when a renderer is
// attached, otherwise as a span event.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.log != nil {
		return s.log.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
