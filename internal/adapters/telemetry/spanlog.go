// Package telemetry bridges OpenTelemetry spans to the output renderer.
package telemetry

import (
	"sync"
	"time"

	"go.trai.ch/zerr"
)

var errSpanLogClosed = zerr.New("span output is closed")

const (
	// DefaultMaxChunk is the pending size that forces a flush.
	DefaultMaxChunk = 4096
	// DefaultMaxDelay bounds how long written output waits before it is flushed.
	DefaultMaxDelay = 50 * time.Millisecond
)

// SpanLog collects the output written to one span and hands it to onFlush in
// chunks. A chunk is flushed once maxChunk bytes are pending, or maxDelay
// after the first byte written since the last flush. Chunks are delivered in
// write order. It is safe for concurrent use.
type SpanLog struct {
	maxChunk int
	maxDelay time.Duration
	onFlush  func([]byte)

	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
	closed  bool
}

// NewSpanLog returns a SpanLog. Non-positive limits use the defaults.
// No timer runs while nothing is pending.
func NewSpanLog(maxChunk int, maxDelay time.Duration, onFlush func([]byte)) *SpanLog {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunk
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &SpanLog{maxChunk: maxChunk, maxDelay: maxDelay, onFlush: onFlush}
}

// Write appends p to the pending output.
func (l *SpanLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, errSpanLogClosed
	}

	l.pending = append(l.pending, p...)
	switch {
	case len(l.pending) >= l.maxChunk:
		l.flushLocked()
	case l.timer == nil:
		l.timer = time.AfterFunc(l.maxDelay, l.Flush)
	}
	return len(p), nil
}

// Flush delivers the pending output now.
func (l *SpanLog) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.flushLocked()
	}
}

// Close flushes the pending output. Later writes fail.
func (l *SpanLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.flushLocked()
	return nil
}

// flushLocked runs onFlush under mu to keep chunks ordered; onFlush must not block.
func (l *SpanLog) flushLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if len(l.pending) == 0 {
		return
	}
	data := l.pending
	l.pending = nil
	if l.onFlush != nil {
		l.onFlush(data)
	}
}
