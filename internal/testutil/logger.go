package testutil

import (
	"sync"
)

// Logger records log calls.
type Logger struct {
	mu     sync.Mutex
	Infos  []string
	Warns  []string
	Errors []error
}

// Info implements ports.Logger.
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

// Warn implements ports.Logger.
func (l *Logger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

// Error implements ports.Logger.
func (l *Logger) Error(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, err)
}
