// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// ExecFunc handles a command sent to a MemSandbox.
type ExecFunc func(command string) (string, error)

// MemSandbox is an in-memory ports.Sandbox.
type MemSandbox struct {
	mu       sync.Mutex
	id       string
	files    map[string]string
	state    ports.SandboxState
	exec     ExecFunc
	commands []string
	writes   []string
}

// NewMemSandbox creates an active sandbox seeded with files.
func NewMemSandbox(files map[string]string) *MemSandbox {
	seeded := make(map[string]string, len(files))
	for k, v := range files {
		seeded[path.Clean(k)] = v
	}
	return &MemSandbox{
		id:    "mem",
		files: seeded,
		state: ports.SandboxActive,
	}
}

// WithExec sets the handler for Execute.
func (s *MemSandbox) WithExec(fn ExecFunc) *MemSandbox {
	s.exec = fn
	return s
}

// ID implements ports.Sandbox.
func (s *MemSandbox) ID() string { return s.id }

// Root implements ports.Sandbox.
func (s *MemSandbox) Root() string { return "/sandbox/" + s.id }

// State implements ports.Sandbox.
func (s *MemSandbox) State() ports.SandboxState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Execute implements ports.Sandbox.
func (s *MemSandbox) Execute(_ context.Context, command string) (string, error) {
	s.mu.Lock()
	if s.state == ports.SandboxDestroyed {
		s.mu.Unlock()
		return "", domain.ErrSandboxDestroyed
	}
	s.commands = append(s.commands, command)
	fn := s.exec
	s.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(command)
}

// ReadFile implements ports.Sandbox.
func (s *MemSandbox) ReadFile(_ context.Context, p string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ports.SandboxDestroyed {
		return "", domain.ErrSandboxDestroyed
	}
	content, ok := s.files[path.Clean(p)]
	if !ok {
		return "", zerr.With(fmt.Errorf("%w %s: %w", domain.ErrSandboxReadFailed, p, os.ErrNotExist), "path", p)
	}
	return content, nil
}

// WriteFile implements ports.Sandbox.
func (s *MemSandbox) WriteFile(_ context.Context, p, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ports.SandboxDestroyed {
		return domain.ErrSandboxDestroyed
	}
	s.files[path.Clean(p)] = content
	s.writes = append(s.writes, path.Clean(p))
	return nil
}

// Remove implements ports.Sandbox.
func (s *MemSandbox) Remove(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ports.SandboxDestroyed {
		return domain.ErrSandboxDestroyed
	}
	if _, ok := s.files[path.Clean(p)]; !ok {
		return zerr.With(fmt.Errorf("%w %s: %w", domain.ErrSandboxWriteFailed, p, os.ErrNotExist), "path", p)
	}
	delete(s.files, path.Clean(p))
	return nil
}

// Exists implements ports.Sandbox.
func (s *MemSandbox) Exists(_ context.Context, p string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path.Clean(p)]
	return ok, nil
}

// Destroy implements ports.Sandbox.
func (s *MemSandbox) Destroy(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ports.SandboxDestroyed
	return nil
}

// File returns the content of a file and whether it exists.
func (s *MemSandbox) File(p string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[path.Clean(p)]
	return content, ok
}

// Commands returns every command passed to Execute, in order.
func (s *MemSandbox) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Writes returns the paths passed to WriteFile, in order.
func (s *MemSandbox) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// HasCommand reports whether a command containing substr was executed.
func (s *MemSandbox) HasCommand(substr string) bool {
	for _, c := range s.Commands() {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}
