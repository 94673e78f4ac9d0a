package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/patchwork/internal/adapters/git"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// Sandbox is a git worktree checkout of a run branch.
type Sandbox struct {
	mu       sync.Mutex
	id       string
	root     string
	repo     domain.RepoHandle
	vcs      ports.VCS
	executor ports.Executor
	logger   ports.Logger
	state    ports.SandboxState
}

// ID implements ports.Sandbox.
func (s *Sandbox) ID() string { return s.id }

// Root implements ports.Sandbox.
func (s *Sandbox) Root() string { return s.root }

// State implements ports.Sandbox.
func (s *Sandbox) State() ports.SandboxState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Execute implements ports.Sandbox.
func (s *Sandbox) Execute(ctx context.Context, command string) (string, error) {
	if err := s.checkActive(); err != nil {
		return "", err
	}
	s.logger.Info(fmt.Sprintf("sandbox %s: exec %s", s.id, command))

	env := make(map[string]string, len(git.Env)+1)
	for k, v := range git.Env {
		env[k] = v
	}
	env["NO_COLOR"] = "1"

	var buf bytes.Buffer
	if _, err := s.executor.Run(ctx, ports.Command{Dir: s.root, Script: command, Env: env}, &buf); err != nil {
		return "", zerr.With(zerr.Wrap(err, "sandbox exec"), "sandbox", s.id)
	}
	return strings.ReplaceAll(buf.String(), "\r", ""), nil
}

// ReadFile implements ports.Sandbox.
func (s *Sandbox) ReadFile(_ context.Context, path string) (string, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs) //nolint:gosec // path is jailed to the sandbox root
	if err != nil {
		return "", zerr.With(fmt.Errorf("%w %s: %w", domain.ErrSandboxReadFailed, path, err), "sandbox", s.id)
	}
	return string(data), nil
}

// WriteFile implements ports.Sandbox.
func (s *Sandbox) WriteFile(_ context.Context, path, content string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("sandbox %s: write %s (%d bytes)", s.id, path, len(content)))
	if err := os.MkdirAll(filepath.Dir(abs), domain.DirPerm); err != nil {
		return zerr.With(fmt.Errorf("%w %s: %w", domain.ErrSandboxWriteFailed, path, err), "sandbox", s.id)
	}
	if err := os.WriteFile(abs, []byte(content), domain.FilePerm); err != nil {
		return zerr.With(fmt.Errorf("%w %s: %w", domain.ErrSandboxWriteFailed, path, err), "sandbox", s.id)
	}
	return nil
}

// Remove implements ports.Sandbox.
func (s *Sandbox) Remove(_ context.Context, path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	s.logger.Info(fmt.Sprintf("sandbox %s: remove %s", s.id, path))
	if err := os.Remove(abs); err != nil {
		return zerr.With(fmt.Errorf("%w %s: %w", domain.ErrSandboxWriteFailed, path, err), "sandbox", s.id)
	}
	return nil
}

// Exists implements ports.Sandbox.
func (s *Sandbox) Exists(_ context.Context, path string) (bool, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(err, "stat "+path), "sandbox", s.id)
	}
}

// Destroy implements ports.Sandbox.
// If the worktree cannot be removed through git, the directory is deleted and
// stale worktree metadata pruned.
func (s *Sandbox) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ports.SandboxDestroyed {
		return nil
	}
	s.state = ports.SandboxDestroyed
	s.logger.Info(fmt.Sprintf("sandbox %s: destroy %s", s.id, s.root))

	if err := s.vcs.WorktreeRemove(ctx, s.repo.Path, s.root); err == nil {
		return nil
	}
	if err := os.RemoveAll(s.root); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrSandboxDestroyFailed, err), "sandbox", s.id)
	}
	if err := s.vcs.PruneWorktrees(ctx, s.repo.Path); err != nil {
		return zerr.With(fmt.Errorf("%w: prune worktrees: %w", domain.ErrSandboxDestroyFailed, err), "sandbox", s.id)
	}
	return nil
}

func (s *Sandbox) checkActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ports.SandboxDestroyed {
		return zerr.With(zerr.Wrap(domain.ErrSandboxDestroyed, s.id), "sandbox", s.id)
	}
	return nil
}

// resolve maps a sandbox-relative path to an absolute path under root.
func (s *Sandbox) resolve(path string) (string, error) {
	if err := s.checkActive(); err != nil {
		return "", err
	}
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(s.root, path)
		if err != nil {
			rel = path
		} else {
			rel = r
		}
	}
	rel = filepath.Clean(rel)
	if !filepath.IsLocal(rel) || rel == ".git" || strings.HasPrefix(rel, ".git"+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrPathOutsideSandbox, path), "path", path)
	}
	return filepath.Join(s.root, rel), nil
}
