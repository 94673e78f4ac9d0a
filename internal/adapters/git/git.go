// Package git runs git on the host repository.
package git

import (
	"bytes"
	"context"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// Env disables pagers, colors and prompts for git running in a pty.
var Env = map[string]string{
	"GIT_PAGER":           "cat",
	"PAGER":               "cat",
	"GIT_TERMINAL_PROMPT": "0",
	"TERM":                "dumb",
}

// Git implements ports.VCS.
type Git struct {
	executor ports.Executor
}

// New creates a new Git.
func New(executor ports.Executor) *Git {
	return &Git{executor: executor}
}

// Root implements ports.VCS.
func (g *Git) Root(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrNotARepository, err.Error()), "dir", dir)
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch implements ports.VCS.
func (g *Git) CurrentBranch(ctx context.Context, root string) (string, error) {
	out, err := g.run(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CreateBranch implements ports.VCS.
func (g *Git) CreateBranch(ctx context.Context, root, name, base string) error {
	if _, err := g.run(ctx, root, "branch", name, base); err != nil {
		err = zerr.Wrap(domain.ErrBranchCreateFailed, err.Error())
		return zerr.With(zerr.With(err, "branch", name), "base", base)
	}
	return nil
}

// WorktreeAdd implements ports.VCS.
func (g *Git) WorktreeAdd(ctx context.Context, root, path, branch string) error {
	_, err := g.run(ctx, root, "worktree", "add", path, branch)
	return err
}

// WorktreeRemove implements ports.VCS.
func (g *Git) WorktreeRemove(ctx context.Context, root, path string) error {
	_, err := g.run(ctx, root, "worktree", "remove", "--force", path)
	return err
}

// PruneWorktrees implements ports.VCS.
func (g *Git) PruneWorktrees(ctx context.Context, root string) error {
	_, err := g.run(ctx, root, "worktree", "prune")
	return err
}

// run executes git with args in dir and returns its output.
// A non-zero exit status is returned as an error carrying the output.
func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, "git")
	for _, a := range args {
		quoted = append(quoted, Quote(a))
	}

	var buf bytes.Buffer
	code, err := g.executor.Run(ctx, ports.Command{
		Dir:    dir,
		Script: strings.Join(quoted, " "),
		Env:    Env,
	}, &buf)
	out := strings.ReplaceAll(buf.String(), "\r", "")
	if err != nil {
		return out, zerr.With(zerr.Wrap(err, "git "+args[0]), "dir", dir)
	}
	if code != 0 {
		err := zerr.New(strings.TrimSpace(out))
		err = zerr.With(err, "command", "git "+strings.Join(args, " "))
		return out, zerr.With(err, "exit_code", code)
	}
	return out, nil
}

// Quote wraps s in single quotes for sh.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
