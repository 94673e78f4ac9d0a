// Package sandbox provisions git worktree sandboxes on the local filesystem.
package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
)

// Provider creates one worktree per sandbox under baseDir.
type Provider struct {
	vcs      ports.VCS
	executor ports.Executor
	logger   ports.Logger
	baseDir  string
	newID    func() string
}

// NewProvider creates a Provider. An empty baseDir uses the system temp directory.
func NewProvider(vcs ports.VCS, executor ports.Executor, logger ports.Logger, baseDir string) *Provider {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Provider{
		vcs:      vcs,
		executor: executor,
		logger:   logger,
		baseDir:  baseDir,
		newID:    func() string { return uuid.NewString()[:8] },
	}
}

// Create implements ports.SandboxProvider.
func (p *Provider) Create(ctx context.Context, repo domain.RepoHandle) (ports.Sandbox, error) {
	id := p.newID()
	root := filepath.Join(p.baseDir, domain.SandboxDirPrefix+id)

	provisionErr := func(err error) error {
		return &domain.ProvisionError{Repo: repo.Path, Branch: repo.Branch, Err: err}
	}

	if err := os.MkdirAll(p.baseDir, domain.DirPerm); err != nil {
		return nil, provisionErr(err)
	}
	sb := &Sandbox{
		id:       id,
		root:     root,
		repo:     repo,
		vcs:      p.vcs,
		executor: p.executor,
		logger:   p.logger,
		state:    ports.SandboxCreated,
	}
	p.logger.Info(fmt.Sprintf("sandbox %s: checkout %s into %s", id, repo.Branch, root))
	if err := p.vcs.WorktreeAdd(ctx, repo.Path, root, repo.Branch); err != nil {
		_ = os.RemoveAll(root)
		return nil, provisionErr(err)
	}
	sb.state = ports.SandboxActive
	return sb, nil
}
