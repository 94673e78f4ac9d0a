package ports

import "context"

// VCS runs version control operations on the host repository.
//
//go:generate mockgen -source=vcs.go -destination=mocks/mock_vcs.go -package=mocks
type VCS interface {
	// Root returns the top-level directory of the repository containing dir.
	Root(ctx context.Context, dir string) (string, error)
	// CurrentBranch returns the branch checked out at root.
	CurrentBranch(ctx context.Context, root string) (string, error)
	// CreateBranch creates branch name at base without checking it out.
	CreateBranch(ctx context.Context, root, name, base string) error
	// WorktreeAdd checks out branch into a new worktree at path.
	WorktreeAdd(ctx context.Context, root, path, branch string) error
	// WorktreeRemove deletes the worktree at path, discarding local changes.
	WorktreeRemove(ctx context.Context, root, path string) error
	// PruneWorktrees removes stale worktree metadata.
	PruneWorktrees(ctx context.Context, root string) error
}
