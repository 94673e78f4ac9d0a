package ports

import (
	"context"

	"go.trai.ch/patchwork/internal/core/domain"
)

// Mutator applies the code changes a mutation task asks for.
//
//go:generate mockgen -source=mutator.go -destination=mocks/mock_mutator.go -package=mocks
type Mutator interface {
	// Mutate resolves task inside sb and returns a textual summary of what was done.
	Mutate(ctx context.Context, sb Sandbox, task *domain.Task) (string, error)
}

// Committer records the state of a sandbox as a revision.
type Committer interface {
	// Commit stages every change in sb and commits it with message.
	// It returns a *domain.CommitError wrapping domain.ErrNothingToCommit
	// when the working tree is clean.
	Commit(ctx context.Context, sb Sandbox, message string) (domain.CommitRecord, error)
}
