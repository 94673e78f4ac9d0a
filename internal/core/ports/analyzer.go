package ports

import (
	"context"

	"go.trai.ch/patchwork/internal/core/domain"
)

// Analyzer resolves tasks that do not require code changes.
//
//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Analyzer interface {
	// Analyze returns the textual output of the task, produced against the sandbox.
	Analyze(ctx context.Context, sb Sandbox, task *domain.Task) (string, error)
}
