package ports

import "go.trai.ch/patchwork/internal/core/domain"

// ReportStore persists run reports keyed by plan digest.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ReportStore interface {
	// Get retrieves the latest report for a plan digest.
	// Returns nil, nil if not found.
	Get(root, digest string) (*domain.Report, error)

	// Put stores the report, replacing any previous report for the same plan.
	Put(root string, report *domain.Report) error

	// Clear removes every stored report under root.
	Clear(root string) error
}
