package ports

import "go.trai.ch/patchwork/internal/core/domain"

// ConfigLoader loads settings and plans from disk.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// LoadSettings walks up from cwd looking for patchwork.yaml and merges it over the defaults.
	// When no file is found the defaults are returned.
	LoadSettings(cwd string) (domain.Settings, error)

	// LoadPlan reads and parses a plan file. It does not validate the dependency graph.
	LoadPlan(path string) (*domain.Plan, error)
}
