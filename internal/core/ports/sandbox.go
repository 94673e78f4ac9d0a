// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/patchwork/internal/core/domain"
)

//go:generate mockgen -source=sandbox.go -destination=mocks/mock_sandbox.go -package=mocks

// SandboxState is the lifecycle state of a sandbox.
type SandboxState uint8

const (
	// SandboxCreated indicates the sandbox handle exists but its checkout is not ready.
	SandboxCreated SandboxState = iota
	// SandboxActive indicates the checkout is ready for commands and file operations.
	SandboxActive
	// SandboxDestroyed indicates the sandbox resources were released.
	SandboxDestroyed
)

// String returns the lowercase name of the state.
func (s SandboxState) String() string {
	switch s {
	case SandboxCreated:
		return "created"
	case SandboxActive:
		return "active"
	case SandboxDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Sandbox is an isolated checkout of a repository branch.
// All paths are relative to Root and must not escape it.
type Sandbox interface {
	// ID returns a short identifier, unique per sandbox.
	ID() string
	// Root returns the absolute path of the checkout.
	Root() string
	// State returns the current lifecycle state.
	State() SandboxState

	// Execute runs a shell command in the sandbox root and returns its combined output.
	// A non-zero exit status is not an error.
	Execute(ctx context.Context, command string) (string, error)
	// ReadFile returns the content of the file at path.
	ReadFile(ctx context.Context, path string) (string, error)
	// WriteFile replaces the content of the file at path, creating parent directories.
	WriteFile(ctx context.Context, path, content string) error
	// Remove deletes the file at path.
	Remove(ctx context.Context, path string) error
	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Destroy releases the sandbox. Calling it more than once is a no-op.
	Destroy(ctx context.Context) error
}

// SandboxProvider provisions sandboxes.
type SandboxProvider interface {
	// Create checks out repo.Branch of repo.Path into a new sandbox.
	// It returns a *domain.ProvisionError when the checkout cannot be created.
	Create(ctx context.Context, repo domain.RepoHandle) (Sandbox, error)
}
