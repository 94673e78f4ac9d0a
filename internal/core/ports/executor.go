package ports

import (
	"context"
	"io"
)

// Command describes a shell script to run.
type Command struct {
	// Dir is the working directory.
	Dir string
	// Script is passed to sh -c.
	Script string
	// Env holds extra environment variables on top of the allowed host set.
	Env map[string]string
}

// Executor runs shell commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes cmd, streaming its combined output to out.
	// It returns the exit code. A non-zero exit code is not an error;
	// an error means the command could not be run at all.
	Run(ctx context.Context, cmd Command, out io.Writer) (int, error)
}
