// Package shell provides a pty-backed executor for sandbox commands.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// Process represents a running command.
type Process interface {
	Wait() error
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()

	// Wait for the IO copy loop to drain the pty.
	<-p.ioDone

	return err
}

// Executor implements ports.Executor by running sh -c in a pty.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Start launches cmd in a pty. Output, with stdout and stderr merged, is copied to out.
func (e *Executor) Start(ctx context.Context, cmd ports.Command, out io.Writer) (Process, error) {
	if strings.TrimSpace(cmd.Script) == "" {
		return nil, nil
	}

	cmdEnv := resolveEnvironment(os.Environ(), cmd.Env)

	executable := "sh"
	if lp, err := lookPath(executable, cmdEnv); err == nil {
		executable = lp
	}

	c := exec.CommandContext(ctx, executable, "-c", cmd.Script) //nolint:gosec // commands come from the plan
	c.Args[0] = "sh"
	c.Dir = cmd.Dir
	c.Env = cmdEnv

	ptmx, err := pty.Start(c)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrCommandStartFailed, err), "dir", cmd.Dir)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		// Reading the pty master returns EIO once the child exits.
		_, _ = io.Copy(out, ptmx)
	}()

	return &ptyProcess{
		cmd:    c,
		ioDone: ioDone,
	}, nil
}

// Run implements ports.Executor.
func (e *Executor) Run(ctx context.Context, cmd ports.Command, out io.Writer) (int, error) {
	proc, err := e.Start(ctx, cmd, out)
	if err != nil {
		return -1, err
	}
	if proc == nil {
		return 0, nil
	}

	if err := proc.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, zerr.Wrap(ctxErr, "command interrupted")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, zerr.With(zerr.Wrap(err, "command failed"), "exit_code", -1)
	}
	return 0, nil
}

// allowListedEnvVars are the host environment variables a sandbox command inherits.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"LANG":   {},
	"TMPDIR": {},
}

// resolveEnvironment merges the allow-listed host environment with cmdEnv.
// cmdEnv wins on conflicts.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
