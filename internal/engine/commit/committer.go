// Package commit records sandbox changes as git revisions.
package commit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// statusMarker is appended to every command so the exit status survives the
// sandbox, which reports output only.
const statusMarker = "__patchwork_status="

var (
	errNonZeroExit   = zerr.New("git exited with non-zero status")
	errMissingStatus = zerr.New("exit status missing from command output")
)

// Author identifies the committer.
type Author struct {
	Name  string
	Email string
}

// Committer stages and commits all changes in a sandbox.
type Committer struct {
	author Author
	logger ports.Logger
}

// New creates a new Committer.
func New(author Author, logger ports.Logger) *Committer {
	return &Committer{author: author, logger: logger}
}

// Commit implements ports.Committer.
func (c *Committer) Commit(ctx context.Context, sb ports.Sandbox, message string) (domain.CommitRecord, error) {
	if _, err := c.step(ctx, sb, "add", "git add -A"); err != nil {
		return domain.CommitRecord{}, err
	}

	// --quiet exits 0 when the index matches HEAD.
	out, code, err := c.run(ctx, sb, "git diff --cached --quiet")
	if err != nil {
		return domain.CommitRecord{}, &domain.CommitError{Step: "diff", Output: out, Err: err}
	}
	if code == 0 {
		return domain.CommitRecord{}, &domain.CommitError{Step: "diff", Err: domain.ErrNothingToCommit}
	}

	commitCmd := fmt.Sprintf("git -c user.name=%s -c user.email=%s commit --no-verify -q -m %s",
		shellQuote(c.author.Name), shellQuote(c.author.Email), shellQuote(message))
	c.logger.Info(fmt.Sprintf("sandbox %s: commit %q", sb.ID(), firstLine(message)))
	if _, err := c.step(ctx, sb, "commit", commitCmd); err != nil {
		return domain.CommitRecord{}, err
	}

	hash, err := c.step(ctx, sb, "rev-parse", "git rev-parse HEAD")
	if err != nil {
		return domain.CommitRecord{}, err
	}

	diff, err := c.step(ctx, sb, "show", "git show --format= --patch HEAD")
	if err != nil {
		return domain.CommitRecord{}, err
	}

	return domain.CommitRecord{
		Hash: strings.TrimSpace(hash),
		Diff: diff,
	}, nil
}

// step runs command and requires a zero exit status.
func (c *Committer) step(ctx context.Context, sb ports.Sandbox, name, command string) (string, error) {
	out, code, err := c.run(ctx, sb, command)
	if err != nil {
		return "", &domain.CommitError{Step: name, Output: out, Err: err}
	}
	if code != 0 {
		return "", &domain.CommitError{
			Step:   name,
			Output: out,
			Err:    zerr.With(zerr.With(errNonZeroExit, "command", command), "exit_code", code),
		}
	}
	return out, nil
}

// run executes command and splits its output from the trailing status marker.
func (c *Committer) run(ctx context.Context, sb ports.Sandbox, command string) (string, int, error) {
	raw, err := sb.Execute(ctx, command+`; echo "`+statusMarker+`$?"`)
	if err != nil {
		return raw, -1, err
	}

	idx := strings.LastIndex(raw, statusMarker)
	if idx < 0 {
		return raw, -1, zerr.With(errMissingStatus, "command", command)
	}
	code, err := strconv.Atoi(strings.TrimSpace(raw[idx+len(statusMarker):]))
	if err != nil {
		return raw[:idx], -1, zerr.With(zerr.Wrap(err, errMissingStatus.Error()), "command", command)
	}
	return raw[:idx], code, nil
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
