package domain

import (
	"fmt"
	"strings"
)

// ProvisionError is returned when a sandbox could not be created.
// It fails the current task, not the whole run.
type ProvisionError struct {
	Repo   string
	Branch string
	Err    error
}

// Error implements error.
func (e *ProvisionError) Error() string {
	msg := fmt.Sprintf("%s for %s@%s", ErrProvisionFailed.Error(), e.Repo, e.Branch)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ProvisionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProvisionFailed}
	}
	return []error{ErrProvisionFailed, e.Err}
}

// ValidationError is returned when a generator response is malformed.
// Callers re-query instead of proceeding with partial data.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return ErrValidation.Error() + ": " + e.Reason
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DeadlockError is returned when the waiting set is non-empty but no task in it can run.
type DeadlockError struct {
	// Waiting lists every task id still waiting, in input order.
	Waiting []string
	// Unmet maps each waiting task id to the dependencies it is still waiting on.
	Unmet map[string][]string
}

// Error implements error.
func (e *DeadlockError) Error() string {
	parts := make([]string, 0, len(e.Waiting))
	for _, id := range e.Waiting {
		parts = append(parts, fmt.Sprintf("%s waits on [%s]", id, strings.Join(e.Unmet[id], ", ")))
	}
	return fmt.Sprintf("%s: no runnable task among %d waiting (%s)",
		ErrSchedulerDeadlock.Error(), len(e.Waiting), strings.Join(parts, "; "))
}

// Unwrap returns ErrSchedulerDeadlock.
func (e *DeadlockError) Unwrap() error {
	return ErrSchedulerDeadlock
}

// CommitError is returned when staging or committing fails, including an empty diff.
type CommitError struct {
	Step   string
	Output string
	Err    error
}

// Error implements error.
func (e *CommitError) Error() string {
	msg := fmt.Sprintf("%s at %s", ErrCommitFailed.Error(), e.Step)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

// Unwrap exposes ErrCommitFailed and the cause, such as ErrNothingToCommit.
func (e *CommitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommitFailed}
	}
	return []error{ErrCommitFailed, e.Err}
}

// UnresolvedEditsError is returned when edits still fail after the retry budget.
// Its message is the failure summary reported for the task.
type UnresolvedEditsError struct {
	Path     string
	Attempts int
	Edits    []Edit
}

// Error implements error.
func (e *UnresolvedEditsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d edit(s) to %s could not be applied after %d attempt(s):",
		len(e.Edits), e.Path, e.Attempts)
	for _, edit := range e.Edits {
		diag := NoSimilarSnippet
		if edit.Diagnostic != nil {
			diag = edit.Diagnostic.String()
		}
		fmt.Fprintf(&b, "\n- edit %s: %s", edit.ID, diag)
	}
	return b.String()
}

// Unwrap returns ErrEditsUnresolved.
func (e *UnresolvedEditsError) Unwrap() error {
	return ErrEditsUnresolved
}
