// Package session drives the propose, apply and feedback loop for one file.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/patchwork/internal/engine/patch"
)

// Options configures the session budgets.
type Options struct {
	// Retries is the number of attempts allowed after the first one.
	Retries int
	// Requeries is the number of times a malformed response is sent back for correction.
	Requeries int
}

// Session asks the content generator for edits and applies them until every
// edit lands or the retry budget is spent.
type Session struct {
	generator ports.ContentGenerator
	applier   *patch.Applier
	logger    ports.Logger
	tracer    ports.Tracer
	opts      Options
}

// New creates a new Session.
func New(
	generator ports.ContentGenerator,
	applier *patch.Applier,
	logger ports.Logger,
	tracer ports.Tracer,
	opts Options,
) *Session {
	opts.Retries = max(opts.Retries, 0)
	opts.Requeries = max(opts.Requeries, 0)
	return &Session{
		generator: generator,
		applier:   applier,
		logger:    logger,
		tracer:    tracer,
		opts:      opts,
	}
}

// Request describes the change to make to one file.
type Request struct {
	Path        string
	Spec        string
	History     []domain.Message
	CodeContext []ports.Snippet
}

// Result reports what a session did.
type Result struct {
	Output   string
	Attempts int
	Applied  []domain.Edit
	// Failed holds the edits still unapplied when the budget ran out.
	Failed  []domain.Edit
	History []domain.Message
}

// attemptState is the accumulator threaded through the attempt loop.
type attemptState struct {
	attempt int
	history []domain.Message
	applied []domain.Edit
	pending []domain.Edit
	notes   []string
	rewrote bool
}

// Run executes the session against sb.
//
// It makes at most Retries+1 generator attempts. Edits that fail to apply are
// reported back to the generator with their alignment diagnostics. When the
// budget is exhausted Run returns a *domain.UnresolvedEditsError.
func (s *Session) Run(ctx context.Context, sb ports.Sandbox, req Request) (Result, error) {
	state := &attemptState{
		history: append([]domain.Message(nil), req.History...),
	}
	maxAttempts := s.opts.Retries + 1

	for state.attempt = 1; state.attempt <= maxAttempts; state.attempt++ {
		done, err := s.attempt(ctx, sb, req, state)
		if err != nil {
			return s.result(state, ""), err
		}
		if done {
			output := fmt.Sprintf("applied %d edit(s) to %s in %d attempt(s)", len(state.applied), req.Path, state.attempt)
			if state.rewrote {
				output = fmt.Sprintf("rewrote %s in %d attempt(s)", req.Path, state.attempt)
			}
			return s.result(state, withNotes(output, state.notes)), nil
		}
	}

	state.attempt = maxAttempts
	unresolved := &domain.UnresolvedEditsError{
		Path:     req.Path,
		Attempts: maxAttempts,
		Edits:    state.pending,
	}
	return s.result(state, withNotes(unresolved.Error(), state.notes)), unresolved
}

// withNotes appends the advisory notes of applied edits to summary.
func withNotes(summary string, notes []string) string {
	if len(notes) == 0 {
		return summary
	}
	return summary + "\n" + strings.Join(notes, "\n")
}

func (s *Session) result(state *attemptState, output string) Result {
	return Result{
		Output:   output,
		Attempts: state.attempt,
		Applied:  state.applied,
		Failed:   state.pending,
		History:  state.history,
	}
}

// attempt runs one propose and apply round. It reports true when nothing is left to do.
func (s *Session) attempt(ctx context.Context, sb ports.Sandbox, req Request, state *attemptState) (bool, error) {
	ctx, span := s.tracer.Start(ctx, fmt.Sprintf("%s (attempt %d)", req.Path, state.attempt),
		ports.WithAttribute("path", req.Path),
		ports.WithAttribute("attempt", state.attempt),
	)
	defer span.End()

	proposal, err := s.propose(ctx, sb, req, state)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	if proposal.IsWholeFile() {
		s.logger.Info(fmt.Sprintf("sandbox %s: write %s (%d bytes)", sb.ID(), req.Path, len(*proposal.Code)))
		if err := sb.WriteFile(ctx, req.Path, *proposal.Code); err != nil {
			span.RecordError(err)
			return false, err
		}
		state.pending = nil
		state.rewrote = true
		return true, nil
	}

	if len(proposal.Edits) == 0 {
		if len(state.pending) == 0 {
			return true, nil
		}
		state.history = append(state.history, domain.Message{
			Role:    domain.RoleUser,
			Content: feedback(req.Path, state.pending),
		})
		return false, nil
	}

	failed, err := s.applyAll(ctx, sb, req.Path, proposal.Edits, state)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	state.pending = failed
	if len(failed) == 0 {
		return true, nil
	}

	span.SetAttribute("failed_edits", len(failed))
	_, _ = fmt.Fprintf(span, "%d of %d edit(s) did not apply\n", len(failed), len(proposal.Edits))

	state.history = append(state.history,
		domain.Message{Role: domain.RoleAssistant, Content: encodeEdits(proposal.Edits)},
		domain.Message{Role: domain.RoleUser, Content: feedback(req.Path, failed)},
	)
	return false, nil
}

// propose requests a proposal, sending malformed responses back for correction
// up to the requery budget.
func (s *Session) propose(ctx context.Context, sb ports.Sandbox, req Request, state *attemptState) (domain.EditProposal, error) {
	exists, err := sb.Exists(ctx, req.Path)
	if err != nil {
		return domain.EditProposal{}, err
	}
	var content string
	if exists {
		if content, err = sb.ReadFile(ctx, req.Path); err != nil {
			return domain.EditProposal{}, err
		}
	}

	for requery := 0; ; requery++ {
		proposal, err := s.generator.ProposeEdits(ctx, ports.EditRequest{
			Path:        req.Path,
			Spec:        req.Spec,
			Content:     content,
			Exists:      exists,
			History:     state.history,
			CodeContext: req.CodeContext,
		})

		var verr *domain.ValidationError
		if errors.As(err, &verr) && requery < s.opts.Requeries {
			s.logger.Warn(fmt.Sprintf("invalid generator response for %s: %s", req.Path, verr.Error()))
			state.history = append(state.history, domain.Message{
				Role:    domain.RoleUser,
				Content: "Your previous response was invalid: " + verr.Error() + ". Reply with JSON matching the requested format.",
			})
			continue
		}
		return proposal, err
	}
}

// applyAll applies edits in order and returns the ones that did not match.
func (s *Session) applyAll(
	ctx context.Context,
	sb ports.Sandbox,
	path string,
	edits []domain.Edit,
	state *attemptState,
) ([]domain.Edit, error) {
	var failed []domain.Edit
	for _, edit := range edits {
		err := s.applier.Apply(ctx, sb, path, edit.OriginalCode, edit.NewCode)

		var noMatch *domain.NoMatchError
		switch {
		case err == nil:
			edit.Diagnostic = nil
			state.applied = append(state.applied, edit)
			if edit.Risk != "" {
				state.notes = append(state.notes, fmt.Sprintf("edit %s risk: %s", edit.ID, edit.Risk))
			}
			if edit.Style != "" {
				state.notes = append(state.notes, fmt.Sprintf("edit %s style: %s", edit.ID, edit.Style))
			}
		case errors.As(err, &noMatch):
			diag := noMatch.Diagnostic
			edit.Diagnostic = &diag
			failed = append(failed, edit)
		default:
			return nil, err
		}
	}
	return failed, nil
}

func encodeEdits(edits []domain.Edit) string {
	data, err := json.Marshal(struct {
		Edits []domain.Edit `json:"edits"`
	}{edits})
	if err != nil {
		return ""
	}
	return string(data)
}

// feedback tells the generator which edits failed and where they diverged.
func feedback(path string, failed []domain.Edit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following edits could not be applied to %s because originalCode was not found verbatim.\n", path)
	b.WriteString("Return corrected edits for these only; originalCode must match the current file exactly.\n")
	for _, e := range failed {
		diag := domain.NoSimilarSnippet
		if e.Diagnostic != nil {
			diag = e.Diagnostic.String()
		}
		fmt.Fprintf(&b, "- edit %s: %s\n", e.ID, diag)
	}
	return b.String()
}
