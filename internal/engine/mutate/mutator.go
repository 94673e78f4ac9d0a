// Package mutate resolves mutation tasks by dispatching actions against a sandbox.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/patchwork/internal/engine/session"
	"go.trai.ch/zerr"
)

// Mutator turns a task into actions and performs them.
type Mutator struct {
	generator   ports.ContentGenerator
	codeContext ports.CodeContextProvider
	session     *session.Session
	logger      ports.Logger
	requeries   int
}

// New creates a new Mutator.
func New(
	generator ports.ContentGenerator,
	codeContext ports.CodeContextProvider,
	sess *session.Session,
	logger ports.Logger,
	requeries int,
) *Mutator {
	return &Mutator{
		generator:   generator,
		codeContext: codeContext,
		session:     sess,
		logger:      logger,
		requeries:   max(requeries, 0),
	}
}

// Mutate implements ports.Mutator.
func (m *Mutator) Mutate(ctx context.Context, sb ports.Sandbox, task *domain.Task) (string, error) {
	actions, err := m.actions(ctx, sb, task)
	if err != nil {
		return "", err
	}

	outputs := make([]string, 0, len(actions))
	for _, action := range actions {
		out, err := m.dispatch(ctx, sb, task, action)
		if err != nil {
			return strings.Join(outputs, "\n"), zerr.With(zerr.Wrap(err, action.Kind()+" failed"), "action", action.Kind())
		}
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

// actions returns one EditCode per listed file, or asks the generator for a plan.
func (m *Mutator) actions(ctx context.Context, sb ports.Sandbox, task *domain.Task) ([]domain.Action, error) {
	if len(task.Files) > 0 {
		actions := make([]domain.Action, 0, len(task.Files))
		for _, f := range task.Files {
			actions = append(actions, domain.EditCode{Path: f})
		}
		return actions, nil
	}

	snippets := m.relatedCode(ctx, sb, task, nil)
	history := seedHistory(task)

	for requery := 0; ; requery++ {
		actions, err := m.generator.PlanActions(ctx, ports.ActionRequest{
			Task:        task,
			CodeContext: snippets,
			History:     history,
		})

		var verr *domain.ValidationError
		if errors.As(err, &verr) && requery < m.requeries {
			m.logger.Warn(fmt.Sprintf("invalid action plan for task %s: %s", task.ID, verr.Error()))
			history = append(history, domain.Message{
				Role:    domain.RoleUser,
				Content: "Your previous response was invalid: " + verr.Error() + ". Reply with JSON matching the requested format.",
			})
			continue
		}
		return actions, err
	}
}

// dispatch performs one action.
func (m *Mutator) dispatch(ctx context.Context, sb ports.Sandbox, task *domain.Task, action domain.Action) (string, error) {
	switch a := action.(type) {
	case domain.CreateFile:
		if a.Content != "" {
			m.logger.Info(fmt.Sprintf("sandbox %s: create %s", sb.ID(), a.Path))
			if err := sb.WriteFile(ctx, a.Path, a.Content); err != nil {
				return "", err
			}
			return "created " + a.Path, nil
		}
		return m.edit(ctx, sb, task, a.Path)

	case domain.DeleteFile:
		m.logger.Info(fmt.Sprintf("sandbox %s: delete %s", sb.ID(), a.Path))
		if err := sb.Remove(ctx, a.Path); err != nil {
			return "", err
		}
		return "deleted " + a.Path, nil

	case domain.EditCode:
		return m.edit(ctx, sb, task, a.Path)

	case domain.RunCommand:
		m.logger.Info(fmt.Sprintf("sandbox %s: exec %s", sb.ID(), a.Command))
		out, err := sb.Execute(ctx, a.Command)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$ %s\n%s", a.Command, strings.TrimRight(out, "\n")), nil

	case domain.Pass:
		return "", nil

	default:
		return "", zerr.With(zerr.New("unsupported action"), "kind", action.Kind())
	}
}

// edit runs an edit session on path.
func (m *Mutator) edit(ctx context.Context, sb ports.Sandbox, task *domain.Task, path string) (string, error) {
	res, err := m.session.Run(ctx, sb, session.Request{
		Path:        path,
		Spec:        editSpec(task),
		History:     seedHistory(task),
		CodeContext: m.relatedCode(ctx, sb, task, []string{path}),
	})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// relatedCode selects context for the task. Failures are logged and ignored.
func (m *Mutator) relatedCode(ctx context.Context, sb ports.Sandbox, task *domain.Task, exclude []string) []ports.Snippet {
	if m.codeContext == nil {
		return nil
	}
	query := strings.Join([]string{task.Title, task.Description, task.Pseudocode}, "\n")
	snippets, err := m.codeContext.SelectRelatedCode(ctx, sb.Root(), query, exclude)
	if err != nil {
		m.logger.Warn(fmt.Sprintf("code context for task %s unavailable: %v", task.ID, err))
		return nil
	}
	return snippets
}

func editSpec(task *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", task.Description)
	}
	if task.CompletionCriteria != "" {
		fmt.Fprintf(&b, "Completion criteria: %s\n", task.CompletionCriteria)
	}
	fmt.Fprintf(&b, "Pseudocode:\n%s\n", task.Pseudocode)
	return b.String()
}

// seedHistory turns the context accumulated from earlier tasks into conversation state.
func seedHistory(task *domain.Task) []domain.Message {
	var history []domain.Message
	if task.BackgroundContext != "" {
		history = append(history, domain.Message{
			Role:    domain.RoleUser,
			Content: "Findings from earlier tasks:\n" + task.BackgroundContext,
		})
	}
	if task.RelatedCommits != "" {
		history = append(history, domain.Message{
			Role:    domain.RoleUser,
			Content: "Changes committed by earlier tasks:\n" + task.RelatedCommits,
		})
	}
	return history
}
