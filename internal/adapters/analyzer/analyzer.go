// Package analyzer resolves tasks that need an answer rather than a code change.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// Analyzer implements ports.Analyzer.
type Analyzer struct {
	generator   ports.ContentGenerator
	codeContext ports.CodeContextProvider
	logger      ports.Logger
	requeries   int
}

// New creates an Analyzer. codeContext may be nil.
func New(generator ports.ContentGenerator, codeContext ports.CodeContextProvider, logger ports.Logger, requeries int) *Analyzer {
	return &Analyzer{
		generator:   generator,
		codeContext: codeContext,
		logger:      logger,
		requeries:   max(requeries, 0),
	}
}

// Analyze implements ports.Analyzer.
// Files named by the task are read from the sandbox and given to the
// generator ahead of the lexically selected code.
func (a *Analyzer) Analyze(ctx context.Context, sb ports.Sandbox, task *domain.Task) (string, error) {
	snippets, err := a.namedFiles(ctx, sb, task)
	if err != nil {
		return "", err
	}
	snippets = append(snippets, a.relatedCode(ctx, sb, task)...)

	req := ports.AnalysisRequest{Task: task, CodeContext: snippets}
	for requery := 0; ; requery++ {
		answer, err := a.generator.Summarize(ctx, req)
		if err == nil {
			return answer, nil
		}
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) || requery >= a.requeries {
			return "", zerr.With(zerr.Wrap(err, "analysis failed"), "task_id", task.ID)
		}
		a.logger.Warn(fmt.Sprintf("task %s: malformed analysis, re-querying (%d/%d): %v", task.ID, requery+1, a.requeries, err))
	}
}

func (a *Analyzer) namedFiles(ctx context.Context, sb ports.Sandbox, task *domain.Task) ([]ports.Snippet, error) {
	snippets := make([]ports.Snippet, 0, len(task.Files))
	for _, path := range task.Files {
		content, err := sb.ReadFile(ctx, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "read file for analysis"), "path", path)
		}
		snippets = append(snippets, ports.Snippet{Path: path, StartLine: 1, Content: content})
	}
	return snippets, nil
}

func (a *Analyzer) relatedCode(ctx context.Context, sb ports.Sandbox, task *domain.Task) []ports.Snippet {
	if a.codeContext == nil {
		return nil
	}
	query := strings.Join([]string{task.Title, task.Description, task.CompletionCriteria}, "\n")
	snippets, err := a.codeContext.SelectRelatedCode(ctx, sb.Root(), query, task.Files)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("code context for task %s unavailable: %v", task.ID, err))
		return nil
	}
	return snippets
}
