package generator

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
)

// ProposeEdits implements ports.ContentGenerator.
func (c *Client) ProposeEdits(ctx context.Context, req ports.EditRequest) (domain.EditProposal, error) {
	req.CodeContext = trimContext(req.CodeContext, c.maxTokens)
	prompt, err := render(editTemplate, req)
	if err != nil {
		return domain.EditProposal{}, err
	}
	raw, err := c.complete(ctx, conversation(editSystemPrompt, req.History, prompt), true)
	if err != nil {
		return domain.EditProposal{}, err
	}
	return parseEditProposal(raw)
}

// PlanActions implements ports.ContentGenerator.
func (c *Client) PlanActions(ctx context.Context, req ports.ActionRequest) ([]domain.Action, error) {
	prompt, err := render(planTemplate, taskPromptData{
		Task:        req.Task,
		CodeContext: trimContext(req.CodeContext, c.maxTokens),
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.complete(ctx, conversation(planSystemPrompt, req.History, prompt), true)
	if err != nil {
		return nil, err
	}
	return parseActions(raw)
}

// Summarize implements ports.ContentGenerator.
func (c *Client) Summarize(ctx context.Context, req ports.AnalysisRequest) (string, error) {
	prompt, err := render(analysisTemplate, taskPromptData{
		Task:        req.Task,
		CodeContext: trimContext(req.CodeContext, c.maxTokens),
	})
	if err != nil {
		return "", err
	}

	var history []domain.Message
	if req.Task.BackgroundContext != "" {
		history = append(history, domain.Message{
			Role:    domain.RoleUser,
			Content: "Findings from earlier tasks:\n" + req.Task.BackgroundContext,
		})
	}
	raw, err := c.complete(ctx, conversation(analysisSystemPrompt, history, prompt), false)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", &domain.ValidationError{Field: "content", Reason: fmt.Sprintf("empty analysis for task %s", req.Task.ID)}
	}
	return answer, nil
}
