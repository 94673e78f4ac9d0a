package ports

import (
	"context"

	"go.trai.ch/patchwork/internal/core/domain"
)

// EditRequest asks the generator for edits to a single file.
type EditRequest struct {
	// Path is the file being edited, relative to the sandbox root.
	Path string
	// Spec describes the change to make.
	Spec string
	// Content is the current file content. Empty when the file does not exist yet.
	Content string
	// Exists reports whether the file exists.
	Exists bool
	// History is the conversation so far, including feedback on failed edits.
	History []domain.Message
	// CodeContext holds related code from other files.
	CodeContext []Snippet
}

// ActionRequest asks the generator to plan the actions for a mutation task.
type ActionRequest struct {
	Task        *domain.Task
	CodeContext []Snippet
	History     []domain.Message
}

// AnalysisRequest asks the generator to answer an analysis task.
type AnalysisRequest struct {
	Task        *domain.Task
	CodeContext []Snippet
}

// ContentGenerator produces edits, action plans and analyses.
// Malformed responses are reported as *domain.ValidationError.
//
//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type ContentGenerator interface {
	// ProposeEdits returns either a list of edits or a whole-file replacement.
	ProposeEdits(ctx context.Context, req EditRequest) (domain.EditProposal, error)
	// PlanActions returns the actions that resolve a mutation task.
	PlanActions(ctx context.Context, req ActionRequest) ([]domain.Action, error)
	// Summarize answers an analysis task in prose.
	Summarize(ctx context.Context, req AnalysisRequest) (string, error)
}
