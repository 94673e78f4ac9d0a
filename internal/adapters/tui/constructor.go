// Package tui provides the interactive terminal renderer for plan runs.
package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/patchwork/internal/ui/output"
)

// NewModel creates a new TUI model that follows running tasks.
// Styles render with profile.
func NewModel(w io.Writer, profile termenv.Profile) *Model {
	out := output.New(w, profile)
	lipgloss.SetColorProfile(out.Profile)

	return &Model{
		Tasks:      make([]*TaskNode, 0),
		TaskMap:    make(map[string]*TaskNode),
		SpanMap:    make(map[string]*TaskNode),
		AutoScroll: true,
		FollowMode: true,
	}
}
