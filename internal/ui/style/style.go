// Package style holds the palette and status glyphs shared by the report, the
// logger and both renderers.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6") // headers and the selected task
	Slate  = lipgloss.Color("#667085") // muted detail such as hashes and durations
	White  = lipgloss.Color("#FFFFFF")
	Green  = lipgloss.Color("#22A06B") // resolved
	Red    = lipgloss.Color("#D93025") // failed
	Yellow = lipgloss.Color("#F59E0B") // warnings
)

// Task status glyphs.
const (
	Check   = "✓" // resolved
	Cross   = "✗" // failed
	Dot     = "●" // running
	Circle  = "○" // waiting
	Warning = "!"
)
