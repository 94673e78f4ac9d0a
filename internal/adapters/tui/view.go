package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/patchwork/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.taskList(),
		m.logPane(),
	)
}

func (m *Model) taskList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TASKS") + "\n\n")

	start := m.ListOffset
	end := min(m.ListOffset+m.ListHeight, len(m.Tasks))
	start = min(start, end)

	for i := start; i < end; i++ {
		s.WriteString(m.renderTaskRow(i, m.Tasks[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderTaskRow(index int, task *TaskNode) string {
	icon := taskIcon(task)
	rowStyle := taskStyle(task)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if task.Status != StatusDone && task.Status != StatusError {
			rowStyle = selectedStyle
		}
	}

	content := fmt.Sprintf("%s%s %s", strings.Repeat("  ", task.Depth), icon, task.ID)
	if task.Attempts > 1 {
		content += mutedStyle.Render(fmt.Sprintf(" ×%d", task.Attempts))
	}
	return cursor + rowStyle.Render(content)
}

func taskIcon(task *TaskNode) string {
	switch task.Status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return style.Circle
	}
}

func taskStyle(task *TaskNode) lipgloss.Style {
	switch task.Status {
	case StatusRunning:
		return taskRunningStyle
	case StatusDone:
		return taskDoneStyle
	case StatusError:
		return taskErrorStyle
	default:
		return taskPendingStyle
	}
}

func (m *Model) logPane() string {
	node, ok := m.TaskMap[m.ActiveTaskName]
	if !ok {
		return logStyle.Render(titleStyle.Render("LOGS (Waiting...)"))
	}

	status := " (Manual)"
	if m.FollowMode {
		status = " (Following)"
	}

	header := titleStyle.Render("LOGS: " + node.Name + status)
	if node.Status == StatusError {
		header = failureTitleStyle.Render("FAILED: " + node.Name + status)
	}

	content := node.Term.View()
	if node.Status == StatusPending && len(node.Deps) > 0 {
		content = mutedStyle.Render("waiting on " + strings.Join(node.Deps, ", "))
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			content,
		),
	)
}
