package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/patchwork/internal/ui/style"
)

const (
	taskListWidthRatio = 0.3
	logPaneBorderWidth = 4
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting for its dependencies.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is being resolved.
	StatusRunning TaskStatus = "Running"
	// StatusDone indicates the task resolved.
	StatusDone TaskStatus = "Done"
	// StatusError indicates the task failed.
	StatusError TaskStatus = "Error"
)

// TaskNode represents a single task in the UI list.
type TaskNode struct {
	ID       string
	Name     string
	Deps     []string
	Depth    int
	Status   TaskStatus
	SpanID   string
	Attempts int
	Term     *Vterm
}

// Model represents the main TUI state.
type Model struct {
	Tasks          []*TaskNode
	TaskMap        map[string]*TaskNode
	SpanMap        map[string]*TaskNode
	AutoScroll     bool
	ActiveTaskName string
	SelectedIdx    int
	ListOffset     int
	ListHeight     int
	LogWidth       int
	LogHeight      int
	FollowMode     bool
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) getSelectedTask() *TaskNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Tasks) {
		return m.Tasks[m.SelectedIdx]
	}
	return nil
}

func (m *Model) updateActiveView() {
	if node := m.getSelectedTask(); node != nil {
		m.ActiveTaskName = node.ID

		if m.FollowMode && m.AutoScroll {
			node.Term.Scroll("end")
		}
	}
}

func (m *Model) follow(id string) {
	for i, t := range m.Tasks {
		if t.ID == id {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	m.updateActiveView()
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.FollowMode = false
				m.ensureVisible()
				m.updateActiveView()
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Tasks)-1 {
				m.SelectedIdx++
				m.FollowMode = false
				m.ensureVisible()
				m.updateActiveView()
			}
		case "esc":
			m.FollowMode = true
			for _, t := range m.Tasks {
				if t.Status == StatusRunning {
					m.follow(t.ID)
					break
				}
			}
		default:
			if node, ok := m.TaskMap[m.ActiveTaskName]; ok {
				node.Term.Scroll(msg.String())
			}
		}

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * taskListWidthRatio)
		logWidth := msg.Width - listWidth - logPaneBorderWidth

		headerHeight := lipgloss.Height(titleStyle.Render("TEST"))
		m.LogWidth = logWidth
		m.LogHeight = msg.Height - headerHeight

		fullHeader := titleStyle.Render("TASKS") + "\n\n"
		m.ListHeight = msg.Height - lipgloss.Height(fullHeader)
		m.ensureVisible()

		for _, node := range m.Tasks {
			node.Term.SetWidth(m.LogWidth)
			node.Term.SetHeight(m.LogHeight)
		}

	case MsgInitTasks:
		m.initTasks(msg)

	case MsgTaskStart:
		m.startSpan(msg)

	case MsgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case MsgTaskComplete:
		m.completeSpan(msg)
	}

	return m, nil
}

func (m *Model) initTasks(msg MsgInitTasks) {
	m.Tasks = make([]*TaskNode, len(msg.Tasks))
	m.TaskMap = make(map[string]*TaskNode, len(msg.Tasks))
	m.SpanMap = make(map[string]*TaskNode)
	for i, id := range msg.Tasks {
		term := NewVterm()
		if m.LogWidth > 0 && m.LogHeight > 0 {
			term.SetWidth(m.LogWidth)
			term.SetHeight(m.LogHeight)
		}
		m.Tasks[i] = &TaskNode{
			ID:     id,
			Name:   id,
			Status: StatusPending,
			Term:   term,
		}
		m.TaskMap[id] = m.Tasks[i]
	}
	assignDepths(m.Tasks, msg.Dependencies, m.TaskMap)
}

// startSpan binds task spans by the task id that leads the span name and
// attempt spans by their parent.
func (m *Model) startSpan(msg MsgTaskStart) {
	if node, ok := m.SpanMap[msg.ParentID]; ok && msg.ParentID != "" {
		node.Attempts++
		m.SpanMap[msg.SpanID] = node
		_, _ = fmt.Fprintf(node.Term, "── %s ──\r\n", msg.Name)
		return
	}

	id, _, _ := strings.Cut(msg.Name, " ")
	node, ok := m.TaskMap[id]
	if !ok {
		return
	}
	node.Name = msg.Name
	node.Status = StatusRunning
	node.SpanID = msg.SpanID
	m.SpanMap[msg.SpanID] = node

	if m.FollowMode {
		m.follow(id)
	}
}

func (m *Model) completeSpan(msg MsgTaskComplete) {
	node, ok := m.SpanMap[msg.SpanID]
	if !ok {
		return
	}
	if msg.SpanID != node.SpanID {
		if msg.Err != nil {
			_, _ = fmt.Fprintf(node.Term, "%s %s\r\n", style.Cross, msg.Err)
		}
		return
	}
	if msg.Err != nil {
		node.Status = StatusError
		_, _ = fmt.Fprintf(node.Term, "%s %s\r\n", style.Cross, msg.Err)
	} else {
		node.Status = StatusDone
	}
}
