package tui

import "time"

// MsgInitTasks carries the plan's tasks in input order and their dependencies.
type MsgInitTasks struct {
	Tasks        []string
	Dependencies map[string][]string
}

// MsgTaskStart reports a span start. Spans whose parent is a task span are
// attempts of that task.
type MsgTaskStart struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// MsgTaskLog carries raw output for a span.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgTaskComplete reports a span end.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
