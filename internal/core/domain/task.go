package domain

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// StatusWaiting indicates the task has not been selected yet.
	StatusWaiting TaskStatus = "Waiting"
	// StatusRunning indicates the task is currently being resolved.
	StatusRunning TaskStatus = "Running"
	// StatusResolved indicates the task finished, with or without a commit.
	StatusResolved TaskStatus = "Resolved"
	// StatusFailed indicates the task could not be resolved.
	StatusFailed TaskStatus = "Failed"
)

// Task represents a unit of work in a plan.
type Task struct {
	ID                 string
	Title              string
	Description        string
	Dependencies       []string
	CompletionCriteria string
	// Pseudocode marks the task as requiring code mutation when non-empty.
	Pseudocode string
	// Files optionally names the files the mutation path should edit.
	Files []string

	BackgroundContext string
	RelatedCommits    string
	CommitHash        string
	Status            TaskStatus
}

// RequiresMutation reports whether the task must be resolved by changing code.
func (t *Task) RequiresMutation() bool {
	return t.Pseudocode != ""
}

// IsTerminal reports whether the task reached Resolved or Failed.
func (t *Task) IsTerminal() bool {
	return t.Status == StatusResolved || t.Status == StatusFailed
}

// RepoHandle identifies the repository and branch a sandbox checks out.
type RepoHandle struct {
	Path   string
	Branch string
}

// CommitRecord is a revision produced for a resolved mutation task.
type CommitRecord struct {
	Hash string
	Diff string
}
