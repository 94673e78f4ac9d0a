package domain

import "time"

// Outcome is the terminal record of one task in a run.
type Outcome struct {
	TaskID     string        `json:"taskId"`
	Title      string        `json:"title"`
	Status     TaskStatus    `json:"status"`
	CommitHash string        `json:"commitHash,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
	Output     string        `json:"output,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Report summarizes a run. Outcomes are listed in resolution order.
type Report struct {
	RunID      string    `json:"runId"`
	PlanDigest string    `json:"planDigest"`
	Branch     string    `json:"branch"`
	Outcomes   []Outcome `json:"outcomes"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Failed returns the outcomes of failed tasks.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Commits returns the commit hashes produced by the run, in order.
func (r *Report) Commits() []string {
	var hashes []string
	for _, o := range r.Outcomes {
		if o.CommitHash != "" {
			hashes = append(hashes, o.CommitHash)
		}
	}
	return hashes
}

// Succeeded reports whether every task was resolved.
func (r *Report) Succeeded() bool {
	return len(r.Failed()) == 0
}
