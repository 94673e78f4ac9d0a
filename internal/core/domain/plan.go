package domain

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Plan is an ordered batch of tasks whose dependencies refer to each other by id.
type Plan struct {
	tasks  []*Task
	index  map[string]int
	digest string
}

// NewPlan creates a new empty Plan.
func NewPlan() *Plan {
	return &Plan{
		index: make(map[string]int),
	}
}

// AddTask appends a task to the plan, keeping input order.
// It returns an error if the id is empty or already present.
func (p *Plan) AddTask(t *Task) error {
	if strings.TrimSpace(t.ID) == "" {
		return zerr.With(zerr.Wrap(ErrEmptyTaskID, fmt.Sprintf("task #%d", len(p.tasks)+1)), "position", len(p.tasks)+1)
	}
	if _, exists := p.index[t.ID]; exists {
		return zerr.With(zerr.Wrap(ErrDuplicateTaskID, t.ID), "task_id", t.ID)
	}
	if t.Status == "" {
		t.Status = StatusWaiting
	}
	p.index[t.ID] = len(p.tasks)
	p.tasks = append(p.tasks, t)
	return nil
}

// GetTask returns the task with the given id.
func (p *Plan) GetTask(id string) (*Task, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return p.tasks[i], true
}

// Tasks returns the tasks in input order.
func (p *Plan) Tasks() []*Task {
	return p.tasks
}

// Len returns the number of tasks.
func (p *Plan) Len() int {
	return len(p.tasks)
}

// All yields tasks in input order.
func (p *Plan) All() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, t := range p.tasks {
			if !yield(t) {
				return
			}
		}
	}
}

// SetDigest records the content digest of the plan source.
func (p *Plan) SetDigest(digest string) {
	p.digest = digest
}

// Digest returns the content digest of the plan source.
func (p *Plan) Digest() string {
	return p.digest
}

// Validate statically checks the plan for dangling dependencies and cycles.
// Every problem found is returned, joined, in input order.
func (p *Plan) Validate() error {
	var errs error

	for _, t := range p.tasks {
		for _, dep := range t.Dependencies {
			if _, ok := p.index[dep]; !ok {
				err := zerr.Wrap(ErrMissingDependency, fmt.Sprintf("task %q depends on %q", t.ID, dep))
				errs = errors.Join(errs, zerr.With(err, "dependency", dep))
			}
		}
	}

	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = 1
		path = append(path, id)

		task, _ := p.GetTask(id)
		for _, dep := range task.Dependencies {
			if _, ok := p.index[dep]; !ok {
				continue
			}
			switch visited[dep] {
			case 1:
				errs = errors.Join(errs, buildCycleError(path, dep))
			case 0:
				visit(dep)
			}
		}

		visited[id] = 2
		path = path[:len(path)-1]
	}

	for _, t := range p.tasks {
		if visited[t.ID] == 0 {
			visit(t.ID)
		}
	}

	return errs
}

// buildCycleError constructs an error with the cycle path "A -> B -> A".
func buildCycleError(path []string, dep string) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	cycle := strings.Join(append(append([]string{}, path[startIdx:]...), dep), " -> ")
	return zerr.With(zerr.Wrap(ErrCycleDetected, cycle), "cycle", cycle)
}
