// Package scheduler resolves the tasks of a plan one at a time in dependency order.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

// Scheduler manages the resolution of tasks in a plan.
type Scheduler struct {
	provider  ports.SandboxProvider
	mutator   ports.Mutator
	committer ports.Committer
	analyzer  ports.Analyzer
	tracer    ports.Tracer
	logger    ports.Logger

	mu         sync.RWMutex
	taskStatus map[string]domain.TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	provider ports.SandboxProvider,
	mutator ports.Mutator,
	committer ports.Committer,
	analyzer ports.Analyzer,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		provider:   provider,
		mutator:    mutator,
		committer:  committer,
		analyzer:   analyzer,
		tracer:     tracer,
		logger:     logger,
		taskStatus: make(map[string]domain.TaskStatus),
	}
}

// Status returns the last known status of a task.
func (s *Scheduler) Status(id string) domain.TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[id]
}

// updateStatus updates the status of a task.
func (s *Scheduler) updateStatus(task *domain.Task, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.Status = status
	s.taskStatus[task.ID] = status
}

// Run resolves every task of plan against sandboxes checked out from repo.
//
// At each step the first waiting task, in input order, whose dependencies are
// all resolved is selected. Findings of analysis tasks and diffs of commits are
// threaded forward to later tasks. Dependents of a failed task fail without
// running. When tasks remain waiting but none can run, Run stops with a
// *domain.DeadlockError. The report is returned in every case.
func (s *Scheduler) Run(ctx context.Context, plan *domain.Plan, repo domain.RepoHandle) (*domain.Report, error) {
	state := s.newRunState(ctx, plan, repo)

	ids := make([]string, 0, plan.Len())
	deps := make(map[string][]string, plan.Len())
	for task := range plan.All() {
		ids = append(ids, task.ID)
		deps[task.ID] = task.Dependencies
		s.updateStatus(task, domain.StatusWaiting)
	}
	s.tracer.EmitPlan(ctx, ids, deps)

	state.runLoop()

	state.report.FinishedAt = time.Now()
	if failed := state.report.Failed(); len(failed) > 0 {
		failedIDs := make([]string, len(failed))
		for i, o := range failed {
			failedIDs[i] = o.TaskID
		}
		err := zerr.Wrap(domain.ErrTaskFailed, fmt.Sprintf("%d of %d task(s) failed", len(failed), plan.Len()))
		state.errs = errors.Join(state.errs, zerr.With(err, "tasks", strings.Join(failedIDs, ",")))
	}
	return state.report, state.errs
}

type schedulerRunState struct {
	s       *Scheduler
	ctx     context.Context
	plan    *domain.Plan
	repo    domain.RepoHandle
	waiting []*domain.Task
	report  *domain.Report
	errs    error

	backgroundContext []string
	relatedCommits    []string
}

func (s *Scheduler) newRunState(ctx context.Context, plan *domain.Plan, repo domain.RepoHandle) *schedulerRunState {
	return &schedulerRunState{
		s:       s,
		ctx:     ctx,
		plan:    plan,
		repo:    repo,
		waiting: append([]*domain.Task(nil), plan.Tasks()...),
		report: &domain.Report{
			PlanDigest: plan.Digest(),
			Branch:     repo.Branch,
			StartedAt:  time.Now(),
		},
	}
}

func (state *schedulerRunState) runLoop() {
	for len(state.waiting) > 0 {
		if err := state.ctx.Err(); err != nil {
			state.errs = errors.Join(state.errs, err)
			return
		}

		state.blockDependents()
		if len(state.waiting) == 0 {
			return
		}

		task := state.next()
		if task == nil {
			state.errs = errors.Join(state.errs, state.deadlock())
			return
		}
		state.execute(task)
	}
}

// next returns the first waiting task whose dependencies are all resolved.
func (state *schedulerRunState) next() *domain.Task {
	for _, task := range state.waiting {
		if state.runnable(task) {
			return task
		}
	}
	return nil
}

func (state *schedulerRunState) runnable(task *domain.Task) bool {
	for _, dep := range task.Dependencies {
		if state.s.Status(dep) != domain.StatusResolved {
			return false
		}
	}
	return true
}

// blockDependents fails every waiting task with a failed dependency, transitively.
func (state *schedulerRunState) blockDependents() {
	for changed := true; changed; {
		changed = false
		for _, task := range state.waiting {
			for _, dep := range task.Dependencies {
				if state.s.Status(dep) != domain.StatusFailed {
					continue
				}
				state.finish(task, domain.Outcome{
					Diagnostic: "blocked by failed dependency " + dep,
				}, domain.StatusFailed)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}
}

// deadlock describes the waiting tasks that can never run.
func (state *schedulerRunState) deadlock() error {
	err := &domain.DeadlockError{Unmet: make(map[string][]string)}
	for _, task := range state.waiting {
		err.Waiting = append(err.Waiting, task.ID)
		for _, dep := range task.Dependencies {
			if state.s.Status(dep) != domain.StatusResolved {
				err.Unmet[task.ID] = append(err.Unmet[task.ID], dep)
			}
		}
	}
	return err
}

// finish records the outcome of task and removes it from the waiting set.
func (state *schedulerRunState) finish(task *domain.Task, outcome domain.Outcome, status domain.TaskStatus) {
	state.s.updateStatus(task, status)

	outcome.TaskID = task.ID
	outcome.Title = task.Title
	outcome.Status = status
	outcome.CommitHash = task.CommitHash
	state.report.Outcomes = append(state.report.Outcomes, outcome)

	for i, t := range state.waiting {
		if t == task {
			state.waiting = append(state.waiting[:i], state.waiting[i+1:]...)
			break
		}
	}
}

func (state *schedulerRunState) execute(task *domain.Task) {
	state.s.updateStatus(task, domain.StatusRunning)
	task.BackgroundContext = strings.Join(state.backgroundContext, "\n\n")
	task.RelatedCommits = strings.Join(state.relatedCommits, "\n")

	ctx, span := state.s.tracer.Start(state.ctx, task.ID,
		ports.WithAttribute(ports.AttrTaskTitle, task.Title),
		ports.WithAttribute("task.mutation", task.RequiresMutation()),
	)
	start := time.Now()

	output, record, err := state.s.resolve(ctx, state.repo, task)
	if output != "" {
		_, _ = io.WriteString(span, strings.TrimRight(output, "\n")+"\n")
	}

	outcome := domain.Outcome{Output: output, Duration: time.Since(start)}
	if err != nil {
		span.RecordError(err)
		span.End()
		outcome.Diagnostic = err.Error()
		state.finish(task, outcome, domain.StatusFailed)
		return
	}

	if record != nil {
		task.CommitHash = record.Hash
		span.SetAttribute("commit", record.Hash)
		if record.Diff != "" {
			state.relatedCommits = append(state.relatedCommits, record.Diff)
		}
	}
	if output != "" && !task.RequiresMutation() {
		state.backgroundContext = append(state.backgroundContext,
			fmt.Sprintf("[%s] %s\n%s", task.ID, task.Title, strings.TrimSpace(output)))
	}
	span.End()
	state.finish(task, outcome, domain.StatusResolved)
}

// resolve routes task to the analysis or mutation path inside a fresh sandbox.
func (s *Scheduler) resolve(
	ctx context.Context,
	repo domain.RepoHandle,
	task *domain.Task,
) (output string, record *domain.CommitRecord, err error) {
	err = s.withSandbox(ctx, repo, func(sb ports.Sandbox) error {
		if !task.RequiresMutation() {
			output, err = s.analyzer.Analyze(ctx, sb, task)
			return err
		}

		output, err = s.mutator.Mutate(ctx, sb, task)
		if err != nil {
			return err
		}

		rec, err := s.committer.Commit(ctx, sb, commitMessage(task))
		if errors.Is(err, domain.ErrNothingToCommit) {
			return nil
		}
		if err != nil {
			return err
		}
		record = &rec
		return nil
	})
	return output, record, err
}

// withSandbox provisions a sandbox for fn and always destroys it afterwards.
// A panic inside fn is returned as an error.
func (s *Scheduler) withSandbox(ctx context.Context, repo domain.RepoHandle, fn func(ports.Sandbox) error) (err error) {
	sb, err := s.provider.Create(ctx, repo)
	if err != nil {
		return err
	}

	defer func() {
		if derr := sb.Destroy(context.WithoutCancel(ctx)); derr != nil {
			s.logger.Warn(fmt.Sprintf("sandbox %s: %v", sb.ID(), derr))
		}
	}()
	defer zerr.Defer(func(perr error) {
		err = perr
	})

	return fn(sb)
}

func commitMessage(task *domain.Task) string {
	subject := task.Title
	if subject == "" {
		subject = task.ID
	}
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	if task.Description != "" {
		b.WriteString(task.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Task: %s\n", task.ID)
	return b.String()
}
