package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/patchwork/internal/core/ports/mocks"
	"go.trai.ch/patchwork/internal/engine/scheduler"
	"go.trai.ch/patchwork/internal/testutil"
	"go.uber.org/mock/gomock"
)

var repo = domain.RepoHandle{Path: "/repo", Branch: "patchwork/run"}

type schedulerTestMocks struct {
	provider  *mocks.MockSandboxProvider
	mutator   *mocks.MockMutator
	committer *mocks.MockCommitter
	analyzer  *mocks.MockAnalyzer
	tracer    *mocks.MockTracer
	logger    *mocks.MockLogger
	sandboxes []*testutil.MemSandbox
}

// setupSchedulerTest creates a scheduler and common mocks.
// Every Create call hands out a fresh in-memory sandbox.
func setupSchedulerTest(t *testing.T) (*scheduler.Scheduler, *schedulerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &schedulerTestMocks{
		provider:  mocks.NewMockSandboxProvider(ctrl),
		mutator:   mocks.NewMockMutator(ctrl),
		committer: mocks.NewMockCommitter(ctrl),
		analyzer:  mocks.NewMockAnalyzer(ctrl),
		tracer:    mocks.NewMockTracer(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}

	// Default optimistic mocks to reduce noise in specific tests.
	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	mockSpan.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	}).AnyTimes()

	// Start has variadic signature: Start(ctx, name, ...opts).
	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()
	m.tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	m.provider.EXPECT().Create(gomock.Any(), repo).DoAndReturn(
		func(context.Context, domain.RepoHandle) (ports.Sandbox, error) {
			sb := testutil.NewMemSandbox(nil)
			m.sandboxes = append(m.sandboxes, sb)
			return sb, nil
		},
	).AnyTimes()

	s := scheduler.NewScheduler(m.provider, m.mutator, m.committer, m.analyzer, m.tracer, m.logger)
	return s, m
}

// createPlanHelper builds a plan from tasks given in input order.
func createPlanHelper(t *testing.T, tasks ...*domain.Task) *domain.Plan {
	t.Helper()
	p := domain.NewPlan()
	for _, task := range tasks {
		require.NoError(t, p.AddTask(task))
	}
	return p
}

func mutation(id string, deps ...string) *domain.Task {
	return &domain.Task{ID: id, Title: "Task " + id, Pseudocode: "change " + id, Dependencies: deps}
}

func analysis(id string, deps ...string) *domain.Task {
	return &domain.Task{ID: id, Title: "Task " + id, Dependencies: deps}
}

// taskMatcher implements gomock.Matcher for domain.Task.
type taskMatcher struct {
	id string
}

func (m taskMatcher) Matches(x any) bool {
	t, ok := x.(*domain.Task)
	if !ok {
		return false
	}
	return t.ID == m.id
}

func (m taskMatcher) String() string {
	return "task id is " + m.id
}

func matchTask(id string) gomock.Matcher {
	return taskMatcher{id: id}
}

func outcomeIDs(r *domain.Report) []string {
	ids := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		ids[i] = o.TaskID
	}
	return ids
}

func TestScheduler_ResolvesInDependencyOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		// Input order C, A, B with C -> B -> A.
		plan := createPlanHelper(t, mutation("C", "B"), mutation("A"), mutation("B", "A"))
		s, m := setupSchedulerTest(t)

		var order []string
		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ ports.Sandbox, task *domain.Task) (string, error) {
				for _, dep := range task.Dependencies {
					assert.Equal(t, domain.StatusResolved, s.Status(dep), "dependency %s of %s", dep, task.ID)
				}
				order = append(order, task.ID)
				return "", nil
			},
		).Times(3)
		m.committer.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ ports.Sandbox, msg string) (domain.CommitRecord, error) {
				return domain.CommitRecord{Hash: "h-" + msg[len("Task "):len("Task ")+1], Diff: "diff " + msg[:6]}, nil
			},
		).Times(3)

		report, err := s.Run(t.Context(), plan, repo)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, order)
		assert.Equal(t, []string{"A", "B", "C"}, outcomeIDs(report))
		assert.Equal(t, []string{"h-A", "h-B", "h-C"}, report.Commits())
		assert.True(t, report.Succeeded())
	})
}

func TestScheduler_PicksFirstReadyInInputOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, analysis("X"), analysis("Y"), analysis("Z", "Y"))
		s, m := setupSchedulerTest(t)

		gomock.InOrder(
			m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), matchTask("X")).Return("x", nil),
			m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), matchTask("Y")).Return("y", nil),
			m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), matchTask("Z")).Return("z", nil),
		)

		report, err := s.Run(t.Context(), plan, repo)

		require.NoError(t, err)
		assert.Equal(t, []string{"X", "Y", "Z"}, outcomeIDs(report))
	})
}

func TestScheduler_ThreadsContextForward(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, analysis("survey"), mutation("fix", "survey"), mutation("test", "fix"))
		s, m := setupSchedulerTest(t)

		m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), matchTask("survey")).Return("uses sqlite", nil)
		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), matchTask("fix")).DoAndReturn(
			func(_ context.Context, _ ports.Sandbox, task *domain.Task) (string, error) {
				assert.Contains(t, task.BackgroundContext, "[survey] Task survey\nuses sqlite")
				assert.Empty(t, task.RelatedCommits)
				return "applied 1 edit(s) to db.go in 1 attempt(s)", nil
			},
		)
		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), matchTask("test")).DoAndReturn(
			func(_ context.Context, _ ports.Sandbox, task *domain.Task) (string, error) {
				assert.Contains(t, task.BackgroundContext, "uses sqlite")
				assert.NotContains(t, task.BackgroundContext, "applied 1 edit(s)")
				assert.NotContains(t, task.BackgroundContext, "[fix]")
				assert.Equal(t, "diff --git a/db.go", task.RelatedCommits)
				return "", nil
			},
		)
		m.committer.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.CommitRecord{Hash: "c1", Diff: "diff --git a/db.go"}, nil)
		m.committer.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.CommitRecord{Hash: "c2", Diff: "diff --git a/db_test.go"}, nil)

		_, err := s.Run(t.Context(), plan, repo)

		require.NoError(t, err)
	})
}

func TestScheduler_CycleDeadlocksWithoutCommits(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, mutation("A", "B"), mutation("B", "A"))
		s, m := setupSchedulerTest(t)

		report, err := s.Run(t.Context(), plan, repo)

		var deadlock *domain.DeadlockError
		require.True(t, errors.As(err, &deadlock))
		assert.ErrorIs(t, err, domain.ErrSchedulerDeadlock)
		assert.Equal(t, []string{"A", "B"}, deadlock.Waiting)
		assert.Equal(t, []string{"B"}, deadlock.Unmet["A"])
		assert.Empty(t, report.Commits())
		assert.Empty(t, m.sandboxes)
		assert.Equal(t, domain.StatusWaiting, s.Status("A"))
	})
}

func TestScheduler_DanglingDependencyDeadlocks(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, analysis("A"), analysis("B", "ghost"))
		s, m := setupSchedulerTest(t)

		m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), matchTask("A")).Return("", nil)

		report, err := s.Run(t.Context(), plan, repo)

		var deadlock *domain.DeadlockError
		require.True(t, errors.As(err, &deadlock))
		assert.Equal(t, []string{"B"}, deadlock.Waiting)
		assert.Equal(t, []string{"ghost"}, deadlock.Unmet["B"])
		assert.Equal(t, []string{"A"}, outcomeIDs(report))
	})
}

func TestScheduler_NothingToCommitResolvesAndUnblocks(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, mutation("noop"), mutation("next", "noop"))
		s, m := setupSchedulerTest(t)

		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil).Times(2)
		m.committer.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.CommitRecord{}, &domain.CommitError{Step: "diff", Err: domain.ErrNothingToCommit})
		m.committer.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.CommitRecord{Hash: "abc"}, nil)

		report, err := s.Run(t.Context(), plan, repo)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusResolved, s.Status("noop"))
		assert.Equal(t, domain.StatusResolved, s.Status("next"))
		assert.Equal(t, []string{"abc"}, report.Commits())
	})
}

func TestScheduler_FailureBlocksDependentsOnly(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t,
			mutation("bad"),
			mutation("child", "bad"),
			mutation("grandchild", "child"),
			mutation("free"),
		)
		s, m := setupSchedulerTest(t)

		unresolved := &domain.UnresolvedEditsError{Path: "a.go", Attempts: 4, Edits: []domain.Edit{{ID: "e1"}}}
		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), matchTask("bad")).Return("", unresolved)
		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), matchTask("free")).Return("", nil)
		m.committer.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.CommitRecord{Hash: "f"}, nil)

		report, err := s.Run(t.Context(), plan, repo)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTaskFailed)
		assert.NotErrorIs(t, err, domain.ErrSchedulerDeadlock)

		assert.Equal(t, []string{"bad", "child", "grandchild", "free"}, outcomeIDs(report))
		failed := report.Failed()
		require.Len(t, failed, 3)
		assert.Contains(t, failed[0].Diagnostic, "could not be applied after 4 attempt(s)")
		assert.Equal(t, "blocked by failed dependency bad", failed[1].Diagnostic)
		assert.Equal(t, "blocked by failed dependency child", failed[2].Diagnostic)
		assert.Equal(t, domain.StatusResolved, s.Status("free"))
	})
}

func TestScheduler_ProvisionErrorFailsTask(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, mutation("A"))
		ctrl := gomock.NewController(t)
		provider := mocks.NewMockSandboxProvider(ctrl)
		_, m := setupSchedulerTest(t)
		s := scheduler.NewScheduler(provider, m.mutator, m.committer, m.analyzer, m.tracer, m.logger)

		provider.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, &domain.ProvisionError{Repo: "/repo", Branch: "b", Err: errors.New("worktree busy")})

		report, err := s.Run(t.Context(), plan, repo)

		assert.ErrorIs(t, err, domain.ErrTaskFailed)
		require.Len(t, report.Failed(), 1)
		assert.Contains(t, report.Failed()[0].Diagnostic, "worktree busy")
	})
}

func TestScheduler_DestroysSandboxEvenOnPanic(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, mutation("A"), analysis("B"))
		s, m := setupSchedulerTest(t)

		m.mutator.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, ports.Sandbox, *domain.Task) (string, error) {
				panic("boom")
			},
		)
		m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil)

		report, err := s.Run(t.Context(), plan, repo)

		require.Error(t, err)
		require.Len(t, m.sandboxes, 2)
		for _, sb := range m.sandboxes {
			assert.Equal(t, ports.SandboxDestroyed, sb.State())
		}
		assert.Equal(t, "boom", report.Failed()[0].Diagnostic)
		assert.Equal(t, domain.StatusResolved, s.Status("B"))
	})
}

func TestScheduler_StopsWhenContextCanceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		plan := createPlanHelper(t, analysis("A"), analysis("B"))
		s, m := setupSchedulerTest(t)

		ctx, cancel := context.WithCancel(t.Context())
		m.analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), matchTask("A")).DoAndReturn(
			func(context.Context, ports.Sandbox, *domain.Task) (string, error) {
				cancel()
				return "", nil
			},
		)

		report, err := s.Run(ctx, plan, repo)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"A"}, outcomeIDs(report))
		assert.Equal(t, domain.StatusWaiting, s.Status("B"))
	})
}
