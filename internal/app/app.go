// Package app implements the application layer for patchwork.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/patchwork/internal/adapters/analyzer"
	"go.trai.ch/patchwork/internal/adapters/codesearch"
	"go.trai.ch/patchwork/internal/adapters/detector"
	"go.trai.ch/patchwork/internal/adapters/fs"
	"go.trai.ch/patchwork/internal/adapters/generator"
	"go.trai.ch/patchwork/internal/adapters/linear"
	"go.trai.ch/patchwork/internal/adapters/sandbox"
	"go.trai.ch/patchwork/internal/adapters/telemetry"
	"go.trai.ch/patchwork/internal/adapters/tui"
	"go.trai.ch/patchwork/internal/adapters/watcher"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/patchwork/internal/engine/commit"
	"go.trai.ch/patchwork/internal/engine/mutate"
	"go.trai.ch/patchwork/internal/engine/patch"
	"go.trai.ch/patchwork/internal/engine/scheduler"
	"go.trai.ch/patchwork/internal/engine/session"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// GeneratorFactory builds the content generator from the loaded settings.
type GeneratorFactory func(settings domain.GeneratorSettings, logger ports.Logger) (ports.ContentGenerator, error)

// WatcherFactory builds the file watcher used by WatchPlan.
type WatcherFactory func(logger ports.Logger) (ports.Watcher, error)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	vcs          ports.VCS
	store        ports.ReportStore
	walker       *fs.Walker
	logger       ports.Logger

	newGenerator GeneratorFactory
	newWatcher   WatcherFactory
	newRunID     func() string
	teaOptions   []tea.ProgramOption
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	vcs ports.VCS,
	store ports.ReportStore,
	walker *fs.Walker,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		vcs:          vcs,
		store:        store,
		walker:       walker,
		logger:       log,
		newGenerator: func(s domain.GeneratorSettings, l ports.Logger) (ports.ContentGenerator, error) {
			return generator.New(s, l)
		},
		newWatcher: func(l ports.Logger) (ports.Watcher, error) {
			return watcher.NewWatcher(l)
		},
		newRunID: func() string { return uuid.NewString()[:8] },
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// WithGenerator replaces the content generator factory.
// This is primarily used for testing.
func (a *App) WithGenerator(factory GeneratorFactory) *App {
	a.newGenerator = factory
	return a
}

// WithWatcher replaces the file watcher factory.
// This is primarily used for testing.
func (a *App) WithWatcher(factory WatcherFactory) *App {
	a.newWatcher = factory
	return a
}

// WithRunID fixes the run id instead of generating one.
func (a *App) WithRunID(id string) *App {
	a.newRunID = func() string { return id }
	return a
}

// WithTeaOptions configures the interactive renderer's program.
// This is primarily used for testing.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = opts
	return a
}

// WithOutput redirects the renderer and report output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// PlanPath is the plan file to resolve.
	PlanPath string
	// RepoDir is any directory inside the target repository.
	RepoDir string
	// Base is the revision the run branch starts from.
	Base string
	// Branch resolves the plan on an existing branch instead of a new run branch.
	Branch string
	// Retries overrides the session retry budget when not negative.
	Retries int
	// OutputMode is one of auto, rich, plain or json.
	OutputMode string
}

// Run resolves every task of the plan and stores the resulting report.
//
//nolint:cyclop,funlen // orchestration function
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	// 1. Load settings and plan
	settings, err := a.configLoader.LoadSettings(opts.RepoDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load settings")
	}
	if opts.Retries >= 0 {
		settings.Session.Retries = opts.Retries
	}

	plan, err := a.configLoader.LoadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	gen, err := a.newGenerator(settings.Generator, a.logger)
	if err != nil {
		return err
	}

	// 2. Resolve output mode
	mode, err := detector.NewNode().Mode(opts.OutputMode)
	if err != nil {
		return err
	}
	if j, ok := a.logger.(interface{ SetJSON(bool) }); ok && mode == detector.ModeJSON {
		j.SetJSON(true)
	}

	// 3. Prepare the run branch
	root, err := a.vcs.Root(ctx, opts.RepoDir)
	if err != nil {
		return err
	}

	runID := a.newRunID()
	branch := opts.Branch
	if branch == "" {
		base := opts.Base
		if base == "" {
			base = "HEAD"
		}
		branch = settings.Git.BranchPrefix + runID
		if err := a.vcs.CreateBranch(ctx, root, branch, base); err != nil {
			return err
		}
		a.logger.Info(fmt.Sprintf("created run branch %s from %s", branch, base))
	}

	// 4. Initialize renderer and telemetry
	var renderer ports.Renderer
	var otelTracer *telemetry.OTelTracer
	var tracer ports.Tracer = telemetry.NewNoOpTracer()
	if mode != detector.ModeJSON {
		renderer = a.newRenderer(ctx, mode)
		setupOTel(telemetry.NewBridge(renderer))
		otelTracer = telemetry.NewOTelTracer("patchwork").WithRenderer(renderer)
		defer func() {
			_ = otelTracer.Shutdown(ctx)
		}()
		tracer = otelTracer
	}

	// 5. Build the engine for these settings
	sched := a.buildScheduler(settings, gen, tracer)

	// 6. Run renderer and scheduler concurrently
	var report *domain.Report
	var runErr error

	g, gctx := errgroup.WithContext(ctx)
	if renderer != nil {
		g.Go(func() error {
			if err := renderer.Start(gctx); err != nil {
				return err
			}
			return renderer.Wait()
		})
	}
	g.Go(func() error {
		defer func() {
			// Drain streamed task output before the renderer stops.
			if otelTracer != nil {
				_ = otelTracer.Shutdown(ctx)
			}
			if renderer != nil {
				_ = renderer.Stop()
			}
		}()
		report, runErr = sched.Run(gctx, plan, domain.RepoHandle{Path: root, Branch: branch})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// 7. Persist and print the report
	report.RunID = runID
	if err := a.store.Put(root, report); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if mode == detector.ModeJSON {
		if err := WriteJSONReport(a.stdout, report); err != nil {
			runErr = errors.Join(runErr, err)
		}
	} else {
		_, _ = io.WriteString(a.stdout, FormatReport(report, mode.ColorProfile()))
	}

	if runErr != nil {
		a.logger.Error(runErr)
		return errors.Join(domain.ErrRunFailed, runErr)
	}
	return nil
}

func (a *App) newRenderer(ctx context.Context, mode detector.OutputMode) ports.Renderer {
	if mode == detector.ModeRich {
		model := tui.NewModel(a.stderr, mode.ColorProfile())
		opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.stderr)}, a.teaOptions...)
		return tui.NewRenderer(model, opts...)
	}
	return linear.NewNode().Renderer(a.stdout, a.stderr, mode.ColorProfile())
}

func (a *App) buildScheduler(settings domain.Settings, gen ports.ContentGenerator, tracer ports.Tracer) *scheduler.Scheduler {
	searcher := codesearch.New(a.walker, settings.Context)
	requeries := settings.Session.Requeries

	sess := session.New(gen, patch.NewApplier(a.logger), a.logger, tracer, session.Options{
		Retries:   settings.Session.Retries,
		Requeries: requeries,
	})

	return scheduler.NewScheduler(
		sandbox.NewProvider(a.vcs, a.executor, a.logger, settings.Sandbox.BaseDir),
		mutate.New(gen, searcher, sess, a.logger, requeries),
		commit.New(commit.Author{Name: settings.Git.AuthorName, Email: settings.Git.AuthorEmail}, a.logger),
		analyzer.New(gen, searcher, a.logger, requeries),
		tracer,
		a.logger,
	)
}

// Validate loads a plan and checks its dependency graph statically.
func (a *App) Validate(_ context.Context, planPath string) error {
	plan, err := a.configLoader.LoadPlan(planPath)
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return errors.Join(domain.ErrPlanInvalid, err)
	}
	a.logger.Info(fmt.Sprintf("plan %s is valid: %d task(s)", planPath, plan.Len()))
	return nil
}

// WatchPlan validates a plan, then validates it again after every change to
// the plan file until ctx is done. Validation failures are logged, not returned.
func (a *App) WatchPlan(ctx context.Context, planPath string) error {
	abs, err := filepath.Abs(planPath)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve plan path")
	}

	w, err := a.newWatcher(a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, filepath.Dir(abs)); err != nil {
		return err
	}
	defer func() {
		_ = w.Stop()
	}()

	revalidate := func([]string) {
		if err := a.Validate(ctx, planPath); err != nil {
			a.logger.Error(err)
		}
	}

	revalidate(nil)
	a.logger.Info(fmt.Sprintf("watching %s for changes...", planPath))

	d := watcher.NewDebouncer(watcher.DefaultDebounceWindow, revalidate)
	for ev := range w.Events() {
		if filepath.Clean(ev.Path) == abs {
			d.Add(ev.Path)
		}
	}
	d.Flush()
	return nil
}

// Report prints the stored report of the latest run of a plan.
func (a *App) Report(ctx context.Context, planPath, repoDir string) error {
	plan, err := a.configLoader.LoadPlan(planPath)
	if err != nil {
		return err
	}

	root, err := a.vcs.Root(ctx, repoDir)
	if err != nil {
		return err
	}

	report, err := a.store.Get(root, plan.Digest())
	if err != nil {
		return err
	}
	if report == nil {
		return zerr.With(zerr.Wrap(domain.ErrReportNotFound, planPath), "digest", plan.Digest())
	}

	_, err = io.WriteString(a.stdout, FormatReport(report, detector.DetectEnvironment().ColorProfile()))
	return err
}

// Clean removes stored reports and prunes stale sandbox worktrees.
func (a *App) Clean(ctx context.Context, repoDir string) error {
	root, err := a.vcs.Root(ctx, repoDir)
	if err != nil {
		return err
	}

	var errs error
	a.logger.Info("removing stored reports...")
	if err := a.store.Clear(root); err != nil {
		errs = errors.Join(errs, err)
	}

	a.logger.Info("pruning sandbox worktrees...")
	if err := a.vcs.PruneWorktrees(ctx, root); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, "failed to prune worktrees"))
	}
	return errs
}

// setupOTel configures the OpenTelemetry SDK with the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
}
