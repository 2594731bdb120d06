// Package bootstrap wires settings, the job queue, the worker pool, and
// the event bus into one App that collaborators (the CLI today) drive
// through a small submission/stop/progress surface.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/google/uuid"

	"website-cleaner/internal/config"
	"website-cleaner/internal/domain"
	"website-cleaner/internal/jobs"
	"website-cleaner/internal/tabular"
	"website-cleaner/internal/validate"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("worker pool already started")

// App owns the processing core for one run: submitted jobs, the queue,
// the pool, cancellation flags, and the progress event history.
type App struct {
	Settings domain.Settings
	Store    config.Store

	logger *slog.Logger
	queue  *jobs.Queue
	ctrl   *jobs.Controller
	events *jobs.EventBus
	pool   *jobs.Pool

	mu      sync.Mutex
	jobs    map[string]*jobs.FileJob
	order   []string
	started bool
}

// New builds the application with persisted settings.
func New(store config.Store, logger *slog.Logger) (*App, error) {
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		Settings: settings,
		Store:    store,
		logger:   logger,
		queue:    jobs.NewQueue(),
		ctrl:     jobs.NewController(),
		events:   jobs.NewEventBus(1000),
		jobs:     make(map[string]*jobs.FileJob),
	}, nil
}

// SetEventSink registers the live progress consumer. Call before Start.
func (a *App) SetEventSink(sink jobs.Sink) {
	a.events.SetSink(sink)
}

// Start launches the worker pool with the given concurrency.
func (a *App) Start(workers int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	a.pool = jobs.NewPool(workers, a.queue, a.ctrl, a.events, a.logger)
	a.pool.Start()
	a.logger.Info("worker pool started", "workers", workers)
	return nil
}

// Submit enqueues one file job and returns its ID without blocking.
// The validation rule is compiled here so an invalid custom pattern is
// rejected at submission and never reaches a worker. Zero-value spec
// fields are filled from settings.
func (a *App) Submit(spec domain.JobSpec) (string, error) {
	if strings.TrimSpace(spec.InputPath) == "" {
		return "", fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(spec.OutputPath) == "" {
		return "", fmt.Errorf("output path is required")
	}
	if spec.ChunkSize < 1 {
		spec.ChunkSize = a.Settings.ChunkSize
	}
	if len(spec.Aliases.Website) == 0 {
		spec.Aliases = domain.ColumnAliases{
			Title:   a.Settings.TitleAliases,
			Website: a.Settings.WebsiteAliases,
		}
	}

	rule, err := validate.NewRule(spec.Validation)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	job := jobs.NewFileJob(id, spec, rule)

	a.mu.Lock()
	a.jobs[id] = job
	a.order = append(a.order, id)
	a.mu.Unlock()

	if err := a.queue.Enqueue(job); err != nil {
		// Roll back this ID only; concurrent submitters may have
		// appended to order in the meantime.
		a.mu.Lock()
		delete(a.jobs, id)
		for i, other := range a.order {
			if other == id {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
		a.mu.Unlock()
		return "", err
	}

	a.logger.Info("job submitted", "job", id, "input", spec.InputPath, "output", spec.OutputPath)
	return id, nil
}

// CloseIntake signals that no further jobs will be submitted; workers
// drain the queue and exit.
func (a *App) CloseIntake() {
	a.queue.Close()
}

// Wait blocks until all workers have exited.
func (a *App) Wait() {
	a.mu.Lock()
	pool := a.pool
	a.mu.Unlock()
	if pool != nil {
		pool.Wait()
	}
}

// Stop requests a global stop and blocks until every worker has reached
// a chunk boundary and exited.
func (a *App) Stop() {
	a.mu.Lock()
	pool := a.pool
	a.mu.Unlock()

	if pool == nil {
		a.ctrl.RequestStop()
		a.queue.Close()
		return
	}
	a.logger.Info("stop requested")
	pool.Stop()
}

// RequestCancel flags a single job for cancellation at its next chunk
// boundary.
func (a *App) RequestCancel(jobID string) error {
	a.mu.Lock()
	_, ok := a.jobs[jobID]
	a.mu.Unlock()
	if !ok {
		return jobs.ErrUnknownJob
	}

	a.ctrl.RequestCancel(jobID)
	a.logger.Info("cancel requested", "job", jobID)
	return nil
}

// Job returns a snapshot of one job.
func (a *App) Job(jobID string) (domain.Job, error) {
	a.mu.Lock()
	job, ok := a.jobs[jobID]
	a.mu.Unlock()
	if !ok {
		return domain.Job{}, jobs.ErrUnknownJob
	}
	return job.Snapshot(), nil
}

// Jobs returns snapshots of all submitted jobs in submission order.
func (a *App) Jobs() []domain.Job {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.Job, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.jobs[id].Snapshot())
	}
	return out
}

// Events returns all progress events with sequence greater than sinceSeq.
func (a *App) Events(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// SaveSettings persists the given settings and adopts them.
func (a *App) SaveSettings(settings domain.Settings) error {
	if err := a.Store.Save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	a.Settings = settings
	return nil
}

// Preview returns a file's header and its first n rows, for column
// inspection before a run.
func (a *App) Preview(path string, n int) ([]string, [][]string, error) {
	if n < 1 {
		n = 5
	}

	reader, err := tabular.Open(path, n)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	chunk, err := reader.Next()
	if errors.Is(err, io.EOF) {
		return reader.Header(), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return reader.Header(), chunk.Rows, nil
}

// OpenOutput launches the cleaned file of a completed job with the
// platform default application.
func (a *App) OpenOutput(jobID string) error {
	snap, err := a.Job(jobID)
	if err != nil {
		return err
	}
	if snap.State != domain.JobStateCompleted {
		return fmt.Errorf("job %s has no published output (state %s)", jobID, snap.State)
	}
	if _, err := os.Stat(snap.OutputPath); err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	return openWithDefaultApp(snap.OutputPath)
}

// BuildOutputPath constructs the cleaned file's destination:
// <outputDir>/<baseName>_<input stem>.<format>.
func BuildOutputPath(outputDir, baseName, format, inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if baseName == "" {
		baseName = "cleaned_output"
	}
	if format != "xlsx" {
		format = "csv"
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.%s", baseName, stem, format))
}

// openWithDefaultApp launches the platform opener for the given file.
func openWithDefaultApp(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch default application: %w", err)
	}
	return nil
}
