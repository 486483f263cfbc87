// Package worker claims queued suggestion jobs and runs them through the
// suggestion pipeline, one job at a time per Worker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/kiranshivaraju/gamescout/internal/metrics"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/internal/suggest"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

const (
	defaultPollInterval = 2 * time.Second
	drainCheckInterval  = 25 * time.Millisecond
)

// Pipeline produces suggestions for one source game.
type Pipeline interface {
	Run(ctx context.Context, appID int) (*suggest.Result, error)
}

type Config struct {
	ID           string
	PollInterval time.Duration
}

// Worker polls the job table. Several workers, in one process or many,
// may share a table; the conditional claim keeps each job on one worker.
type Worker struct {
	id          string
	jobs        store.JobStore
	suggestions store.SuggestionStore
	pipeline    Pipeline
	interval    time.Duration
	log         *slog.Logger
	now         func() time.Time

	busy atomic.Bool
}

func New(jobs store.JobStore, suggestions store.SuggestionStore, pipeline Pipeline, cfg Config, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ID == "" {
		cfg.ID = "worker"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		id:          cfg.ID,
		jobs:        jobs,
		suggestions: suggestions,
		pipeline:    pipeline,
		interval:    cfg.PollInterval,
		log:         log.With("component", "worker", "worker_id", cfg.ID),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// TryClaim moves job from queued to running. It reports false when another
// worker claimed the job first.
func (w *Worker) TryClaim(ctx context.Context, job *models.SuggestionJob) (bool, error) {
	startedAt := w.now()
	ok, err := w.jobs.ConditionalUpdateStatus(ctx, job.ID,
		models.JobStatusQueued, models.JobStatusRunning, store.WithStartedAt(startedAt))
	if err != nil {
		return false, fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	if !ok {
		metrics.ClaimConflicts.Inc()
		return false, nil
	}

	job.Status = models.JobStatusRunning
	job.StartedAt = &startedAt
	metrics.JobsClaimed.Inc()
	return true, nil
}

// ClaimNextJob claims the oldest queued job. It returns nil, nil when the
// queue is empty or the claim was lost to another worker.
func (w *Worker) ClaimNextJob(ctx context.Context) (*models.SuggestionJob, error) {
	queued, err := w.jobs.ListOldestQueued(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}
	if len(queued) == 0 {
		return nil, nil
	}

	job := queued[0]
	ok, err := w.TryClaim(ctx, job)
	if err != nil {
		return nil, err
	}
	if !ok {
		w.log.Debug("lost claim race", "job_id", job.ID)
		return nil, nil
	}
	return job, nil
}

// ProcessJob runs the pipeline for a claimed job and records a terminal status.
// An empty pipeline result is a success with an informational error message.
func (w *Worker) ProcessJob(ctx context.Context, job *models.SuggestionJob) (err error) {
	if job.Status != models.JobStatusRunning {
		return fmt.Errorf("process job %s: %w: status is %s", job.ID, store.ErrInvalidTransition, job.Status)
	}
	start := time.Now()
	log := w.log.With("job_id", job.ID, "source_app_id", job.SourceAppID)
	log.Info("processing job")

	outcome := "error"
	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", "panic", r, "stack", string(debug.Stack()))
			err = w.fail(ctx, job, fmt.Errorf("panic: %v", r))
			metrics.RecordJobCompleted(string(models.JobStatusFailed), "panic", time.Since(start))
		}
	}()

	res, runErr := w.pipeline.Run(ctx, job.SourceAppID)
	if runErr == nil {
		outcome = string(res.Outcome)
		runErr = w.persist(ctx, job, res)
	}
	if runErr != nil {
		log.Error("job failed", "error", runErr)
		metrics.RecordJobCompleted(string(models.JobStatusFailed), outcome, time.Since(start))
		return w.fail(ctx, job, runErr)
	}

	metrics.RecordJobCompleted(string(models.JobStatusSucceeded), outcome, time.Since(start))
	log.Info("job succeeded",
		"outcome", outcome,
		"suggestions", len(res.Suggestions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// persist replaces the stored suggestions for the source and marks the job
// succeeded. An empty result clears the earlier set.
func (w *Worker) persist(ctx context.Context, job *models.SuggestionJob, res *suggest.Result) error {
	if res.Empty() {
		if err := w.suggestions.DeleteSuggestionsForSource(ctx, job.SourceAppID); err != nil {
			return fmt.Errorf("clear suggestions: %w", err)
		}
		return w.finish(ctx, job, models.JobStatusSucceeded, store.WithErrorMessage(res.Message()))
	}

	err := w.suggestions.ReplaceSuggestions(ctx, job.SourceAppID, res.Suggestions)
	if errors.Is(err, store.ErrDuplicateKey) {
		w.log.Warn("concurrent suggestion write, retrying with upsert",
			"job_id", job.ID, "source_app_id", job.SourceAppID)
		err = w.suggestions.UpsertSuggestions(ctx, job.SourceAppID, res.Suggestions)
	}
	if err != nil {
		return fmt.Errorf("save suggestions: %w", err)
	}
	return w.finish(ctx, job, models.JobStatusSucceeded, store.WithClearedError())
}

func (w *Worker) fail(ctx context.Context, job *models.SuggestionJob, cause error) error {
	if err := w.finish(ctx, job, models.JobStatusFailed, store.WithErrorMessage(cause.Error())); err != nil {
		return fmt.Errorf("%w (while recording failure: %v)", err, cause)
	}
	return nil
}

func (w *Worker) finish(ctx context.Context, job *models.SuggestionJob, to models.JobStatus, opt store.JobUpdateOption) error {
	finishedAt := w.now()
	if err := w.jobs.UpdateJobStatus(ctx, job.ID, to, opt, store.WithFinishedAt(finishedAt)); err != nil {
		return fmt.Errorf("mark job %s %s: %w", job.ID, to, err)
	}
	job.Status = to
	job.FinishedAt = &finishedAt
	return nil
}

// Poll runs one claim-and-process cycle. It returns immediately if a cycle
// is already in progress. Errors are logged, never returned.
func (w *Worker) Poll(ctx context.Context) {
	if !w.busy.CompareAndSwap(false, true) {
		return
	}
	defer w.busy.Store(false)

	defer func() {
		if r := recover(); r != nil {
			metrics.PollErrors.Inc()
			w.log.Error("poll panicked", "panic", r)
		}
	}()

	job, err := w.ClaimNextJob(ctx)
	if err != nil {
		metrics.PollErrors.Inc()
		w.log.Error("poll failed", "error", err)
		return
	}
	if job == nil {
		return
	}

	// A claimed job runs to completion even if shutdown starts.
	if err := w.ProcessJob(context.WithoutCancel(ctx), job); err != nil {
		metrics.PollErrors.Inc()
		w.log.Error("recording job result failed", "job_id", job.ID, "error", err)
	}
}

// Busy reports whether a poll cycle is in progress.
func (w *Worker) Busy() bool {
	return w.busy.Load()
}

// Drain blocks until no poll cycle is in progress or ctx is done. Callers
// use it after Run returns so an in-flight job can record its status
// before shared connections close.
func (w *Worker) Drain(ctx context.Context) error {
	ticker := time.NewTicker(drainCheckInterval)
	defer ticker.Stop()
	for w.Busy() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Run polls immediately, then on every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker started", "poll_interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Serve implements suture.Service.
func (w *Worker) Serve(ctx context.Context) error {
	w.Run(ctx)
	return ctx.Err()
}

func (w *Worker) String() string {
	return "worker-" + w.id
}
