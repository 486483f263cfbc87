package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/internal/suggest"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// fakeJobs is an in-memory JobStore. Setting loseRace makes every
// conditional update report that another worker got there first.
type fakeJobs struct {
	mu       sync.Mutex
	jobs     map[uuid.UUID]*models.SuggestionJob
	loseRace bool
	listErr  error
	claimErr error
	updates  int
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[uuid.UUID]*models.SuggestionJob{}}
}

func (f *fakeJobs) add(appID int, createdAt time.Time) *models.SuggestionJob {
	job := &models.SuggestionJob{
		ID:          uuid.New(),
		SourceAppID: appID,
		Status:      models.JobStatusQueued,
		CreatedAt:   createdAt,
	}
	_ = f.CreateJob(context.Background(), job)
	return job
}

func (f *fakeJobs) CreateJob(_ context.Context, job *models.SuggestionJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobs) GetJob(_ context.Context, id uuid.UUID) (*models.SuggestionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeJobs) ListOldestQueued(_ context.Context, limit int) ([]*models.SuggestionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var queued []*models.SuggestionJob
	for _, job := range f.jobs {
		if job.Status == models.JobStatusQueued {
			cp := *job
			queued = append(queued, &cp)
		}
	}
	sort.Slice(queued, func(i, j int) bool { return queued[i].CreatedAt.Before(queued[j].CreatedAt) })
	if len(queued) > limit {
		queued = queued[:limit]
	}
	return queued, nil
}

func (f *fakeJobs) ConditionalUpdateStatus(_ context.Context, id uuid.UUID, from, to models.JobStatus, opts ...store.JobUpdateOption) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return false, f.claimErr
	}
	job, ok := f.jobs[id]
	if !ok || job.Status != from || f.loseRace {
		return false, nil
	}
	f.apply(job, to, opts)
	return true, nil
}

func (f *fakeJobs) UpdateJobStatus(_ context.Context, id uuid.UUID, to models.JobStatus, opts ...store.JobUpdateOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	if !store.CanTransition(job.Status, to) {
		return store.ErrInvalidTransition
	}
	f.apply(job, to, opts)
	return nil
}

func (f *fakeJobs) apply(job *models.SuggestionJob, to models.JobStatus, opts []store.JobUpdateOption) {
	p := store.ApplyJobUpdateOptions(opts...)
	job.Status = to
	if p.Error != nil {
		msg := *p.Error
		job.Error = &msg
	}
	if p.ClearError {
		job.Error = nil
	}
	if p.StartedAt != nil {
		job.StartedAt = p.StartedAt
	}
	if p.FinishedAt != nil {
		job.FinishedAt = p.FinishedAt
	}
	f.updates++
}

func (f *fakeJobs) get(id uuid.UUID) *models.SuggestionJob {
	job, _ := f.GetJob(context.Background(), id)
	return job
}

var _ store.JobStore = (*fakeJobs)(nil)

// fakeSuggestions records writes per source.
type fakeSuggestions struct {
	mu         sync.Mutex
	rows       map[int][]models.Suggestion
	replaceErr error
	upsertErr  error
	deleteErr  error
	replaces   int
	upserts    int
	deletes    int
}

func newFakeSuggestions() *fakeSuggestions {
	return &fakeSuggestions{rows: map[int][]models.Suggestion{}}
}

func (f *fakeSuggestions) DeleteSuggestionsForSource(_ context.Context, sourceAppID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, sourceAppID)
	return nil
}

func (f *fakeSuggestions) InsertSuggestions(_ context.Context, rows []models.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		for _, existing := range f.rows[r.SourceAppID] {
			if existing.SuggestedAppID == r.SuggestedAppID {
				return store.ErrDuplicateKey
			}
		}
		f.rows[r.SourceAppID] = append(f.rows[r.SourceAppID], r)
	}
	return nil
}

func (f *fakeSuggestions) ReplaceSuggestions(_ context.Context, sourceAppID int, rows []models.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.rows[sourceAppID] = append([]models.Suggestion(nil), rows...)
	return nil
}

func (f *fakeSuggestions) UpsertSuggestions(_ context.Context, sourceAppID int, rows []models.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[sourceAppID] = append([]models.Suggestion(nil), rows...)
	return nil
}

func (f *fakeSuggestions) ListSuggestions(_ context.Context, sourceAppID int) ([]models.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Suggestion(nil), f.rows[sourceAppID]...), nil
}

var _ store.SuggestionStore = (*fakeSuggestions)(nil)

// pipelineFunc adapts a function to Pipeline.
type pipelineFunc func(ctx context.Context, appID int) (*suggest.Result, error)

func (f pipelineFunc) Run(ctx context.Context, appID int) (*suggest.Result, error) {
	return f(ctx, appID)
}

func okResult(appID int, suggested ...int) *suggest.Result {
	res := &suggest.Result{SourceAppID: appID, Outcome: suggest.OutcomeOK}
	for i, id := range suggested {
		res.Suggestions = append(res.Suggestions, models.Suggestion{
			SourceAppID:    appID,
			SuggestedAppID: id,
			Rank:           i + 1,
			Reason:         "Shares Metroidvania with the source.",
		})
	}
	return res
}

func fixedPipeline(res *suggest.Result, err error) Pipeline {
	return pipelineFunc(func(context.Context, int) (*suggest.Result, error) { return res, err })
}

var errBoom = errors.New("boom")
