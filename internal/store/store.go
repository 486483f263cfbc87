package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid job status transition")

// GameStore is the read side of the game catalogue used by the suggestion pipeline.
type GameStore interface {
	// GetGame returns ErrNotFound when appID is unknown.
	GetGame(ctx context.Context, appID int) (*models.Game, error)
	GamesByDeveloper(ctx context.Context, developer string) ([]int, error)
	GamesByTag(ctx context.Context, tag string) ([]models.GameRef, error)
}

// JobStore persists suggestion jobs and their status transitions.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.SuggestionJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.SuggestionJob, error)
	ListOldestQueued(ctx context.Context, limit int) ([]*models.SuggestionJob, error)
	// ConditionalUpdateStatus moves the job from -> to only if it is still in from.
	// It reports false, without error, when another writer got there first.
	ConditionalUpdateStatus(ctx context.Context, id uuid.UUID, from, to models.JobStatus, opts ...JobUpdateOption) (bool, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, to models.JobStatus, opts ...JobUpdateOption) error
}

// SuggestionStore persists the ranked output of a job run.
type SuggestionStore interface {
	DeleteSuggestionsForSource(ctx context.Context, sourceAppID int) error
	InsertSuggestions(ctx context.Context, rows []models.Suggestion) error
	// ReplaceSuggestions deletes then inserts inside one transaction.
	ReplaceSuggestions(ctx context.Context, sourceAppID int, rows []models.Suggestion) error
	// UpsertSuggestions resolves conflicts on (source_app_id, suggested_app_id)
	// and prunes rows for the source that are not in rows.
	UpsertSuggestions(ctx context.Context, sourceAppID int, rows []models.Suggestion) error
	ListSuggestions(ctx context.Context, sourceAppID int) ([]models.Suggestion, error)
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	GameStore
	JobStore
	SuggestionStore
	Ping(ctx context.Context) error
}

type JobUpdateParams struct {
	Error      *string
	ClearError bool
	StartedAt  *time.Time
	FinishedAt *time.Time
}

type JobUpdateOption func(*JobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *JobUpdateParams) {
		p.Error = &msg
		p.ClearError = false
	}
}

// WithClearedError sets the error column to NULL.
func WithClearedError() JobUpdateOption {
	return func(p *JobUpdateParams) {
		p.Error = nil
		p.ClearError = true
	}
}

func WithStartedAt(t time.Time) JobUpdateOption {
	return func(p *JobUpdateParams) {
		p.StartedAt = &t
	}
}

func WithFinishedAt(t time.Time) JobUpdateOption {
	return func(p *JobUpdateParams) {
		p.FinishedAt = &t
	}
}

// ApplyJobUpdateOptions folds opts into a params value. Store implementations
// outside this package use it to honour the same options.
func ApplyJobUpdateOptions(opts ...JobUpdateOption) JobUpdateParams {
	var p JobUpdateParams
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

var validTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusQueued:  {models.JobStatusRunning},
	models.JobStatusRunning: {models.JobStatusSucceeded, models.JobStatusFailed},
}

// CanTransition reports whether from -> to is a legal job status change.
func CanTransition(from, to models.JobStatus) bool {
	for _, a := range validTransitions[from] {
		if a == to {
			return true
		}
	}
	return false
}

// allowedFrom lists the statuses that may move to to.
func allowedFrom(to models.JobStatus) []string {
	var from []string
	for f, targets := range validTransitions {
		for _, t := range targets {
			if t == to {
				from = append(from, string(f))
			}
		}
	}
	return from
}
