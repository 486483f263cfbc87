package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// SuggestionJob is one scheduled "find games similar to X" unit of work.
// Jobs are inserted as queued by the submit endpoint and walked through
// running to a terminal status by a worker. Workers never delete jobs.
type SuggestionJob struct {
	ID          uuid.UUID  `db:"id"            json:"id"`
	SourceAppID int        `db:"source_app_id" json:"source_app_id"`
	Status      JobStatus  `db:"status"        json:"status"`
	Error       *string    `db:"error"         json:"error,omitempty"`
	StartedAt   *time.Time `db:"started_at"    json:"started_at,omitempty"`
	FinishedAt  *time.Time `db:"finished_at"   json:"finished_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at"    json:"created_at"`
}
