package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Worker
	JobsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamescout_jobs_claimed_total",
			Help: "Total number of suggestion jobs claimed by this process",
		},
	)

	ClaimConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamescout_claim_conflicts_total",
			Help: "Claims lost to another worker",
		},
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamescout_jobs_completed_total",
			Help: "Suggestion jobs that reached a terminal status",
		},
		[]string{"status", "outcome"},
	)

	PollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamescout_poll_errors_total",
			Help: "Poll cycles that failed before a job was claimed",
		},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamescout_job_duration_seconds",
			Help:    "Wall time from claim to terminal status",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Pipeline
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamescout_pipeline_duration_seconds",
			Help:    "Duration of a suggestion pipeline run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	CandidatesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamescout_candidates_generated_total",
			Help: "Candidates emitted per generator",
		},
		[]string{"source"},
	)

	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamescout_candidates_dropped_total",
			Help: "Candidates discarded during enrichment or filtering",
		},
		[]string{"reason"}, // "fetch", "name", "no_tags", "vibe", "overlap", "adult"
	)

	// Game cache
	GameCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamescout_game_cache_requests_total",
			Help: "Game cache lookups by result",
		},
		[]string{"kind", "result"}, // result: "hit", "miss", "error"
	)

	// Ops API
	HTTPPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamescout_http_panics_total",
			Help: "Handler panics recovered by the ops API, by route pattern",
		},
		[]string{"route"},
	)

	// Explanations
	ExplainFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamescout_explain_fallbacks_total",
			Help: "Reasons produced by the template after the provider failed",
		},
		[]string{"provider"},
	)
)

// Drop reasons for CandidatesDropped.
const (
	DropFetch   = "fetch"
	DropName    = "name"
	DropNoTags  = "no_tags"
	DropVibe    = "vibe"
	DropOverlap = "overlap"
	DropAdult   = "adult"
)

func RecordJobCompleted(status, outcome string, duration time.Duration) {
	JobsCompleted.WithLabelValues(status, outcome).Inc()
	JobDuration.Observe(duration.Seconds())
}

func RecordPipelineRun(outcome string, duration time.Duration) {
	PipelineDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordCandidateDropped(reason string) {
	CandidatesDropped.WithLabelValues(reason).Inc()
}

func RecordCacheLookup(kind string, hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	GameCacheRequests.WithLabelValues(kind, result).Inc()
}
