package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// tagLookupLimit bounds the rows returned for a single tag.
const tagLookupLimit = 500

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Games ---

func (s *PostgresStore) GetGame(ctx context.Context, appID int) (*models.Game, error) {
	var g models.Game
	var descriptors []int32
	err := s.pool.QueryRow(ctx,
		`SELECT app_id, name, developer, owners, tags, content_descriptors
		 FROM games WHERE app_id = $1`, appID,
	).Scan(&g.AppID, &g.Name, &g.Developer, &g.Owners, &g.Tags, &descriptors)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	g.ContentDescriptors = make([]int, len(descriptors))
	for i, d := range descriptors {
		g.ContentDescriptors[i] = int(d)
	}
	if g.Tags == nil {
		g.Tags = map[string]int{}
	}
	return &g, nil
}

// GamesByDeveloper matches developer against the first credited developer of each game.
func (s *PostgresStore) GamesByDeveloper(ctx context.Context, developer string) ([]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT app_id FROM games
		 WHERE lower(trim(split_part(developer, ',', 1))) = lower(trim($1))
		 ORDER BY app_id`, developer)
	if err != nil {
		return nil, fmt.Errorf("games by developer: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GamesByTag returns games carrying tag, heaviest votes first.
func (s *PostgresStore) GamesByTag(ctx context.Context, tag string) ([]models.GameRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT app_id, name, owners FROM games
		 WHERE tags ? $1
		 ORDER BY (tags->>$1)::int DESC, app_id
		 LIMIT $2`, tag, tagLookupLimit)
	if err != nil {
		return nil, fmt.Errorf("games by tag: %w", err)
	}
	defer rows.Close()

	refs := []models.GameRef{}
	for rows.Next() {
		var r models.GameRef
		if err := rows.Scan(&r.AppID, &r.Name, &r.Owners); err != nil {
			return nil, fmt.Errorf("scan game ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// UpsertGame inserts or refreshes a catalogue record.
func (s *PostgresStore) UpsertGame(ctx context.Context, g *models.Game) error {
	tags := g.Tags
	if tags == nil {
		tags = map[string]int{}
	}
	descriptors := make([]int32, len(g.ContentDescriptors))
	for i, d := range g.ContentDescriptors {
		descriptors[i] = int32(d)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO games (app_id, name, developer, owners, tags, content_descriptors, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (app_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   developer = EXCLUDED.developer,
		   owners = EXCLUDED.owners,
		   tags = EXCLUDED.tags,
		   content_descriptors = EXCLUDED.content_descriptors,
		   updated_at = NOW()`,
		g.AppID, g.Name, g.Developer, g.Owners, tags, descriptors)
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	return nil
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.SuggestionJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO suggestion_jobs (id, source_app_id, status, created_at)
		 VALUES ($1, $2, $3, $4)`,
		job.ID, job.SourceAppID, job.Status, job.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

const jobColumns = `id, source_app_id, status, error, started_at, finished_at, created_at`

func scanJob(row pgx.Row) (*models.SuggestionJob, error) {
	var j models.SuggestionJob
	if err := row.Scan(&j.ID, &j.SourceAppID, &j.Status, &j.Error,
		&j.StartedAt, &j.FinishedAt, &j.CreatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.SuggestionJob, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM suggestion_jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ListOldestQueued(ctx context.Context, limit int) ([]*models.SuggestionJob, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM suggestion_jobs
		 WHERE status = 'queued'
		 ORDER BY created_at ASC, id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.SuggestionJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// jobSetClause renders the SET list for a status change. Positional
// arguments start at argIdx; the returned args follow the same order.
func jobSetClause(to models.JobStatus, params JobUpdateParams, argIdx int) (string, []any) {
	sets := []string{fmt.Sprintf("status = $%d", argIdx)}
	args := []any{to}
	argIdx++

	if params.StartedAt != nil {
		sets = append(sets, fmt.Sprintf("started_at = $%d", argIdx))
		args = append(args, *params.StartedAt)
		argIdx++
	}
	if params.FinishedAt != nil {
		sets = append(sets, fmt.Sprintf("finished_at = $%d", argIdx))
		args = append(args, *params.FinishedAt)
		argIdx++
	}
	switch {
	case params.Error != nil:
		sets = append(sets, fmt.Sprintf("error = $%d", argIdx))
		args = append(args, *params.Error)
	case params.ClearError:
		sets = append(sets, "error = NULL")
	}
	return strings.Join(sets, ", "), args
}

func (s *PostgresStore) ConditionalUpdateStatus(ctx context.Context, id uuid.UUID, from, to models.JobStatus, opts ...JobUpdateOption) (bool, error) {
	if !CanTransition(from, to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	set, setArgs := jobSetClause(to, ApplyJobUpdateOptions(opts...), 3)
	args := append([]any{id, from}, setArgs...)

	tag, err := s.pool.Exec(ctx,
		`UPDATE suggestion_jobs SET `+set+` WHERE id = $1 AND status = $2`, args...)
	if err != nil {
		return false, fmt.Errorf("conditional update job status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateJobStatus moves the job to to from whichever status currently allows it.
// The check and the write happen in one statement.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, to models.JobStatus, opts ...JobUpdateOption) error {
	from := allowedFrom(to)
	if len(from) == 0 {
		return fmt.Errorf("%w: nothing moves to %s", ErrInvalidTransition, to)
	}
	set, setArgs := jobSetClause(to, ApplyJobUpdateOptions(opts...), 3)
	args := append([]any{id, from}, setArgs...)

	tag, err := s.pool.Exec(ctx,
		`UPDATE suggestion_jobs SET `+set+` WHERE id = $1 AND status = ANY($2)`, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current models.JobStatus
	err = s.pool.QueryRow(ctx, `SELECT status FROM suggestion_jobs WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
}

// --- Suggestions ---

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (s *PostgresStore) DeleteSuggestionsForSource(ctx context.Context, sourceAppID int) error {
	return deleteSuggestions(ctx, s.pool, sourceAppID)
}

func deleteSuggestions(ctx context.Context, q querier, sourceAppID int) error {
	if _, err := q.Exec(ctx, `DELETE FROM suggestions WHERE source_app_id = $1`, sourceAppID); err != nil {
		return fmt.Errorf("delete suggestions: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertSuggestions(ctx context.Context, rows []models.Suggestion) error {
	return writeSuggestions(ctx, s.pool, rows, false)
}

func (s *PostgresStore) ReplaceSuggestions(ctx context.Context, sourceAppID int, rows []models.Suggestion) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := deleteSuggestions(ctx, tx, sourceAppID); err != nil {
			return err
		}
		return writeSuggestions(ctx, tx, rows, false)
	})
}

func (s *PostgresStore) UpsertSuggestions(ctx context.Context, sourceAppID int, rows []models.Suggestion) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := writeSuggestions(ctx, tx, rows, true); err != nil {
			return err
		}
		keep := make([]int32, 0, len(rows))
		for _, r := range rows {
			keep = append(keep, int32(r.SuggestedAppID))
		}
		_, err := tx.Exec(ctx,
			`DELETE FROM suggestions
			 WHERE source_app_id = $1 AND NOT (suggested_app_id = ANY($2))`,
			sourceAppID, keep)
		if err != nil {
			return fmt.Errorf("prune suggestions: %w", err)
		}
		return nil
	})
}

func writeSuggestions(ctx context.Context, q querier, rows []models.Suggestion, upsert bool) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO suggestions (source_app_id, suggested_app_id, rank, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5)`
	if upsert {
		query += ` ON CONFLICT (source_app_id, suggested_app_id) DO UPDATE SET
		   rank = EXCLUDED.rank,
		   reason = EXCLUDED.reason,
		   created_at = EXCLUDED.created_at`
	}

	now := time.Now().UTC()
	b := &pgx.Batch{}
	for _, r := range rows {
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		b.Queue(query, r.SourceAppID, r.SuggestedAppID, r.Rank, r.Reason, created)
	}

	br := q.SendBatch(ctx, b)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isDuplicateKeyError(err) {
				return ErrDuplicateKey
			}
			return fmt.Errorf("insert suggestion: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert suggestions: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, sourceAppID int) ([]models.Suggestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_app_id, suggested_app_id, rank, reason, created_at
		 FROM suggestions WHERE source_app_id = $1
		 ORDER BY rank ASC, suggested_app_id ASC`, sourceAppID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	out := []models.Suggestion{}
	for rows.Next() {
		var r models.Suggestion
		if err := rows.Scan(&r.SourceAppID, &r.SuggestedAppID, &r.Rank, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
