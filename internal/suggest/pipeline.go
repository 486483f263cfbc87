package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/gamescout/internal/ai"
	"github.com/kiranshivaraju/gamescout/internal/analysis"
	"github.com/kiranshivaraju/gamescout/internal/metrics"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Generator produces candidates for one source game.
type Generator interface {
	Source() Source
	Generate(ctx context.Context, src *Profile) ([]*Candidate, error)
}

type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeNoSourceData Outcome = "no_source_data"
	OutcomeNoCandidates Outcome = "no_candidates"
)

// Result is the output of one pipeline run. An empty result is not an error.
type Result struct {
	SourceAppID int
	Outcome     Outcome
	Candidates  []*Candidate
	Suggestions []models.Suggestion
}

// Empty reports whether the run produced nothing to persist.
func (r *Result) Empty() bool {
	return len(r.Suggestions) == 0
}

// Message explains an empty result. It is "" for a normal run.
func (r *Result) Message() string {
	switch r.Outcome {
	case OutcomeNoSourceData:
		return fmt.Sprintf("no game data for source app %d", r.SourceAppID)
	case OutcomeNoCandidates:
		return fmt.Sprintf("no verified candidates for source app %d", r.SourceAppID)
	}
	return ""
}

// Pipeline turns one source game into a ranked list of suggestions.
type Pipeline struct {
	games      store.GameStore
	explainer  models.Explainer
	generators []Generator
	cfg        Config
	log        *slog.Logger
}

type Option func(*options)

type options struct {
	conflicts  *analysis.ConflictTable
	filter     NameFilter
	generators []Generator
	log        *slog.Logger
}

// WithConflicts replaces the default vibe conflict table.
func WithConflicts(t *analysis.ConflictTable) Option {
	return func(o *options) { o.conflicts = t }
}

// WithNameFilter replaces the default soundtrack/DLC title filter.
func WithNameFilter(f NameFilter) Option {
	return func(o *options) { o.filter = f }
}

// WithGenerators replaces the built-in generators.
func WithGenerators(g ...Generator) Option {
	return func(o *options) { o.generators = g }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New builds a pipeline. explainer may be nil, in which case reasons come from the template.
func New(games store.GameStore, explainer models.Explainer, cfg Config, opts ...Option) *Pipeline {
	o := &options{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	cfg = cfg.withDefaults()
	log := o.log.With("component", "pipeline")

	gens := o.generators
	if len(gens) == 0 {
		gens = []Generator{
			NewSameDeveloper(games, cfg, o.filter, log),
			NewTagSearch(games, cfg, o.conflicts, log),
		}
	}

	return &Pipeline{
		games:      games,
		explainer:  explainer,
		generators: gens,
		cfg:        cfg,
		log:        log,
	}
}

// Run executes every stage for appID. Store failures while loading the
// source or running a generator are returned; missing data is reported
// through Result.Outcome instead.
func (p *Pipeline) Run(ctx context.Context, appID int) (*Result, error) {
	start := time.Now()
	res, err := p.run(ctx, appID)
	if err != nil {
		metrics.RecordPipelineRun("error", time.Since(start))
		return nil, err
	}
	metrics.RecordPipelineRun(string(res.Outcome), time.Since(start))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, appID int) (*Result, error) {
	res := &Result{SourceAppID: appID, Candidates: []*Candidate{}, Suggestions: []models.Suggestion{}}

	// 1. Source game
	source, err := p.games.GetGame(ctx, appID)
	if errors.Is(err, store.ErrNotFound) {
		res.Outcome = OutcomeNoSourceData
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load source game %d: %w", appID, err)
	}
	if len(source.Tags) == 0 {
		res.Outcome = OutcomeNoSourceData
		return res, nil
	}
	profile := newProfile(source, p.cfg.VibeProfile)

	// 2. Generators
	lists := make([][]*Candidate, len(p.generators))
	g, gctx := errgroup.WithContext(ctx)
	for i, gen := range p.generators {
		g.Go(func() error {
			cands, err := gen.Generate(gctx, profile)
			if err != nil {
				return fmt.Errorf("%s generator: %w", gen.Source(), err)
			}
			lists[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. Merge
	merged := Merge(appID, lists...)

	// 4. Content filter
	filtered, err := p.filterAdult(ctx, source, merged)
	if err != nil {
		return nil, err
	}

	// 5. Rank
	ranked := Rank(filtered, p.cfg.FinalLimit)
	if len(ranked) == 0 {
		res.Outcome = OutcomeNoCandidates
		return res, nil
	}

	// 6. Reasons
	res.Outcome = OutcomeOK
	res.Candidates = ranked
	res.Suggestions = p.explain(ctx, source, ranked)

	p.log.Info("pipeline complete",
		"source_app_id", appID,
		"generated", len(merged),
		"kept", len(ranked),
	)
	return res, nil
}

// filterAdult flags every candidate and drops adult ones unless the source is adult too.
func (p *Pipeline) filterAdult(ctx context.Context, source *models.Game, cands []*Candidate) ([]*Candidate, error) {
	var missing []int
	var missingIdx []int
	for i, c := range cands {
		if c.game == nil {
			missing = append(missing, c.AppID)
			missingIdx = append(missingIdx, i)
		}
	}
	if len(missing) > 0 {
		fetched, err := fetchGames(ctx, p.games, missing, p.cfg.Concurrency, p.log)
		if err != nil {
			return nil, err
		}
		for j, i := range missingIdx {
			cands[i].game = fetched[j]
		}
	}

	sourceAdult := analysis.IsAdultContent(source.ContentDescriptors)
	out := make([]*Candidate, 0, len(cands))
	for _, c := range cands {
		if c.game == nil {
			metrics.RecordCandidateDropped(metrics.DropFetch)
			continue
		}
		c.IsAdult = analysis.IsAdultContent(c.game.ContentDescriptors)
		if c.IsAdult && !sourceAdult {
			metrics.RecordCandidateDropped(metrics.DropAdult)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// explain builds the output rows. A failed or missing explainer falls back
// to the template so reasons never fail a run.
func (p *Pipeline) explain(ctx context.Context, source *models.Game, ranked []*Candidate) []models.Suggestion {
	rows := make([]models.Suggestion, len(ranked))
	now := time.Now().UTC()

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.Concurrency)
	for i, c := range ranked {
		g.Go(func() error {
			req := models.ExplainRequest{
				SourceAppID:    source.AppID,
				SourceName:     source.Name,
				CandidateAppID: c.AppID,
				CandidateName:  c.Name,
				SharedTags:     c.SharedTags,
				SameDeveloper:  c.Source == SourceSameDeveloper,
				Developer:      FirstDeveloper(source.Developer),
			}
			reason := ai.TemplateReason(req)
			if p.explainer != nil {
				text, err := p.explainer.Explain(ctx, req)
				if err != nil {
					p.log.Warn("explanation failed, using template",
						"source_app_id", source.AppID, "app_id", c.AppID, "error", err)
				} else if text != "" {
					reason = text
				}
			}
			rows[i] = models.Suggestion{
				SourceAppID:    source.AppID,
				SuggestedAppID: c.AppID,
				Rank:           i + 1,
				Reason:         reason,
				CreatedAt:      now,
			}
			return nil
		})
	}
	_ = g.Wait()
	return rows
}
