package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/kiranshivaraju/gamescout/internal/analysis"
	"github.com/kiranshivaraju/gamescout/internal/metrics"
	"github.com/kiranshivaraju/gamescout/internal/store"
)

// SameDeveloper suggests other games credited to the source's first developer.
type SameDeveloper struct {
	games  store.GameStore
	cfg    Config
	filter NameFilter
	log    *slog.Logger
}

func NewSameDeveloper(games store.GameStore, cfg Config, filter NameFilter, log *slog.Logger) *SameDeveloper {
	if filter == nil {
		filter = ExcludeByNameTerms(DefaultExcludedTerms...)
	}
	if log == nil {
		log = slog.Default()
	}
	return &SameDeveloper{games: games, cfg: cfg.withDefaults(), filter: filter, log: log}
}

func (g *SameDeveloper) Source() Source { return SourceSameDeveloper }

func (g *SameDeveloper) Generate(ctx context.Context, src *Profile) ([]*Candidate, error) {
	dev := FirstDeveloper(src.Game.Developer)
	if dev == "" {
		return []*Candidate{}, nil
	}

	ids, err := g.games.GamesByDeveloper(ctx, dev)
	if err != nil {
		return nil, fmt.Errorf("games by developer %q: %w", dev, err)
	}

	picked := make([]*Candidate, 0, g.cfg.SameDevLimit)
	for _, id := range ids {
		if id == src.Game.AppID {
			continue
		}
		picked = append(picked, &Candidate{
			AppID:   id,
			Score:   g.cfg.SameDevPrior,
			Source:  SourceSameDeveloper,
			IsIndie: true,
		})
		if len(picked) == g.cfg.SameDevLimit {
			break
		}
	}

	return g.enrich(ctx, src, picked)
}

// enrich drops bundles and failed lookups, then rescoring keeps the floor.
func (g *SameDeveloper) enrich(ctx context.Context, src *Profile, picked []*Candidate) ([]*Candidate, error) {
	ids := make([]int, len(picked))
	for i, c := range picked {
		ids[i] = c.AppID
	}
	fetched, err := fetchGames(ctx, g.games, ids, g.cfg.Concurrency, g.log)
	if err != nil {
		return nil, err
	}

	out := make([]*Candidate, 0, len(picked))
	for i, c := range picked {
		game := fetched[i]
		if game == nil {
			metrics.RecordCandidateDropped(metrics.DropFetch)
			continue
		}
		if g.filter(game.Name) {
			metrics.RecordCandidateDropped(metrics.DropName)
			g.log.Debug("same-developer candidate excluded by name", "app_id", game.AppID, "name", game.Name)
			continue
		}

		ov := analysis.Overlap(src.Game.Tags, game.Tags)
		c.Name = game.Name
		c.Owners = game.Owners
		c.Score = math.Max(ov.Score, g.cfg.SameDevFloor)
		c.SharedTags = ov.Shared
		c.IsIndie = isIndie(game.Tags, g.cfg.VibeProfile)
		c.game = game
		out = append(out, c)
	}

	metrics.CandidatesGenerated.WithLabelValues(string(SourceSameDeveloper)).Add(float64(len(out)))
	return out, nil
}
