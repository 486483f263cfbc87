package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kiranshivaraju/gamescout/internal/analysis"
	"github.com/kiranshivaraju/gamescout/internal/metrics"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// TagSearch finds niche games sharing the source's strongest tags.
type TagSearch struct {
	games     store.GameStore
	cfg       Config
	conflicts *analysis.ConflictTable
	log       *slog.Logger
}

func NewTagSearch(games store.GameStore, cfg Config, conflicts *analysis.ConflictTable, log *slog.Logger) *TagSearch {
	if conflicts == nil {
		conflicts = analysis.DefaultConflicts()
	}
	if log == nil {
		log = slog.Default()
	}
	return &TagSearch{games: games, cfg: cfg.withDefaults(), conflicts: conflicts, log: log}
}

func (g *TagSearch) Source() Source { return SourceTagSearch }

type tagHit struct {
	ref   models.GameRef
	hits  int
	order int
}

func (g *TagSearch) Generate(ctx context.Context, src *Profile) ([]*Candidate, error) {
	seeds := analysis.TopTags(src.Game.Tags, g.cfg.SeedTags)

	byID := make(map[int]*tagHit)
	for _, tag := range seeds {
		refs, err := g.games.GamesByTag(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("games by tag %q: %w", tag, err)
		}
		for _, ref := range refs {
			if ref.AppID == src.Game.AppID {
				continue
			}
			if h, ok := byID[ref.AppID]; ok {
				h.hits++
				continue
			}
			byID[ref.AppID] = &tagHit{ref: ref, hits: 1, order: len(byID)}
		}
	}

	pool := make([]*tagHit, 0, len(byID))
	for _, h := range byID {
		if analysis.ParseOwnerCount(h.ref.Owners) < g.cfg.NicheOwnerThreshold {
			pool = append(pool, h)
		}
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].hits != pool[j].hits {
			return pool[i].hits > pool[j].hits
		}
		return pool[i].order < pool[j].order
	})
	if len(pool) > g.cfg.TagPool {
		pool = pool[:g.cfg.TagPool]
	}

	ids := make([]int, len(pool))
	for i, h := range pool {
		ids[i] = h.ref.AppID
	}
	fetched, err := fetchGames(ctx, g.games, ids, g.cfg.Concurrency, g.log)
	if err != nil {
		return nil, err
	}

	out := make([]*Candidate, 0, g.cfg.TagSearchCap)
	for i, h := range pool {
		if len(out) >= g.cfg.TagSearchCap {
			break
		}
		game := fetched[i]
		if game == nil {
			metrics.RecordCandidateDropped(metrics.DropFetch)
			continue
		}
		if len(game.Tags) == 0 {
			metrics.RecordCandidateDropped(metrics.DropNoTags)
			continue
		}
		top := analysis.TopTags(game.Tags, g.cfg.VibeProfile)
		if g.conflicts.HasVibeConflict(src.Top, top) {
			metrics.RecordCandidateDropped(metrics.DropVibe)
			continue
		}
		ov := analysis.Overlap(src.Game.Tags, game.Tags)
		if ov.Score < g.cfg.MinOverlap {
			metrics.RecordCandidateDropped(metrics.DropOverlap)
			continue
		}

		name := game.Name
		if name == "" {
			name = h.ref.Name
		}
		out = append(out, &Candidate{
			AppID:      h.ref.AppID,
			Name:       name,
			Score:      ov.Score,
			SharedTags: ov.Shared,
			Source:     SourceTagSearch,
			Owners:     h.ref.Owners,
			IsIndie:    analysis.HasTag(top, "indie"),
			game:       game,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	metrics.CandidatesGenerated.WithLabelValues(string(SourceTagSearch)).Add(float64(len(out)))
	return out, nil
}
