package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/kiranshivaraju/gamescout/internal/metrics"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// GameCache is a read-through cache in front of a GameStore. Only found
// records are cached; ErrNotFound and store errors pass straight through.
// Cache failures are logged and never fail a lookup.
type GameCache struct {
	next  store.GameStore
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewGameCache(next store.GameStore, c Cache, ttl time.Duration, log *slog.Logger) *GameCache {
	if log == nil {
		log = slog.Default()
	}
	return &GameCache{next: next, cache: c, ttl: ttl, log: log.With("component", "game_cache")}
}

func (g *GameCache) GetGame(ctx context.Context, appID int) (*models.Game, error) {
	var game models.Game
	if g.load(ctx, "game", GameKey(appID), &game) {
		return &game, nil
	}

	found, err := g.next.GetGame(ctx, appID)
	if err != nil {
		return nil, err
	}
	g.store(ctx, GameKey(appID), found)
	return found, nil
}

func (g *GameCache) GamesByDeveloper(ctx context.Context, developer string) ([]int, error) {
	var ids []int
	key := DeveloperGamesKey(developer)
	if g.load(ctx, "developer", key, &ids) {
		return ids, nil
	}

	ids, err := g.next.GamesByDeveloper(ctx, developer)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, ids)
	return ids, nil
}

func (g *GameCache) GamesByTag(ctx context.Context, tag string) ([]models.GameRef, error) {
	var refs []models.GameRef
	key := TagGamesKey(tag)
	if g.load(ctx, "tag", key, &refs) {
		return refs, nil
	}

	refs, err := g.next.GamesByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, refs)
	return refs, nil
}

// Invalidate drops the cached record for appID. Tag and developer
// listings expire on their own.
func (g *GameCache) Invalidate(ctx context.Context, appID int) error {
	return g.cache.Delete(ctx, GameKey(appID))
}

func (g *GameCache) load(ctx context.Context, kind, key string, dst any) bool {
	raw, hit, err := g.cache.Get(ctx, key)
	metrics.RecordCacheLookup(kind, hit, err)
	if err != nil {
		g.log.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		g.log.Warn("cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (g *GameCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		g.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := g.cache.Set(ctx, key, raw, g.ttl); err != nil {
		g.log.Warn("cache write failed", "key", key, "error", err)
	}
}

var _ store.GameStore = (*GameCache)(nil)
