package suggest

import (
	"context"
	"log/slog"

	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
	"golang.org/x/sync/errgroup"
)

// fetchGames loads ids concurrently. The result is index-aligned with ids;
// a nil entry means the lookup failed or found nothing. Only context
// cancellation is returned as an error.
func fetchGames(ctx context.Context, games store.GameStore, ids []int, limit int, log *slog.Logger) ([]*models.Game, error) {
	out := make([]*models.Game, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, id := range ids {
		g.Go(func() error {
			game, err := games.GetGame(ctx, id)
			if err != nil {
				log.Debug("candidate fetch failed", "app_id", id, "error", err)
				return nil
			}
			out[i] = game
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
