package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	mw "github.com/kiranshivaraju/gamescout/internal/api/middleware"
	"github.com/kiranshivaraju/gamescout/internal/api/response"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// GameWriter stores catalogue records.
type GameWriter interface {
	UpsertGame(ctx context.Context, g *models.Game) error
}

// Invalidator drops any cached copy of a game record.
type Invalidator interface {
	Invalidate(ctx context.Context, appID int) error
}

func parseAppID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "appID"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// NewListSuggestionsHandler returns an http.HandlerFunc for
// GET /api/v1/games/{appID}/suggestions. Rows come back in rank order.
func NewListSuggestionsHandler(suggestions store.SuggestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, ok := parseAppID(r)
		if !ok {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "appID must be a positive integer", nil)
			return
		}

		rows, err := suggestions.ListSuggestions(r.Context(), appID)
		if err != nil {
			mw.LoggerFrom(r.Context()).Error("list suggestions failed", "source_app_id", appID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}
		if rows == nil {
			rows = []models.Suggestion{}
		}
		response.Collection(w, rows, response.CollectionMeta{Total: len(rows)})
	}
}

// NewPutGameHandler returns an http.HandlerFunc for PUT /api/v1/games/{appID}.
// invalidator may be nil when no cache is configured.
func NewPutGameHandler(games GameWriter, invalidator Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, ok := parseAppID(r)
		if !ok {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "appID must be a positive integer", nil)
			return
		}

		var g models.Game
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if g.AppID != 0 && g.AppID != appID {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "app_id does not match the URL", nil)
			return
		}
		g.AppID = appID
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		log := mw.LoggerFrom(r.Context())
		if err := games.UpsertGame(r.Context(), &g); err != nil {
			log.Error("upsert game failed", "app_id", appID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}
		if invalidator != nil {
			if err := invalidator.Invalidate(r.Context(), appID); err != nil {
				log.Warn("cache invalidation failed", "app_id", appID, "error", err)
			}
		}

		response.JSON(w, g)
	}
}
