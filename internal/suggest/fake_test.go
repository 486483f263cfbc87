package suggest

import (
	"context"
	"strings"
	"sync"

	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// fakeGames is an in-memory GameStore with failure injection.
type fakeGames struct {
	mu      sync.Mutex
	games   map[int]*models.Game
	getErr  map[int]error
	devErr  error
	tagErr  error
	fetched []int

	// extraRefs are appended to tag listings, for refs whose record disagrees with the index.
	extraRefs map[string][]models.GameRef
}

func newFakeGames(games ...*models.Game) *fakeGames {
	f := &fakeGames{games: map[int]*models.Game{}, getErr: map[int]error{}}
	for _, g := range games {
		f.games[g.AppID] = g
	}
	return f
}

func (f *fakeGames) GetGame(_ context.Context, appID int) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, appID)
	if err := f.getErr[appID]; err != nil {
		return nil, err
	}
	g, ok := f.games[appID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

// GamesByDeveloper matches the first credited developer, ordered by app id.
func (f *fakeGames) GamesByDeveloper(_ context.Context, developer string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devErr != nil {
		return nil, f.devErr
	}
	var ids []int
	for _, id := range f.sortedIDs() {
		if strings.EqualFold(FirstDeveloper(f.games[id].Developer), developer) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeGames) GamesByTag(_ context.Context, tag string) ([]models.GameRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	var refs []models.GameRef
	for _, id := range f.sortedIDs() {
		g := f.games[id]
		if _, ok := g.Tags[tag]; ok {
			refs = append(refs, models.GameRef{AppID: g.AppID, Name: g.Name, Owners: g.Owners})
		}
	}
	refs = append(refs, f.extraRefs[tag]...)
	return refs, nil
}

func (f *fakeGames) wasFetched(appID int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.fetched {
		if id == appID {
			return true
		}
	}
	return false
}

func (f *fakeGames) sortedIDs() []int {
	ids := make([]int, 0, len(f.games))
	for id := range f.games {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

var _ store.GameStore = (*fakeGames)(nil)

// Fixtures shared by the pipeline tests.

const nicheOwners = "20,000 .. 50,000"

func hollowSource() *models.Game {
	return &models.Game{
		AppID:     100,
		Name:      "Hollow Depths",
		Developer: "Acme",
		Owners:    nicheOwners,
		Tags:      map[string]int{"Metroidvania": 50, "Indie": 40, "Horror": 10},
	}
}

func acme2() *models.Game {
	return &models.Game{
		AppID:     101,
		Name:      "Acme2",
		Developer: "Acme",
		Owners:    "2,000,000 .. 5,000,000",
		Tags:      map[string]int{"Metroidvania": 30, "Indie": 20},
	}
}

func acmeSoundtrack() *models.Game {
	return &models.Game{
		AppID:     102,
		Name:      "Foo Soundtrack",
		Developer: "Acme, Some Publisher",
		Owners:    nicheOwners,
		Tags:      map[string]int{"Soundtrack": 10},
	}
}
