package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/kiranshivaraju/gamescout/internal/analysis"
	"github.com/kiranshivaraju/gamescout/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOf(g *models.Game) *Profile {
	return newProfile(g, DefaultConfig().VibeProfile)
}

// --- SameDeveloper ---

func TestSameDeveloper_EnrichesAndKeepsFloor(t *testing.T) {
	src := hollowSource()
	games := newFakeGames(src, acme2())
	gen := NewSameDeveloper(games, DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, 101, c.AppID)
	assert.Equal(t, "Acme2", c.Name)
	assert.Equal(t, SourceSameDeveloper, c.Source)
	assert.GreaterOrEqual(t, c.Score, 0.85)
	assert.Equal(t, []string{"Metroidvania", "Indie"}, c.SharedTags)
	assert.True(t, c.IsIndie)
	assert.NotNil(t, c.game)
}

func TestSameDeveloper_HighOverlapBeatsFloor(t *testing.T) {
	src := hollowSource()
	twin := &models.Game{AppID: 110, Name: "Hollow Depths II", Developer: "Acme", Tags: src.Tags}
	gen := NewSameDeveloper(newFakeGames(src, twin), DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.InDelta(t, 1.0, cands[0].Score, 1e-9)
}

func TestSameDeveloper_ExcludesSoundtrack(t *testing.T) {
	src := hollowSource()
	gen := NewSameDeveloper(newFakeGames(src, acme2(), acmeSoundtrack()), DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	for _, c := range cands {
		assert.NotEqual(t, "Foo Soundtrack", c.Name)
		assert.NotEqual(t, 102, c.AppID)
	}
	assert.Len(t, cands, 1)
}

func TestSameDeveloper_CustomFilter(t *testing.T) {
	src := hollowSource()
	none := func(string) bool { return false }
	gen := NewSameDeveloper(newFakeGames(src, acme2(), acmeSoundtrack()), DefaultConfig(), none, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	assert.Len(t, cands, 2)
}

func TestSameDeveloper_Limit(t *testing.T) {
	src := hollowSource()
	games := newFakeGames(src)
	for id := 120; id < 130; id++ {
		games.games[id] = &models.Game{AppID: id, Name: "Acme Game", Developer: "Acme", Tags: map[string]int{"Indie": 1}}
	}
	gen := NewSameDeveloper(games, Config{SameDevLimit: 3}, nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	assert.Equal(t, []int{120, 121, 122}, ids(cands))
}

func TestSameDeveloper_DropsFailedFetch(t *testing.T) {
	src := hollowSource()
	games := newFakeGames(src, acme2())
	games.getErr[101] = errors.New("timeout")
	gen := NewSameDeveloper(games, DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestSameDeveloper_NoDeveloper(t *testing.T) {
	src := hollowSource()
	src.Developer = ""
	games := newFakeGames(src, acme2())
	games.devErr = errors.New("must not be called")
	gen := NewSameDeveloper(games, DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(src))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestSameDeveloper_LookupError(t *testing.T) {
	src := hollowSource()
	games := newFakeGames(src)
	games.devErr = errors.New("connection refused")
	gen := NewSameDeveloper(games, DefaultConfig(), nil, nil)

	_, err := gen.Generate(context.Background(), profileOf(src))
	assert.ErrorContains(t, err, "connection refused")
}

// --- TagSearch ---

func tagSearchFixture() *fakeGames {
	return newFakeGames(
		hollowSource(),
		&models.Game{AppID: 201, Name: "Bright Caves", Owners: nicheOwners,
			Tags: map[string]int{"Metroidvania": 40, "Indie": 30}},
		&models.Game{AppID: 202, Name: "Blockbuster", Owners: "1,000,000 .. 2,000,000",
			Tags: map[string]int{"Metroidvania": 40, "Indie": 30}},
		&models.Game{AppID: 203, Name: "Cozy Caves", Owners: nicheOwners,
			Tags: map[string]int{"Metroidvania": 40, "Cozy": 30}},
		&models.Game{AppID: 204, Name: "Racer", Owners: nicheOwners,
			Tags: map[string]int{"Metroidvania": 1, "Racing": 99}},
	)
}

func TestTagSearch_Filters(t *testing.T) {
	games := tagSearchFixture()
	gen := NewTagSearch(games, DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	require.NoError(t, err)

	require.Equal(t, []int{201}, ids(cands))
	assert.Equal(t, SourceTagSearch, cands[0].Source)
	assert.Equal(t, "Bright Caves", cands[0].Name)
	assert.True(t, cands[0].IsIndie)
	assert.GreaterOrEqual(t, cands[0].Score, 0.25)

	assert.False(t, games.wasFetched(202), "non-niche games are not enriched")
}

func TestTagSearch_CustomConflicts(t *testing.T) {
	games := tagSearchFixture()
	gen := NewTagSearch(games, DefaultConfig(), analysis.NewConflictTable(analysis.TagPair{A: "Metroidvania", B: "Indie"}), nil)

	// Every candidate shares Metroidvania with a source that has Indie, so all conflict.
	cands, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestTagSearch_UnparseableOwnersCountAsNiche(t *testing.T) {
	games := newFakeGames(hollowSource(),
		&models.Game{AppID: 210, Name: "Unknown Reach", Owners: "",
			Tags: map[string]int{"Metroidvania": 10, "Indie": 10}})
	gen := NewTagSearch(games, DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	require.NoError(t, err)
	assert.Equal(t, []int{210}, ids(cands))
}

func TestTagSearch_DropsRecordWithoutTags(t *testing.T) {
	games := newFakeGames(hollowSource(),
		&models.Game{AppID: 220, Name: "Stub", Owners: nicheOwners})
	games.extraRefs = map[string][]models.GameRef{
		"Metroidvania": {{AppID: 220, Name: "Stub", Owners: nicheOwners}},
	}
	gen := NewTagSearch(games, DefaultConfig(), nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	require.NoError(t, err)
	assert.Empty(t, cands)
	assert.True(t, games.wasFetched(220))
}

func TestTagSearch_CapAndOrder(t *testing.T) {
	games := newFakeGames(hollowSource())
	weights := []int{5, 40, 20, 30, 10}
	for i, w := range weights {
		id := 230 + i
		games.games[id] = &models.Game{AppID: id, Name: "Cave", Owners: nicheOwners,
			Tags: map[string]int{"Metroidvania": 50, "Indie": w}}
	}
	gen := NewTagSearch(games, Config{TagSearchCap: 2}, nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.GreaterOrEqual(t, cands[0].Score, cands[1].Score)
}

func TestTagSearch_PoolLimitsEnrichment(t *testing.T) {
	games := newFakeGames(hollowSource())
	// 240 carries both seed tags, so it outranks the single-tag hits.
	games.games[240] = &models.Game{AppID: 240, Name: "Both", Owners: nicheOwners,
		Tags: map[string]int{"Metroidvania": 10, "Indie": 10}}
	games.games[241] = &models.Game{AppID: 241, Name: "One", Owners: nicheOwners,
		Tags: map[string]int{"Metroidvania": 10}}
	gen := NewTagSearch(games, Config{TagPool: 1}, nil, nil)

	cands, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	require.NoError(t, err)
	assert.Equal(t, []int{240}, ids(cands))
	assert.False(t, games.wasFetched(241))
}

func TestTagSearch_LookupError(t *testing.T) {
	games := tagSearchFixture()
	games.tagErr = errors.New("connection refused")
	gen := NewTagSearch(games, DefaultConfig(), nil, nil)

	_, err := gen.Generate(context.Background(), profileOf(games.games[100]))
	assert.ErrorContains(t, err, "connection refused")
}
