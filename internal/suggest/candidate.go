package suggest

import (
	"strings"

	"github.com/kiranshivaraju/gamescout/internal/analysis"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

type Source string

const (
	SourceSameDeveloper Source = "same-developer"
	SourceTagSearch     Source = "tag-search"
)

// Candidate is a potential suggestion that has not been persisted yet.
type Candidate struct {
	AppID      int
	Name       string
	Score      float64
	SharedTags []string
	Source     Source
	Owners     string
	IsIndie    bool
	IsAdult    bool

	// game is the enriched record, kept so later stages avoid a refetch.
	game *models.Game
}

// Profile is the source game plus the derived data every generator needs.
type Profile struct {
	Game *models.Game
	Top  []string // vibe profile
}

func newProfile(g *models.Game, vibe int) *Profile {
	return &Profile{Game: g, Top: analysis.TopTags(g.Tags, vibe)}
}

// FirstDeveloper returns the first name of a comma-separated developer credit.
func FirstDeveloper(credit string) string {
	first, _, _ := strings.Cut(credit, ",")
	return strings.TrimSpace(first)
}

func isIndie(tags map[string]int, vibe int) bool {
	return analysis.HasTag(analysis.TopTags(tags, vibe), "indie")
}
