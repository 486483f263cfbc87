package suggest

import "github.com/kiranshivaraju/gamescout/internal/analysis"

// Config holds pipeline tunables. Zero fields take the defaults below.
type Config struct {
	SameDevLimit int     // candidates taken from the developer lookup
	SameDevPrior float64 // score before enrichment
	SameDevFloor float64 // lowest score an enriched same-developer candidate keeps

	SeedTags     int     // source tags used to search
	VibeProfile  int     // top tags compared for conflicts and indie detection
	TagPool      int     // niche hits considered for enrichment
	TagSearchCap int     // tag-search results kept
	MinOverlap   float64 // tag-search overlap cut-off

	FinalLimit          int
	NicheOwnerThreshold int
	Concurrency         int // per-run enrichment fan-out
}

func DefaultConfig() Config {
	return Config{
		SameDevLimit:        5,
		SameDevPrior:        0.9,
		SameDevFloor:        0.85,
		SeedTags:            2,
		VibeProfile:         15,
		TagPool:             15,
		TagSearchCap:        10,
		MinOverlap:          0.25,
		FinalLimit:          12,
		NicheOwnerThreshold: analysis.NicheOwnerThreshold,
		Concurrency:         8,
	}
}

// builtinGenerators is the number of generators New installs by default.
const builtinGenerators = 2

// MaxParallelFetches is the most game reads one run keeps in flight. The
// built-in generators enrich at the same time, each bounded by Concurrency.
func (c Config) MaxParallelFetches() int {
	return builtinGenerators * c.withDefaults().Concurrency
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SameDevLimit <= 0 {
		c.SameDevLimit = d.SameDevLimit
	}
	if c.SameDevPrior <= 0 {
		c.SameDevPrior = d.SameDevPrior
	}
	if c.SameDevFloor <= 0 {
		c.SameDevFloor = d.SameDevFloor
	}
	if c.SeedTags <= 0 {
		c.SeedTags = d.SeedTags
	}
	if c.VibeProfile <= 0 {
		c.VibeProfile = d.VibeProfile
	}
	if c.TagPool <= 0 {
		c.TagPool = d.TagPool
	}
	if c.TagSearchCap <= 0 {
		c.TagSearchCap = d.TagSearchCap
	}
	if c.MinOverlap <= 0 {
		c.MinOverlap = d.MinOverlap
	}
	if c.FinalLimit <= 0 {
		c.FinalLimit = d.FinalLimit
	}
	if c.NicheOwnerThreshold <= 0 {
		c.NicheOwnerThreshold = d.NicheOwnerThreshold
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	return c
}
