package analysis

import (
	"sort"
	"strconv"
	"strings"
)

// NicheOwnerThreshold is the owner estimate below which a game counts as niche.
const NicheOwnerThreshold = 500_000

// TopTags returns up to n tag names ordered by weight descending.
// Equal weights are ordered by tag name so the result is stable across calls.
func TopTags(weights map[string]int, n int) []string {
	if n <= 0 || len(weights) == 0 {
		return []string{}
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := weights[names[i]], weights[names[j]]
		if wi != wj {
			return wi > wj
		}
		return names[i] < names[j]
	})

	if len(names) > n {
		names = names[:n]
	}
	return names
}

// HasTag reports whether tag is in tags, ignoring case.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ParseOwnerCount turns an owner range such as "20,000 .. 50,000" or
// "100,000,000 .. +" into its lower bound. Unparseable input yields 0.
func ParseOwnerCount(owners string) int {
	low := owners
	if i := strings.Index(owners, ".."); i >= 0 {
		low = owners[:i]
	}
	low = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '+', '\t', '_':
			return -1
		}
		return r
	}, low)
	if low == "" {
		return 0
	}

	n, err := strconv.Atoi(low)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// IsNiche reports whether the estimated owner count is below NicheOwnerThreshold.
func IsNiche(owners string) bool {
	return ParseOwnerCount(owners) < NicheOwnerThreshold
}
