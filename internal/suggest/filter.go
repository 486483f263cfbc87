package suggest

import (
	"strings"

	"github.com/kiranshivaraju/gamescout/internal/analysis"
)

// NameFilter reports whether a title should be excluded from suggestions.
// Title matching is a best-effort stand-in for a structured content type.
type NameFilter func(name string) bool

// DefaultExcludedTerms mark store entries that are not standalone games.
var DefaultExcludedTerms = []string{
	"soundtrack",
	"original score",
	"artbook",
	"art book",
	"digital art",
	"dlc",
	"season pass",
}

// ExcludeByNameTerms matches terms as case-insensitive substrings of the normalized title.
func ExcludeByNameTerms(terms ...string) NameFilter {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := analysis.NormalizeName(t); n != "" {
			normalized = append(normalized, n)
		}
	}
	return func(name string) bool {
		n := analysis.NormalizeName(name)
		for _, t := range normalized {
			if strings.Contains(n, t) {
				return true
			}
		}
		return false
	}
}
