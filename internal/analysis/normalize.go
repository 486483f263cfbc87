package analysis

import (
	"regexp"
	"strings"
)

// Name normalization regexes compiled once at package init.
var (
	reTrademark  = regexp.MustCompile(`[™®©]`)
	rePunct      = regexp.MustCompile(`[\-_:/|]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeName lowercases a store title, drops trademark glyphs and folds
// separators and whitespace so substring checks see "Art-Book" as "art book".
func NormalizeName(name string) string {
	s := reTrademark.ReplaceAllString(name, "")
	s = rePunct.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
