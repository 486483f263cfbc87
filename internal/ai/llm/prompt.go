// Package llm holds what every explanation provider shares: the prompt,
// response cleanup and a JSON-over-HTTP helper.
package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// MaxReasonBytes bounds a stored reason.
const MaxReasonBytes = 280

// MaxPromptTags caps the shared tags listed in a prompt.
const MaxPromptTags = 5

// Prompt renders the single-turn instruction sent to a model.
func Prompt(req models.ExplainRequest) string {
	var b strings.Builder
	b.WriteString("You write one-sentence game recommendations for a storefront.\n")
	fmt.Fprintf(&b, "A player liked %q. Explain in under 30 words why they may also enjoy %q.\n",
		req.SourceName, req.CandidateName)
	if req.SameDeveloper && req.Developer != "" {
		fmt.Fprintf(&b, "Both games are made by %s.\n", req.Developer)
	}
	if tags := firstN(req.SharedTags, MaxPromptTags); len(tags) > 0 {
		fmt.Fprintf(&b, "Tags they share: %s.\n", strings.Join(tags, ", "))
	}
	b.WriteString("Reply with the sentence only, no quotes or preamble.")
	return b.String()
}

// Clean trims model output to a single line without wrapping quotes.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, "\"'“”")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most maxBytes without splitting a UTF-8 sequence.
func Truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
