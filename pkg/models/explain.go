package models

import "context"

// ExplainRequest carries the signals a reason string may mention.
type ExplainRequest struct {
	SourceAppID    int
	SourceName     string
	CandidateAppID int
	CandidateName  string
	SharedTags     []string
	SameDeveloper  bool
	Developer      string
}

// Explainer produces the short natural-language reason attached to a suggestion.
// Implementations must be safe for concurrent use.
type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) (string, error)
	Name() string
}
