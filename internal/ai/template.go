package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/gamescout/internal/ai/llm"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// Template is the deterministic explainer. It never fails.
type Template struct{}

func (Template) Name() string { return "template" }

func (Template) Explain(_ context.Context, req models.ExplainRequest) (string, error) {
	return TemplateReason(req), nil
}

// TemplateReason names the shared developer and the top shared tags.
func TemplateReason(req models.ExplainRequest) string {
	tags := req.SharedTags
	if len(tags) > 3 {
		tags = tags[:3]
	}

	var reason string
	switch {
	case req.SameDeveloper && req.Developer != "" && len(tags) > 0:
		reason = fmt.Sprintf("Also from %s, and shares %s.", req.Developer, joinTags(tags))
	case req.SameDeveloper && req.Developer != "":
		reason = fmt.Sprintf("Also from %s.", req.Developer)
	case len(tags) > 0:
		reason = fmt.Sprintf("Shares %s with %s.", joinTags(tags), nameOr(req.SourceName, "this game"))
	default:
		reason = fmt.Sprintf("Players of %s may enjoy it.", nameOr(req.SourceName, "this game"))
	}
	return llm.Truncate(reason, llm.MaxReasonBytes)
}

func joinTags(tags []string) string {
	switch len(tags) {
	case 1:
		return tags[0]
	case 2:
		return tags[0] + " and " + tags[1]
	}
	return strings.Join(tags[:len(tags)-1], ", ") + " and " + tags[len(tags)-1]
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

var _ models.Explainer = Template{}
