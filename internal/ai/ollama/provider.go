package ollama

import (
	"context"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/gamescout/internal/ai/llm"
	"github.com/kiranshivaraju/gamescout/internal/config"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// Provider implements models.Explainer using Ollama's generate endpoint.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "ollama" }

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *Provider) Explain(ctx context.Context, req models.ExplainRequest) (string, error) {
	body := generateRequest{
		Model:   p.cfg.Model,
		Prompt:  llm.Prompt(req),
		Options: map[string]any{"num_predict": 80, "temperature": 0.4},
	}
	var out generateResponse
	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/api/generate"
	if err := llm.PostJSON(ctx, p.client, url, nil, body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

var _ models.Explainer = (*Provider)(nil)
