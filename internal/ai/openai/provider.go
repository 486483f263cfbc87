package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/gamescout/internal/ai/llm"
	"github.com/kiranshivaraju/gamescout/internal/config"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// Provider implements models.Explainer against any OpenAI-compatible
// chat completions endpoint. vLLM is served through the same client.
type Provider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{name: "openai", baseURL: cfg.BaseURL, apiKey: cfg.APIKey, model: cfg.Model, client: &http.Client{}}
}

// NewVLLMProvider targets a vLLM server's OpenAI-compatible API.
func NewVLLMProvider(cfg config.VLLMConfig) *Provider {
	return &Provider{name: "vllm", baseURL: cfg.BaseURL, model: cfg.Model, client: &http.Client{}}
}

func (p *Provider) Name() string { return p.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Explain(ctx context.Context, req models.ExplainRequest) (string, error) {
	body := chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: llm.Prompt(req)}},
		MaxTokens:   80,
		Temperature: 0.4,
	}
	var headers map[string]string
	if p.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + p.apiKey}
	}

	var out chatResponse
	url := strings.TrimRight(p.baseURL, "/") + "/v1/chat/completions"
	if err := llm.PostJSON(ctx, p.client, url, headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", llm.ErrInvalidResponse)
	}
	return out.Choices[0].Message.Content, nil
}

var _ models.Explainer = (*Provider)(nil)
