package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kiranshivaraju/gamescout/internal/ai/llm"
	"github.com/kiranshivaraju/gamescout/internal/config"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

const maxTokens = 120

// Provider implements models.Explainer using the Anthropic Messages API.
type Provider struct {
	client sdk.Client
	model  string
}

func NewProvider(cfg config.AnthropicConfig, opts ...option.RequestOption) *Provider {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}, opts...)
	return &Provider{client: sdk.NewClient(opts...), model: cfg.Model}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Explain(ctx context.Context, req models.ExplainRequest) (string, error) {
	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(llm.Prompt(req))),
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", llm.ErrInferenceTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", llm.ErrProviderUnavailable, err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text content", llm.ErrInvalidResponse)
	}
	return strings.Join(parts, " "), nil
}

var _ models.Explainer = (*Provider)(nil)
