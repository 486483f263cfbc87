package ai

import (
	"fmt"

	"github.com/kiranshivaraju/gamescout/internal/ai/anthropic"
	"github.com/kiranshivaraju/gamescout/internal/ai/ollama"
	"github.com/kiranshivaraju/gamescout/internal/ai/openai"
	"github.com/kiranshivaraju/gamescout/internal/config"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// NewExplainer constructs the explanation provider named in config.
// Called once at startup.
func NewExplainer(cfg config.ExplainConfig) (models.Explainer, error) {
	switch cfg.Provider {
	case "template", "":
		return Template{}, nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return openai.NewVLLMProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown explain provider %q: must be one of template, ollama, vllm, openai, anthropic", cfg.Provider)
	}
}
