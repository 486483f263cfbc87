package ai

import "github.com/kiranshivaraju/gamescout/internal/ai/llm"

var (
	ErrProviderUnavailable = llm.ErrProviderUnavailable
	ErrInferenceTimeout    = llm.ErrInferenceTimeout
	ErrInvalidResponse     = llm.ErrInvalidResponse
)
