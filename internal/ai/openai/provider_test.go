package openai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/kiranshivaraju/gamescout/internal/ai/llm"
	"github.com/kiranshivaraju/gamescout/internal/ai/openai"
	"github.com/kiranshivaraju/gamescout/internal/config"
	"github.com/kiranshivaraju/gamescout/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, wantAuth string, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)

		_, _ = w.Write([]byte(reply))
	}))
}

func TestProvider_Explain(t *testing.T) {
	srv := chatServer(t, "Bearer sk-test", `{"choices":[{"message":{"role":"assistant","content":"Same studio, same grit."}}]}`)
	defer srv.Close()

	p := openai.NewProvider(config.OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"})
	got, err := p.Explain(context.Background(), models.ExplainRequest{CandidateName: "Acme2"})
	require.NoError(t, err)
	assert.Equal(t, "Same studio, same grit.", got)
}

func TestProvider_NoChoices(t *testing.T) {
	srv := chatServer(t, "Bearer sk-test", `{"choices":[]}`)
	defer srv.Close()

	p := openai.NewProvider(config.OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"})
	_, err := p.Explain(context.Background(), models.ExplainRequest{})
	assert.ErrorIs(t, err, llm.ErrInvalidResponse)
}

func TestVLLMProvider_NoAuthHeader(t *testing.T) {
	srv := chatServer(t, "", `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	defer srv.Close()

	p := openai.NewVLLMProvider(config.VLLMConfig{BaseURL: srv.URL, Model: "mistral-7b"})
	got, err := p.Explain(context.Background(), models.ExplainRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, "vllm", p.Name())
}
