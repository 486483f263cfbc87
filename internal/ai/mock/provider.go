package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kiranshivaraju/gamescout/internal/ai"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// MockProvider satisfies models.Explainer for testing.
type MockProvider struct {
	Name_       string
	ExplainFunc func(ctx context.Context, req models.ExplainRequest) (string, error)

	calls atomic.Int64
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Explain(ctx context.Context, req models.ExplainRequest) (string, error) {
	m.calls.Add(1)
	if m.ExplainFunc != nil {
		return m.ExplainFunc(ctx, req)
	}
	return "", nil
}

// Calls returns how many times Explain has been invoked.
func (m *MockProvider) Calls() int64 { return m.calls.Load() }

// NewMockProvider returns a MockProvider with a canned reason naming the candidate.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		ExplainFunc: func(_ context.Context, req models.ExplainRequest) (string, error) {
			return fmt.Sprintf("Mock reason for %s", req.CandidateName), nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		ExplainFunc: func(_ context.Context, _ models.ExplainRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		ExplainFunc: func(ctx context.Context, _ models.ExplainRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements Explainer.
var _ models.Explainer = (*MockProvider)(nil)
