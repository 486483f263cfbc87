package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kiranshivaraju/gamescout/internal/ai/llm"
	"github.com/kiranshivaraju/gamescout/internal/metrics"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

// BreakerSettings tunes the circuit breaker in front of a provider.
type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, OpenTimeout: 30 * time.Second, HalfOpenRequests: 1}
}

// Guarded wraps a provider with a per-call timeout and a circuit breaker.
// Any provider failure, including an open breaker, yields the template
// reason, so Explain never returns an error.
type Guarded struct {
	inner   models.Explainer
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[string]
	log     *slog.Logger
}

func NewGuarded(inner models.Explainer, timeout time.Duration, bs BreakerSettings, log *slog.Logger) *Guarded {
	if log == nil {
		log = slog.Default()
	}
	if bs.FailureThreshold == 0 {
		bs = DefaultBreakerSettings()
	}
	log = log.With("component", "explainer", "provider", inner.Name())

	settings := gobreaker.Settings{
		Name:        "explain-" + inner.Name(),
		MaxRequests: bs.HalfOpenRequests,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("explainer circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Guarded{
		inner:   inner,
		timeout: timeout,
		cb:      gobreaker.NewCircuitBreaker[string](settings),
		log:     log,
	}
}

func (g *Guarded) Name() string { return g.inner.Name() }

// State exposes the breaker state for health reporting.
func (g *Guarded) State() gobreaker.State { return g.cb.State() }

func (g *Guarded) Explain(ctx context.Context, req models.ExplainRequest) (string, error) {
	text, err := g.cb.Execute(func() (string, error) {
		return g.call(ctx, req)
	})
	if err != nil {
		metrics.ExplainFallbacks.WithLabelValues(g.inner.Name()).Inc()
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.log.Warn("explanation failed", "app_id", req.CandidateAppID, "error", err)
		}
		return TemplateReason(req), nil
	}
	return llm.Truncate(text, llm.MaxReasonBytes), nil
}

func (g *Guarded) call(ctx context.Context, req models.ExplainRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.inner.Explain(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrInferenceTimeout) {
			return "", fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return "", err
	}
	out = llm.Clean(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty explanation", ErrInvalidResponse)
	}
	return out, nil
}

var _ models.Explainer = (*Guarded)(nil)
