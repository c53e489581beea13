package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/logger"
	"github.com/custodia-labs/ragline/internal/util"
)

// Orchestrator defaults.
const (
	DefaultMaxConcurrency = 8
	DefaultCallTimeout    = 30 * time.Second
	DefaultMaxRetries     = 2
	DefaultBaseBackoff    = 500 * time.Millisecond
)

// EmbeddingStats counts embedding calls made through an orchestrator.
type EmbeddingStats struct {
	Calls    int64
	Failures int64
	Retries  int64
}

// EmbeddingOrchestrator fans texts out to an EmbeddingService with bounded
// parallelism and returns index-aligned results.
// It is the only place in the pipeline that runs work concurrently.
type EmbeddingOrchestrator struct {
	svc            driven.EmbeddingService
	maxConcurrency int
	callTimeout    time.Duration
	maxRetries     int
	baseBackoff    time.Duration
	limiter        *rate.Limiter

	calls    atomic.Int64
	failures atomic.Int64
	retries  atomic.Int64
}

// OrchestratorOption configures an EmbeddingOrchestrator.
type OrchestratorOption func(*EmbeddingOrchestrator)

// WithMaxConcurrency bounds the number of in-flight embedding calls.
func WithMaxConcurrency(n int) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithCallTimeout sets the timeout of each embedding call.
func WithCallTimeout(d time.Duration) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithMaxRetries sets how often a service failure is retried.
func WithMaxRetries(n int) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithBaseBackoff sets the delay before the first retry.
func WithBaseBackoff(d time.Duration) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if d >= 0 {
			o.baseBackoff = d
		}
	}
}

// WithRateLimit caps embedding calls to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) OrchestratorOption {
	return func(o *EmbeddingOrchestrator) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewEmbeddingOrchestrator creates an orchestrator over svc.
// svc may be nil, in which case every call fails with ErrEmbeddingUnavailable.
func NewEmbeddingOrchestrator(svc driven.EmbeddingService, opts ...OrchestratorOption) *EmbeddingOrchestrator {
	o := &EmbeddingOrchestrator{
		svc:            svc,
		maxConcurrency: DefaultMaxConcurrency,
		callTimeout:    DefaultCallTimeout,
		maxRetries:     DefaultMaxRetries,
		baseBackoff:    DefaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// MaxConcurrency returns the worker pool size.
func (o *EmbeddingOrchestrator) MaxConcurrency() int {
	return o.maxConcurrency
}

// Dimensions returns the configured vector size of the underlying service.
func (o *EmbeddingOrchestrator) Dimensions() int {
	if o.svc == nil {
		return 0
	}
	return o.svc.Dimensions()
}

// Stats returns a snapshot of the call counters.
func (o *EmbeddingOrchestrator) Stats() EmbeddingStats {
	return EmbeddingStats{
		Calls:    o.calls.Load(),
		Failures: o.failures.Load(),
		Retries:  o.retries.Load(),
	}
}

// EmbedMany embeds every text and returns a result per input, in input order.
// A failing text yields an ErrEmbedding at its index only; sibling calls are
// never cancelled and the call itself never fails.
func (o *EmbeddingOrchestrator) EmbedMany(ctx context.Context, texts []string) []domain.EmbeddingResult {
	results := make([]domain.EmbeddingResult, len(texts))
	if len(texts) == 0 {
		return results
	}

	logger.Debug("Embedding %d texts (max %d in flight)", len(texts), o.maxConcurrency)

	var g errgroup.Group
	g.SetLimit(o.maxConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := o.embed(ctx, text)
			if err != nil {
				results[i] = domain.EmbeddingResult{Err: fmt.Errorf("%w: text %d: %w", domain.ErrEmbedding, i, err)}
				return nil
			}
			results[i] = domain.EmbeddingResult{Vector: vec}
			return nil
		})
	}
	// Workers never return errors, so Wait is purely the join barrier.
	_ = g.Wait()

	return results
}

// EmbedOne embeds a single text with the same retry and timeout policy.
func (o *EmbeddingOrchestrator) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vec, err := o.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	return vec, nil
}

// embed calls the service, retrying failures wrapped with domain.ErrService.
func (o *EmbeddingOrchestrator) embed(ctx context.Context, text string) ([]float32, error) {
	if o.svc == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	for attempt := 0; ; attempt++ {
		vec, err := o.call(ctx, text)
		if err == nil {
			if derr := o.checkDimension(vec); derr != nil {
				return nil, derr
			}
			return vec, nil
		}

		if !errors.Is(err, domain.ErrService) || attempt >= o.maxRetries || ctx.Err() != nil {
			o.failures.Add(1)
			return nil, err
		}

		o.retries.Add(1)
		delay := util.CalculateBackoff(o.baseBackoff, attempt+1)
		logger.Debug("Embedding attempt %d failed, retrying in %v: %v", attempt+1, delay, err)
		if serr := util.Sleep(ctx, delay); serr != nil {
			o.failures.Add(1)
			return nil, err
		}
	}
}

func (o *EmbeddingOrchestrator) call(ctx context.Context, text string) ([]float32, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	o.calls.Add(1)
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	vec, err := o.svc.Embed(callCtx, text)
	if err != nil {
		// A per-call timeout with a live parent is a transient service failure.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, domain.ErrService) {
			return nil, fmt.Errorf("%w: %w", domain.ErrService, err)
		}
		return nil, err
	}
	return vec, nil
}

func (o *EmbeddingOrchestrator) checkDimension(vec []float32) error {
	if len(vec) == 0 {
		o.failures.Add(1)
		return fmt.Errorf("service returned an empty vector")
	}
	if want := o.svc.Dimensions(); want > 0 && len(vec) != want {
		o.failures.Add(1)
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), want)
	}
	return nil
}
