package llm

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ClientOptions configures retry and concurrency behavior for a Client.
type ClientOptions struct {
	// MaxRetries is the number of additional attempts after the first
	// failure. Zero disables retries.
	MaxRetries int
	// BaseDelay is the backoff unit for the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	// JitterFactor adds up to delay*JitterFactor of random jitter.
	JitterFactor float64
	// RequestTimeout bounds each individual attempt. Zero means no
	// per-attempt timeout beyond the caller's context.
	RequestTimeout time.Duration
	// Concurrency limits in-flight requests issued by CompleteBatch.
	Concurrency int
}

// DefaultClientOptions returns the options used when none are given.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		MaxRetries:     3,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
		JitterFactor:   0.25,
		RequestTimeout: 120 * time.Second,
		Concurrency:    4,
	}
}

// Client wraps a Provider with retries, per-attempt timeouts, and
// bounded-concurrency batching.
type Client struct {
	provider Provider
	opts     ClientOptions
	logger   *zap.Logger
}

// NewClient creates a Client around the given provider. A nil logger is
// replaced with a no-op logger.
func NewClient(provider Provider, opts ClientOptions, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	return &Client{provider: provider, opts: opts, logger: logger}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Complete issues a completion request, retrying transient failures with
// exponential backoff and jitter. Non-retryable errors and context
// cancellation return immediately.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debug("retrying completion",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if c.opts.RequestTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		}

		resp, err := c.provider.Complete(attemptCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsRetryable(err) {
			c.logger.Warn("completion failed",
				zap.String("provider", c.provider.Name()),
				zap.Error(err))
			return nil, err
		}
	}

	c.logger.Warn("completion exhausted retries",
		zap.String("provider", c.provider.Name()),
		zap.Int("attempts", c.opts.MaxRetries+1),
		zap.Error(lastErr))
	return nil, lastErr
}

// backoff returns the sleep before the given retry attempt (1-based).
func (c *Client) backoff(attempt int) time.Duration {
	base := float64(c.opts.BaseDelay) * math.Pow(2, float64(attempt-1))
	if base > float64(c.opts.MaxDelay) {
		base = float64(c.opts.MaxDelay)
	}
	jitter := rand.Float64() * base * c.opts.JitterFactor
	return time.Duration(base + jitter)
}

// CompleteBatch runs the given requests with bounded concurrency and
// returns the response text for each, in input order. A request that
// fails after retries yields an empty string at its position; the first
// error encountered is returned alongside the results.
func (c *Client) CompleteBatch(ctx context.Context, reqs []CompletionRequest) ([]string, error) {
	results := make([]string, len(reqs))
	sem := make(chan struct{}, c.opts.Concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req CompletionRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp, err := c.Complete(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[i] = resp.Content
		}(i, req)
	}

	wg.Wait()
	return results, firstErr
}
