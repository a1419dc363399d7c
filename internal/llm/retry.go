package llm

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
)

// RetryProvider resends requests that failed for transient reasons, backing
// off exponentially with jitter between attempts. When timeout is set it
// also bounds the whole exchange, retries and waits included.
type RetryProvider struct {
	inner   Provider
	config  RetryConfig
	timeout time.Duration
}

// WithRetry wraps p. A zero timeout leaves the caller's deadline alone.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration) Provider {
	return &RetryProvider{inner: p, config: cfg, timeout: timeout}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempts := r.config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var resp *Response
	invalidRetried := false
	err := retry.Do(
		func() error {
			var err error
			resp, err = r.inner.Generate(ctx, req)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(r.config.InitialWait),
		retry.MaxDelay(r.config.MaxWait),
		retry.MaxJitter(r.config.InitialWait/2),
		retry.DelayType(r.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retryable(err, &invalidRetried)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// delay honours a provider's Retry-After hint and otherwise doubles the
// wait each attempt, plus up to half the initial wait of jitter.
func (r *RetryProvider) delay(n uint, err error, config *retry.Config) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	if r.config.InitialWait < 2 {
		return retry.BackOffDelay(n, err, config)
	}
	return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, config)
}

// retryable decides whether err is worth another attempt. A reply that
// failed validation gets exactly one more chance. Cancellation, truncation
// and refused requests get none.
func retryable(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}

	var unavailable *ErrProviderUnavailable
	if errors.As(err, &unavailable) && unavailable.Rejected() {
		return false
	}

	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}
