package workflow

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds calls to external collaborators. Each attempt gets its
// own timeout; errors wrapped with backoff.Permanent stop the retries.
type RetryPolicy struct {
	AttemptTimeout time.Duration
	MaxRetries     uint64
	InitialDelay   time.Duration
	MaxDelay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		AttemptTimeout: 5 * time.Second,
		MaxRetries:     3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       2 * time.Second,
	}
}

func (p RetryPolicy) do(ctx context.Context, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()
		return op(attemptCtx)
	}, backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx))
}
