package remote

import (
	"context"
	"time"
)

// Policy bounds how often a failed call is repeated.
type Policy struct {
	// MaxAttempts counts the first call. Values below 1 mean one attempt.
	MaxAttempts int

	// Backoff[i] is the wait after the (i+1)th failed attempt; the last
	// entry is reused when attempts outnumber entries.
	Backoff []time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil means the package-level Retryable.
	Retryable func(error) bool

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultPolicy makes three attempts with exponential waits.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		Retryable:   Retryable,
	}
}

func (p Policy) wait(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if attempt >= len(p.Backoff) {
		return p.Backoff[len(p.Backoff)-1]
	}
	return p.Backoff[attempt]
}

// Retry calls fn until it succeeds, returns a non-retryable error, runs out
// of attempts, or ctx is done. The last error is returned.
func Retry(ctx context.Context, p Policy, fn func(context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = Retryable
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil || !retryable(err) || attempt == attempts-1 {
			return err
		}

		d := p.wait(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, d)
		}
		if d <= 0 {
			continue
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
