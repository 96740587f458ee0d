package client

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/rs/zerolog"
)

const defaultMaxAttempts = 3

// BootstrapOptions tunes EnsureDefaultWorkspace. The zero value gives three
// attempts with real timers and jitter.
type BootstrapOptions struct {
	// MaxAttempts is the total number of requests issued before giving up
	MaxAttempts int
	// Sleep waits between attempts; swap it out in tests
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter yields the random component of a backoff delay, in [0, 1s)
	Jitter func() time.Duration
	// Log receives per-attempt diagnostics
	Log zerolog.Logger
}

func (o *BootstrapOptions) fill() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	if o.Jitter == nil {
		o.Jitter = func() time.Duration {
			return time.Duration(rand.Int63n(int64(time.Second)))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EnsureDefaultWorkspace guarantees the signed-in user has a workspace
// before the rest of the app reads workspace state. It calls the
// ensure-default endpoint, retrying with exponential backoff plus jitter:
// attempt n waits 1s·2^(n−1) + [0,1s) before attempt n+1. A 4xx response
// other than 429 is not retryable. Exhausted attempts return (nil, nil);
// a nil workspace means bootstrap failed and the caller must surface a
// recoverable error state, not crash.
func EnsureDefaultWorkspace(ctx context.Context, c *Client, opts BootstrapOptions) (*domain.Workspace, error) {
	opts.fill()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		ws, err := c.EnsureDefaultWorkspace(ctx)
		if err == nil {
			return ws, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) &&
			apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != 429 {
			opts.Log.Warn().Int("status", apiErr.Status).Msg("Workspace bootstrap failed, not retryable")
			return nil, nil
		}

		opts.Log.Warn().Err(err).Int("attempt", attempt).Msg("Workspace bootstrap attempt failed")

		if attempt == opts.MaxAttempts {
			break
		}

		delay := time.Duration(1<<(attempt-1))*time.Second + opts.Jitter()
		if err := opts.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, nil
}
