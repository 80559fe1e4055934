package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// newBreaker trips on transport failures and 5xx only. Client errors such as
// 400 or 404 are answers from a healthy API and never open the circuit.
func newBreaker(cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*response] {
	st := gobreaker.Settings{
		Name:        "product-api-cb",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.Status < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[*response](st)
}

// withRetry repeats fn with exponential backoff while it fails with a transient error.
func (c *Client) withRetry(ctx context.Context, op string, fn func() (*response, error)) (*response, error) {
	attempts := c.retry.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	if c.retry.InitialBackoff > 0 {
		exp.InitialInterval = c.retry.InitialBackoff
	}
	if c.retry.MaxBackoff > 0 {
		exp.MaxInterval = c.retry.MaxBackoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	attempt := func() (*response, error) {
		resp, err := fn()
		if err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if resp.status >= 500 {
			return resp, statusError(resp)
		}
		return resp, nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "Retrying request", "op", op, "error", err, "backoff", wait)
	}

	resp, err := backoff.RetryNotifyWithData(attempt, policy, notify)
	if err == nil {
		return resp, nil
	}
	var se *StatusError
	if errors.As(err, &se) && resp != nil {
		return resp, nil
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &NetworkError{Op: op, Err: ctxErr}
	}
	return nil, &NetworkError{Op: op, Err: err}
}

func retryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return !ne.BreakerOpen() && !errors.Is(err, context.Canceled)
	}
	return false
}
