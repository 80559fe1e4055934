package config

import (
	"fmt"
	"strings"
	"time"
)

// ResilienceConfig tunes the product API client's breaker and read retries.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// RetryConfig applies to idempotent reads only. MaxAttempts counts the first call.
type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
	MaxBackoff     time.Duration `koanf:"maxbackoff"`
}

// CircuitBreakerConfig opens the circuit after more than ConsecutiveFailures
// failures in a row, or when the failure share exceeds ErrorRatePercent once
// more than ConsecutiveFailures calls were counted.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
	HalfOpenRequests    uint32        `koanf:"halfopenrequests"`
}

const defaultMaxBackoff = 5 * time.Second

func (c *ResilienceConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Resilience ---\n")
	fmt.Fprintf(&b, "  retry: attempts=%d initial=%s max=%s\n",
		c.Retry.MaxAttempts, c.Retry.InitialBackoff, c.Retry.MaxBackoff)
	fmt.Fprintf(&b, "  circuitbreaker: failures=%d rate=%d%% open=%s halfopen=%d\n",
		c.CircuitBreaker.ConsecutiveFailures, c.CircuitBreaker.ErrorRatePercent,
		c.CircuitBreaker.OpenTimeout, c.CircuitBreaker.HalfOpenRequests)
	return b.String()
}

// Validate rejects unusable values and fills MaxBackoff and HalfOpenRequests when unset.
func (c *ResilienceConfig) Validate() error {
	r, cb := &c.Retry, &c.CircuitBreaker
	switch {
	case r.MaxAttempts == 0:
		return fmt.Errorf("retry.max_attempts must be greater than 0")
	case r.InitialBackoff <= 0:
		return fmt.Errorf("retry.initial_backoff must be greater than 0")
	case r.MaxBackoff != 0 && r.MaxBackoff < r.InitialBackoff:
		return fmt.Errorf("retry.max_backoff %s is below retry.initial_backoff %s", r.MaxBackoff, r.InitialBackoff)
	case cb.ConsecutiveFailures == 0:
		return fmt.Errorf("circuit_breaker.consecutive_failures must be greater than 0")
	case cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100:
		return fmt.Errorf("circuit_breaker.error_rate_percent must be between 0 and 100")
	case cb.OpenTimeout <= 0:
		return fmt.Errorf("circuit_breaker.open_timeout must be greater than 0")
	}
	if r.MaxBackoff == 0 {
		r.MaxBackoff = max(defaultMaxBackoff, r.InitialBackoff)
	}
	if cb.HalfOpenRequests == 0 {
		cb.HalfOpenRequests = 1
	}
	return nil
}
