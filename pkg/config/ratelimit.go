package config

import (
	"fmt"
	"strings"
	"time"
)

// RateLimitConfig limits requests per client IP. A zero Requests value disables limiting.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// String returns a string representation of the RateLimitConfig.
func (c *RateLimitConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Rate Limit ---\n")
	b.WriteString(fmt.Sprintf("  requests: %d\n", c.Requests))
	b.WriteString(fmt.Sprintf("  window: %s\n", c.Window))
	return b.String()
}

func (c *RateLimitConfig) Validate() error {
	if c.Requests < 0 {
		return fmt.Errorf("rate limit requests must not be negative")
	}
	if c.Requests > 0 && c.Window <= 0 {
		return fmt.Errorf("rate limit window must be greater than zero")
	}
	return nil
}
