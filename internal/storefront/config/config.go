package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	API        config.APIConfig        `koanf:"api"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	RateLimit  config.RateLimitConfig  `koanf:"ratelimit"`
	Dispatcher DispatcherConfig        `koanf:"dispatcher"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// DispatcherConfig sizes the queue in front of the single intent worker.
type DispatcherConfig struct {
	QueueSize int `koanf:"queuesize"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.API.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.RateLimit.String())
	b.WriteString("\n--- Dispatcher ---\n")
	b.WriteString(fmt.Sprintf("  queuesize: %d\n", c.Dispatcher.QueueSize))
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Resilience.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if c.Dispatcher.QueueSize < 0 {
		return fmt.Errorf("dispatcher queue size must not be negative: %d", c.Dispatcher.QueueSize)
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
