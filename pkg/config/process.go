package config

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LogConfig selects the minimum level written by bootstrap.NewLogger.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  level: %s\n", c.Level)
}

// Validate accepts the level in any case and stores it lower-cased.
func (c *LogConfig) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.Level))
	switch level {
	case "", "debug", "info", "warn", "error":
		c.Level = level
		return nil
	}
	return fmt.Errorf("unsupported log level: %q", c.Level)
}

// PProfConfig enables the net/http/pprof endpoints on a separate listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

const pprofReadHeaderTimeout = 5 * time.Second

func (c *PProfConfig) String() string {
	return fmt.Sprintf("\n--- PProf ---\n  enabled: %t\n  address: %s\n", c.Enabled, c.Addr)
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	return nil
}

// Server returns a server for the default mux, where net/http/pprof registers itself.
func (c *PProfConfig) Server() *http.Server {
	return &http.Server{
		Addr:              c.Addr,
		ReadHeaderTimeout: pprofReadHeaderTimeout,
	}
}

// ShutdownConfig bounds every graceful stop step.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	return nil
}

// Context returns a context that expires after Timeout. It is rooted at
// Background since the run context is already done when shutdown starts.
func (c *ShutdownConfig) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}
