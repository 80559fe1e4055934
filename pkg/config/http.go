package config

import (
	"fmt"
	"strconv"
	"time"
)

// HTTPConfig configures a service's public HTTP listener.
type HTTPConfig struct {
	Port           int `koanf:"port"`
	MaxHeaderBytes int `koanf:"maxHeaderBytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readHeader"`
	} `koanf:"timeout"`
}

// Addr is the listen address on all interfaces.
func (c *HTTPConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *HTTPConfig) String() string {
	return fmt.Sprintf("\n--- Server ---\n  addr: %s\n  maxHeaderBytes: %d\n  timeout: read=%s write=%s idle=%s readHeader=%s\n",
		c.Addr(), c.MaxHeaderBytes, c.Timeout.Read, c.Timeout.Write, c.Timeout.Idle, c.Timeout.ReadHeader)
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read", c.Timeout.Read},
		{"write", c.Timeout.Write},
		{"idle", c.Timeout.Idle},
		{"read header", c.Timeout.ReadHeader},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("invalid HTTP server %s timeout: %v", t.name, t.value)
		}
	}
	return nil
}
