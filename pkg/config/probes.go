package config

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// ProbesConfig controls how often a service re-checks its own health.
type ProbesConfig struct {
	Interval time.Duration `koanf:"interval"`
}

const defaultProbeInterval = 10 * time.Second

// String returns a string representation of the ProbesConfig.
func (c *ProbesConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Probes ---\n")
	b.WriteString(fmt.Sprintf("  interval: %s\n", c.Interval))
	return b.String()
}

func (c *ProbesConfig) Validate() error {
	if c.Interval <= 0 {
		log.Println("Using default value for probes interval")
		c.Interval = defaultProbeInterval
	}
	return nil
}
