package config

import (
	"fmt"
	"net/url"
	"time"
)

// TelemetryConfig controls trace export. Metrics are always served on /metrics.
type TelemetryConfig struct {
	Traces TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	Enabled  bool           `koanf:"enabled"`
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

// OtlpHttpConfig points the exporter at a collector. Endpoint is host:port without a scheme.
type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

func (c *TelemetryConfig) String() string {
	t := c.Traces
	return fmt.Sprintf("\n--- Telemetry ---\n  traces: enabled=%t endpoint=%s insecure=%t timeout=%s\n",
		t.Enabled, t.OtlpHttp.Endpoint, t.OtlpHttp.Insecure, t.OtlpHttp.Timeout)
}

func (c *TelemetryConfig) Validate() error {
	if !c.Traces.Enabled {
		return nil
	}
	otlp := c.Traces.OtlpHttp
	if otlp.Endpoint == "" {
		return fmt.Errorf("OTel endpoint is not configured")
	}
	if u, err := url.Parse("//" + otlp.Endpoint); err != nil || u.Host == "" {
		return fmt.Errorf("OTel endpoint %q is not a host:port", otlp.Endpoint)
	}
	if otlp.Timeout <= 0 {
		return fmt.Errorf("telemetry timeout must be greater than 0")
	}
	return nil
}
