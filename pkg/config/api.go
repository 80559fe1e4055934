package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	EnvelopeData = "data"
	EnvelopeBare = "bare"
)

// APIConfig describes the product API, either as consumed by a client or as served.
type APIConfig struct {
	URL      string        `koanf:"url"`
	Envelope string        `koanf:"envelope"`
	Timeout  time.Duration `koanf:"timeout"`
}

// String returns a string representation of the APIConfig.
func (c *APIConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Product API ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  envelope: %s\n", c.Envelope))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

// ValidateEnvelope only checks the envelope shape; servers have no URL to validate.
func (c *APIConfig) ValidateEnvelope() error {
	switch c.Envelope {
	case EnvelopeData, EnvelopeBare:
		return nil
	case "":
		c.Envelope = EnvelopeData
		return nil
	default:
		return fmt.Errorf("unsupported API envelope %q, want %q or %q", c.Envelope, EnvelopeData, EnvelopeBare)
	}
}

func (c *APIConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("product API URL is not configured")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("product API URL is invalid: %q", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("product API timeout must be greater than zero")
	}
	return c.ValidateEnvelope()
}
