package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHTTP() HTTPConfig {
	var c HTTPConfig
	c.Port = 8080
	c.Timeout.Read = time.Second
	c.Timeout.Write = time.Second
	c.Timeout.Idle = time.Second
	c.Timeout.ReadHeader = time.Second
	return c
}

func TestHTTPConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*HTTPConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*HTTPConfig) {}},
		{name: "port zero", mutate: func(c *HTTPConfig) { c.Port = 0 }, wantErr: "port"},
		{name: "port too high", mutate: func(c *HTTPConfig) { c.Port = 70000 }, wantErr: "port"},
		{name: "no write timeout", mutate: func(c *HTTPConfig) { c.Timeout.Write = 0 }, wantErr: "write timeout"},
		{name: "no read header timeout", mutate: func(c *HTTPConfig) { c.Timeout.ReadHeader = 0 }, wantErr: "read header timeout"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := validHTTP()
			tc.mutate(&c)

			// when
			err := c.Validate()

			// then
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, ":8080", c.Addr())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTelemetryConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		traces  TracesConfig
		wantErr string
	}{
		{name: "disabled ignores the rest", traces: TracesConfig{}},
		{name: "valid", traces: TracesConfig{Enabled: true, OtlpHttp: OtlpHttpConfig{Endpoint: "localhost:4318", Timeout: time.Second}}},
		{name: "no endpoint", traces: TracesConfig{Enabled: true, OtlpHttp: OtlpHttpConfig{Timeout: time.Second}}, wantErr: "OTel endpoint"},
		{name: "no timeout", traces: TracesConfig{Enabled: true, OtlpHttp: OtlpHttpConfig{Endpoint: "collector:4318"}}, wantErr: "timeout"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := TelemetryConfig{Traces: tc.traces}

			// when
			err := c.Validate()

			// then
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
