package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "nkmodel", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Simulation.DefaultHorizon)
	assert.Equal(t, 1600.0, cfg.Calibration.HPLambda)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
service_name = "nkmodel-test"

[http]
port = 9000

[simulation]
default_horizon = 40
max_horizon = 200
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_GRPC_PORT", "6000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nkmodel-test", cfg.ServiceName)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 6000, cfg.GRPC.Port)
	assert.Equal(t, 40, cfg.Simulation.DefaultHorizon)
	assert.Equal(t, 200, cfg.Simulation.MaxHorizon)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = "mysql" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
		{"redis limiter without redis", func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.Backend = "redis" }},
		{"default above max", func(c *Config) { c.Simulation.DefaultHorizon = c.Simulation.MaxHorizon + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
