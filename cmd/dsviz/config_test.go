package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/pkg/schema"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, ":4200", cfg.ListenAddr)
	assert.Equal(t, 8, cfg.PoolSize)
	assert.Equal(t, 10, cfg.ArrayCapacity)
	assert.Equal(t, pacingTable, cfg.PacingMode)
	assert.Equal(t, catalogMemory, cfg.Catalog)
	assert.True(t, cfg.Metrics)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeSettings(t, `{"listen_addr": ":9000", "pool_size": 3, "pacing_mode": "fixed", "pacing_fixed": "250ms"}`)
	t.Setenv("DSVIZ_POOL_SIZE", "5")
	t.Setenv("DSVIZ_STACK_CAPACITY", "4")

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.PoolSize, "env beats file")
	assert.Equal(t, 4, cfg.StackCapacity)
	assert.Equal(t, pacingFixed, cfg.PacingMode)
	assert.Equal(t, 250*time.Millisecond, cfg.PacingFixed)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeSettings(t, `{"listen_addr": `)
	_, err := loadConfig(viper.New(), path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := Config{PacingMode: pacingTable, Catalog: catalogMemory, PoolSize: 1}
	require.NoError(t, base.validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown pacing", func(c *Config) { c.PacingMode = "random" }},
		{"expr without rule", func(c *Config) { c.PacingMode = pacingExpr }},
		{"unknown catalog", func(c *Config) { c.Catalog = "redis" }},
		{"empty pool", func(c *Config) { c.PoolSize = 0 }},
		{"negative delay", func(c *Config) { c.PacingFixed = -time.Second }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.True(t, schema.IsCode(err, schema.ErrCodeValidation))
		})
	}
}

func TestConfigPolicies(t *testing.T) {
	cfg := Config{PacingMode: pacingFixed, PacingFixed: 40 * time.Millisecond}
	policies, fallback, err := cfg.policies()
	require.NoError(t, err)
	assert.Len(t, policies, len(schema.Channels))
	assert.Equal(t, 40*time.Millisecond, fallback.Delay(pacing.Frame{}))

	cfg = Config{PacingMode: pacingExpr, PacingRule: "terminal ? 1000 : 100"}
	policies, _, err = cfg.policies()
	require.NoError(t, err)
	assert.Equal(t, time.Second, policies[schema.ChannelStack].Delay(pacing.Frame{Terminal: true}))
	assert.Equal(t, 100*time.Millisecond, policies[schema.ChannelStack].Delay(pacing.Frame{}))

	cfg = Config{PacingMode: pacingExpr, PacingRule: "terminal ?"}
	_, _, err = cfg.policies()
	assert.Error(t, err)

	cfg = Config{PacingMode: pacingTable}
	policies, _, err = cfg.policies()
	require.NoError(t, err)
	assert.Equal(t, 700*time.Millisecond, policies[schema.ChannelArray].Delay(pacing.Frame{}))
}

func TestDiffConfigs(t *testing.T) {
	old := Config{ListenAddr: ":4200", LogLevel: "info", PacingMode: pacingTable, Metrics: true, PoolSize: 8}

	assert.True(t, diffConfigs(old, old).empty())

	n := old
	n.LogLevel = "debug"
	n.Metrics = false
	n.ResetSchedule = "@hourly"
	d := diffConfigs(old, n)
	assert.True(t, d.LogLevelChanged)
	assert.True(t, d.MetricsChanged)
	assert.True(t, d.ScheduleChanged)
	assert.False(t, d.PacingChanged)
	assert.Empty(t, d.RestartNeeded)

	n = old
	n.ListenAddr = ":9000"
	n.PoolSize = 2
	n.StackCapacity = 3
	d = diffConfigs(old, n)
	assert.Equal(t, []string{"listen_addr", "pool_size", "capacities"}, d.RestartNeeded)
}
