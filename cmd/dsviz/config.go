package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/pkg/schema"
)

// Config holds all dsviz server configuration.
// Priority: env vars > settings file > defaults.
type Config struct {
	ListenAddr    string        `json:"listen_addr"`
	DBPath        string        `json:"db_path"`
	LogLevel      string        `json:"log_level"`
	PoolSize      int           `json:"pool_size"`
	ArrayCapacity int           `json:"array_capacity"`
	StackCapacity int           `json:"stack_capacity"`
	QueueCapacity int           `json:"queue_capacity"`
	PacingMode    string        `json:"pacing_mode"`
	PacingFixed   time.Duration `json:"pacing_fixed"`
	PacingRule    string        `json:"pacing_rule"`
	ResetSchedule string        `json:"reset_schedule"`
	Catalog       string        `json:"catalog"`
	Metrics       bool          `json:"metrics"`
}

// Pacing modes.
const (
	pacingTable = "table"
	pacingFixed = "fixed"
	pacingExpr  = "expr"
)

// Catalog backends.
const (
	catalogMemory = "memory"
	catalogLibSQL = "libsql"
	catalogNone   = "none"
)

func dsvizDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dsviz"
	}
	return filepath.Join(home, ".dsviz")
}

func settingsPath() string {
	return filepath.Join(dsvizDir(), "settings.json")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":4200")
	v.SetDefault("db_path", filepath.Join(dsvizDir(), "catalog.db"))
	v.SetDefault("log_level", "info")
	v.SetDefault("pool_size", 8)
	v.SetDefault("array_capacity", 10)
	v.SetDefault("stack_capacity", 10)
	v.SetDefault("queue_capacity", 10)
	v.SetDefault("pacing_mode", pacingTable)
	v.SetDefault("pacing_fixed", 500*time.Millisecond)
	v.SetDefault("pacing_rule", "")
	v.SetDefault("reset_schedule", "")
	v.SetDefault("catalog", catalogMemory)
	v.SetDefault("metrics", true)
}

// loadConfig layers DSVIZ_* env vars over the settings file over the
// defaults. An empty file means the default settings path; a missing
// settings file is not an error.
func loadConfig(v *viper.Viper, file string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("DSVIZ")
	v.AutomaticEnv()

	if file == "" {
		file = settingsPath()
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", file, err)
	}

	cfg := Config{
		ListenAddr:    v.GetString("listen_addr"),
		DBPath:        v.GetString("db_path"),
		LogLevel:      v.GetString("log_level"),
		PoolSize:      v.GetInt("pool_size"),
		ArrayCapacity: v.GetInt("array_capacity"),
		StackCapacity: v.GetInt("stack_capacity"),
		QueueCapacity: v.GetInt("queue_capacity"),
		PacingMode:    v.GetString("pacing_mode"),
		PacingFixed:   v.GetDuration("pacing_fixed"),
		PacingRule:    v.GetString("pacing_rule"),
		ResetSchedule: v.GetString("reset_schedule"),
		Catalog:       v.GetString("catalog"),
		Metrics:       v.GetBool("metrics"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.PacingMode {
	case pacingTable, pacingFixed:
	case pacingExpr:
		if c.PacingRule == "" {
			return schema.NewError(schema.ErrCodeValidation, "pacing_rule is required when pacing_mode is expr")
		}
	default:
		return schema.NewErrorf(schema.ErrCodeValidation, "pacing_mode must be table, fixed or expr, got %q", c.PacingMode)
	}
	switch c.Catalog {
	case catalogMemory, catalogLibSQL, catalogNone:
	default:
		return schema.NewErrorf(schema.ErrCodeValidation, "catalog must be memory, libsql or none, got %q", c.Catalog)
	}
	if c.PoolSize < 1 {
		return schema.NewError(schema.ErrCodeValidation, "pool_size must be at least 1")
	}
	if c.PacingFixed < 0 {
		return schema.NewError(schema.ErrCodeValidation, "pacing_fixed must not be negative")
	}
	return nil
}

// policies returns the per-channel delay policies and the fallback for the
// configured pacing mode.
func (c Config) policies() (map[string]pacing.DelayPolicy, pacing.DelayPolicy, error) {
	switch c.PacingMode {
	case pacingFixed:
		return uniform(pacing.FixedDelay(c.PacingFixed)), pacing.FixedDelay(c.PacingFixed), nil
	case pacingExpr:
		rule, err := pacing.NewExprDelay(expressions.NewExprEngine(), c.PacingRule, c.PacingFixed)
		if err != nil {
			return nil, nil, err
		}
		return uniform(rule), rule, nil
	default:
		return pacing.ChannelDefaults(), pacing.OperationTable(), nil
	}
}

func uniform(p pacing.DelayPolicy) map[string]pacing.DelayPolicy {
	out := make(map[string]pacing.DelayPolicy, len(schema.Channels))
	for _, ch := range schema.Channels {
		out[ch] = p
	}
	return out
}

// configDiff describes what changed between two configurations.
type configDiff struct {
	LogLevelChanged bool
	PacingChanged   bool
	MetricsChanged  bool
	ScheduleChanged bool
	RestartNeeded   []string // fields that require a server restart
}

func (d configDiff) empty() bool {
	return !d.LogLevelChanged && !d.PacingChanged && !d.MetricsChanged && !d.ScheduleChanged &&
		len(d.RestartNeeded) == 0
}

func diffConfigs(old, new Config) configDiff {
	var d configDiff
	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
	}
	if old.PacingMode != new.PacingMode || old.PacingFixed != new.PacingFixed || old.PacingRule != new.PacingRule {
		d.PacingChanged = true
	}
	if old.Metrics != new.Metrics {
		d.MetricsChanged = true
	}
	if old.ResetSchedule != new.ResetSchedule {
		d.ScheduleChanged = true
	}
	if old.ListenAddr != new.ListenAddr {
		d.RestartNeeded = append(d.RestartNeeded, "listen_addr")
	}
	if old.DBPath != new.DBPath {
		d.RestartNeeded = append(d.RestartNeeded, "db_path")
	}
	if old.PoolSize != new.PoolSize {
		d.RestartNeeded = append(d.RestartNeeded, "pool_size")
	}
	if old.Catalog != new.Catalog {
		d.RestartNeeded = append(d.RestartNeeded, "catalog")
	}
	if old.ArrayCapacity != new.ArrayCapacity || old.StackCapacity != new.StackCapacity ||
		old.QueueCapacity != new.QueueCapacity {
		d.RestartNeeded = append(d.RestartNeeded, "capacities")
	}
	return d
}
