// Package config defines the TuLiPa core's configuration surface: the
// solver backend options that spec.md §6 requires be set for
// deterministic behaviour, plus the logging, metrics and tracing
// sinks shared by every lifecycle phase.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level configuration struct for an embedding
// application. TuLiPa itself never reads a config file — callers load
// one with NewLoader().Load() and pass the relevant sub-struct (e.g.
// SolverConfig) to the package that needs it.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Solver  SolverConfig  `koanf:"solver"`
}

// AppConfig holds general application identity, used only for log/trace attribution.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // path to log file, when Output == "file"
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // number of rotated backups to keep
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures pkg/metrics.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures pkg/telemetry.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// SolverConfig holds the options spec.md §6 expects to be set at the
// LP backend boundary "for deterministic behaviour".
type SolverConfig struct {
	Simplex       SimplexConfig       `koanf:"simplex"`
	InteriorPoint InteriorPointConfig `koanf:"interior_point"`
	// Method selects which of Simplex / InteriorPoint an adapter should
	// prefer when both are available. "simplex" or "interior_point".
	Method string `koanf:"method"`
}

// SimplexConfig mirrors spec.md §6's "Simplex method: scale strategy,
// strategy, max concurrency, time limit (default 300s)".
type SimplexConfig struct {
	ScaleStrategy  string        `koanf:"scale_strategy"`
	Strategy       string        `koanf:"strategy"`
	MaxConcurrency int           `koanf:"max_concurrency"`
	TimeLimit      time.Duration `koanf:"time_limit"`
}

// InteriorPointConfig mirrors spec.md §6's "Interior-point method:
// distinct scale strategy, crossover off".
type InteriorPointConfig struct {
	ScaleStrategy string `koanf:"scale_strategy"`
	CrossoverOff  bool   `koanf:"crossover_off"`
}

// Validate checks the configuration for obviously inconsistent values.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Solver.Simplex.TimeLimit < 0 {
		errs = append(errs, "solver.simplex.time_limit must be non-negative")
	}
	if c.Solver.Method != "" && c.Solver.Method != "simplex" && c.Solver.Method != "interior_point" {
		errs = append(errs, fmt.Sprintf("solver.method must be simplex or interior_point, got %s", c.Solver.Method))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether App.Environment names a development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether App.Environment names a production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
