// Package config loads curvefitd settings from YAML and CURVEFIT_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/point"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Curve    CurveConfig    `yaml:"curve"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	MetricsPort    int      `yaml:"metrics_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig selects session persistence. An empty driver keeps sessions
// in memory only.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NATSConfig enables change events. An empty URL disables them.
type NATSConfig struct {
	URL string `yaml:"url"`
}

type CurveConfig struct {
	Bounds         BoundsConfig `yaml:"bounds"`
	Delta          DeltaConfig  `yaml:"delta"`
	DefaultSamples int          `yaml:"default_samples"`
}

type BoundsConfig struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinY float64 `yaml:"min_y"`
	MaxY float64 `yaml:"max_y"`
}

type DeltaConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

type SnapshotConfig struct {
	Compression string `yaml:"compression"`
	BigEndian   bool   `yaml:"big_endian"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Bounds returns the configured graph area.
func (c *Config) Bounds() point.Bounds {
	b := c.Curve.Bounds
	return point.Bounds{MinX: b.MinX, MaxX: b.MaxX, MinY: b.MinY, MaxY: b.MaxY}
}

// DeltaLimits returns the configured uncertainty clamp.
func (c *Config) DeltaLimits() point.DeltaLimits {
	d := c.Curve.Delta
	return point.DeltaLimits{Min: d.Min, Max: d.Max, Default: d.Default}
}

// Compression returns the snapshot compression, which Validate has checked.
func (c *Config) Compression() format.CompressionType {
	ct, _ := format.ParseCompressionType(c.Snapshot.Compression)
	return ct
}

// LogLevel maps logging.level to a slog level. Unknown names mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate rejects settings the daemon cannot start with.
func (c *Config) Validate() error {
	if err := c.Bounds().Validate(); err != nil {
		return fmt.Errorf("curve.bounds: %w", err)
	}
	if err := c.DeltaLimits().Validate(); err != nil {
		return fmt.Errorf("curve.delta: %w", err)
	}
	if c.Curve.DefaultSamples < 2 {
		return fmt.Errorf("curve.default_samples: must be at least 2, got %d", c.Curve.DefaultSamples)
	}
	if _, ok := format.ParseCompressionType(c.Snapshot.Compression); !ok {
		return fmt.Errorf("snapshot.compression: unknown %q", c.Snapshot.Compression)
	}
	switch c.Database.Driver {
	case "", "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unknown %q", c.Database.Driver)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown %q", c.Logging.Format)
	}

	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8700,
			MetricsPort:    8701,
			AllowedOrigins: []string{"*"},
		},
		Curve: CurveConfig{
			Bounds: BoundsConfig{
				MinX: point.DefaultBounds.MinX,
				MaxX: point.DefaultBounds.MaxX,
				MinY: point.DefaultBounds.MinY,
				MaxY: point.DefaultBounds.MaxY,
			},
			Delta: DeltaConfig{
				Min:     point.DefaultDeltaLimits.Min,
				Max:     point.DefaultDeltaLimits.Max,
				Default: point.DefaultDeltaLimits.Default,
			},
			DefaultSamples: 200,
		},
		Snapshot: SnapshotConfig{
			Compression: "zstd",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CURVEFIT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("CURVEFIT_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("CURVEFIT_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("CURVEFIT_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("CURVEFIT_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("CURVEFIT_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("CURVEFIT_DEFAULT_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Curve.DefaultSamples = n
		}
	}
	if v := os.Getenv("CURVEFIT_SNAPSHOT_COMPRESSION"); v != "" {
		cfg.Snapshot.Compression = v
	}
	if v := os.Getenv("CURVEFIT_SNAPSHOT_BIG_ENDIAN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Snapshot.BigEndian = b
		}
	}
	if v := os.Getenv("CURVEFIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CURVEFIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
