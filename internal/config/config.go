// Package config loads the generator, store and stream settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the road generator and its adapters.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Database  DatabaseConfig  `yaml:"database"`
	Stream    StreamConfig    `yaml:"stream"`
}

// GeneratorConfig holds the knobs of a generation run.
type GeneratorConfig struct {
	// CellSize is the world size of a 1x1 tile as [x, y].
	CellSize [2]float64 `yaml:"cell_size"`

	// GroupMinSeconds is the number of timeline values a segment accepts
	// before change-rate splitting kicks in.
	GroupMinSeconds int `yaml:"group_min_seconds"`

	// MinChangeRate is the amplitude jump between neighbouring seconds that
	// starts a new segment.
	MinChangeRate float64 `yaml:"min_change_rate"`

	// MaxCorrections caps the straight fillers inserted while resolving one overlap.
	MaxCorrections int `yaml:"max_corrections"`

	// FillerMargin is how many cells of decoration surround the road. 0 disables it.
	FillerMargin int `yaml:"filler_margin"`
}

// DatabaseConfig selects where generated tracks are stored.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `yaml:"sqlite_path"`

	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// StreamConfig holds websocket settings for the placement stream.
type StreamConfig struct {
	// Address is the listen address, e.g. ":4443".
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect.
	// Empty list enforces same-origin policy. "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the largest request a client may send, in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// AudioDir is where requested audio files are resolved from.
	AudioDir string `yaml:"audio_dir"`

	// MaxConnectionsPerIP and MaxConnections limit concurrent sockets. 0 means unlimited.
	MaxConnectionsPerIP int `yaml:"max_connections_per_ip"`
	MaxConnections      int `yaml:"max_connections"`
}

// DefaultConfig returns a Config with the stock generator knobs.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			CellSize:        [2]float64{20, 20},
			GroupMinSeconds: 10,
			MinChangeRate:   0.4,
			MaxCorrections:  20,
			FillerMargin:    2,
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "data/roadgen.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Stream: StreamConfig{
			Address:             ":4443",
			AllowedOrigins:      []string{},
			MaxMessageSize:      65536,
			AudioDir:            "data/audio",
			MaxConnectionsPerIP: 4,
			MaxConnections:      100,
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns the default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

// Validate reports every setting that would make generation meaningless.
func (c *Config) Validate() error {
	g := c.Generator
	var errs []error
	if g.CellSize[0] <= 0 || g.CellSize[1] <= 0 {
		errs = append(errs, fmt.Errorf("generator.cell_size must be positive, got %v", g.CellSize))
	}
	if g.GroupMinSeconds < 1 {
		errs = append(errs, fmt.Errorf("generator.group_min_seconds must be at least 1, got %d", g.GroupMinSeconds))
	}
	if g.MinChangeRate <= 0 {
		errs = append(errs, fmt.Errorf("generator.min_change_rate must be positive, got %g", g.MinChangeRate))
	}
	if g.MaxCorrections < 1 {
		errs = append(errs, fmt.Errorf("generator.max_corrections must be at least 1, got %d", g.MaxCorrections))
	}
	if g.FillerMargin < 0 {
		errs = append(errs, fmt.Errorf("generator.filler_margin must not be negative, got %d", g.FillerMargin))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *StreamConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
