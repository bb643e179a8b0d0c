package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`
}

// fileConfig is the on-disk layout: a top-level "logging" block.
type fileConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig returns console-only text logging at INFO.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/roadgen.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig loads logging configuration from a YAML file and applies
// environment variable overrides. A missing or unparsable file leaves the
// defaults in place.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			config.merge(data)
		}
	}

	config.applyEnv()
	return config, nil
}

// merge overlays the non-zero values found in data onto c.
func (c *Config) merge(data []byte) {
	loaded := fileConfig{Logging: Config{ConsoleEnabled: c.ConsoleEnabled}}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return
	}
	l := loaded.Logging

	if l.Level != "" {
		c.Level = l.Level
	}
	// Booleans are taken as written; console stays on unless the file says otherwise.
	c.ConsoleEnabled = l.ConsoleEnabled
	c.FileEnabled = l.FileEnabled
	c.FileCompress = l.FileCompress
	if l.ConsoleFormat != "" {
		c.ConsoleFormat = l.ConsoleFormat
	}
	if l.FilePath != "" {
		c.FilePath = l.FilePath
	}
	if l.FileFormat != "" {
		c.FileFormat = l.FileFormat
	}
	if l.FileMaxSizeMB > 0 {
		c.FileMaxSizeMB = l.FileMaxSizeMB
	}
	if l.FileMaxBackups > 0 {
		c.FileMaxBackups = l.FileMaxBackups
	}
	if l.FileMaxAgeDays > 0 {
		c.FileMaxAgeDays = l.FileMaxAgeDays
	}
}

func (c *Config) applyEnv() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Level = level
	}
	if format := os.Getenv("LOG_CONSOLE_FORMAT"); format != "" {
		c.ConsoleFormat = format
	}
	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			c.FileEnabled = enabled
		}
	}
	if path := os.Getenv("LOG_FILE_PATH"); path != "" {
		c.FilePath = path
	}
}
