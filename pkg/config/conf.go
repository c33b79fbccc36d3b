package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	ThresholdDefault        = 0.35
	PortDefault             = 8080
	PredictTimeoutDefault   = 5 * time.Second
	LeaderboardLimitDefault = 10
)

// Config represents app config object.
type Config struct {
	// Model is the path to a trained pipeline artifact.
	// Empty selects the pipeline built into the binary.
	Model string `yaml:"model"`
	// DB is either a sqlite file path or a postgres:// URL.
	DB               string        `yaml:"db"`
	Threshold        float64       `yaml:"threshold"`
	Port             int           `yaml:"port"`
	PredictTimeout   time.Duration `yaml:"predict_timeout"`
	LeaderboardLimit int           `yaml:"leaderboard_limit"`
}

// Default returns the config used when no file exists. Paths are
// resolved relative to dir.
func Default(dir string) *Config {
	return &Config{
		DB:               filepath.Join(dir, "data.db"),
		Threshold:        ThresholdDefault,
		Port:             PortDefault,
		PredictTimeout:   PredictTimeoutDefault,
		LeaderboardLimit: LeaderboardLimitDefault,
	}
}

// Validate checks the values a config file may have overridden.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0, 1], got %v", c.Threshold)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.PredictTimeout <= 0 {
		return fmt.Errorf("predict timeout must be positive, got %s", c.PredictTimeout)
	}
	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
// Fields missing from the file keep their default values.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, Default(dirPath)); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default(dirPath)
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
