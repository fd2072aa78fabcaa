package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/habanero-go/habanero/internal/orm/persist"
	"github.com/habanero-go/habanero/internal/orm/sqlgen"
)

// Config represents the Habanero configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	ClassDefs ClassDefsConfig `mapstructure:"classdefs"`
	Log       LogConfig       `mapstructure:"log"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// Driver is a registered database/sql driver: pgx, postgres or sqlite3
	Driver         string `mapstructure:"driver"`
	URL            string `mapstructure:"url"`
	IsolationLevel string `mapstructure:"isolation_level"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// ClassDefsConfig lists the class definition files and directories
type ClassDefsConfig struct {
	Paths []string `mapstructure:"paths"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads the configuration from path, or from habanero.yml or
// habanero.yaml in the working directory when path is empty. A missing
// default file is not an error. HABANERO_ environment variables override
// file values, e.g. HABANERO_DATABASE_URL for database.url; DATABASE_URL is
// also accepted.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "habanero.db")
	v.SetDefault("database.isolation_level", "read committed")
	v.SetDefault("database.max_retries", 3)
	v.SetDefault("classdefs.paths", []string{"classdefs"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("habanero")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HABANERO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "HABANERO_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Dialect returns the SQL dialect of the configured driver
func (c DatabaseConfig) Dialect() (sqlgen.Dialect, error) {
	return sqlgen.DialectForDriver(c.Driver)
}

// StoreOptions returns the persist options for the transaction settings
func (c DatabaseConfig) StoreOptions() ([]persist.Option, error) {
	level, err := persist.ParseIsolationLevel(c.IsolationLevel)
	if err != nil {
		return nil, err
	}
	retry := persist.DefaultRetryConfig()
	retry.MaxRetries = c.MaxRetries
	return []persist.Option{
		persist.WithIsolationLevel(level),
		persist.WithRetryConfig(retry),
	}, nil
}

// ResolvePaths makes the class definition paths absolute relative to dir
func (c ClassDefsConfig) ResolvePaths(dir string) []string {
	paths := make([]string, len(c.Paths))
	for i, p := range c.Paths {
		if filepath.IsAbs(p) {
			paths[i] = p
		} else {
			paths[i] = filepath.Join(dir, p)
		}
	}
	return paths
}

// GetProjectRoot finds the nearest directory, starting at the working
// directory, that contains habanero.yml or habanero.yaml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{"habanero.yml", "habanero.yaml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Habanero project (no habanero.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := cfg.Database.Dialect(); err != nil {
		return fmt.Errorf("database.driver: %w", err)
	}
	if _, err := persist.ParseIsolationLevel(cfg.Database.IsolationLevel); err != nil {
		return fmt.Errorf("database.isolation_level: %w", err)
	}
	if cfg.Database.MaxRetries < 1 {
		return fmt.Errorf("database.max_retries must be at least 1, got: %d", cfg.Database.MaxRetries)
	}
	for _, p := range cfg.ClassDefs.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("classdefs.paths must not contain empty paths")
		}
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
