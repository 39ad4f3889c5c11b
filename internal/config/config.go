package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"docfit/internal/common"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Assembly  AssemblyConfig  `mapstructure:"assembly"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`

	Logger *slog.Logger `mapstructure:"-"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	JSONFormat bool   `mapstructure:"json_format"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type WorkspaceConfig struct {
	Dir    string        `mapstructure:"dir"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type AssemblyConfig struct {
	Workers int `mapstructure:"workers"`
}

type DefaultsConfig struct {
	Image    EnvelopeConfig `mapstructure:"image"`
	Document EnvelopeConfig `mapstructure:"document"`
}

type EnvelopeConfig struct {
	MinSizeKB float64 `mapstructure:"min_size_kb"`
	MaxSizeKB float64 `mapstructure:"max_size_kb"`
	MinWidth  int     `mapstructure:"min_width"`
	MinHeight int     `mapstructure:"min_height"`
	MaxWidth  int     `mapstructure:"max_width"`
	MaxHeight int     `mapstructure:"max_height"`
}

// Envelope converts the configured bounds into a conversion envelope
func (e EnvelopeConfig) Envelope() compressionDomain.Envelope {
	return compressionDomain.Envelope{
		MinSizeKB: e.MinSizeKB,
		MaxSizeKB: e.MaxSizeKB,
		MinWidth:  e.MinWidth,
		MinHeight: e.MinHeight,
		MaxWidth:  e.MaxWidth,
		MaxHeight: e.MaxHeight,
	}
}

// Load reads configuration from defaults, an optional config file and DOCFIT_* environment variables.
// A .env file in the working directory is loaded into the environment first.
// configFile may be empty to search the usual locations.
func Load(configFile string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "docfit"))
		}
	}

	v.SetEnvPrefix("DOCFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.Logger = NewLogger(cfg.Logging, os.Stdout)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	workers := runtime.NumCPU()
	if workers > common.MaxConcurrencyLimit {
		workers = common.MaxConcurrencyLimit
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json_format", false)
	v.SetDefault("database.dsn", ":memory:")
	v.SetDefault("workspace.dir", filepath.Join(os.TempDir(), "docfit"))
	v.SetDefault("workspace.max_age", "24h")
	v.SetDefault("catalog.path", "")
	v.SetDefault("assembly.workers", workers)

	v.SetDefault("defaults.image.min_size_kb", 1)
	v.SetDefault("defaults.image.max_size_kb", 1024)
	v.SetDefault("defaults.image.min_width", 140)
	v.SetDefault("defaults.image.min_height", 60)
	v.SetDefault("defaults.image.max_width", 1000)
	v.SetDefault("defaults.image.max_height", 1000)

	v.SetDefault("defaults.document.min_size_kb", 10)
	v.SetDefault("defaults.document.max_size_kb", 1024)
}

// Validate checks the configuration for values that could never work
func (c *Config) Validate() error {
	if c.Workspace.Dir == "" {
		return fmt.Errorf("workspace.dir is required")
	}
	if c.Workspace.MaxAge <= 0 {
		return fmt.Errorf("workspace.max_age must be positive")
	}
	if c.Assembly.Workers < 1 || c.Assembly.Workers > common.MaxConcurrencyLimit {
		return fmt.Errorf("assembly.workers must be between 1 and %d", common.MaxConcurrencyLimit)
	}
	if err := c.Defaults.Image.Envelope().Validate(); err != nil {
		return fmt.Errorf("defaults.image: %w", err)
	}
	if err := c.Defaults.Document.Envelope().Validate(); err != nil {
		return fmt.Errorf("defaults.document: %w", err)
	}
	return nil
}

// CatalogDefaults returns the envelopes used for unspecified document bounds
func (c *Config) CatalogDefaults() catalogDomain.Defaults {
	return catalogDomain.Defaults{
		Image:    c.Defaults.Image.Envelope(),
		Document: c.Defaults.Document.Envelope(),
	}
}

// EnsureWorkspace creates the workspace directory and removes stale outputs from earlier runs
func (c *Config) EnsureWorkspace() error {
	if err := os.MkdirAll(c.Workspace.Dir, common.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	removed, err := common.CleanupOlderThan(c.Workspace.Dir, c.Workspace.MaxAge, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clean workspace: %w", err)
	}
	if removed > 0 && c.Logger != nil {
		c.Logger.Info("Removed stale outputs", "count", removed, "dir", c.Workspace.Dir)
	}
	return nil
}

// NewLogger builds the application logger from the logging settings
func NewLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
