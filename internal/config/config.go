// Package config loads eolkeeper settings from defaults, a config file, a
// .env file and EOLKEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bnema/eolkeeper/internal/domain"
	"github.com/bnema/eolkeeper/pkg/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EOLKEEPER"

type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	Annotate AnnotateConfig `mapstructure:"annotate"`
	Oras     OrasConfig     `mapstructure:"oras"`
	Docker   DockerConfig   `mapstructure:"docker"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

type RegistryConfig struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type AnnotateConfig struct {
	// Concurrency bounds in-flight digests. 0 means one per CPU.
	Concurrency          int           `mapstructure:"concurrency"`
	Retries              int           `mapstructure:"retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	CommandTimeout       time.Duration `mapstructure:"command_timeout"`
	// RateLimit caps oras invocations per second. 0 disables the cap.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type OrasConfig struct {
	Path          string `mapstructure:"path"`
	ArtifactType  string `mapstructure:"artifact_type"`
	AnnotationKey string `mapstructure:"annotation_key"`
}

type DockerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Options locate the configuration sources. Empty fields use the defaults.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load reads the configuration. A missing config file or .env file is not an error.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load %s: %v", domain.ErrInvalidConfig, envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	configure(v, opts.ConfigFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", domain.ErrInvalidConfig, err)
		}
	} else {
		log.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config: %v", domain.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("registry.address", "")
	v.SetDefault("registry.username", "")
	v.SetDefault("registry.password", "")
	v.SetDefault("annotate.concurrency", 0)
	v.SetDefault("annotate.retries", 3)
	v.SetDefault("annotate.retry_initial_interval", "2s")
	v.SetDefault("annotate.retry_max_interval", "30s")
	v.SetDefault("annotate.command_timeout", "2m")
	v.SetDefault("annotate.rate_limit", 0)
	v.SetDefault("annotate.rate_burst", 1)
	v.SetDefault("oras.path", "oras")
	v.SetDefault("oras.artifact_type", domain.LifecycleArtifactType)
	v.SetDefault("oras.annotation_key", domain.LifecycleEOLDateKey)
	v.SetDefault("docker.enabled", false)
	v.SetDefault("docker.host", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryPath())
	v.SetDefault("log.level", "")
}

func configure(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		return
	}
	v.SetConfigName("eolkeeper")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "eolkeeper"))
	}
	v.AddConfigPath("/etc/eolkeeper")
}

// DefaultHistoryPath returns the journal location under the user cache directory.
func DefaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".eolkeeper", "history.db")
	}
	return filepath.Join(dir, "eolkeeper", "history.db")
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.Annotate.Concurrency < 0 {
		return fmt.Errorf("%w: annotate.concurrency must not be negative", domain.ErrInvalidConfig)
	}
	if c.Annotate.Retries < 0 {
		return fmt.Errorf("%w: annotate.retries must not be negative", domain.ErrInvalidConfig)
	}
	if c.Annotate.RetryInitialInterval < 0 || c.Annotate.RetryMaxInterval < 0 || c.Annotate.CommandTimeout < 0 {
		return fmt.Errorf("%w: annotate intervals and timeouts must not be negative", domain.ErrInvalidConfig)
	}
	if c.Annotate.RateLimit < 0 || c.Annotate.RateBurst < 0 {
		return fmt.Errorf("%w: annotate.rate_limit and annotate.rate_burst must not be negative", domain.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Oras.Path) == "" {
		return fmt.Errorf("%w: oras.path is required", domain.ErrInvalidConfig)
	}
	if addr := c.Registry.Address; strings.Contains(addr, "://") || strings.Contains(addr, "/") {
		return fmt.Errorf("%w: registry.address should be just the host (e.g. 'myacr.azurecr.io')", domain.ErrInvalidConfig)
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return fmt.Errorf("%w: history.path is required when history is enabled", domain.ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}
