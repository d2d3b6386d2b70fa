// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Serper SerperConfig `yaml:"serper" mapstructure:"serper"`
	Run    RunConfig    `yaml:"run" mapstructure:"run"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SerperConfig holds Serper.dev API settings.
type SerperConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RunConfig configures batch evidence runs.
type RunConfig struct {
	Concurrency    int    `yaml:"concurrency" mapstructure:"concurrency"`
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
	ExclusionsFile string `yaml:"exclusions_file" mapstructure:"exclusions_file"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVIDENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The secrets default to empty so AutomaticEnv can see
	// the keys; Unmarshal only maps keys viper already knows about.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("serper.key", "")
	v.SetDefault("run.exclusions_file", "")
	v.SetDefault("serper.rate_limit", 5)
	v.SetDefault("run.concurrency", 4)
	v.SetDefault("run.batch_size", 500)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the required secrets are present. Called before
// any work begins; a missing secret aborts the process.
func (c *Config) Validate() error {
	if c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required (EVIDENCE_STORE_DATABASE_URL)")
	}
	if c.Serper.Key == "" {
		return eris.New("config: serper.key is required (EVIDENCE_SERPER_KEY)")
	}
	if c.Run.Concurrency <= 0 {
		c.Run.Concurrency = 4
	}
	if c.Run.BatchSize <= 0 {
		c.Run.BatchSize = 500
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
