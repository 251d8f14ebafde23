package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Correlation CorrelationConfig `mapstructure:"correlation"`
	DLQ         DLQConfig         `mapstructure:"dlq"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type NATSConfig struct {
	URL        string `mapstructure:"url"`
	QueueGroup string `mapstructure:"queue_group"`
}

type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// CorrelationConfig holds the fallback context used when an event cannot be
// resolved by activity id. Events stay unprocessed if it is incomplete.
type CorrelationConfig struct {
	DefaultCampaignID      string `mapstructure:"default_campaign_id"`
	DefaultExperimentRunID string `mapstructure:"default_experiment_run_id"`
	DefaultTraceID         string `mapstructure:"default_trace_id"`
	ControllerID           string `mapstructure:"controller_id"`
}

type DLQConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8096)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.queue_group", "event-bridge")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.ttl", "24h")
	v.SetDefault("dlq.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/adam/bridge")
	}

	// Environment variables override
	v.SetEnvPrefix("BRIDGE")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
