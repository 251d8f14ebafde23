package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Controller ControllerConfig `mapstructure:"controller"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type ControllerConfig struct {
	ID            string        `mapstructure:"id"`
	Name          string        `mapstructure:"name"`
	ActionDelay   time.Duration `mapstructure:"action_delay"`
	ProgressDelay time.Duration `mapstructure:"progress_delay"`
	CompleteDelay time.Duration `mapstructure:"complete_delay"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("controller.id", "sim-controller-1")
	v.SetDefault("controller.name", "INTERSECT Instrument Controller Simulator")
	v.SetDefault("controller.action_delay", "200ms")
	v.SetDefault("controller.progress_delay", "200ms")
	v.SetDefault("controller.complete_delay", "500ms")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/adam/controller")
	}

	// Environment variables override
	v.SetEnvPrefix("CONTROLLER")
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
