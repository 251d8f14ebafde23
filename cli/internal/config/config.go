package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CurrentProfile string              `yaml:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles"`
	path           string
}

type Profile struct {
	ControllerURL string `yaml:"controller_url"`
	BridgeURL     string `yaml:"bridge_url"`
	NATSURL       string `yaml:"nats_url"`
}

func Default() *Config {
	return &Config{
		CurrentProfile: "default",
		Profiles: map[string]*Profile{
			"default": {
				ControllerURL: "http://localhost:8095",
				BridgeURL:     "http://localhost:8096",
				NATSURL:       "nats://localhost:4222",
			},
		},
	}
}

func Load(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfgFile = filepath.Join(home, ".ibctl", "config.yaml")
	}

	cfg := Default()
	cfg.path = cfgFile

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	if c.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(home, ".ibctl", "config.yaml")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// Active returns the current profile, falling back to defaults when the
// profile is missing.
func (c *Config) Active() *Profile {
	if p, ok := c.Profiles[c.CurrentProfile]; ok && p != nil {
		return p
	}
	return Default().Profiles["default"]
}
