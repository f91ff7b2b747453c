package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from a YAML file.
type Config struct {
	// DataDir holds the three registry files.
	DataDir string `yaml:"data_dir"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`

	Notify NotifyConfig `yaml:"notify"`
}

// NotifyConfig selects which observers the CLI attaches.
type NotifyConfig struct {
	// Console enables the stdout observer.
	Console bool `yaml:"console"`

	// Email, when set, enables the simulated email observer for that address.
	Email string `yaml:"email"`

	// Journal, when set, appends events as JSON lines to that file.
	Journal string `yaml:"journal"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir: "data",
		Notify:  NotifyConfig{Console: true},
	}
}

// LoadConfig reads a YAML config file. A missing file is not an error; it
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultConfig().DataDir
	}
	return cfg, nil
}
