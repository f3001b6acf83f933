// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for taskdeck.
type Config struct {
	APIURL         string `mapstructure:"api_url" yaml:"api_url"`
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file"`
	RequestTimeout string `mapstructure:"request_timeout" yaml:"request_timeout"`
	ToastDuration  string `mapstructure:"toast_duration" yaml:"toast_duration"`
	Journal        bool   `mapstructure:"journal" yaml:"journal"`

	// Development server settings.
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	ServerDB   string `mapstructure:"server_db" yaml:"server_db"`
	RedisURL   string `mapstructure:"redis_url" yaml:"redis_url"`
}

var defaults = map[string]any{
	"api_url":         "http://localhost:5000",
	"data_dir":        ".taskdeck",
	"log_level":       "info",
	"log_file":        "",
	"request_timeout": "15s",
	"toast_duration":  "3s",
	"journal":         true,
	"server_addr":     "127.0.0.1:5000",
	"server_db":       "",
	"redis_url":       "",
}

// Default returns a Config populated with default values only.
func Default() *Config {
	return &Config{
		APIURL:         defaults["api_url"].(string),
		DataDir:        defaults["data_dir"].(string),
		LogLevel:       defaults["log_level"].(string),
		RequestTimeout: defaults["request_timeout"].(string),
		ToastDuration:  defaults["toast_duration"].(string),
		Journal:        true,
		ServerAddr:     defaults["server_addr"].(string),
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("taskdeck")

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("TASKDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so Unmarshal sees env-only keys
	for key := range defaults {
		if err := v.BindEnv(key, "TASKDECK_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that can't be expressed by viper defaults.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.ToastTTL(); err != nil {
		return err
	}
	return nil
}

// Timeout returns the parsed request timeout.
func (c *Config) Timeout() (time.Duration, error) {
	return parseDuration("request_timeout", c.RequestTimeout, 15*time.Second)
}

// ToastTTL returns how long notifications stay on screen.
func (c *Config) ToastTTL() (time.Duration, error) {
	return parseDuration("toast_duration", c.ToastDuration, 3*time.Second)
}

func parseDuration(key, s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/taskdeck/taskdeck.yml or $XDG_CONFIG_HOME/taskdeck/taskdeck.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskdeck", "taskdeck.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taskdeck", "taskdeck.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "taskdeck.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
