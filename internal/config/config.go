// Package config handles loading the tool configuration from XDG-compliant
// paths and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the resolved tool configuration.
type Config struct {
	// Program is the external program captured commands belong to.
	Program string `yaml:"program"`
	// Store selects the store backend: "sqlite" or "memory".
	Store string `yaml:"store"`
	// StorePath is the sqlite database path.
	StorePath string `yaml:"store_path"`
	// AlwaysPrint echoes the reconstructed command line on every run, as if
	// --print were always given.
	AlwaysPrint bool `yaml:"always_print"`
}

// Loader resolves configuration for one CLI name.
type Loader struct {
	cliName   string
	envPrefix string
}

// NewLoader creates a configuration loader.
func NewLoader(cliName string) *Loader {
	return &Loader{
		cliName:   cliName,
		envPrefix: strings.ToUpper(strings.ReplaceAll(cliName, "-", "_")),
	}
}

// Load resolves the configuration. Priority: environment > user config file
// > built-in defaults. The user config file is optional.
func (l *Loader) Load() (*Config, error) {
	cfg := &Config{
		Program:   "docker",
		Store:     "sqlite",
		StorePath: filepath.Join(l.DataDir(), "commands.db"),
	}

	if err := l.applyUserConfig(cfg); err != nil {
		// The user config is optional; a broken one is worth a warning but
		// should not block the invocation.
		fmt.Fprintf(os.Stderr, "Warning: failed to load user config: %v\n", err)
	}

	l.applyEnvironmentOverrides(cfg)
	return cfg, nil
}

// applyUserConfig merges the optional YAML config file into cfg.
func (l *Loader) applyUserConfig(cfg *Config) error {
	path := l.userConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read user config: %w", err)
	}

	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to parse user config: %w", err)
	}

	if user.Program != "" {
		cfg.Program = user.Program
	}
	if user.Store != "" {
		cfg.Store = user.Store
	}
	if user.StorePath != "" {
		cfg.StorePath = user.StorePath
	}
	if user.AlwaysPrint {
		cfg.AlwaysPrint = true
	}
	return nil
}

// applyEnvironmentOverrides applies REDOCK_* environment variables.
func (l *Loader) applyEnvironmentOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(l.envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if val := v.GetString("program"); val != "" {
		cfg.Program = val
	}
	if val := v.GetString("store"); val != "" {
		cfg.Store = val
	}
	if val := v.GetString("store_path"); val != "" {
		cfg.StorePath = val
	}
	if val := v.GetString("always_print"); val != "" {
		cfg.AlwaysPrint = v.GetBool("always_print")
	}
}

// userConfigPath returns the XDG-compliant config file path.
func (l *Loader) userConfigPath() string {
	if custom := os.Getenv(l.envPrefix + "_CONFIG"); custom != "" {
		return custom
	}
	return filepath.Join(xdg.ConfigHome, l.cliName, "config.yaml")
}

// DataDir returns the XDG-compliant data directory.
func (l *Loader) DataDir() string {
	return filepath.Join(xdg.DataHome, l.cliName)
}

// EnsureDataDir creates the data directory when missing.
func (l *Loader) EnsureDataDir() error {
	if err := os.MkdirAll(l.DataDir(), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
