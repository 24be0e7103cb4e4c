// Package config loads and holds the minifier configuration: an optional
// YAML file, SHMIXER_* environment variables, and defaults, with CLI
// flags overriding on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is probed in the working directory when no explicit
// config path is given; it is allowed to be absent.
const DefaultConfigFile = "shmixer.yaml"

// BundleConfig holds the bundle phase settings.
type BundleConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SearchPaths are probed in order after the input file's directory.
	SearchPaths []string `yaml:"search_paths" mapstructure:"search_paths"`
}

// ObfuscationConfig holds the discover/obfuscate phase settings.
type ObfuscationConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// VarPrefix prefixes generated variable names: {prefix}{index}.
	VarPrefix string `yaml:"var_prefix" mapstructure:"var_prefix"`
	// IgnoreVars is a comma-separated list of regex patterns (anchored to
	// whole names) for variables kept intact, or `*` to ignore all.
	IgnoreVars string `yaml:"ignore_vars" mapstructure:"ignore_vars"`
	// ExcludeVars are extra variable names merged into the ignore list.
	ExcludeVars []string `yaml:"exclude_vars" mapstructure:"exclude_vars"`
}

// Config holds all settings for one minifier run.
type Config struct {
	// Silent suppresses informational output.
	Silent      bool              `yaml:"silent" mapstructure:"silent"`
	Bundle      BundleConfig      `yaml:"bundle" mapstructure:"bundle"`
	Obfuscation ObfuscationConfig `yaml:"obfuscation" mapstructure:"obfuscation"`
}

// Default returns the configuration used when no file, environment, or
// flags override anything.
func Default() *Config {
	return &Config{
		Silent: false,
		Bundle: BundleConfig{
			Enabled:     false,
			SearchPaths: []string{},
		},
		Obfuscation: ObfuscationConfig{
			Enabled:     false,
			VarPrefix:   "a",
			IgnoreVars:  "usage,args",
			ExcludeVars: []string{},
		},
	}
}

// Load reads the configuration. An explicit configPath must exist; with
// an empty configPath the default shmixer.yaml is used if present.
// SHMIXER_* environment variables override file values (dots become
// underscores, e.g. SHMIXER_OBFUSCATION_VAR_PREFIX).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SHMIXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("silent", defaults.Silent)
	v.SetDefault("bundle.enabled", defaults.Bundle.Enabled)
	v.SetDefault("bundle.search_paths", defaults.Bundle.SearchPaths)
	v.SetDefault("obfuscation.enabled", defaults.Obfuscation.Enabled)
	v.SetDefault("obfuscation.var_prefix", defaults.Obfuscation.VarPrefix)
	v.SetDefault("obfuscation.ignore_vars", defaults.Obfuscation.IgnoreVars)
	v.SetDefault("obfuscation.exclude_vars", defaults.Obfuscation.ExcludeVars)
}

// Save writes the default configuration to a YAML file, creating parent
// directories as needed.
func Save(configPath string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for config file %s: %w", configPath, err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", configPath, err)
	}
	return nil
}
