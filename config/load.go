package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/kpix/errors"
)

// ConfigFileName is the project/user configuration file kpix looks for
const ConfigFileName = "kpix.toml"

// Load builds the effective configuration from defaults, the first config
// file found (project, then user) and environment variables, then validates it.
func Load() (*Config, error) {
	v := NewViper()
	if path := FindConfigFile(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "failed to read config file %s", path), errors.ErrInvalidConfig)
		}
	}
	return LoadWithViper(v)
}

// NewViper returns a Viper instance with defaults and environment binding but
// no config file.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("KPIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)
	return v
}

// LoadWithViper loads and validates configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to unmarshal config"), errors.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path, without
// environment overrides.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to read config file %s", configPath), errors.ErrInvalidConfig)
	}
	return LoadWithViper(v)
}

// FindConfigFile walks up from the working directory looking for kpix.toml,
// then falls back to ~/.kpix/kpix.toml. Returns "" when none exists.
func FindConfigFile() string {
	if dir, err := os.Getwd(); err == nil {
		if path := findUpwards(dir); path != "" {
			return path
		}
	}
	if path := UserConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func findUpwards(dir string) string {
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// UserConfigPath returns ~/.kpix/kpix.toml, or "" if the home directory is unknown
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kpix", ConfigFileName)
}
