package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/docvault/core/validator"
)

// Option configures a Config.
type Option func(*Config)

// WithViper sets a custom viper instance.
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator sets the validator. A nil validator disables validation.
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader replaces the default file loader.
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithFile sets the config file name and search paths of the default loader.
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		c.name = name
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithEnvPrefix sets the environment variable prefix of the default loader.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithOnChange registers a callback invoked after a successful reload.
func WithOnChange(fn func()) Option {
	return func(c *Config) {
		c.onChange = fn
	}
}
