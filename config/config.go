package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/docvault/core/validator"
	"github.com/kochabx/docvault/log"
)

// Config loads and optionally hot-reloads configuration into a target struct.
type Config struct {
	mu        sync.RWMutex
	viper     *viper.Viper
	validate  validator.Validator
	target    any
	loader    Loader
	name      string
	paths     []string
	envPrefix string
	onChange  func()
}

// New creates a Config for target. Without WithLoader, a FileLoader reading
// config.yaml from the working directory is used.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Validate,
		target:   target,
		name:     "config.yaml",
		paths:    []string{"."},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader(c.name, c.paths, c.viper, c.validate, c.envPrefix)
	}
	return c
}

// Load reads the configuration into the target.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loader.Load(c.target)
}

// Watch reloads the target whenever the source changes. Reload failures are
// logged and leave the previous values partially overwritten only where the
// loader already wrote them.
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		if err := c.Load(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		log.Info().Msg("config reloaded")
		if c.onChange != nil {
			c.onChange()
		}
	})
}

// RLock guards reads of the target against a concurrent reload.
func (c *Config) RLock() func() {
	c.mu.RLock()
	return c.mu.RUnlock
}

// Viper returns the underlying viper instance.
func (c *Config) Viper() *viper.Viper {
	return c.viper
}
