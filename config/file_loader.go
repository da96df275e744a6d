package config

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/core/validator"
	"github.com/kochabx/docvault/errors"
)

// FileLoader loads configuration from a file, with environment variables
// overriding file values (`keys.dir` is overridden by `<PREFIX>_KEYS_DIR`).
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
}

// NewFileLoader creates a loader for the file name searched in paths. The
// config type is taken from the file extension.
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator, envPrefix string) *FileLoader {
	ext := filepath.Ext(name)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(strings.TrimSuffix(name, ext))
	v.SetConfigType(strings.TrimPrefix(ext, "."))

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{viper: v, validate: validate}
}

// Load implements Loader. Struct tag defaults are applied before the file is
// read so absent keys keep their defaults.
func (l *FileLoader) Load(target any) error {
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Internal("failed to apply defaults: %v", err).WithCause(err)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		return errors.NotFound("config file not found: %v", err).WithCause(err)
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return errors.Internal("config parse error: %v", err).WithCause(err)
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.BadRequest("config validation failed: %v", err).WithCause(err)
		}
	}
	return nil
}

// Watch implements Loader.
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}
