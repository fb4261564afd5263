// Package config holds the settings that decide how filestore binds its
// backend. Values come from defaults, an optional YAML file and FILESTORE_*
// environment variables, in that order of precedence (lowest first).
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/filestore/errors"
)

// Environment variables read by FromEnv and Load.
const (
	EnvUsePlugin      = "FILESTORE_USE_PLUGIN"
	EnvDebugPlugin    = "FILESTORE_DEBUG_PLUGIN"
	EnvPluginFallback = "FILESTORE_PLUGIN_FALLBACK"
	EnvAutoInstall    = "FILESTORE_AUTO_INSTALL"
	EnvLocalRoot      = "FILESTORE_LOCAL_ROOT"
	EnvShareName      = "FILESTORE_SHARE_NAME"
	EnvKeyringService = "FILESTORE_KEYRING_SERVICE"
	EnvNonInteractive = "FILESTORE_NON_INTERACTIVE"
	EnvLogLevel       = "FILESTORE_LOG_LEVEL"
	EnvMetrics        = "FILESTORE_METRICS"
	EnvMinioSecure    = "FILESTORE_MINIO_SECURE"
)

// PluginPolicy selects between the local backend and a plugin.
type PluginPolicy string

const (
	// PolicyAuto binds a registered plugin when it initializes, else local.
	PolicyAuto PluginPolicy = "auto"
	// PolicyLocal always binds the local backend.
	PolicyLocal PluginPolicy = "local"
	// PolicyPlugin requires the plugin.
	PolicyPlugin PluginPolicy = "plugin"
)

// UnmarshalText accepts the policy names and the environment forms "", "0"
// and "1".
func (p *PluginPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "auto":
		*p = PolicyAuto
	case "0", "local", "false":
		*p = PolicyLocal
	case "1", "plugin", "true":
		*p = PolicyPlugin
	default:
		return errors.Newf(errors.CodeInvalidConfig, "invalid plugin policy %q (want auto, 0 or 1)", string(text))
	}
	return nil
}

// Config is the resolved filestore configuration.
type Config struct {
	UsePlugin      PluginPolicy `yaml:"use_plugin"`
	DebugPlugin    bool         `yaml:"debug_plugin"`
	PluginFallback bool         `yaml:"plugin_fallback"`
	AutoInstall    bool         `yaml:"auto_install"`
	LocalRoot      string       `yaml:"local_root"`
	Share          string       `yaml:"share"`
	KeyringService string       `yaml:"keyring_service"`
	NonInteractive bool         `yaml:"non_interactive"`
	LogLevel       slog.Level   `yaml:"log_level"`
	Metrics        bool         `yaml:"metrics"`
	MinioSecure    bool         `yaml:"minio_secure"`
}

// Default returns the configuration used when nothing is set: auto plugin
// discovery, the working directory as local root, warnings only.
func Default() Config {
	return Config{
		UsePlugin: PolicyAuto,
		LogLevel:  slog.LevelWarn,
	}
}

// FromEnv returns Default overridden by the environment.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load reads a YAML file, expands ${VAR} references, then applies environment
// overrides and validates the result.
func Load(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read config file",
			map[string]interface{}{"file": filename})
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to parse config file",
			map[string]interface{}{"file": filename})
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.WithContext(err, "file", filename)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.UsePlugin, validation.In(PolicyAuto, PolicyLocal, PolicyPlugin)),
		validation.Field(&c.LogLevel, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
		validation.Field(&c.LocalRoot, validation.By(noNUL)),
		validation.Field(&c.Share, validation.By(noSeparator)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
	}
	return nil
}

func noNUL(value interface{}) error {
	if s, _ := value.(string); strings.IndexByte(s, 0) >= 0 {
		return validation.NewError("validation_nul", "must not contain NUL")
	}
	return nil
}

func noSeparator(value interface{}) error {
	if s, _ := value.(string); strings.ContainsAny(s, `/\`) {
		return validation.NewError("validation_share", "must be a single share name without separators")
	}
	return nil
}

// applyEnv overrides fields from set, non-empty variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get(EnvUsePlugin); ok {
		if err := c.UsePlugin.UnmarshalText([]byte(v)); err != nil {
			return errors.WithContext(err, "variable", EnvUsePlugin)
		}
	}
	if v, ok := get(EnvLogLevel); ok {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid log level",
				map[string]interface{}{"variable": EnvLogLevel})
		}
	}
	if v, ok := get(EnvLocalRoot); ok {
		c.LocalRoot = v
	}
	if v, ok := get(EnvShareName); ok {
		c.Share = v
	}
	if v, ok := get(EnvKeyringService); ok {
		c.KeyringService = v
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{EnvDebugPlugin, &c.DebugPlugin},
		{EnvPluginFallback, &c.PluginFallback},
		{EnvAutoInstall, &c.AutoInstall},
		{EnvNonInteractive, &c.NonInteractive},
		{EnvMetrics, &c.Metrics},
		{EnvMinioSecure, &c.MinioSecure},
	}
	for _, f := range flags {
		v, ok := get(f.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid boolean",
				map[string]interface{}{"variable": f.key, "value": v})
		}
		*f.dst = b
	}
	return nil
}
