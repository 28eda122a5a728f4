// Package config resolves the velux CLI's configuration (gateway host,
// password, timeout, logging) through a layered viper.Viper instance, the
// same precedence dittofs's pkg/config uses for its server configuration:
// CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is everything the velux CLI needs to reach and talk to a gateway.
type Config struct {
	Host           string        `mapstructure:"host"`
	Password       string        `mapstructure:"password"`
	Timeout        time.Duration `mapstructure:"timeout"`
	StrictChecksum bool          `mapstructure:"strict_checksum"`
	MetricsAddr    string        `mapstructure:"metrics-addr"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig mirrors the shape dittofs's own LoggingConfig uses, scaled
// down to what the CLI's `-D` verbosity escalation needs (see SPEC_FULL.md
// "Logging"): a slog level/format pair plus the two raw-frame flags that
// sit above plain Debug/Info.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	Verbose       bool   `mapstructure:"verbose"`
	VeryVerbose   bool   `mapstructure:"very_verbose"`
}

const envPrefix = "VELUX"

// defaultTimeout is the per-invocation timeout (dial plus the whole
// command) applied when neither a flag, an env var, nor a config file sets
// one.
const defaultTimeout = 10 * time.Second

// Loader owns the viper.Viper instance a Config is resolved from, kept
// around only so a long-running embedder (a future daemon mode wrapping
// this client) can ask it to watch its config file for edits.
type Loader struct {
	v *viper.Viper
}

// NewLoader builds a Loader with flags bound and the config file (if any)
// already read, ready for Resolve and, optionally, WatchAndReload.
func NewLoader(flags *pflag.FlagSet, configPath string) (*Loader, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}
	if err := readConfigFile(v); err != nil {
		return nil, err
	}
	return &Loader{v: v}, nil
}

// Resolve decodes the loader's current viper state into a Config and
// applies defaults for anything left unset.
func (l *Loader) Resolve() (*Config, error) {
	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := l.v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// WatchAndReload starts an fsnotify watch (via viper.WatchConfig) on the
// resolved config file and invokes onChange with the freshly re-resolved
// Config every time it's edited on disk. It is a no-op if no config file
// was found (viper has nothing to watch). Not exercised by the one-shot
// velux CLI itself; it exists for a supervisor embedding this package
// across multiple invocations (SPEC_FULL.md's DOMAIN STACK).
func (l *Loader) WatchAndReload(onChange func(*Config, error)) {
	path := l.v.ConfigFileUsed()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := l.Resolve()
		onChange(cfg, err)
	})
	l.v.WatchConfig()
}

// Load resolves configuration from CLI flags, VELUX_* environment
// variables, an optional ~/.config/velux/config.yaml, and defaults, in that
// precedence order.
func Load(flags *pflag.FlagSet, configPath string) (*Config, error) {
	l, err := NewLoader(flags, configPath)
	if err != nil {
		return nil, err
	}
	return l.Resolve()
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(ConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read config file: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// ConfigDir returns the directory velux's optional config file lives in:
// $XDG_CONFIG_HOME/velux, or ~/.config/velux, or "." as a last resort.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "velux")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "velux")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
