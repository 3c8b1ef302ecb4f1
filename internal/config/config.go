// Package config loads lazycopy settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kpumuk/lazycopy/internal/clipboard"
	"github.com/kpumuk/lazycopy/internal/history"
)

// EnvPrefix prefixes environment overrides, e.g. LAZYCOPY_RESET_DELAY.
const EnvPrefix = "LAZYCOPY"

// Config holds runtime settings.
type Config struct {
	ResetDelay   time.Duration `mapstructure:"reset_delay"`
	Redis        string        `mapstructure:"redis"`
	HistoryLimit int           `mapstructure:"history_limit"`
	ForceOSC52   bool          `mapstructure:"force_osc52"`
	LogFile      string        `mapstructure:"log_file"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"reset-delay":   "reset_delay",
	"redis":         "redis",
	"history-limit": "history_limit",
	"force-osc52":   "force_osc52",
	"log-file":      "log_file",
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ResetDelay:   clipboard.DefaultResetDelay,
		HistoryLimit: history.DefaultLimit,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lazycopy", "config.yaml")
}

// Load merges defaults, the config file, LAZYCOPY_* environment variables
// and changed flags, in increasing order of precedence. An explicit path must
// exist; the default path is optional.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("reset_delay", def.ResetDelay)
	v.SetDefault("redis", def.Redis)
	v.SetDefault("history_limit", def.HistoryLimit)
	v.SetDefault("force_osc52", def.ForceOSC52)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind %s flag: %w", name, err)
			}
		}
	}

	configFile := path
	if configFile == "" {
		configFile = DefaultPath()
		if _, err := os.Stat(configFile); configFile == "" || err != nil {
			configFile = ""
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.ResetDelay <= 0 {
		errs = append(errs, fmt.Errorf("reset_delay must be positive, got %s", c.ResetDelay))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit))
	}
	return errors.Join(errs...)
}
