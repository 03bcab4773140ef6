// Package hostconfig implements the ambient bootstrap configuration a
// host process built around the matcher core needs: where the matcher's own configuration tree lives, how
// reloads are triggered, the log level, and optional trace-sink
// settings. This is scaffolding around the matcher's own on-disk JSON
// schema, not a replacement for it.
package hostconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete host-process bootstrap configuration: just
// enough to locate and watch the matcher's configuration directory,
// carry a log level, and optionally enable the trace sink.
type Config struct {
	Matcher MatcherConfig `yaml:"matcher"`
	Log     LogConfig     `yaml:"log"`
	Trace   TraceConfig   `yaml:"trace"`
}

// MatcherConfig locates the matcher's own configuration directory and
// describes how the host should watch it for changes.
type MatcherConfig struct {
	ConfigDir     string        `yaml:"config_dir"`
	ReloadOn      string        `yaml:"reload_on"` // "fsnotify", "sighup", or "off"; no SIGHUP handler is installed, so "sighup" runs the fsnotify watcher
	StabilityWait time.Duration `yaml:"stability_wait"`
}

// LogConfig holds the host process's log level. Load defaults and
// validates it; the daemon does not apply it to any logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// TraceConfig enables the optional compressed JSONL processed-event
// trace sink (internal/trace).
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads and parses a host bootstrap configuration file, expanding
// environment variables first so values like "${MATCHERD_CONFIG_DIR}"
// resolve before YAML parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hostconfig: failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("hostconfig: failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hostconfig: invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Matcher.ConfigDir == "" {
		c.Matcher.ConfigDir = "/etc/matcherd/rules.d"
	}
	if c.Matcher.ReloadOn == "" {
		c.Matcher.ReloadOn = "fsnotify"
	}
	if c.Matcher.StabilityWait == 0 {
		c.Matcher.StabilityWait = 2 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Trace.Enabled && c.Trace.Path == "" {
		c.Trace.Path = "/var/log/matcherd/trace.jsonl.zst"
	}
}

// Validate checks the configuration for errors: paths must be absolute
// and enum-valued fields must be one of their known values.
func (c *Config) Validate() error {
	if !filepath.IsAbs(c.Matcher.ConfigDir) {
		return fmt.Errorf("matcher.config_dir must be an absolute path")
	}
	switch c.Matcher.ReloadOn {
	case "fsnotify", "sighup", "off":
	default:
		return fmt.Errorf("matcher.reload_on must be 'fsnotify', 'sighup', or 'off'")
	}
	if c.Matcher.StabilityWait < 0 {
		return fmt.Errorf("matcher.stability_wait cannot be negative")
	}
	if c.Matcher.StabilityWait > 60*time.Second {
		return fmt.Errorf("matcher.stability_wait too large (max 60s)")
	}
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Trace.Enabled && !filepath.IsAbs(c.Trace.Path) {
		return fmt.Errorf("trace.path must be an absolute path when trace.enabled is true")
	}
	return nil
}

func isValidLogLevel(level string) bool {
	level = strings.ToLower(level)
	return level == "debug" || level == "info" || level == "warn" || level == "error"
}
