// Package config loads tmux-runner configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (TMUX_RUNNER_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. the path given with --config
//  2. .tmux-runner.yaml in current directory
//  3. ~/.config/tmux-runner/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoConfigFile is returned by findConfigFile when no file exists in any
// of the search locations.
var ErrNoConfigFile = errors.New("no config file found")

// Config holds all tmux-runner configuration.
type Config struct {
	// Terminal emulator used when the query carries no flag.
	Program string `yaml:"program"`

	// Feature toggles
	EnableFlags       bool `yaml:"enable_flags"`
	EnableTmuxinator  bool `yaml:"enable_tmuxinator"`
	AddNewByPartMatch bool `yaml:"add_new_by_part_match"` // Offer "new session" next to partial attach matches

	// Trigger is the keyword the launcher reacts to ("tmux work"). Empty
	// disables trigger gating.
	Trigger string `yaml:"trigger"`

	Shortcuts  Shortcuts     `yaml:"shortcuts"`
	Custom     CustomProgram `yaml:"custom"`
	Tmuxinator Subtool       `yaml:"tmuxinator"`

	// Collaborator timing
	SessionTimeout  string `yaml:"session_timeout"`   // Go duration string, e.g. "1s"
	ProjectCacheTTL string `yaml:"project_cache_ttl"` // Go duration string, "0" disables
	Refresh         string `yaml:"refresh"`           // picker live-state refresh, "0" disables

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	SessionTimeoutDuration  time.Duration `yaml:"-"`
	ProjectCacheTTLDuration time.Duration `yaml:"-"`
	RefreshDuration         time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// CustomProgram describes the user-defined "custom" terminal.
// %name and %path in the parameter templates are substituted at launch.
type CustomProgram struct {
	Program      string `yaml:"program"`
	AttachParams string `yaml:"attach_params"`
	NewParams    string `yaml:"new_params"`
}

// Subtool configures the session manager used for project templates.
type Subtool struct {
	Binary  string `yaml:"binary"`
	Trigger string `yaml:"trigger"`
	Label   string `yaml:"label"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Program:          "konsole",
		EnableFlags:      true,
		EnableTmuxinator: true,
		Trigger:          "tmux",
		Tmuxinator: Subtool{
			Binary:  "tmuxinator",
			Trigger: "inator",
			Label:   "Tmuxinator",
		},
		SessionTimeout:  "1s",
		ProjectCacheTTL: "5m",
		Refresh:         "2s",
		LogLevel:        "warn",
	}
}

// Load reads configuration from file and environment variables.
// An explicit path must exist; otherwise the default locations are searched
// and a missing file is not an error. Environment variables always override
// file values.
func Load(explicit string) (*Config, error) {
	cfg := Defaults()

	path, data, err := findConfigFile(explicit)
	switch {
	case err == nil:
		// Decoding onto the defaults keeps every key the file leaves out.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	case errors.Is(err, ErrNoConfigFile):
	default:
		return nil, err
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	cfg.SessionTimeoutDuration, err = parseDurationOrDisable(cfg.SessionTimeout, time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid session timeout %q: %w", cfg.SessionTimeout, err)
	}
	cfg.ProjectCacheTTLDuration, err = parseDurationOrDisable(cfg.ProjectCacheTTL, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid project cache TTL %q: %w", cfg.ProjectCacheTTL, err)
	}
	cfg.RefreshDuration, err = parseDurationOrDisable(cfg.Refresh, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh interval %q: %w", cfg.Refresh, err)
	}

	return cfg, nil
}

// DefaultPath returns ~/.config/tmux-runner/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tmux-runner", "config.yaml"), nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile(explicit string) (string, []byte, error) {
	if explicit != "" {
		data, err := os.ReadFile(explicit)
		if err != nil {
			return "", nil, fmt.Errorf("reading config file: %w", err)
		}
		return explicit, data, nil
	}

	// 1. Current directory
	if data, err := os.ReadFile(".tmux-runner.yaml"); err == nil {
		return ".tmux-runner.yaml", data, nil
	}

	// 2. ~/.config
	if path, err := DefaultPath(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, ErrNoConfigFile
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("TMUX_RUNNER_PROGRAM"); v != "" {
		cfg.Program = v
	}
	if v, ok := envBool("TMUX_RUNNER_ENABLE_FLAGS"); ok {
		cfg.EnableFlags = v
	}
	if v, ok := envBool("TMUX_RUNNER_ENABLE_TMUXINATOR"); ok {
		cfg.EnableTmuxinator = v
	}
	if v, ok := envBool("TMUX_RUNNER_ADD_NEW_BY_PART_MATCH"); ok {
		cfg.AddNewByPartMatch = v
	}
	if v, ok := os.LookupEnv("TMUX_RUNNER_TRIGGER"); ok {
		cfg.Trigger = v
	}
	if v := os.Getenv("TMUX_RUNNER_TMUXINATOR_BINARY"); v != "" {
		cfg.Tmuxinator.Binary = v
	}
	if v := os.Getenv("TMUX_RUNNER_SESSION_TIMEOUT"); v != "" {
		cfg.SessionTimeout = v
	}
	if v := os.Getenv("TMUX_RUNNER_PROJECT_CACHE_TTL"); v != "" {
		cfg.ProjectCacheTTL = v
	}
	if v := os.Getenv("TMUX_RUNNER_REFRESH"); v != "" {
		cfg.Refresh = v
	}
	if v := os.Getenv("TMUX_RUNNER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TMUX_RUNNER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}

// envBool reads a boolean environment variable. Unset or unparsable values
// report ok=false and leave the current setting alone.
func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
