package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"cleepadm/internal/common/fsutil"
)

// Duration decodes from strings like "30s" in every supported format.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// CORS controls the opt-in CORS middleware of the HTTP API.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr                string   `json:"addr" yaml:"addr" toml:"addr"`
	BackendURL          string   `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
	PushURL             string   `json:"push_url" yaml:"push_url" toml:"push_url"`
	CommandTimeout      Duration `json:"command_timeout" yaml:"command_timeout" toml:"command_timeout"`
	ReloadTimeout       Duration `json:"reload_timeout" yaml:"reload_timeout" toml:"reload_timeout"`
	RequestTimeout      Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	LegacyRenderCommand bool     `json:"legacy_render_command" yaml:"legacy_render_command" toml:"legacy_render_command"`
	NotificationsBuffer int      `json:"notifications_buffer" yaml:"notifications_buffer" toml:"notifications_buffer"`
	MaxBodyBytes        int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LogLevel            string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	HTTPLogLevel        string   `json:"http_log_level" yaml:"http_log_level" toml:"http_log_level"`
	CORS                CORS     `json:"cors" yaml:"cors" toml:"cors"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml. A leading ~ in path is expanded.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values that cannot be defaulted away.
func (c Config) Validate() error {
	if c.NotificationsBuffer < 0 {
		return fmt.Errorf("notifications_buffer must be >= 0")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be >= 0")
	}
	for name, d := range map[string]Duration{
		"command_timeout": c.CommandTimeout,
		"reload_timeout":  c.ReloadTimeout,
		"request_timeout": c.RequestTimeout,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	if c.BackendURL != "" && !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("backend_url must be an http(s) URL: %q", c.BackendURL)
	}
	if c.PushURL != "" && !strings.HasPrefix(c.PushURL, "ws://") && !strings.HasPrefix(c.PushURL, "wss://") {
		return fmt.Errorf("push_url must be a ws(s) URL: %q", c.PushURL)
	}
	return nil
}

// DefaultPushURL derives the websocket endpoint from the backend URL.
func DefaultPushURL(backend string) string {
	switch {
	case strings.HasPrefix(backend, "https://"):
		return "wss://" + strings.TrimSuffix(strings.TrimPrefix(backend, "https://"), "/") + "/push"
	case strings.HasPrefix(backend, "http://"):
		return "ws://" + strings.TrimSuffix(strings.TrimPrefix(backend, "http://"), "/") + "/push"
	}
	return ""
}
