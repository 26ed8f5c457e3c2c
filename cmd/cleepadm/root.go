package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cleepadm/internal/common/fsutil"
	"cleepadm/internal/config"
)

const defaultConfigPath = "~/.config/cleepadm/config.yaml"

type serveFunc func(ctx context.Context, cfg config.Config, log zerolog.Logger) error

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// buildRootCmd constructs the command tree; serve is invoked with the merged configuration.
func buildRootCmd(serve serveFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "cleepadm",
		Short:         "Admin UI core for a Cleep device",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", envOr("CLEEPADM_CONFIG", ""), "Config file (.yaml, .yml, .json, .toml); defaults CLEEPADM_CONFIG or "+defaultConfigPath+" when present")
	root.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentFlags().String("log-format", "console", "Log format: console|json")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the admin daemon",
		Example: "  cleepadm serve --backend http://cleep.local --addr :8080",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, flagString(cmd, "log-format"))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	f := serveCmd.Flags()
	f.String("addr", envOr("CLEEPADM_ADDR", ":8080"), "HTTP listen address (defaults CLEEPADM_ADDR or :8080)")
	f.String("backend", envOr("CLEEPADM_BACKEND", "http://127.0.0.1:80"), "Backend base URL (defaults CLEEPADM_BACKEND)")
	f.String("push-url", "", "Push websocket URL (derived from --backend when empty)")
	f.Duration("command-timeout", 10*time.Second, "Default backend command timeout")
	f.Duration("reload-timeout", 30*time.Second, "Timeout of one configuration reload")
	f.Duration("request-timeout", 0, "Extra timeout applied to forwarded HTTP mutations (0 disables)")
	f.Bool("legacy-render-command", false, "Use set_event_not_rendered instead of set_event_renderable")
	f.Int("notifications-buffer", 100, "Number of notifications kept for GET /notifications")
	f.Int64("max-body-bytes", 1<<20, "Maximum JSON request body size")
	f.String("http-log-level", envOr("CLEEPADM_HTTP_LOG_LEVEL", "error"), "Request log level: off|error|info|debug")
	f.Bool("cors", false, "Enable CORS")
	f.String("cors-origins", "", "Comma-separated allowed origins")
	f.String("cors-methods", "GET,POST", "Comma-separated allowed methods")
	f.String("cors-headers", "Content-Type,X-Log-Level", "Comma-separated allowed headers")
	root.AddCommand(serveCmd)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cleepadm", version)
		},
	})
	return root
}

// loadConfig merges defaults, the config file and explicitly set flags, in
// increasing precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	path := flagString(cmd, "config")
	if path == "" {
		if p, err := fsutil.ExpandHome(defaultConfigPath); err == nil && fsutil.PathExists(p) {
			path = p
		}
	}
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		cfg = c
	}

	fs := cmd.Flags()
	str := func(name string, dst *string) {
		if fs.Changed(name) || *dst == "" {
			*dst, _ = fs.GetString(name)
		}
	}
	dur := func(name string, dst *config.Duration) {
		if fs.Changed(name) || dst.Duration == 0 {
			dst.Duration, _ = fs.GetDuration(name)
		}
	}
	str("addr", &cfg.Addr)
	str("backend", &cfg.BackendURL)
	str("push-url", &cfg.PushURL)
	str("http-log-level", &cfg.HTTPLogLevel)
	dur("command-timeout", &cfg.CommandTimeout)
	dur("reload-timeout", &cfg.ReloadTimeout)
	dur("request-timeout", &cfg.RequestTimeout)
	if fs.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = flagString(cmd, "log-level")
	}
	if fs.Changed("legacy-render-command") {
		cfg.LegacyRenderCommand, _ = fs.GetBool("legacy-render-command")
	}
	if fs.Changed("notifications-buffer") || cfg.NotificationsBuffer == 0 {
		cfg.NotificationsBuffer, _ = fs.GetInt("notifications-buffer")
	}
	if fs.Changed("max-body-bytes") || cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes, _ = fs.GetInt64("max-body-bytes")
	}
	if fs.Changed("cors") {
		cfg.CORS.Enabled, _ = fs.GetBool("cors")
	}
	csv := func(name string, dst *[]string) {
		if fs.Changed(name) || len(*dst) == 0 {
			v, _ := fs.GetString(name)
			*dst = splitCSV(v)
		}
	}
	csv("cors-origins", &cfg.CORS.Origins)
	csv("cors-methods", &cfg.CORS.Methods)
	csv("cors-headers", &cfg.CORS.Headers)

	if cfg.PushURL == "" {
		cfg.PushURL = config.DefaultPushURL(cfg.BackendURL)
	}
	return cfg, cfg.Validate()
}

// flagString looks a string flag up among local and inherited flags.
func flagString(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
