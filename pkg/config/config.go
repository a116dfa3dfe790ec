// Package config loads termwise settings from .termwise.yaml, TERMWISE_*
// environment variables and a few legacy variable names used by the
// optimizer deployment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/export"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/timeutil"
)

// Config is the resolved configuration.
type Config struct {
	Optimizer OptimizerConfig
	Upstream  UpstreamConfig
	Server    ServerConfig
	Calendar  CalendarConfig
	Terms     map[course.Term]TermConfig
	Cache     CacheConfig
	Log       LogConfig
	// File is the config file that was read, empty when none was found.
	File string
}

// OptimizerConfig points the client at the schedule service boundary.
type OptimizerConfig struct {
	URL     string
	Timeout time.Duration
}

// UpstreamConfig is where the boundary server forwards requests.
type UpstreamConfig struct {
	URL     string
	AnonKey string
	APIKey  string
}

// Configured reports whether every upstream setting is present.
func (u UpstreamConfig) Configured() bool {
	return u.URL != "" && u.AnonKey != "" && u.APIKey != ""
}

// ServerConfig drives `termwise serve`.
type ServerConfig struct {
	Addr           string
	AllowOrigins   []string
	TrustedProxies []string
	RateLimit      int
	RateWindow     time.Duration
}

// CalendarConfig shapes the weekly grid.
type CalendarConfig struct {
	Window    timeutil.Window
	WeekStart timeutil.WeekStart
	Weekend   bool
}

// TermConfig labels a term and anchors exported calendars.
type TermConfig struct {
	Label string
	Start time.Time
	Weeks int
}

// CacheConfig controls the validation cache.
type CacheConfig struct {
	Path string
	TTL  time.Duration
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string
	Format string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("optimizer.url", "http://127.0.0.1:8080")
	v.SetDefault("optimizer.timeout", "30s")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("server.rate_window", "1m")
	v.SetDefault("calendar.window", timeutil.DefaultWindow)
	v.SetDefault("calendar.week_start", "monday")
	v.SetDefault("calendar.weekend", true)
	v.SetDefault("terms.fall.label", "Fall 2025")
	v.SetDefault("terms.fall.start", "2025-09-03")
	v.SetDefault("terms.fall.weeks", 12)
	v.SetDefault("terms.winter.label", "Winter 2026")
	v.SetDefault("terms.winter.start", "2026-01-05")
	v.SetDefault("terms.winter.weeks", 12)
	v.SetDefault("cache.path", "~/.termwise/cache")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// New returns a viper instance wired for termwise: defaults, the
// .termwise.yaml search path and TERMWISE_ environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName(".termwise") // .yaml is implicit
	v.SetEnvPrefix("TERMWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The optimizer deployment names these without a prefix. TERMWISE_*
	// still wins through AutomaticEnv.
	_ = v.BindEnv("upstream.url", "SUPABASE_EDGE_FUNCTION_URL")
	_ = v.BindEnv("upstream.anon_key", "SUPABASE_ANON_KEY")
	_ = v.BindEnv("upstream.api_key", "API_KEY")

	if override := os.Getenv("TERMWISE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads configuration from the default locations.
func Load() (*Config, error) {
	v := New()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return FromViper(v)
}

// FromViper resolves and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	window, err := timeutil.ParseWindow(v.GetString("calendar.window"))
	if err != nil {
		return nil, fmt.Errorf("config: calendar.window: %w", err)
	}
	weekStart, err := timeutil.ParseWeekStart(v.GetString("calendar.week_start"))
	if err != nil {
		return nil, fmt.Errorf("config: calendar.week_start: %w", err)
	}
	cachePath, err := homedir.Expand(v.GetString("cache.path"))
	if err != nil {
		return nil, fmt.Errorf("config: cache.path: %w", err)
	}

	cfg := &Config{
		Optimizer: OptimizerConfig{
			URL:     strings.TrimRight(v.GetString("optimizer.url"), "/"),
			Timeout: v.GetDuration("optimizer.timeout"),
		},
		Upstream: UpstreamConfig{
			URL:     strings.TrimRight(v.GetString("upstream.url"), "/"),
			AnonKey: v.GetString("upstream.anon_key"),
			APIKey:  v.GetString("upstream.api_key"),
		},
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			AllowOrigins:   v.GetStringSlice("server.allow_origins"),
			TrustedProxies: v.GetStringSlice("server.trusted_proxies"),
			RateLimit:      v.GetInt("server.rate_limit"),
			RateWindow:     v.GetDuration("server.rate_window"),
		},
		Calendar: CalendarConfig{
			Window:    window,
			WeekStart: weekStart,
			Weekend:   v.GetBool("calendar.weekend"),
		},
		Terms: make(map[course.Term]TermConfig, 2),
		Cache: CacheConfig{
			Path: cachePath,
			TTL:  v.GetDuration("cache.ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		File: v.ConfigFileUsed(),
	}

	for _, t := range course.Terms() {
		key := "terms." + string(t)
		start, err := time.ParseInLocation("2006-01-02", v.GetString(key+".start"), time.Local)
		if err != nil {
			return nil, fmt.Errorf("config: %s.start: %w", key, err)
		}
		cfg.Terms[t] = TermConfig{
			Label: v.GetString(key + ".label"),
			Start: start,
			Weeks: v.GetInt(key + ".weeks"),
		}
	}

	if cfg.Server.RateLimit < 0 {
		return nil, fmt.Errorf("config: server.rate_limit must not be negative")
	}
	if cfg.Server.RateWindow <= 0 {
		cfg.Server.RateWindow = time.Minute
	}
	return cfg, nil
}

// Label returns the configured display label for a term.
func (c *Config) Label(t course.Term) string {
	if tc, ok := c.Terms[t]; ok && tc.Label != "" {
		return tc.Label
	}
	return t.Title()
}

// Labels maps every term to its display label.
func (c *Config) Labels() map[course.Term]string {
	out := make(map[course.Term]string, 2)
	for _, t := range course.Terms() {
		out[t] = c.Label(t)
	}
	return out
}

// ExportTerms anchors each term for calendar exports.
func (c *Config) ExportTerms() map[course.Term]export.Term {
	out := make(map[course.Term]export.Term, 2)
	for _, t := range course.Terms() {
		tc := c.Terms[t]
		out[t] = export.Term{Label: c.Label(t), Start: tc.Start, Weeks: tc.Weeks}
	}
	return out
}

// Engine builds the calendar layout engine for the configured grid.
func (c *Config) Engine() *layout.Engine {
	return layout.New(layout.Config{
		Window:    c.Calendar.Window,
		WeekStart: c.Calendar.WeekStart,
		Weekend:   c.Calendar.Weekend,
	})
}
