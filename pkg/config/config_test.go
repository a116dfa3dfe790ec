package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"

	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/timeutil"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Optimizer.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Optimizer.Timeout)
	}
	if cfg.Server.RateLimit != 30 || cfg.Server.RateWindow != time.Minute {
		t.Fatalf("unexpected rate limit %+v", cfg.Server)
	}
	if len(cfg.Server.TrustedProxies) != 0 {
		t.Fatalf("no proxy should be trusted by default, got %v", cfg.Server.TrustedProxies)
	}
	if cfg.Calendar.Window.Span() != 13*60 || cfg.Calendar.WeekStart != timeutil.MondayFirst {
		t.Fatalf("unexpected calendar %+v", cfg.Calendar)
	}
	if cfg.Label(course.Fall) != "Fall 2025" || cfg.Label(course.Winter) != "Winter 2026" {
		t.Fatalf("unexpected labels")
	}
	if cfg.Upstream.Configured() {
		t.Fatalf("upstream should not be configured by default")
	}
}

func TestFromYAML(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	doc := `
optimizer:
  url: https://plan.example.com/
calendar:
  window: 9am-5pm
  week_start: sunday
  weekend: false
terms:
  winter:
    label: Winter 2027
    start: "2027-01-04"
server:
  rate_limit: 5
  trusted_proxies: [10.0.0.0/8]
`
	if err := v.ReadConfig(bytes.NewBufferString(doc)); err != nil {
		t.Fatalf("read: %v", err)
	}
	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Optimizer.URL != "https://plan.example.com" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.Optimizer.URL)
	}
	if cfg.Calendar.Window.Start != 9*60 || cfg.Calendar.Weekend || cfg.Calendar.WeekStart != timeutil.SundayFirst {
		t.Fatalf("unexpected calendar %+v", cfg.Calendar)
	}
	w := cfg.Terms[course.Winter]
	if w.Label != "Winter 2027" || w.Start.Year() != 2027 || w.Weeks != 12 {
		t.Fatalf("unexpected winter term %+v", w)
	}
	if cfg.Server.RateLimit != 5 {
		t.Fatalf("unexpected rate limit %d", cfg.Server.RateLimit)
	}
	if got := cfg.Server.TrustedProxies; len(got) != 1 || got[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected trusted proxies %v", got)
	}

	if cols := cfg.Engine().Columns(); len(cols) != 5 {
		t.Fatalf("weekend hidden, got columns %v", cols)
	}
	et := cfg.ExportTerms()[course.Winter]
	if et.Label != "Winter 2027" || !et.Start.Equal(w.Start) || et.Weeks != 12 {
		t.Fatalf("unexpected export term %+v", et)
	}
	if got := cfg.Labels()[course.Fall]; got != "Fall 2025" {
		t.Fatalf("unexpected fall label %q", got)
	}
}

func TestInvalidWindow(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("calendar.window", "whenever")
	if _, err := FromViper(v); err == nil {
		t.Fatalf("expected window error")
	}
}

func TestLegacyUpstreamEnv(t *testing.T) {
	t.Setenv("SUPABASE_EDGE_FUNCTION_URL", "https://edge.example.com/functions/v1/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("API_KEY", "secret")
	cfg, err := FromViper(New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Upstream.Configured() || cfg.Upstream.URL != "https://edge.example.com/functions/v1" {
		t.Fatalf("unexpected upstream %+v", cfg.Upstream)
	}
}
