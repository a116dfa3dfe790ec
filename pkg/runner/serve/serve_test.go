package serve

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/config"
	"tableflip.dev/termwise/pkg/server"
)

func TestDoRequiresConfig(t *testing.T) {
	if err := (&Serve{}).Do(context.Background()); err == nil {
		t.Fatalf("expected error without config")
	}
}

func TestReloadUpdatesRateLimit(t *testing.T) {
	limiter := server.NewRateLimiter(30, time.Minute)

	calls := 0
	s := &Serve{Reload: func() (*config.Config, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("bad yaml")
		}
		return &config.Config{Server: config.ServerConfig{RateLimit: 5}}, nil
	}}

	s.reload(limiter, zap.NewNop())
	if got := limiter.Limit(); got != 5 {
		t.Fatalf("limit = %d, want 5", got)
	}
	s.reload(limiter, zap.NewNop())
	if got := limiter.Limit(); got != 5 {
		t.Fatalf("failed reload changed limit to %d", got)
	}
}

func TestDoServesUntilCancelled(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Addr: "127.0.0.1:0", RateLimit: 1, RateWindow: time.Minute},
	}
	ctx, cancel := context.WithCancel(context.Background())
	listening := make(chan string, 1)
	s := &Serve{
		Config:      cfg,
		NoCache:     true,
		OnListening: func(addr string) { listening <- addr },
	}

	done := make(chan error, 1)
	go func() { done <- s.Do(ctx) }()

	select {
	case <-listening:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not start")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("server did not stop")
	}
}
