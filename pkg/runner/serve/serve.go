// Package serve runs the optimizer boundary server.
package serve

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/config"
	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/server"
	"tableflip.dev/termwise/pkg/store"
)

type Serve struct {
	Config *config.Config
	Logger *zap.Logger
	// Reload rereads the configuration when Config.File changes. Only the
	// rate limit is applied without a restart.
	Reload func() (*config.Config, error)
	// NoCache disables the on-disk validation cache.
	NoCache bool

	OnListening func(addr string)
}

func (s *Serve) Do(ctx context.Context) error {
	cfg := s.Config
	if cfg == nil {
		return errors.New("serve requires configuration")
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	up := optimizer.NewUpstream(cfg.Upstream.URL, cfg.Upstream.AnonKey, cfg.Upstream.APIKey, cfg.Optimizer.Timeout)
	if !up.Configured() {
		logger.Warn("upstream is not configured; API calls will fail",
			zap.Bool("url", cfg.Upstream.URL != ""),
			zap.Bool("anon_key", cfg.Upstream.AnonKey != ""),
			zap.Bool("api_key", cfg.Upstream.APIKey != ""),
		)
	}

	var cache *store.ValidationCache
	if !s.NoCache {
		c, err := store.NewValidationCache(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		cache = c
	}

	limiter := server.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.File != "" && s.Reload != nil {
		if err := s.watch(ctx, cfg.File, limiter, logger); err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	srv := &server.Server{
		Upstream:       up,
		Cache:          cache,
		Limiter:        limiter,
		AllowOrigins:   cfg.Server.AllowOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         logger,
		OnListening:    s.OnListening,
	}
	return srv.Run(ctx, cfg.Server.Addr)
}

func (s *Serve) watch(ctx context.Context, path string, limiter *server.RateLimiter, logger *zap.Logger) error {
	events, err := store.WatchFile(ctx, path)
	if err != nil {
		return err
	}
	go func() {
		for evt := range events {
			if evt.Removed {
				logger.Warn("config file removed; keeping current settings", zap.String("path", evt.Path))
				continue
			}
			s.reload(limiter, logger)
		}
	}()
	return nil
}

func (s *Serve) reload(limiter *server.RateLimiter, logger *zap.Logger) {
	cfg, err := s.Reload()
	if err != nil {
		logger.Warn("config reload failed", zap.Error(err))
		return
	}
	if old := limiter.Limit(); old != cfg.Server.RateLimit {
		limiter.SetLimit(cfg.Server.RateLimit)
		logger.Info("rate limit updated", zap.Int("from", old), zap.Int("to", cfg.Server.RateLimit))
	}
}
