// Package server is the HTTP boundary between termwise clients and the
// catalogue edge functions. It checks requests, rate limits generation and
// relays upstream responses.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/store"
)

// DefaultCleanupSpec is how often stale rate-limit buckets and expired cache
// entries are purged.
const DefaultCleanupSpec = "@every 5m"

// Server wires the routes to their collaborators. Cache may be nil.
type Server struct {
	Upstream     *optimizer.Upstream
	Cache        *store.ValidationCache
	Limiter      *RateLimiter
	AllowOrigins []string
	// TrustedProxies may set X-Forwarded-For for the rate limiter. Empty
	// means clients are keyed by their remote address.
	TrustedProxies []string
	Logger         *zap.Logger

	// OnListening is called with the bound address once the listener is up.
	OnListening func(addr string)
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.TrustedProxies); err != nil {
		s.logger().Warn("ignoring trusted proxies", zap.Strings("proxies", s.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(s.logger()))
	r.Use(CORS(s.AllowOrigins))

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/validate-courses", s.validateCourses)

		generate := []gin.HandlerFunc{}
		if s.Limiter != nil {
			generate = append(generate, s.Limiter.Middleware())
		}
		generate = append(generate, s.generateSchedule)
		api.POST("/generate-schedule", generate...)
	}
	return r
}

// Run serves on addr until ctx is cancelled, with the cleanup job running
// alongside. Shutdown waits up to ten seconds for in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := s.logger()

	srv := &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if s.OnListening != nil {
		s.OnListening(ln.Addr().String())
	}

	c := cron.New()
	if _, err := c.AddFunc(DefaultCleanupSpec, func() { s.cleanup(ctx) }); err != nil {
		_ = ln.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		c.Start()
		<-gctx.Done()
		<-c.Stop().Done()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) cleanup(ctx context.Context) {
	logger := s.logger()
	if s.Limiter != nil {
		if n := s.Limiter.Cleanup(); n > 0 {
			logger.Debug("rate limit buckets dropped", zap.Int("count", n))
		}
	}
	if s.Cache != nil {
		n, err := s.Cache.Purge(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("cache purge failed", zap.Error(err))
		}
		if n > 0 {
			logger.Debug("expired cache entries removed", zap.Int("count", n))
		}
	}
}
