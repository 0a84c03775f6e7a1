package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/gt-mail-gateway/pkg/config"
	"github.com/telekom/gt-mail-gateway/pkg/metrics"
	"github.com/telekom/gt-mail-gateway/pkg/ratelimit"
	"github.com/telekom/gt-mail-gateway/pkg/version"
)

const (
	// maxRequestBodyBytes caps request bodies; mail bodies are plain text.
	maxRequestBodyBytes = 1 << 20
	shutdownTimeout     = 15 * time.Second
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

// ReadinessCheck reports why the gateway cannot serve traffic, or nil when it can.
type ReadinessCheck func() error

type Server struct {
	gin         *gin.Engine
	config      config.Config
	log         *zap.SugaredLogger
	rateLimiter *ratelimit.IPRateLimiter
	readiness   []ReadinessCheck
}

func NewServer(log *zap.Logger, cfg config.Config, debug bool, readiness ...ReadinessCheck) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	cfg.Defaults()

	engine := gin.New()
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			log.Sugar().Warnw("Invalid trusted proxies; trusting none", "trustedProxies", cfg.Server.TrustedProxies, "error", err)
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	rlConfig := ratelimit.DefaultAPIConfig()
	rlConfig.Rate = cfg.RateLimit.Rate
	rlConfig.Burst = cfg.RateLimit.Burst
	limiter := ratelimit.New(rlConfig)

	engine.Use(
		RequestID(log.Sugar()),
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		limiter.MiddlewareWithExclusions([]string{"/healthz", "/readyz", "/metrics"}),
		maxBodySize(maxRequestBodyBytes),
	)

	if debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins:  []string{"http://localhost:5173", "http://127.0.0.1:8080"},
				AllowMethods:  []string{"GET", "POST", "OPTIONS"},
				AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeaderName},
				ExposeHeaders: []string{RequestIDHeaderName},
				MaxAge:        12 * time.Hour,
			}),
		)
	}

	s := &Server{
		gin:         engine,
		config:      cfg,
		log:         log.Sugar(),
		rateLimiter: limiter,
		readiness:   readiness,
	}

	engine.NoRoute(s.noRoute)
	engine.GET("/healthz", s.healthz)
	engine.GET("/readyz", s.readyz)
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))
	engine.GET("/api/version", s.getVersion)

	return s
}

func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Listen serves until ctx is cancelled, then shuts down gracefully.
// TLS is used when both certificate and key files are configured.
func (s *Server) Listen(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.ListenAddress,
		Handler:           s.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.config.Server.TLSCertFile != "" && s.config.Server.TLSKeyFile != "" {
			s.log.Infow("Serving HTTPS", "address", srv.Addr)
			err = srv.ListenAndServeTLS(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
		} else {
			s.log.Infow("Serving HTTP", "address", srv.Addr)
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Close releases background resources (rate limiter cleanup).
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.rateLimiter = nil
	}
}

func (s *Server) noRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || path == "/api" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "path": path})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readyz(c *gin.Context) {
	for _, check := range s.readiness {
		if err := check(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "reason": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}

func maxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
