// Package httpapi serves the docsmith editor over HTTP with gin: editing
// sessions, PDF and PNG downloads, the print preview handoff, invoice item
// suggestions and the QR code tool.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/studio"
)

const (
	shutdownTimeout = 10 * time.Second
	reapInterval    = time.Minute
	maxBodyBytes    = 2 << 20
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = logger.OrNop(l) }
}

// WithNode sets the snowflake node generating session and request IDs.
func WithNode(n *snowflake.Node) Option {
	return func(s *Server) { s.node = n }
}

// WithClock replaces time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is the HTTP surface over a Studio.
type Server struct {
	studio   *studio.Studio
	log      *zap.Logger
	node     *snowflake.Node
	now      func() time.Time
	sessions *registry
	engine   *gin.Engine
	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a Server over st.
func New(st *studio.Studio, opts ...Option) (*Server, error) {
	s := &Server{
		studio: st,
		log:    st.Logger(),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.node == nil {
		n, err := snowflake.NewNode(1)
		if err != nil {
			return nil, fmt.Errorf("httpapi: %w", err)
		}
		s.node = n
	}
	s.sessions = newRegistry(st.Config().Server.SessionTTL.Std())
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    s.log.Named("http"),
		Node:      s.node,
		SkipPaths: []string{"/healthz"},
	}))
	r.Use(limitBody(maxBodyBytes))

	r.GET("/healthz", s.health)
	r.GET("/preview/:kind", s.showPreview)

	api := r.Group("/api")
	api.GET("/templates", s.listTemplates)
	api.GET("/samples/:kind", s.sample)
	api.POST("/suggestions", s.suggestions)
	api.GET("/qrcode", s.qrcode)

	sessions := api.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("/:id", s.getSession)
	sessions.PATCH("/:id", s.updateSession)
	sessions.DELETE("/:id", s.deleteSession)
	sessions.PUT("/:id/view", s.setView)
	sessions.PUT("/:id/side", s.setSide)
	sessions.POST("/:id/export/:format", s.exportSession)
	sessions.POST("/:id/preview", s.stashPreview)
	return r
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Reap closes sessions idle for longer than the session TTL.
func (s *Server) Reap() int {
	n := s.sessions.expire(s.now())
	if n > 0 {
		s.log.Info("expired sessions", zap.Int("count", n), zap.Int("live", s.sessions.len()))
	}
	return n
}

func (s *Server) reap() {
	t := time.NewTicker(reapInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.Reap()
		}
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully and
// closes every session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()
	go s.reap()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		s.log.Error("shutdown failed", zap.Error(err))
	}
	s.Close()
	return <-errc
}

// Close closes every session.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.sessions.closeAll()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.len()})
}
