package logger

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-Id"

// MiddlewareConfig configures GinMiddleware.
type MiddlewareConfig struct {
	Logger *zap.Logger
	// Node generates request IDs. A node with ID 0 is created when nil.
	Node *snowflake.Node
	// SkipPaths are not logged.
	SkipPaths []string
}

// GinMiddleware assigns a request ID, stores a request-scoped logger in the
// request context and logs each completed request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	base := cfg.Logger
	if base == nil {
		base = zap.L()
	}
	node := cfg.Node
	if node == nil {
		// NewNode only fails for IDs outside the node bit range.
		node, _ = snowflake.NewNode(0)
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = node.Generate().String()
		}
		c.Header(RequestIDHeader, id)

		l := base.With(zap.String("request_id", id))
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), l))
		c.Next()

		if skip[c.FullPath()] {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			l.Error("request", fields...)
		case c.Writer.Status() >= 400:
			l.Warn("request", fields...)
		default:
			l.Info("request", fields...)
		}
	}
}
