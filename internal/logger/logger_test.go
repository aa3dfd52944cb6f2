package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	l, err := New("warn", "json")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if _, err := New("loud", "json"); err == nil {
		t.Fatal("expected invalid level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatal("expected unknown format error")
	}
	if _, err := New("", ""); err != nil {
		t.Fatalf("defaults: %v", err)
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core).With(zap.String("session", "s1"))
	FromContext(WithContext(context.Background(), l)).Info("hello")

	entries := logs.All()
	if len(entries) != 1 || entries[0].ContextMap()["session"] != "s1" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if FromContext(context.Background()) != zap.L() {
		t.Fatal("missing logger should fall back to the global one")
	}
}

func TestGinMiddlewareSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{Logger: zap.New(core), SkipPaths: []string{"/healthz"}}))
	r.GET("/ping", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusNoContent)
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected X-Request-Id header to be set")
	}
	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ContextMap()["request_id"] != id {
			t.Fatalf("entry %q missing request id", e.Message)
		}
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "given")
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "given" {
		t.Fatal("incoming request id should be kept")
	}
	if len(logs.All()) != 2 {
		t.Fatal("skipped path was logged")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
