package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lvillar/docsmith"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newImageServer(t *testing.T, data []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	})
	mux.HandleFunc("/company", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><meta property="og:image" content="/logo.png"></head><body></body></html>`))
	})
	mux.HandleFunc("/bare", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLoadRemoteIsCached(t *testing.T) {
	srv, hits := newImageServer(t, pngBytes(t, 4, 3))
	l := NewLoader()
	defer l.Close()
	ctx := context.Background()

	img, err := l.Get(ctx, srv.URL+"/logo.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds = %v", b)
	}
	if _, err := l.Get(ctx, srv.URL+"/logo.png"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hit %d times, want 1", hits.Load())
	}
}

func TestLoadFollowsPreviewImage(t *testing.T) {
	srv, _ := newImageServer(t, pngBytes(t, 2, 2))
	l := NewLoader()
	defer l.Close()

	img, err := l.Get(context.Background(), srv.URL+"/company")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Fatalf("unexpected image %v", img.Bounds())
	}

	if _, err := l.Get(context.Background(), srv.URL+"/bare"); !errors.Is(err, ErrNoPreviewImage) {
		t.Fatalf("expected ErrNoPreviewImage, got %v", err)
	}

	nofollow := NewLoader(WithFollowPages(false))
	defer nofollow.Close()
	if _, err := nofollow.Get(context.Background(), srv.URL+"/company"); err == nil {
		t.Fatal("HTML should not decode as an image")
	}
}

func TestLoadErrorsWrapResourceLoad(t *testing.T) {
	srv, _ := newImageServer(t, nil)
	l := NewLoader(WithHTTP(HTTPOptions{RetryWaitTime: time.Millisecond, RetryMaxWaitTime: time.Millisecond}))
	defer l.Close()

	for _, src := range []string{srv.URL + "/missing.png", "data:image/png;base64,!!!", filepath.Join(t.TempDir(), "none.png"), ""} {
		if _, err := l.Get(context.Background(), src); !errors.Is(err, docsmith.ErrResourceLoad) {
			t.Errorf("%q: expected ErrResourceLoad, got %v", src, err)
		}
	}
}

func TestLoadDataURIAndFiles(t *testing.T) {
	data := pngBytes(t, 5, 5)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithBaseDir(dir), WithCacheTTL(0))
	defer l.Close()
	ctx := context.Background()

	sources := []string{
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		"photo.png",
		"file://" + filepath.ToSlash(filepath.Join(dir, "photo.png")),
	}
	for _, src := range sources {
		img, err := l.Get(ctx, src)
		if err != nil {
			t.Fatalf("%.40s: %v", src, err)
		}
		if img.Bounds().Dx() != 5 {
			t.Fatalf("%.40s: bounds %v", src, img.Bounds())
		}
	}
}

func TestSweepDropsExpiredImages(t *testing.T) {
	l := NewLoader(WithCacheTTL(time.Millisecond))
	defer l.Close()
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, i, 1))
		if _, err := l.Get(ctx, src); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(20 * time.Millisecond)

	if n := l.Sweep(); n != 20 {
		t.Fatalf("swept %d entries, want 20", n)
	}
	if n := l.Sweep(); n != 0 {
		t.Fatalf("second sweep removed %d entries", n)
	}
	if n := NewLoader(WithCacheTTL(0)).Sweep(); n != 0 {
		t.Fatalf("uncached loader swept %d entries", n)
	}
}

func TestPreload(t *testing.T) {
	srv, _ := newImageServer(t, pngBytes(t, 1, 1))
	l := NewLoader()
	defer l.Close()
	ctx := context.Background()

	got, err := l.Preload(ctx, []string{srv.URL + "/logo.png", srv.URL + "/logo.png", ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[srv.URL+"/logo.png"] == nil {
		t.Fatalf("preloaded %v", got)
	}

	if _, err := l.Preload(ctx, []string{srv.URL + "/logo.png", srv.URL + "/missing.png"}); !errors.Is(err, docsmith.ErrResourceLoad) {
		t.Fatalf("expected ErrResourceLoad, got %v", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	p := &Pending{src: "slow", done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) || !errors.Is(err, docsmith.ErrResourceLoad) {
		t.Fatalf("unexpected error %v", err)
	}
}
