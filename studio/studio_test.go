package studio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/config"
	"github.com/lvillar/docsmith/export"
	"github.com/lvillar/docsmith/handoff"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/workspace"
)

func newStudio(t *testing.T) *Studio {
	t.Helper()
	cfg := config.Default()
	cfg.Export.OutDir = t.TempDir()
	cfg.Export.PDFScale = 1
	s, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExportOnceWritesFile(t *testing.T) {
	s := newStudio(t)
	rec, err := record.Sample(docsmith.KindInvoice, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.ExportOnce(context.Background(), docsmith.KindInvoice, workspace.Draft{Record: rec}, docsmith.FormatPDF, nil)
	if err != nil {
		t.Fatalf("ExportOnce: %v", err)
	}
	want := filepath.Join(s.Config().Export.OutDir, "invoice-INV-001.pdf")
	if res.Location != want {
		t.Fatalf("location = %q, want %q", res.Location, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("written file is not a PDF")
	}
}

func TestExportOnceBusinessCardPNG(t *testing.T) {
	s := newStudio(t)
	var out bytes.Buffer
	sink := export.WriterSink{W: &out}
	res, err := s.ExportOnce(context.Background(), docsmith.KindBusinessCard, workspace.Draft{}, docsmith.FormatPNG, sink)
	if err != nil {
		t.Fatalf("ExportOnce: %v", err)
	}
	if res.Artifact.Name != "John_Doe_BusinessCard.png" {
		t.Fatalf("name = %q", res.Artifact.Name)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("\x89PNG")) {
		t.Fatal("sink did not receive a PNG")
	}
}

func TestExportOnceUnsupportedFormat(t *testing.T) {
	s := newStudio(t)
	_, err := s.ExportOnce(context.Background(), docsmith.KindContract, workspace.Draft{}, docsmith.FormatPNG, nil)
	if !errors.Is(err, docsmith.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExportOptions(t *testing.T) {
	s := newStudio(t)
	o := docsmith.NewExportOptions(docsmith.KindCV, s.ExportOptions(docsmith.KindCV, docsmith.FormatPDF)...)
	if o.Scale != 1 {
		t.Fatalf("cv scale = %v, want the configured 1", o.Scale)
	}
	o = docsmith.NewExportOptions(docsmith.KindBusinessCard, s.ExportOptions(docsmith.KindBusinessCard, docsmith.FormatPDF)...)
	if o.Scale != docsmith.DefaultCardScale {
		t.Fatalf("card scale = %v, want %v", o.Scale, docsmith.DefaultCardScale)
	}
}

func TestPreviewRoundTrip(t *testing.T) {
	s := newStudio(t)
	ctx := context.Background()
	rec, _ := record.Sample(docsmith.KindCoverLetter, time.Now())
	p, err := handoff.NewPayload(rec, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Handoff().Stash(ctx, "s1", p); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.Preview(ctx, &buf, "s1", docsmith.KindCoverLetter); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(buf.String(), "John Doe") {
		t.Fatal("preview does not show the sender")
	}

	buf.Reset()
	if err := s.Preview(ctx, &buf, "s1", docsmith.KindCoverLetter); err == nil {
		t.Fatal("second preview should fail")
	}
	if !strings.Contains(buf.String(), "Failed to load cover letter preview data.") {
		t.Fatalf("failure page missing message: %s", buf.String())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Handoff.Backend = "etcd"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Handoff.Backend = config.BackendRedis
	cfg.Handoff.RedisAddr = "127.0.0.1:1"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected an error for an unreachable redis")
	}
}

func TestSuggesterDefaultsToNop(t *testing.T) {
	s := newStudio(t)
	if got := s.Suggester().Suggest(context.Background(), "draft"); got != nil {
		t.Fatalf("got %q", got)
	}
}

func TestSweepDropsExpiredImages(t *testing.T) {
	cfg := config.Default()
	cfg.Images.CacheTTL = config.Duration(time.Millisecond)
	s, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	if _, err := s.loader.Get(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("swept %d images, want 1", n)
	}
}

func TestUnknownEngineRejected(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Engine = "wkhtmltopdf"
	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}
