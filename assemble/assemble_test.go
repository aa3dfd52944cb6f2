package assemble

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/lvillar/docsmith"
)

func capture(name string, w, h int, scale float64) *docsmith.Capture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 37, 99, 235, 255
	}
	return &docsmith.Capture{Surface: name, Image: img, Scale: scale}
}

func countPages(data []byte) int {
	return bytes.Count(data, []byte("<</Type /Page\n"))
}

func TestFitHeight(t *testing.T) {
	tests := []struct {
		w, h int
		p    float64
	}{
		{794, 1123, docsmith.A4Width},
		{1588, 2246, docsmith.A4Width},
		{1008, 576, 252},
		{1, 10000, 0.5},
		{3000, 7, 841.89},
	}
	for _, tt := range tests {
		got := FitHeight(tt.w, tt.h, tt.p)
		want := float64(tt.h) * tt.p / float64(tt.w)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("FitHeight(%d, %d, %v) = %v, want %v", tt.w, tt.h, tt.p, got, want)
		}
		if ratio := got / tt.p; math.Abs(ratio-float64(tt.h)/float64(tt.w)) > 1e-9 {
			t.Errorf("aspect ratio changed: %v", ratio)
		}
	}
}

func TestPaginateSinglePage(t *testing.T) {
	// A 794x1123 CSS px page captured at 2x.
	pages, err := Paginate([]*docsmith.Capture{capture("page", 1588, 2246, 2)}, docsmith.A4(), docsmith.Portrait)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	p := pages[0]
	if p.Width != docsmith.A4Width || p.Height != docsmith.A4Height {
		t.Fatalf("page = %vx%v", p.Width, p.Height)
	}
	if want := FitHeight(1588, 2246, docsmith.A4Width); math.Abs(p.ImageHeight-want) > 1e-9 {
		t.Fatalf("image height = %v, want %v", p.ImageHeight, want)
	}
}

func TestPaginateSlicesTallCaptures(t *testing.T) {
	c := capture("page", 794, 2500, 1)
	pages, err := paginate([]*docsmith.Capture{c}, docsmith.A4(), docsmith.Portrait)
	if err != nil {
		t.Fatal(err)
	}
	imgH := FitHeight(794, 2500, docsmith.A4Width)
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	var drawn float64
	for i, p := range pages {
		if p.imgH != imgH {
			t.Errorf("page %d draws the capture at height %v, want %v", i, p.imgH, imgH)
		}
		if want := -float64(i) * docsmith.A4Height; p.offset != want {
			t.Errorf("page %d offset = %v, want %v", i, p.offset, want)
		}
		drawn += p.ImageHeight
	}
	if math.Abs(drawn-imgH) > 1e-9 {
		t.Fatalf("slices cover %v, want %v", drawn, imgH)
	}
}

func TestPaginateSurfaceSized(t *testing.T) {
	caps := []*docsmith.Capture{capture("front", 1008, 576, 3), capture("back", 1008, 576, 3)}
	pages, err := Paginate(caps, docsmith.SurfaceSized(), docsmith.Landscape)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 || pages[0].Surface != "front" || pages[1].Surface != "back" {
		t.Fatalf("pages = %+v", pages)
	}
	for _, p := range pages {
		if math.Abs(p.Width-252) > 1e-9 || math.Abs(p.Height-144) > 1e-9 || math.Abs(p.ImageHeight-144) > 1e-9 {
			t.Fatalf("card page = %+v", p)
		}
	}
}

func TestPaginateErrors(t *testing.T) {
	if _, err := Paginate(nil, docsmith.A4(), docsmith.Portrait); !errors.Is(err, docsmith.ErrNoCaptures) {
		t.Fatalf("expected ErrNoCaptures, got %v", err)
	}
	empty := &docsmith.Capture{Surface: "page", Image: image.NewRGBA(image.Rect(0, 0, 0, 10))}
	if _, err := Paginate([]*docsmith.Capture{empty}, docsmith.A4(), docsmith.Portrait); !errors.Is(err, docsmith.ErrZeroSizeCapture) {
		t.Fatalf("expected ErrZeroSizeCapture, got %v", err)
	}
	if _, err := Paginate([]*docsmith.Capture{nil}, docsmith.A4(), docsmith.Portrait); !errors.Is(err, docsmith.ErrZeroSizeCapture) {
		t.Fatalf("nil capture: expected ErrZeroSizeCapture, got %v", err)
	}
	if _, err := New().PDF([]*docsmith.Capture{empty}); !errors.Is(err, docsmith.ErrZeroSizeCapture) {
		t.Fatalf("PDF: expected ErrZeroSizeCapture, got %v", err)
	}
}

func TestPDF(t *testing.T) {
	a := New(WithCompression(false))
	art, err := a.PDF([]*docsmith.Capture{capture("page", 794, 1123, 1)}, WithName("invoice-INV-001.pdf"), WithTitle("INV-001"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if art.Name != "invoice-INV-001.pdf" || art.Format != docsmith.FormatPDF || art.MIMEType != "application/pdf" {
		t.Fatalf("artifact = %s %s %s", art.Name, art.Format, art.MIMEType)
	}
	if n := countPages(art.Data); n != 1 || len(art.Pages) != 1 {
		t.Fatalf("pages = %d / %d, want 1", n, len(art.Pages))
	}
}

func TestPDFCardPages(t *testing.T) {
	a := New(WithCompression(false), WithPage(docsmith.SurfaceSized(), docsmith.Landscape))
	art, err := a.PDF([]*docsmith.Capture{capture("front", 1008, 576, 3), capture("back", 1008, 576, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if n := countPages(art.Data); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}
	if !bytes.Contains(art.Data, []byte("/MediaBox [0 0 252.00 144.00]")) {
		t.Fatal("card pages are not sized to the card")
	}
}

func TestPDFReproducible(t *testing.T) {
	a := New(WithCreationDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	caps := []*docsmith.Capture{capture("page", 200, 300, 1)}
	first, err := a.PDF(caps)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.PDF(caps)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatal("identical input produced different PDFs")
	}
}

func TestPDFAppendix(t *testing.T) {
	src := fpdf.New("P", "pt", "A4", "")
	src.AddPage()
	src.AddPageFormat("L", fpdf.SizeType{Wd: docsmith.A4Width, Ht: docsmith.A4Height})
	var terms bytes.Buffer
	if err := src.Output(&terms); err != nil {
		t.Fatal(err)
	}

	art, err := New(WithCompression(false)).PDF([]*docsmith.Capture{capture("page", 794, 1123, 1)}, WithAppendix(terms.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if n := countPages(art.Data); n != 3 {
		t.Fatalf("pages = %d, want 3", n)
	}
	if len(art.Pages) != 1 {
		t.Fatalf("captured page geometry = %d, want 1", len(art.Pages))
	}
}

func TestGoPDF(t *testing.T) {
	a := New(WithEngine(EngineGoPDF))
	art, err := a.PDF([]*docsmith.Capture{capture("page", 794, 2000, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if len(art.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(art.Pages))
	}
	if _, err := a.PDF([]*docsmith.Capture{capture("page", 10, 10, 1)}, WithAppendix([]byte("%PDF"))); !errors.Is(err, docsmith.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam for gopdf appendix, got %v", err)
	}
}

func TestParseEngine(t *testing.T) {
	for in, want := range map[string]Engine{"": EngineFPDF, "FPDF": EngineFPDF, " gopdf ": EngineGoPDF} {
		got, err := ParseEngine(in)
		if err != nil || got != want {
			t.Errorf("ParseEngine(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEngine("wkhtmltopdf"); !errors.Is(err, docsmith.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
	if _, err := New(WithEngine("nope")).PDF([]*docsmith.Capture{capture("page", 10, 10, 1)}); !errors.Is(err, docsmith.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}

func TestPNG(t *testing.T) {
	c := capture("front", 1008, 576, 3)
	art, err := New().PNG(c, WithName("Jane_Doe_BusinessCard.png"))
	if err != nil {
		t.Fatal(err)
	}
	if art.Format != docsmith.FormatPNG || art.MIMEType != "image/png" || len(art.Pages) != 0 {
		t.Fatalf("artifact = %+v", art)
	}
	img, err := png.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != c.Image.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), c.Image.Bounds())
	}
	if got := color.RGBAModel.Convert(img.At(5, 5)).(color.RGBA); got != (color.RGBA{37, 99, 235, 255}) {
		t.Fatalf("pixel = %v", got)
	}

	if _, err := New().PNG(nil); !errors.Is(err, docsmith.ErrNoCaptures) {
		t.Fatalf("expected ErrNoCaptures, got %v", err)
	}
	empty := &docsmith.Capture{Surface: "page", Image: image.NewRGBA(image.Rectangle{})}
	if _, err := New().PNG(empty); !errors.Is(err, docsmith.ErrZeroSizeCapture) {
		t.Fatalf("expected ErrZeroSizeCapture, got %v", err)
	}
}
