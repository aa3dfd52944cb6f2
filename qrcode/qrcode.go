// Package qrcode generates QR codes and other symbols as PNG images or as
// printable PDF labels.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	fpdfbarcode "github.com/go-pdf/fpdf/contrib/barcode"
	pdf417 "github.com/ruudk/golang-pdf417"

	"github.com/lvillar/docsmith"
)

// ErrEmptyData is returned when there is nothing to encode. Its message is
// shown to users as is.
var ErrEmptyData = errors.New("Please enter some data to generate a QR code.")

// Size limits in pixels.
const (
	DefaultSize = 250
	MinSize     = 100
	MaxSize     = 1000
)

// FileName is the name of generated PNG files.
const FileName = "qrcode.png"

// LabelFileName is the name of generated PDF labels.
const LabelFileName = "qrcode.pdf"

// Symbology is the kind of symbol to encode.
type Symbology string

const (
	QR      Symbology = "qr"
	Code128 Symbology = "code128"
	PDF417  Symbology = "pdf417"
)

// ParseSymbology converts a name into a Symbology. Empty means QR.
func ParseSymbology(s string) (Symbology, error) {
	switch Symbology(strings.ToLower(strings.TrimSpace(s))) {
	case "", QR:
		return QR, nil
	case Code128:
		return Code128, nil
	case PDF417:
		return PDF417, nil
	}
	return "", fmt.Errorf("%w: unknown symbology %q", docsmith.ErrInvalidParam, s)
}

// Level is the QR error correction level.
type Level = qr.ErrorCorrectionLevel

// QR error correction levels.
const (
	LevelL = qr.L
	LevelM = qr.M
	LevelQ = qr.Q
	LevelH = qr.H
)

type options struct {
	symbology Symbology
	size      int
	level     Level
}

// Option configures Generate and Label.
type Option func(*options)

// WithSymbology selects the symbol kind.
func WithSymbology(s Symbology) Option {
	return func(o *options) { o.symbology = s }
}

// WithSize sets the side of the output in pixels. It is clamped to
// [MinSize, MaxSize]; zero keeps DefaultSize.
func WithSize(px int) Option {
	return func(o *options) { o.size = px }
}

// WithLevel sets the QR error correction level.
func WithLevel(l Level) Option {
	return func(o *options) { o.level = l }
}

func build(opts []Option) options {
	o := options{symbology: QR, size: DefaultSize, level: LevelM}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.size == 0:
		o.size = DefaultSize
	case o.size < MinSize:
		o.size = MinSize
	case o.size > MaxSize:
		o.size = MaxSize
	}
	if o.symbology == "" {
		o.symbology = QR
	}
	return o
}

func encode(data string, o options) (barcode.Barcode, error) {
	switch o.symbology {
	case QR:
		return qr.Encode(data, o.level, qr.Auto)
	case Code128:
		return code128.Encode(data)
	case PDF417:
		return pdf417.Encode(data, 4, 2), nil
	}
	return nil, fmt.Errorf("%w: unknown symbology %q", docsmith.ErrInvalidParam, o.symbology)
}

// Generate encodes data as a PNG image. 2D symbols fill a size x size
// square; Code128 is size wide and half as tall, widened when the code needs
// more room.
func Generate(data string, opts ...Option) (*docsmith.Artifact, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyData
	}
	o := build(opts)
	code, err := encode(data, o)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encoding: %w", err)
	}
	img, err := scale(code, o.size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: scaling: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("qrcode: encoding png: %w", err)
	}
	return &docsmith.Artifact{
		Name:     FileName,
		Format:   docsmith.FormatPNG,
		MIMEType: docsmith.FormatPNG.MIMEType(),
		Data:     buf.Bytes(),
	}, nil
}

func scale(code barcode.Barcode, size int) (image.Image, error) {
	w, h := size, size
	if code.Metadata().Dimensions == 1 {
		h = size / 2
	}
	b := code.Bounds()
	if b.Dx() > w {
		w = b.Dx()
	}
	if b.Dy() > h {
		h = b.Dy()
	}
	return barcode.Scale(code, w, h)
}

// Label places the symbol on a single-page PDF sized to it, with a quiet zone
// of one tenth of the side on every edge.
func Label(data string, opts ...Option) (*docsmith.Artifact, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyData
	}
	o := build(opts)

	side := float64(o.size) * 0.75
	margin := side / 10
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: side, Ht: side},
	})
	pdf.SetCreator("docsmith", true)
	pdf.SetTitle(data, true)
	pdf.SetCatalogSort(true)

	var key string
	switch o.symbology {
	case QR:
		key = fpdfbarcode.RegisterQR(pdf, data, o.level, qr.Auto)
	case Code128:
		key = fpdfbarcode.RegisterCode128(pdf, data)
	case PDF417:
		key = fpdfbarcode.RegisterPdf417(pdf, data, 4, 2)
	default:
		return nil, fmt.Errorf("%w: unknown symbology %q", docsmith.ErrInvalidParam, o.symbology)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("qrcode: encoding: %w", err)
	}

	uw, uh := fpdfbarcode.GetUnscaledBarcodeDimensions(pdf, key)
	w := side - 2*margin
	h := w
	if uw > 0 && o.symbology != QR {
		h = w * uh / uw
		if o.symbology == Code128 {
			h = w / 2
		}
	}
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: side, Ht: h + 2*margin})
	fpdfbarcode.Barcode(pdf, key, margin, margin, w, h, false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("qrcode: writing pdf: %w", err)
	}
	return &docsmith.Artifact{
		Name:     LabelFileName,
		Format:   docsmith.FormatPDF,
		MIMEType: docsmith.FormatPDF.MIMEType(),
		Data:     buf.Bytes(),
		Pages:    []docsmith.PageGeometry{{Surface: string(o.symbology), Width: side, Height: h + 2*margin, ImageHeight: h}},
	}, nil
}
