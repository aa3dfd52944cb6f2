// Package assemble turns surface captures into downloadable artifacts: paginated
// PDF documents or single PNG images.
//
// Each capture is scaled to the page width and keeps its aspect ratio. A capture
// taller than its page continues on further pages of the same format, so every
// page of a document shares one scale.
package assemble

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/internal/logger"
)

// overflowTolerance is the amount, in points, a capture may exceed its page
// before it spills onto another page.
const overflowTolerance = 1.0

// DefaultCreator is written into the Creator field of PDF metadata.
const DefaultCreator = "docsmith"

// Option is a functional option for configuring an Assembler or a single
// PDF call.
type Option func(*settings)

type settings struct {
	engine      Engine
	format      docsmith.PageFormat
	orientation docsmith.Orientation
	name        string
	title       string
	creator     string
	created     time.Time
	compress    bool
	appendix    []byte
	log         *zap.Logger
}

// WithEngine selects the PDF engine.
func WithEngine(e Engine) Option {
	return func(s *settings) { s.engine = e }
}

// WithPage sets the page format and orientation. A surface sized format
// gives every page the CSS size of its capture.
func WithPage(format docsmith.PageFormat, orientation docsmith.Orientation) Option {
	return func(s *settings) {
		s.format = format
		s.orientation = orientation
	}
}

// WithName sets the artifact file name.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithTitle sets the PDF document title.
func WithTitle(title string) Option {
	return func(s *settings) { s.title = title }
}

// WithCreator sets the PDF creator field.
func WithCreator(creator string) Option {
	return func(s *settings) { s.creator = creator }
}

// WithCreationDate fixes the PDF creation date. Combined with identical
// captures it makes the output byte for byte reproducible.
func WithCreationDate(t time.Time) Option {
	return func(s *settings) { s.created = t }
}

// WithCompression toggles stream compression. It is on by default.
func WithCompression(compress bool) Option {
	return func(s *settings) { s.compress = compress }
}

// WithAppendix appends every page of an existing PDF after the captured
// pages. Only the fpdf engine supports it.
func WithAppendix(pdf []byte) Option {
	return func(s *settings) { s.appendix = pdf }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.log = logger.OrNop(l) }
}

// Assembler builds artifacts from captures. It holds no per-call state and
// is safe for concurrent use.
type Assembler struct {
	defaults settings
}

// New returns an Assembler. Without options it produces compressed portrait
// A4 PDFs with the fpdf engine.
func New(opts ...Option) *Assembler {
	s := settings{
		engine:      EngineFPDF,
		format:      docsmith.A4(),
		orientation: docsmith.Portrait,
		creator:     DefaultCreator,
		compress:    true,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Assembler{defaults: s}
}

func (a *Assembler) settings(opts []Option) settings {
	s := a.defaults
	for _, opt := range opts {
		opt(&s)
	}
	if s.engine == "" {
		s.engine = EngineFPDF
	}
	return s
}

// FitHeight returns the height a w by h pixel capture takes when drawn p
// units wide.
func FitHeight(w, h int, p float64) float64 {
	return float64(h) * p / float64(w)
}

// page is one PDF page: the geometry plus where its capture is drawn.
type page struct {
	docsmith.PageGeometry
	capture int     // index into the captures slice
	offset  float64 // vertical position of the capture's top edge, <= 0
	imgH    float64 // full drawn height of the capture
}

// Paginate computes the page geometry for captures without producing a
// document.
func Paginate(captures []*docsmith.Capture, format docsmith.PageFormat, orientation docsmith.Orientation) ([]docsmith.PageGeometry, error) {
	pages, err := paginate(captures, format, orientation)
	if err != nil {
		return nil, err
	}
	out := make([]docsmith.PageGeometry, len(pages))
	for i, p := range pages {
		out[i] = p.PageGeometry
	}
	return out, nil
}

func paginate(captures []*docsmith.Capture, format docsmith.PageFormat, orientation docsmith.Orientation) ([]page, error) {
	if len(captures) == 0 {
		return nil, docsmith.ErrNoCaptures
	}
	var pages []page
	for i, c := range captures {
		w, h := c.Width(), c.Height()
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("%w: %s is %dx%d", docsmith.ErrZeroSizeCapture, surfaceOf(c), w, h)
		}
		pf := format
		if pf.IsSurfaceSized() {
			scale := c.Scale
			if scale <= 0 {
				scale = 1
			}
			pf = docsmith.Pixels(float64(w)/scale, float64(h)/scale)
		}
		pageW, pageH, err := pf.Size(orientation)
		if err != nil {
			return nil, err
		}
		imgH := FitHeight(w, h, pageW)
		n := 1
		if imgH > pageH+overflowTolerance {
			n = int(math.Ceil((imgH - overflowTolerance) / pageH))
		}
		for j := 0; j < n; j++ {
			top := float64(j) * pageH
			slice := imgH - top
			if j < n-1 {
				slice = pageH
			}
			pages = append(pages, page{
				PageGeometry: docsmith.PageGeometry{
					Surface:     c.Surface,
					Width:       pageW,
					Height:      pageH,
					ImageHeight: slice,
				},
				capture: i,
				offset:  -top,
				imgH:    imgH,
			})
		}
	}
	return pages, nil
}

func surfaceOf(c *docsmith.Capture) string {
	if c == nil {
		return "<nil>"
	}
	return c.Surface
}

// PDF assembles captures into a PDF, one or more pages per capture, in call
// order.
func (a *Assembler) PDF(captures []*docsmith.Capture, opts ...Option) (*docsmith.Artifact, error) {
	s := a.settings(opts)
	pages, err := paginate(captures, s.format, s.orientation)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	e, err := s.engine.writer()
	if err != nil {
		return nil, err
	}
	if len(s.appendix) > 0 && s.engine != EngineFPDF {
		return nil, fmt.Errorf("assemble: %w: appendix requires the %s engine", docsmith.ErrInvalidParam, EngineFPDF)
	}

	var buf bytes.Buffer
	if err := e(&buf, captures, pages, s); err != nil {
		return nil, fmt.Errorf("assemble: %s: %w", s.engine, err)
	}
	geom := make([]docsmith.PageGeometry, len(pages))
	for i, p := range pages {
		geom[i] = p.PageGeometry
	}
	s.log.Debug("pdf assembled",
		zap.String("engine", string(s.engine)),
		zap.Int("captures", len(captures)),
		zap.Int("pages", len(pages)),
		zap.Int("bytes", buf.Len()))
	return &docsmith.Artifact{
		Name:     s.name,
		Format:   docsmith.FormatPDF,
		MIMEType: docsmith.FormatPDF.MIMEType(),
		Data:     buf.Bytes(),
		Pages:    geom,
	}, nil
}

// PNG wraps a single capture as a PNG image file.
func (a *Assembler) PNG(c *docsmith.Capture, opts ...Option) (*docsmith.Artifact, error) {
	s := a.settings(opts)
	if c == nil || c.Image == nil {
		return nil, fmt.Errorf("assemble: %w", docsmith.ErrNoCaptures)
	}
	if c.Width() <= 0 || c.Height() <= 0 {
		return nil, fmt.Errorf("assemble: %w: %s", docsmith.ErrZeroSizeCapture, c.Surface)
	}
	data, err := encodePNG(c.Image)
	if err != nil {
		return nil, fmt.Errorf("assemble: encoding %s: %w", c.Surface, err)
	}
	return &docsmith.Artifact{
		Name:     s.name,
		Format:   docsmith.FormatPNG,
		MIMEType: docsmith.FormatPNG.MIMEType(),
		Data:     data,
	}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
