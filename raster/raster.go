// Package raster captures mounted layout surfaces into bitmaps.
package raster

import (
	"context"
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/resource"
)

// Surface is a renderable region as seen by the rasterizer. Mounted reports
// whether the region is currently rendered and visible; only mounted surfaces
// can be captured.
type Surface interface {
	Name() string
	Mounted() bool
	Layout() *layout.Surface
}

type static struct{ s *layout.Surface }

func (st static) Name() string            { return st.s.Name }
func (st static) Mounted() bool           { return true }
func (st static) Layout() *layout.Surface { return st.s }

// Static wraps a layout surface that is always mounted, for callers that
// render without a live workspace.
func Static(s *layout.Surface) Surface { return static{s} }

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Rasterizer) { r.log = logger.OrNop(l) }
}

// Rasterizer draws layout surfaces onto RGBA canvases. Identical surfaces and
// scales produce identical pixels.
type Rasterizer struct {
	loader *resource.Loader
	log    *zap.Logger
}

// New returns a Rasterizer resolving images through loader. A nil loader
// gets a default one.
func New(loader *resource.Loader, opts ...Option) *Rasterizer {
	if loader == nil {
		loader = resource.NewLoader()
	}
	r := &Rasterizer{loader: loader, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capture renders s at scale device pixels per CSS pixel. It waits for every
// image the surface references before drawing, and fails with
// docsmith.ErrNotMounted if the surface is not mounted before or after that
// wait.
func (r *Rasterizer) Capture(ctx context.Context, s Surface, scale float64) (*docsmith.Capture, error) {
	if s == nil || !s.Mounted() {
		return nil, fmt.Errorf("%w: %s", docsmith.ErrNotMounted, surfaceName(s))
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: scale %v", docsmith.ErrInvalidParam, scale)
	}
	ls := s.Layout()
	if ls == nil {
		return nil, fmt.Errorf("%w: %s has no layout", docsmith.ErrNotMounted, s.Name())
	}

	images, err := r.loader.Preload(ctx, ls.Sources())
	if err != nil {
		return nil, err
	}
	if !s.Mounted() {
		return nil, fmt.Errorf("%w: %s unmounted while loading images", docsmith.ErrNotMounted, s.Name())
	}

	img, err := Draw(ls, scale, images)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("surface captured",
		zap.String("surface", ls.Name),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Float64("scale", scale))
	return &docsmith.Capture{Surface: ls.Name, Image: img, Scale: scale}, nil
}

func surfaceName(s Surface) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name()
}

// Draw renders ls at scale using already decoded images keyed by source.
// Image nodes whose source is missing are left blank. Panics while drawing
// are returned as docsmith.ErrRasterize.
func Draw(ls *layout.Surface, scale float64, images map[string]image.Image) (img *image.RGBA, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = fmt.Errorf("%w: %s: %v", docsmith.ErrRasterize, ls.Name, rec)
		}
	}()
	w := int(math.Ceil(ls.Width * scale))
	h := int(math.Ceil(ls.Height * scale))
	p := &painter{
		dst:    image.NewRGBA(image.Rect(0, 0, w, h)),
		scale:  scale,
		images: images,
	}
	if err := p.paint(ls); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", docsmith.ErrRasterize, ls.Name, err)
	}
	return p.dst, nil
}
