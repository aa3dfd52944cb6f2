package docsmith

import "fmt"

// Default capture scales. PDF exports use a lower density than PNG downloads,
// which are usually viewed at full size.
const (
	DefaultPDFScale  = 2.0
	DefaultPNGScale  = 3.0
	DefaultCardScale = 3.0
)

// ExportOption is a functional option for configuring an export via NewExportOptions.
type ExportOption func(*ExportOptions)

// ExportOptions controls how a document is captured and assembled.
type ExportOptions struct {
	Format      Format
	Scale       float64
	PageFormat  PageFormat
	Orientation Orientation
	Surfaces    []string // surfaces to capture, in page order; empty means all
}

// WithFormat sets the output format.
func WithFormat(f Format) ExportOption {
	return func(o *ExportOptions) {
		o.Format = f
	}
}

// WithScale sets the capture pixel density relative to CSS pixels.
func WithScale(scale float64) ExportOption {
	return func(o *ExportOptions) {
		o.Scale = scale
	}
}

// WithPageFormat sets the physical page format of PDF exports.
// Use A4() or Pixels(w, h); SurfaceSized() sizes each page to its surface.
func WithPageFormat(p PageFormat) ExportOption {
	return func(o *ExportOptions) {
		o.PageFormat = p
	}
}

// WithOrientation sets the page orientation of PDF exports.
func WithOrientation(orientation Orientation) ExportOption {
	return func(o *ExportOptions) {
		o.Orientation = orientation
	}
}

// WithSurfaces restricts the capture to the named surfaces, in order.
func WithSurfaces(names ...string) ExportOption {
	return func(o *ExportOptions) {
		o.Surfaces = append([]string(nil), names...)
	}
}

// SurfaceSized returns the page format that sizes each page to the CSS pixel
// dimensions of the captured surface.
func SurfaceSized() PageFormat { return PageFormat{} }

// IsSurfaceSized reports whether p sizes pages to their surface.
func (p PageFormat) IsSurfaceSized() bool {
	return p.Name == "" && p.Width == 0 && p.Height == 0
}

// NewExportOptions returns the export settings for kind with opts applied on
// top of the kind's defaults.
//
// If no options are specified, documents export as portrait A4 PDFs at 2x.
// Business cards export one landscape page per card face at 3x.
func NewExportOptions(kind Kind, opts ...ExportOption) ExportOptions {
	o := ExportOptions{
		Format:      FormatPDF,
		PageFormat:  A4(),
		Orientation: Portrait,
	}
	if kind == KindBusinessCard {
		o.PageFormat = SurfaceSized()
		o.Orientation = Landscape
		o.Scale = DefaultCardScale
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Scale <= 0 {
		o.Scale = DefaultPDFScale
		if o.Format == FormatPNG {
			o.Scale = DefaultPNGScale
		}
	}
	return o
}

// Validate checks the options against what kind supports.
func (o ExportOptions) Validate(kind Kind) error {
	if !kind.Supports(o.Format) {
		return fmt.Errorf("%w: %s cannot be exported as %s", ErrUnsupportedFormat, kind.Title(), o.Format.Label())
	}
	if o.Scale <= 0 {
		return fmt.Errorf("%w: scale %v", ErrInvalidParam, o.Scale)
	}
	return nil
}
