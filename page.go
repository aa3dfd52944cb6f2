package docsmith

import (
	"fmt"
	"image"
)

// Page size constants in points (1/72 inch).
const (
	A4Width  = 595.28
	A4Height = 841.89

	// PointsPerPixel converts CSS pixels (96 per inch) to points.
	PointsPerPixel = 0.75
)

// Orientation is the page orientation of an assembled document.
type Orientation string

// Page orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// PageFormat is a physical page format: either the named A4 size or explicit
// pixel dimensions.
type PageFormat struct {
	Name          string  // "A4", or "" for pixel dimensions
	Width, Height float64 // CSS pixels when Name is empty
}

// A4 returns the A4 page format.
func A4() PageFormat { return PageFormat{Name: "A4"} }

// Pixels returns a page format of w by h CSS pixels.
func Pixels(w, h float64) PageFormat { return PageFormat{Width: w, Height: h} }

// Size returns the page width and height in points for the given orientation.
// Landscape guarantees width >= height, portrait the reverse.
func (p PageFormat) Size(o Orientation) (w, h float64, err error) {
	switch {
	case p.Name == "A4":
		w, h = A4Width, A4Height
	case p.Name != "":
		return 0, 0, fmt.Errorf("%w: page format %q", ErrInvalidParam, p.Name)
	case p.Width > 0 && p.Height > 0:
		w, h = p.Width*PointsPerPixel, p.Height*PointsPerPixel
	default:
		return 0, 0, fmt.Errorf("%w: page format %vx%v", ErrInvalidParam, p.Width, p.Height)
	}
	if (o == Landscape && w < h) || (o != Landscape && w > h) {
		w, h = h, w
	}
	return w, h, nil
}

func (p PageFormat) String() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%gx%gpx", p.Width, p.Height)
}

// Capture is an in-memory bitmap of one rendered surface.
type Capture struct {
	Surface string      // surface name, e.g. "page", "front", "back"
	Image   *image.RGBA // captured pixels
	Scale   float64     // pixel density relative to CSS pixels
}

// Width returns the capture width in pixels.
func (c *Capture) Width() int {
	if c == nil || c.Image == nil {
		return 0
	}
	return c.Image.Bounds().Dx()
}

// Height returns the capture height in pixels.
func (c *Capture) Height() int {
	if c == nil || c.Image == nil {
		return 0
	}
	return c.Image.Bounds().Dy()
}

// PageGeometry describes one page of an assembled PDF, in points.
type PageGeometry struct {
	Surface     string  // surface the page was cut from
	Width       float64 // page width
	Height      float64 // page height
	ImageHeight float64 // height of the capture slice drawn on the page
}

// Artifact is the final product of an export: a file ready for delivery.
type Artifact struct {
	Name     string
	Format   Format
	MIMEType string
	Data     []byte
	Pages    []PageGeometry // empty for PNG artifacts
}

// Size returns the artifact size in bytes.
func (a *Artifact) Size() int { return len(a.Data) }
