// Package layout defines the layout tree produced by templates and consumed
// by the rasterizer and the print preview.
//
// A Document is an ordered list of Surfaces; each surface is a fixed-size
// region of absolutely positioned nodes in CSS pixels. Text nodes carry their
// lines already wrapped, so every consumer draws identical geometry.
package layout

import (
	"image/color"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/fonts"
)

// Standard surface sizes in CSS pixels.
const (
	PageWidth     = 794.0  // A4 width at 96 dpi
	PageMinHeight = 1123.0 // A4 height at 96 dpi
	CardWidth     = 336.0
	CardHeight    = 192.0
)

// Surface names.
const (
	SurfacePage  = "page"
	SurfaceFront = "front"
	SurfaceBack  = "back"
)

// NodeKind distinguishes what a node draws.
type NodeKind int

const (
	BoxNode NodeKind = iota
	TextNode
	ImageNode
)

// Align is horizontal alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Fit controls how an image fills its rectangle.
type Fit int

const (
	FitContain Fit = iota // scale to fit inside, keep aspect ratio
	FitCover              // scale to cover, keep aspect ratio, crop overflow
	FitFill               // stretch to the rectangle
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Node is one drawable element.
type Node struct {
	Kind NodeKind
	Rect Rect

	// Box
	Fill        color.RGBA // transparent when alpha is zero
	Stroke      color.RGBA
	StrokeWidth float64
	Radius      float64

	// Text
	Lines      []string
	Font       fonts.Spec
	Color      color.RGBA
	Align      Align
	LineHeight float64 // pixels per line

	// Image
	Src    string
	Fit    Fit
	Circle bool
}

// Surface is a single visually distinct renderable region.
type Surface struct {
	Name       string
	Width      float64
	Height     float64
	Background color.RGBA
	Radius     float64
	Nodes      []Node
}

// Sources returns the image sources referenced by the surface, in first-use order.
func (s *Surface) Sources() []string {
	var out []string
	seen := make(map[string]bool)
	for _, n := range s.Nodes {
		if n.Kind != ImageNode || n.Src == "" || seen[n.Src] {
			continue
		}
		seen[n.Src] = true
		out = append(out, n.Src)
	}
	return out
}

// Text returns all text lines of the surface joined by newlines, in node order.
func (s *Surface) Text() string {
	var b []byte
	for _, n := range s.Nodes {
		if n.Kind != TextNode {
			continue
		}
		for _, l := range n.Lines {
			b = append(b, l...)
			b = append(b, '\n')
		}
	}
	return string(b)
}

// Document is the rendered output of a template.
type Document struct {
	Kind     docsmith.Kind
	Template string
	Surfaces []*Surface
}

// Surface returns the surface with the given name, or nil.
func (d *Document) Surface(name string) *Surface {
	for _, s := range d.Surfaces {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Names returns the surface names in order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Surfaces))
	for i, s := range d.Surfaces {
		names[i] = s.Name
	}
	return names
}
