package layout

import (
	"image/color"

	"github.com/lvillar/docsmith/fonts"
)

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// SymmetricPadding creates a Padding with vertical v and horizontal h.
func SymmetricPadding(v, h float64) Padding {
	return Padding{Top: v, Right: h, Bottom: v, Left: h}
}

// BorderStyle defines the horizontal rules drawn under table rows.
type BorderStyle struct {
	Width float64
	Color color.RGBA
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *color.RGBA
	TextColor *color.RGBA
	Font      *fonts.Spec
	Align     *Align
	Padding   *Padding
}

// AlternateStyle defines alternating row colors.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border        *BorderStyle // rule under every row
	Outline       *BorderStyle // frame around the whole table
	Radius        float64      // corner radius of the outline
	AlternateRows *AlternateStyle
	HeaderStyle   *CellStyle
	CellPadding   Padding
	CellFont      fonts.Spec
	TextColor     color.RGBA
	LineHeight    float64 // multiplier, DefaultLineHeight when zero
}

// Ptr returns a pointer to v, for filling optional style fields.
func Ptr[T any](v T) *T { return &v }
