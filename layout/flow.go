package layout

import (
	"image/color"
	"math"

	"github.com/lvillar/docsmith/fonts"
)

// DefaultLineHeight is the line height multiplier used when a TextStyle sets none.
const DefaultLineHeight = 1.4

// TextStyle describes how a block of text is set.
type TextStyle struct {
	Font       fonts.Spec
	Color      color.RGBA
	Align      Align
	LineHeight float64 // multiplier of the font size
}

func (s TextStyle) lineHeight() float64 {
	lh := s.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return s.Font.Size * lh
}

// Canvas accumulates the nodes of one surface.
type Canvas struct {
	surface *Surface
	measure *fonts.Measurer
	minH    float64
}

// NewCanvas starts a surface of width w. Its height grows with content but is
// never less than minH.
func NewCanvas(name string, w, minH float64, bg color.RGBA, m *fonts.Measurer) *Canvas {
	if m == nil {
		m = fonts.Default()
	}
	return &Canvas{
		surface: &Surface{Name: name, Width: w, Height: minH, Background: bg},
		measure: m,
		minH:    minH,
	}
}

// Measurer returns the measurer used for wrapping.
func (c *Canvas) Measurer() *fonts.Measurer { return c.measure }

// Width returns the surface width.
func (c *Canvas) Width() float64 { return c.surface.Width }

// SetRadius rounds the surface corners.
func (c *Canvas) SetRadius(r float64) { c.surface.Radius = r }

// Add appends a node and returns its index.
func (c *Canvas) Add(n Node) int {
	c.surface.Nodes = append(c.surface.Nodes, n)
	return len(c.surface.Nodes) - 1
}

// Update replaces the node at index i.
func (c *Canvas) Update(i int, n Node) { c.surface.Nodes[i] = n }

// Node returns the node at index i.
func (c *Canvas) Node(i int) Node { return c.surface.Nodes[i] }

// Finish closes the surface. A bottom below the surface's minimum height is
// ignored; content taller than the minimum extends the surface.
func (c *Canvas) Finish(bottom float64) *Surface {
	s := c.surface
	s.Height = math.Max(c.minH, math.Ceil(bottom))
	c.surface = nil
	return s
}

// Flow places blocks one below another inside a column.
type Flow struct {
	c    *Canvas
	X, W float64
	Y    float64
}

// Flow starts a column at (x, y) of width w.
func (c *Canvas) Flow(x, y, w float64) *Flow {
	return &Flow{c: c, X: x, Y: y, W: w}
}

// Canvas returns the canvas the flow draws on.
func (f *Flow) Canvas() *Canvas { return f.c }

// Space advances the cursor by h.
func (f *Flow) Space(h float64) { f.Y += h }

// Lines wraps text to the flow width without placing it.
func (f *Flow) Lines(text string, st TextStyle) []string {
	return f.c.measure.Wrap(st.Font, text, f.W)
}

// Text sets text wrapped to the column width and returns the block height.
func (f *Flow) Text(text string, st TextStyle) float64 {
	return f.textLines(f.Lines(text, st), st)
}

// Line sets text on a single line without wrapping.
func (f *Flow) Line(text string, st TextStyle) float64 {
	return f.textLines([]string{text}, st)
}

func (f *Flow) textLines(lines []string, st TextStyle) float64 {
	lh := st.lineHeight()
	h := lh * float64(len(lines))
	f.c.Add(Node{
		Kind:       TextNode,
		Rect:       Rect{X: f.X, Y: f.Y, W: f.W, H: h},
		Lines:      lines,
		Font:       st.Font,
		Color:      st.Color,
		Align:      st.Align,
		LineHeight: lh,
	})
	f.Y += h
	return h
}

// Measure returns the height text would take when set in this column.
func (f *Flow) Measure(text string, st TextStyle) float64 {
	return st.lineHeight() * float64(len(f.Lines(text, st)))
}

// TextWidth measures a single line of text in style st.
func (f *Flow) TextWidth(text string, st TextStyle) float64 {
	return f.c.measure.Width(st.Font, text)
}

// Pair sets left and right text on the same line, justified to both edges,
// and returns the row height.
func (f *Flow) Pair(left string, ls TextStyle, right string, rs TextStyle) float64 {
	ls.Align, rs.Align = AlignLeft, AlignRight
	l := f.Column(0, f.W)
	l.Line(left, ls)
	r := f.Column(0, f.W)
	r.Line(right, rs)
	start := f.Y
	f.Join(l, r)
	return f.Y - start
}

// Rule draws a horizontal line of the given thickness across the column.
func (f *Flow) Rule(thickness float64, c color.RGBA) {
	f.c.Add(Node{Kind: BoxNode, Rect: Rect{X: f.X, Y: f.Y, W: f.W, H: thickness}, Fill: c})
	f.Y += thickness
}

// Bar draws a filled bar of width w at the cursor without spanning the column.
func (f *Flow) Bar(w, h, radius float64, c color.RGBA) {
	f.c.Add(Node{Kind: BoxNode, Rect: Rect{X: f.X, Y: f.Y, W: w, H: h}, Fill: c, Radius: radius})
	f.Y += h
}

// Image places an image box of w by h aligned within the column.
func (f *Flow) Image(src string, w, h float64, align Align, fit Fit, circle bool) {
	x := f.X
	switch align {
	case AlignCenter:
		x += (f.W - w) / 2
	case AlignRight:
		x += f.W - w
	}
	f.c.Add(Node{Kind: ImageNode, Rect: Rect{X: x, Y: f.Y, W: w, H: h}, Src: src, Fit: fit, Circle: circle})
	f.Y += h
}

// Circle places a filled circle of diameter d with a centered label, used in
// place of a missing photo or logo.
func (f *Flow) Circle(d float64, align Align, fill color.RGBA, label string, st TextStyle) {
	x := f.X
	switch align {
	case AlignCenter:
		x += (f.W - d) / 2
	case AlignRight:
		x += f.W - d
	}
	f.c.Add(Node{Kind: BoxNode, Rect: Rect{X: x, Y: f.Y, W: d, H: d}, Fill: fill, Radius: d / 2})
	if label != "" {
		lh := st.lineHeight()
		st.Align = AlignCenter
		f.c.Add(Node{
			Kind:       TextNode,
			Rect:       Rect{X: x, Y: f.Y + (d-lh)/2, W: d, H: lh},
			Lines:      []string{label},
			Font:       st.Font,
			Color:      st.Color,
			Align:      AlignCenter,
			LineHeight: lh,
		})
	}
	f.Y += d
}

// Column returns a sub-flow offset dx from this flow's left edge, w wide,
// starting at the current cursor.
func (f *Flow) Column(dx, w float64) *Flow {
	return &Flow{c: f.c, X: f.X + dx, Y: f.Y, W: w}
}

// Columns splits the flow into n equal columns separated by gap.
func (f *Flow) Columns(n int, gap float64) []*Flow {
	w := (f.W - gap*float64(n-1)) / float64(n)
	cols := make([]*Flow, n)
	for i := range cols {
		cols[i] = f.Column(float64(i)*(w+gap), w)
	}
	return cols
}

// Join moves the cursor below the tallest of cols.
func (f *Flow) Join(cols ...*Flow) {
	for _, c := range cols {
		if c.Y > f.Y {
			f.Y = c.Y
		}
	}
}

// PanelStyle describes a padded box drawn behind content.
type PanelStyle struct {
	Padding     float64
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
	Radius      float64
	MinHeight   float64
}

// Panel builds content inside a padded box and draws the box behind it.
func (f *Flow) Panel(ps PanelStyle, build func(inner *Flow)) {
	idx := f.c.Add(Node{Kind: BoxNode})
	inner := &Flow{c: f.c, X: f.X + ps.Padding, Y: f.Y + ps.Padding, W: f.W - 2*ps.Padding}
	build(inner)
	h := math.Max(inner.Y+ps.Padding-f.Y, ps.MinHeight)
	f.c.Update(idx, Node{
		Kind:        BoxNode,
		Rect:        Rect{X: f.X, Y: f.Y, W: f.W, H: h},
		Fill:        ps.Fill,
		Stroke:      ps.Stroke,
		StrokeWidth: ps.StrokeWidth,
		Radius:      ps.Radius,
	})
	f.Y += h
}
