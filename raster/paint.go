package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

type painter struct {
	dst    *image.RGBA
	scale  float64
	images map[string]image.Image
	faces  map[fonts.Spec]font.Face
	z      vector.Rasterizer
}

func (p *painter) paint(ls *layout.Surface) error {
	if ls.Background.A > 0 {
		p.box(layout.Rect{W: ls.Width, H: ls.Height}, ls.Radius, ls.Background)
	}
	for i := range ls.Nodes {
		n := &ls.Nodes[i]
		switch n.Kind {
		case layout.BoxNode:
			if n.Fill.A > 0 {
				p.box(n.Rect, n.Radius, n.Fill)
			}
			if n.StrokeWidth > 0 && n.Stroke.A > 0 {
				p.ring(n.Rect, n.Radius, n.StrokeWidth, n.Stroke)
			}
		case layout.TextNode:
			if err := p.text(n); err != nil {
				return err
			}
		case layout.ImageNode:
			p.image(n)
		}
	}
	return nil
}

// px converts a CSS pixel rectangle to device pixels.
func (p *painter) px(r layout.Rect) (x0, y0, x1, y1 float64) {
	s := p.scale
	return r.X * s, r.Y * s, (r.X + r.W) * s, (r.Y + r.H) * s
}

// clip returns the integer device bounds covering r, clipped to the canvas.
func (p *painter) clip(x0, y0, x1, y1 float64) image.Rectangle {
	b := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return b.Intersect(p.dst.Bounds())
}

func (p *painter) box(r layout.Rect, radius float64, c color.RGBA) {
	x0, y0, x1, y1 := p.px(r)
	if radius <= 0 && isWhole(x0, y0, x1, y1) {
		b := p.clip(x0, y0, x1, y1)
		draw.Draw(p.dst, b, image.NewUniform(c), image.Point{}, draw.Over)
		return
	}
	b := p.clip(x0, y0, x1, y1)
	if b.Empty() {
		return
	}
	p.z.Reset(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	roundRect(&p.z, x0-ox, y0-oy, x1-ox, y1-oy, radius*p.scale, false)
	p.z.Draw(p.dst, b, image.NewUniform(c), image.Point{})
}

// ring strokes the inside edge of r with width w.
func (p *painter) ring(r layout.Rect, radius, w float64, c color.RGBA) {
	x0, y0, x1, y1 := p.px(r)
	b := p.clip(x0, y0, x1, y1)
	if b.Empty() {
		return
	}
	sw := w * p.scale
	rad := radius * p.scale
	if rad <= 0 && isWhole(x0, y0, x1, y1, sw) {
		src := image.NewUniform(c)
		edges := []image.Rectangle{
			image.Rect(int(x0), int(y0), int(x1), int(y0+sw)),
			image.Rect(int(x0), int(y1-sw), int(x1), int(y1)),
			image.Rect(int(x0), int(y0+sw), int(x0+sw), int(y1-sw)),
			image.Rect(int(x1-sw), int(y0+sw), int(x1), int(y1-sw)),
		}
		for _, e := range edges {
			draw.Draw(p.dst, e.Intersect(b), src, image.Point{}, draw.Over)
		}
		return
	}
	p.z.Reset(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	roundRect(&p.z, x0-ox, y0-oy, x1-ox, y1-oy, rad, false)
	if x1-x0 > 2*sw && y1-y0 > 2*sw {
		roundRect(&p.z, x0-ox+sw, y0-oy+sw, x1-ox-sw, y1-oy-sw, math.Max(rad-sw, 0), true)
	}
	p.z.Draw(p.dst, b, image.NewUniform(c), image.Point{})
}

// roundRect adds a closed rounded rectangle path. Reverse winding subtracts
// the shape from earlier paths.
func roundRect(z *vector.Rasterizer, x0, y0, x1, y1, r float64, reverse bool) {
	r = math.Min(r, math.Min((x1-x0)/2, (y1-y0)/2))
	if r < 0 {
		r = 0
	}
	k := r * kappa
	f := func(v float64) float32 { return float32(v) }
	if !reverse {
		z.MoveTo(f(x0+r), f(y0))
		z.LineTo(f(x1-r), f(y0))
		z.CubeTo(f(x1-r+k), f(y0), f(x1), f(y0+r-k), f(x1), f(y0+r))
		z.LineTo(f(x1), f(y1-r))
		z.CubeTo(f(x1), f(y1-r+k), f(x1-r+k), f(y1), f(x1-r), f(y1))
		z.LineTo(f(x0+r), f(y1))
		z.CubeTo(f(x0+r-k), f(y1), f(x0), f(y1-r+k), f(x0), f(y1-r))
		z.LineTo(f(x0), f(y0+r))
		z.CubeTo(f(x0), f(y0+r-k), f(x0+r-k), f(y0), f(x0+r), f(y0))
	} else {
		z.MoveTo(f(x0+r), f(y0))
		z.CubeTo(f(x0+r-k), f(y0), f(x0), f(y0+r-k), f(x0), f(y0+r))
		z.LineTo(f(x0), f(y1-r))
		z.CubeTo(f(x0), f(y1-r+k), f(x0+r-k), f(y1), f(x0+r), f(y1))
		z.LineTo(f(x1-r), f(y1))
		z.CubeTo(f(x1-r+k), f(y1), f(x1), f(y1-r+k), f(x1), f(y1-r))
		z.LineTo(f(x1), f(y0+r))
		z.CubeTo(f(x1), f(y0+r-k), f(x1-r+k), f(y0), f(x1-r), f(y0))
	}
	z.ClosePath()
}

func isWhole(vs ...float64) bool {
	for _, v := range vs {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func (p *painter) face(spec fonts.Spec) (font.Face, error) {
	if f, ok := p.faces[spec]; ok {
		return f, nil
	}
	f, err := fonts.NewFace(spec, p.scale)
	if err != nil {
		return nil, err
	}
	if p.faces == nil {
		p.faces = make(map[fonts.Spec]font.Face)
	}
	p.faces[spec] = f
	return f, nil
}

func (p *painter) text(n *layout.Node) error {
	if len(n.Lines) == 0 || n.Color.A == 0 {
		return nil
	}
	face, err := p.face(n.Font)
	if err != nil {
		return err
	}
	m := face.Metrics()
	asc, desc := fix(m.Ascent), fix(m.Descent)
	lh := n.LineHeight * p.scale
	if lh <= 0 {
		lh = asc + desc
	}
	x0, y0, x1, _ := p.px(n.Rect)
	d := &font.Drawer{Dst: p.dst, Src: image.NewUniform(n.Color), Face: face}
	for i, line := range n.Lines {
		if line == "" {
			continue
		}
		x := x0
		switch n.Align {
		case layout.AlignCenter:
			x += ((x1 - x0) - fix(d.MeasureString(line))) / 2
		case layout.AlignRight:
			x = x1 - fix(d.MeasureString(line))
		}
		baseline := y0 + float64(i)*lh + (lh-(asc+desc))/2 + asc
		d.Dot = fixed.Point26_6{X: toFix(x), Y: toFix(baseline)}
		d.DrawString(line)
	}
	return nil
}

func fix(v fixed.Int26_6) float64 { return float64(v) / 64 }
func toFix(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func (p *painter) image(n *layout.Node) {
	src, ok := p.images[n.Src]
	if !ok || src == nil {
		return
	}
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	x0, y0, x1, y1 := p.px(n.Rect)
	w, h := x1-x0, y1-y0
	sw, sh := float64(sb.Dx()), float64(sb.Dy())

	srcRect := sb
	switch n.Fit {
	case layout.FitContain:
		s := math.Min(w/sw, h/sh)
		dw, dh := sw*s, sh*s
		switch {
		case dw < w:
			x0 += (w - dw) / 2
			x1 = x0 + dw
		case dh < h:
			y0 += (h - dh) / 2
			y1 = y0 + dh
		}
	case layout.FitCover:
		s := math.Max(w/sw, h/sh)
		cw, ch := w/s, h/s
		cx := sb.Min.X + int(math.Round((sw-cw)/2))
		cy := sb.Min.Y + int(math.Round((sh-ch)/2))
		srcRect = image.Rect(cx, cy, cx+int(math.Round(cw)), cy+int(math.Round(ch))).Intersect(sb)
	}

	target := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
	if target.Empty() {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, target.Dx(), target.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, srcRect, draw.Src, nil)

	b := target.Intersect(p.dst.Bounds())
	if b.Empty() {
		return
	}
	sp := b.Min.Sub(target.Min)
	if !n.Circle && n.Radius <= 0 {
		draw.Draw(p.dst, b, scaled, sp, draw.Over)
		return
	}
	p.z.Reset(b.Dx(), b.Dy())
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	tx0, ty0 := float64(target.Min.X)-ox, float64(target.Min.Y)-oy
	tx1, ty1 := float64(target.Max.X)-ox, float64(target.Max.Y)-oy
	radius := n.Radius * p.scale
	if n.Circle {
		radius = math.Max(tx1-tx0, ty1-ty0)
	}
	roundRect(&p.z, tx0, ty0, tx1, ty1, radius, false)
	p.z.Draw(p.dst, b, scaled, sp)
}
