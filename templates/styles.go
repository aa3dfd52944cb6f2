package templates

import (
	"image/color"

	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
)

// Type scale in CSS pixels.
const (
	textXS  = 12.0
	textSM  = 14.0
	textMD  = 16.0
	textLG  = 18.0
	textXL  = 20.0
	text2XL = 24.0
	text3XL = 30.0
	text4XL = 36.0
	text5XL = 48.0
	text6XL = 60.0
)

func ts(style fonts.Style, size float64, c color.RGBA) layout.TextStyle {
	return layout.TextStyle{Font: fonts.Spec{Style: style, Size: size}, Color: c}
}

func right(st layout.TextStyle) layout.TextStyle {
	st.Align = layout.AlignRight
	return st
}

func center(st layout.TextStyle) layout.TextStyle {
	st.Align = layout.AlignCenter
	return st
}

func leading(st layout.TextStyle, lh float64) layout.TextStyle {
	st.LineHeight = lh
	return st
}

// textLine is one styled paragraph of a stacked block.
type textLine struct {
	text string
	st   layout.TextStyle
}

// stackHeight returns the height lines would take in f.
func stackHeight(f *layout.Flow, lines []textLine) float64 {
	var h float64
	for _, l := range lines {
		h += f.Measure(l.text, l.st)
	}
	return h
}

// stack sets lines one below another.
func stack(f *layout.Flow, lines []textLine) {
	for _, l := range lines {
		f.Text(l.text, l.st)
	}
}

// nonEmpty drops lines with blank text.
func nonEmpty(lines ...textLine) []textLine {
	out := lines[:0:0]
	for _, l := range lines {
		if or(l.text, "") != "" {
			out = append(out, l)
		}
	}
	return out
}

// heading sets an upper-case section title over a rule.
func heading(f *layout.Flow, title string, st layout.TextStyle, rule float64, ruleColor color.RGBA, gap float64) {
	f.Text(title, st)
	if rule > 0 {
		f.Space(8)
		f.Rule(rule, ruleColor)
	}
	f.Space(gap)
}

// bulletList sets each item prefixed with a bullet.
func bulletList(f *layout.Flow, items []string, st layout.TextStyle, gap float64) {
	for i, it := range items {
		if i > 0 {
			f.Space(gap)
		}
		f.Text("• "+it, st)
	}
}

// chips lays tags out left to right, wrapping to new rows.
func chips(f *layout.Flow, tags []string, st layout.TextStyle, fill color.RGBA, radius float64, align layout.Align) {
	const padX, padY, gap = 12.0, 4.0, 8.0
	lh := st.Font.Size * layout.DefaultLineHeight
	h := lh + 2*padY

	type chip struct {
		text string
		w    float64
	}
	var rows [][]chip
	var rowW []float64
	var cur []chip
	var curW float64
	for _, t := range tags {
		w := f.TextWidth(t, st) + 2*padX
		if w > f.W {
			w = f.W
		}
		if len(cur) > 0 && curW+gap+w > f.W {
			rows = append(rows, cur)
			rowW = append(rowW, curW)
			cur, curW = nil, 0
		}
		if len(cur) > 0 {
			curW += gap
		}
		cur = append(cur, chip{t, w})
		curW += w
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
		rowW = append(rowW, curW)
	}

	c := f.Canvas()
	for i, row := range rows {
		x := f.X
		switch align {
		case layout.AlignCenter:
			x += (f.W - rowW[i]) / 2
		case layout.AlignRight:
			x += f.W - rowW[i]
		}
		for _, ch := range row {
			c.Add(layout.Node{Kind: layout.BoxNode, Rect: layout.Rect{X: x, Y: f.Y, W: ch.w, H: h}, Fill: fill, Radius: radius})
			c.Add(layout.Node{
				Kind:       layout.TextNode,
				Rect:       layout.Rect{X: x, Y: f.Y + padY, W: ch.w, H: lh},
				Lines:      []string{ch.text},
				Font:       st.Font,
				Color:      st.Color,
				Align:      layout.AlignCenter,
				LineHeight: lh,
			})
			x += ch.w + gap
		}
		f.Y += h
		if i < len(rows)-1 {
			f.Y += gap
		}
	}
}
