package templates

import (
	"strings"

	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

const cardPad = 24.0

func cardFlow(c *layout.Canvas) *layout.Flow {
	return c.Flow(cardPad, cardPad, layout.CardWidth-2*cardPad)
}

// centerStack sets lines vertically centered within the card padding.
func centerStack(f *layout.Flow, lines []textLine, extra float64) {
	h := stackHeight(f, lines) + extra
	f.Y = (layout.CardHeight - h) / 2
	stack(f, lines)
}

func sleekCard(s *scene, bc *record.BusinessCard) (front, back *layout.Surface) {
	fc := s.card(layout.SurfaceFront, theme.White)
	f := cardFlow(fc)
	f.Text(bc.Name, ts(fonts.Bold, text2XL, s.accent))
	f.Text(bc.Title, ts(fonts.Medium, textSM, theme.Gray600))
	bottom := []textLine{
		{bc.CompanyName, right(ts(fonts.Medium, textMD, s.accent))},
		{bc.Address, right(ts(fonts.Regular, textXS, theme.Gray500))},
	}
	f.Y = layout.CardHeight - cardPad - stackHeight(f, bottom)
	stack(f, bottom)
	front = fc.Finish(0)

	bk := s.card(layout.SurfaceBack, theme.White)
	b := cardFlow(bk)
	logoW := b.W / 3
	logo := b.Column(0, logoW)
	if bc.LogoURL != "" {
		logo.Y = (layout.CardHeight - 80) / 2
		logo.Image(bc.LogoURL, logoW, 80, layout.AlignCenter, layout.FitContain, false)
	} else {
		logo.Y = (layout.CardHeight - 64) / 2
		logo.Circle(64, layout.AlignCenter, theme.Gray200, initial(bc.CompanyName), ts(fonts.Bold, text2XL, s.accent))
	}
	info := b.Column(logoW+16, b.W-logoW-16)
	small := ts(fonts.Regular, textXS, theme.Gray700)
	lines := []textLine{
		{bc.Name, leading(ts(fonts.Bold, textLG, s.accent), 1.25)},
		{bc.Title, ts(fonts.Regular, textXS, theme.Gray500)},
		{bc.Phone, small},
		{bc.Email, small},
		{bc.Website, small},
	}
	centerStack(info, lines, 8)
	top := info.Y - stackHeight(info, lines)
	bk.Add(layout.Node{Kind: layout.BoxNode, Rect: layout.Rect{X: info.X - 16, Y: top - 8, W: 2, H: info.Y - top + 16}, Fill: s.accent})
	back = bk.Finish(0)
	return front, back
}

func minimalCard(s *scene, bc *record.BusinessCard) (front, back *layout.Surface) {
	fc := s.card(layout.SurfaceFront, theme.Gray50)
	f := cardFlow(fc)
	name := center(ts(fonts.Regular, text3XL, theme.Ink))
	title := center(ts(fonts.Regular, textSM, theme.Gray500))
	h := f.Measure(bc.Name, name) + 17 + f.Measure(bc.Title, title)
	f.Y = (layout.CardHeight - h) / 2
	f.Text(bc.Name, name)
	f.Space(8)
	rule := f.Column((f.W-64)/2, 64)
	rule.Rule(1, theme.Gray300)
	f.Space(9)
	f.Text(strings.ToUpper(bc.Title), title)
	front = fc.Finish(0)

	bk := s.card(layout.SurfaceBack, theme.Gray50)
	b := cardFlow(bk)
	small := center(ts(fonts.Regular, textXS, theme.Gray600))
	lines := []textLine{
		{bc.CompanyName, center(ts(fonts.Medium, textLG, s.accent))},
		{bc.Phone, small},
		{bc.Email, small},
		{bc.Website, small},
	}
	var logoH float64
	if bc.LogoURL != "" {
		logoH = 40 + 16
	}
	b.Y = (layout.CardHeight - stackHeight(b, lines) - logoH) / 2
	if bc.LogoURL != "" {
		b.Image(bc.LogoURL, 120, 40, layout.AlignCenter, layout.FitContain, false)
		b.Space(16)
	}
	stack(b, lines)
	back = bk.Finish(0)
	return front, back
}

func boldCard(s *scene, bc *record.BusinessCard) (front, back *layout.Surface) {
	fc := s.card(layout.SurfaceFront, s.accent)
	f := cardFlow(fc)
	lines := []textLine{
		{bc.Name, ts(fonts.Bold, text3XL, theme.White)},
		{bc.Title, ts(fonts.Regular, textMD, theme.Mix(theme.White, s.accent, 0.1))},
	}
	f.Y = layout.CardHeight - cardPad - stackHeight(f, lines)
	stack(f, lines)
	front = fc.Finish(0)

	bk := s.card(layout.SurfaceBack, theme.White)
	b := cardFlow(bk)
	if bc.LogoURL != "" {
		b.Image(bc.LogoURL, 120, 32, layout.AlignLeft, layout.FitContain, false)
	} else {
		b.Text(bc.CompanyName, ts(fonts.Bold, textXL, s.accent))
	}
	small := right(ts(fonts.Regular, textXS, theme.Gray700))
	contact := []textLine{
		{bc.Phone, small},
		{bc.Email, small},
		{bc.Website, small},
		{bc.Address, right(ts(fonts.Regular, textXS, theme.Gray500))},
	}
	b.Y = layout.CardHeight - cardPad - stackHeight(b, contact)
	stack(b, contact)
	back = bk.Finish(0)
	return front, back
}
