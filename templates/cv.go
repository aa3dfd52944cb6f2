package templates

import (
	"image/color"
	"strings"

	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

const avatarSize = 128.0

func dateRange(start, end string) string {
	return joinNonEmpty(" - ", start, end)
}

func contactLines(p record.PersonalInfo) []string {
	var out []string
	for _, s := range []string{p.Email, p.Phone, p.Address, p.Website} {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// cvEntryStyles styles one experience or education entry.
type cvEntryStyles struct {
	title, dates, sub, body layout.TextStyle
	gap                     float64
}

func experience(f *layout.Flow, items []record.Experience, st cvEntryStyles) {
	for i, e := range items {
		if i > 0 {
			f.Space(st.gap)
		}
		f.Pair(e.Title, st.title, dateRange(e.StartDate, e.EndDate), st.dates)
		f.Text(e.Company, st.sub)
		if b := bullets(e.Description); len(b) > 0 {
			f.Space(8)
			bulletList(f, b, st.body, 4)
		}
	}
}

func education(f *layout.Flow, items []record.Education, st cvEntryStyles) {
	for i, e := range items {
		if i > 0 {
			f.Space(st.gap)
		}
		f.Pair(e.Degree, st.title, dateRange(e.StartDate, e.EndDate), st.dates)
		f.Text(e.School, st.sub)
	}
}

func avatar(f *layout.Flow, p record.PersonalInfo, align layout.Align) bool {
	if p.ProfileImage == "" {
		return false
	}
	f.Image(p.ProfileImage, avatarSize, avatarSize, align, layout.FitCover, true)
	return true
}

func classicCV(s *scene, cv *record.CV) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.White)
	f := c.Flow(32, 32, layout.PageWidth-64)
	p := cv.PersonalInfo

	if avatar(f, p, layout.AlignCenter) {
		f.Space(16)
	}
	f.Text(strings.ToUpper(p.Name), center(ts(fonts.Bold, text5XL, ink)))
	f.Space(16)
	f.Text(strings.Join(contactLines(p), "   "), center(ts(fonts.Regular, textSM, ink)))
	f.Space(16)
	f.Rule(2, theme.Gray500)
	f.Space(24)

	h := ts(fonts.Medium, text2XL, ink)
	entry := cvEntryStyles{
		title: ts(fonts.Bold, textLG, ink),
		dates: ts(fonts.Regular, textSM, theme.Gray600),
		sub:   ts(fonts.BoldItalic, textMD, ink),
		body:  leading(ts(fonts.Regular, textMD, ink), 1.625),
		gap:   24,
	}
	if cv.Summary != "" {
		heading(f, "SUMMARY", h, 2, theme.Gray300, 12)
		f.Text(cv.Summary, leading(ts(fonts.Regular, textMD, ink), 1.625))
		f.Space(32)
	}
	heading(f, "EXPERIENCE", h, 2, theme.Gray300, 16)
	experience(f, cv.Experience, entry)
	f.Space(32)
	heading(f, "EDUCATION", h, 2, theme.Gray300, 16)
	entry.sub = ts(fonts.Italic, textMD, ink)
	entry.gap = 16
	education(f, cv.Education, entry)
	f.Space(32)
	heading(f, "SKILLS", h, 2, theme.Gray300, 12)
	f.Text(strings.Join(cv.Skills, " · "), leading(ts(fonts.Regular, textMD, ink), 1.625))

	return c.Finish(f.Y + 32)
}

func modernCV(s *scene, cv *record.CV) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.White)
	f := c.Flow(32, 32, layout.PageWidth-64)
	p := cv.PersonalInfo

	sideW := (f.W - 32) / 3
	side := f.Column(0, sideW)
	sideBox := c.Add(layout.Node{Kind: layout.BoxNode})
	in := side.Column(24, sideW-48)
	in.Y += 24
	if avatar(in, p, layout.AlignCenter) {
		in.Space(16)
	}
	in.Text(p.Name, center(ts(fonts.Bold, text4XL, ink)))
	in.Space(32)
	if cv.Summary != "" {
		in.Text(cv.Summary, center(leading(ts(fonts.Regular, textSM, ink), 1.625)))
		in.Space(32)
	}
	in.Rule(1, theme.Gray300)
	in.Space(24)
	in.Text("CONTACT", center(ts(fonts.Bold, textXL, ink)))
	in.Space(16)
	for _, l := range contactLines(p) {
		in.Text(l, center(ts(fonts.Regular, textSM, ink)))
		in.Space(4)
	}
	in.Space(20)
	in.Rule(1, theme.Gray300)
	in.Space(24)
	in.Text("SKILLS", center(ts(fonts.Bold, textXL, ink)))
	in.Space(16)
	chips(in, cv.Skills, ts(fonts.Medium, textXS, s.accent), theme.Lighten(s.accent, 0.85), 12, layout.AlignCenter)
	in.Space(24)

	main := f.Column(sideW+32, f.W-sideW-32)
	main.Y += 24
	main.X += 24
	main.W -= 48
	h := ts(fonts.Bold, text2XL, ink)
	entry := cvEntryStyles{
		title: ts(fonts.Medium, textLG, ink),
		dates: ts(fonts.Medium, textXS, theme.Gray500),
		sub:   ts(fonts.Italic, textMD, theme.Gray600),
		body:  ts(fonts.Regular, textSM, theme.Gray700),
		gap:   24,
	}
	heading(main, "EXPERIENCE", h, 2, s.accent, 24)
	timeline(main, func(tl *layout.Flow) { experience(tl, cv.Experience, entry) })
	main.Space(40)
	heading(main, "EDUCATION", h, 2, s.accent, 24)
	entry.gap = 20
	timeline(main, func(tl *layout.Flow) { education(tl, cv.Education, entry) })

	c.Update(sideBox, layout.Node{
		Kind:   layout.BoxNode,
		Rect:   layout.Rect{X: side.X, Y: side.Y, W: sideW, H: in.Y - side.Y},
		Fill:   theme.Gray100,
		Radius: 8,
	})
	f.Join(in, main)
	return c.Finish(f.Y + 32)
}

// timeline draws content indented past a vertical accent line with a dot.
func timeline(f *layout.Flow, build func(*layout.Flow)) {
	c := f.Canvas()
	line := c.Add(layout.Node{Kind: layout.BoxNode})
	c.Add(layout.Node{Kind: layout.BoxNode, Rect: layout.Rect{X: f.X - 3, Y: f.Y + 8, W: 8, H: 8}, Fill: theme.Gray500, Radius: 4})
	in := f.Column(24, f.W-24)
	build(in)
	c.Update(line, layout.Node{
		Kind: layout.BoxNode,
		Rect: layout.Rect{X: f.X, Y: f.Y + 8, W: 2, H: in.Y - f.Y - 8},
		Fill: theme.Gray200,
	})
	f.Join(in)
}

func creativeCV(s *scene, cv *record.CV) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.White)
	f := c.Flow(32, 32, layout.PageWidth-64)
	p := cv.PersonalInfo

	if !avatar(f, p, layout.AlignCenter) {
		f.Circle(avatarSize, layout.AlignCenter, s.accent, initial(p.Name), ts(fonts.Bold, text5XL, theme.White))
	}
	f.Space(16)
	f.Text(p.Name, center(ts(fonts.Bold, text5XL, ink)))
	f.Space(8)
	f.Text("Creative Professional", center(ts(fonts.Regular, textLG, theme.Gray500)))
	f.Space(32)

	cols := f.Columns(3, 32)
	side := cols[0]
	main := f.Column(cols[1].X-f.X, f.W-(cols[1].X-f.X))

	sh := ts(fonts.Bold, textXL, s.accent)
	if cv.Summary != "" {
		side.Text("About Me", sh)
		side.Space(16)
		side.Text(cv.Summary, leading(ts(fonts.Regular, textSM, ink), 1.625))
		side.Space(32)
	}
	side.Text("Contact", sh)
	side.Space(16)
	for _, l := range contactLines(p) {
		side.Text(l, ts(fonts.Regular, textSM, ink))
		side.Space(8)
	}
	side.Space(24)
	side.Text("Skills", sh)
	side.Space(16)
	chips(side, cv.Skills, ts(fonts.Medium, textXS, theme.Gray700), theme.Gray200, 6, layout.AlignLeft)

	h := ts(fonts.Bold, text2XL, s.accent)
	entry := cvEntryStyles{
		title: ts(fonts.Medium, textLG, ink),
		dates: ts(fonts.Medium, textXS, theme.Gray500),
		sub:   ts(fonts.Italic, textMD, theme.Gray600),
		body:  ts(fonts.Regular, textSM, theme.Gray700),
		gap:   24,
	}
	heading(main, "Experience", h, 2, s.accent, 24)
	experience(main, cv.Experience, entry)
	main.Space(40)
	heading(main, "Education", h, 2, s.accent, 24)
	entry.gap = 20
	education(main, cv.Education, entry)

	f.Join(side, main)
	return c.Finish(f.Y + 32)
}

func minimalistCV(s *scene, cv *record.CV) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.White)
	f := c.Flow(pagePad, pagePad, layout.PageWidth-2*pagePad)
	p := cv.PersonalInfo

	f.Text(p.Name, ts(fonts.Bold, text6XL, theme.Black))
	f.Space(8)
	f.Text(strings.Join(contactLines(p), "  ·  "), ts(fonts.Regular, textSM, theme.Gray500))
	f.Space(40)

	label := ts(fonts.Bold, textXS, theme.Gray500)
	if cv.Summary != "" {
		f.Text("SUMMARY", label)
		f.Space(12)
		f.Text(cv.Summary, leading(ts(fonts.Regular, textMD, ink), 1.625))
		f.Space(40)
	}

	cols := f.Columns(3, 48)
	main := f.Column(0, cols[1].X+cols[1].W-f.X)
	side := cols[2]
	entry := cvEntryStyles{
		title: ts(fonts.Medium, textLG, theme.Black),
		dates: ts(fonts.Regular, textSM, theme.Gray500),
		sub:   ts(fonts.Regular, textMD, theme.Gray700),
		body:  ts(fonts.Regular, textSM, theme.Gray600),
		gap:   24,
	}
	main.Text("EXPERIENCE", label)
	main.Space(16)
	experience(main, cv.Experience, entry)

	side.Text("EDUCATION", label)
	side.Space(16)
	for i, e := range cv.Education {
		if i > 0 {
			side.Space(16)
		}
		side.Text(e.Degree, entry.title)
		side.Text(e.School, entry.sub)
		side.Text(dateRange(e.StartDate, e.EndDate), entry.dates)
	}
	side.Space(40)
	side.Text("SKILLS", label)
	side.Space(12)
	side.Text(strings.Join(cv.Skills, ", "), leading(ts(fonts.Regular, textSM, ink), 1.625))

	f.Join(main, side)
	return c.Finish(f.Y + pagePad)
}

func professionalCV(s *scene, cv *record.CV) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.Gray50)
	f := c.Flow(32, 32, layout.PageWidth-64)
	p := cv.PersonalInfo

	sideW := f.W/3 - 32
	side := f.Column(0, sideW)
	main := f.Column(sideW+32+32, f.W-sideW-64)

	if avatar(side, p, layout.AlignCenter) {
		side.Space(16)
	}
	side.Text(p.Name, center(ts(fonts.Bold, text4XL, s.accent)))
	side.Space(32)
	sh := ts(fonts.Bold, textLG, theme.Mix(s.accent, theme.White, 0.1))
	side.Text("CONTACT", sh)
	side.Space(12)
	for _, l := range contactLines(p) {
		side.Text(l, ts(fonts.Regular, textSM, theme.Gray600))
		side.Space(8)
	}
	side.Space(16)
	side.Text("SKILLS", sh)
	side.Space(12)
	bulletList(side, cv.Skills, ts(fonts.Regular, textSM, ink), 4)
	side.Space(24)
	side.Text("EDUCATION", sh)
	side.Space(12)
	for _, e := range cv.Education {
		side.Text(e.Degree, ts(fonts.Medium, textMD, ink))
		side.Text(e.School, ts(fonts.Regular, textSM, theme.Gray700))
		side.Text(dateRange(e.StartDate, e.EndDate), ts(fonts.Regular, textXS, theme.Gray500))
		side.Space(16)
	}

	h := ts(fonts.Bold, text2XL, s.accent)
	if cv.Summary != "" {
		main.Text("SUMMARY", h)
		main.Space(16)
		main.Text(cv.Summary, leading(ts(fonts.Regular, textMD, ink), 1.625))
		main.Space(32)
	}
	main.Text("WORK EXPERIENCE", h)
	main.Space(24)
	entry := cvEntryStyles{
		title: ts(fonts.Medium, textXL, ink),
		dates: ts(fonts.Regular, textSM, theme.Gray600),
		sub:   ts(fonts.BoldItalic, textMD, theme.Gray700),
		body:  ts(fonts.Regular, textSM, theme.Gray700),
	}
	for i, e := range cv.Experience {
		if i > 0 {
			main.Space(24)
		}
		bar := c.Add(layout.Node{Kind: layout.BoxNode})
		top := main.Y
		item := main.Column(16, main.W-16)
		experience(item, []record.Experience{e}, entry)
		c.Update(bar, layout.Node{
			Kind: layout.BoxNode,
			Rect: layout.Rect{X: main.X, Y: top, W: 4, H: item.Y - top},
			Fill: theme.Lighten(s.accent, 0.7),
		})
		main.Join(item)
	}

	f.Join(side, main)
	divider(c, f.X+sideW+32, 32, f.Y-32, theme.Gray200)
	return c.Finish(f.Y + 32)
}

func divider(c *layout.Canvas, x, y, h float64, col color.RGBA) {
	c.Add(layout.Node{Kind: layout.BoxNode, Rect: layout.Rect{X: x, Y: y, W: 2, H: h}, Fill: col})
}
