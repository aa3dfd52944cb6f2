package templates

import (
	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

func recipient(f *layout.Flow, r record.Recipient, name, body layout.TextStyle) {
	f.Text(r.Name, name)
	for _, l := range nonEmpty(textLine{r.Title, body}, textLine{r.Company, body}, textLine{r.Address, body}) {
		f.Text(l.text, l.st)
	}
}

// letterBody sets subject, body and sign-off.
func letterBody(f *layout.Flow, cl *record.CoverLetter, subject, body, sign layout.TextStyle) {
	if cl.Subject != "" {
		f.Text("Subject: "+cl.Subject, subject)
		f.Space(24)
	}
	f.Text(cl.Body, body)
	f.Space(32)
	f.Text(cl.Closing, body)
	f.Space(16)
	f.Text(cl.PersonalInfo.Name, sign)
}

func classicLetter(s *scene, cl *record.CoverLetter) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.White)
	f := c.Flow(pagePad, pagePad, layout.PageWidth-2*pagePad)
	p := cl.PersonalInfo
	body := leading(ts(fonts.Regular, textMD, ink), 1.625)

	if p.ProfileImage != "" {
		f.Image(p.ProfileImage, 112, 112, layout.AlignCenter, layout.FitCover, true)
		f.Space(16)
	}
	f.Text(p.Name, center(ts(fonts.Bold, text4XL, ink)))
	f.Space(8)
	f.Text(joinNonEmpty(" • ", p.Address, p.Phone, p.Email), center(ts(fonts.Regular, textSM, theme.Gray600)))
	f.Space(32)
	f.Rule(1, theme.Border)
	f.Space(32)

	cols := f.Columns(2, 32)
	recipient(cols[0], cl.RecipientInfo, ts(fonts.Bold, textMD, ink), body)
	cols[1].Text(Date(cl.Date), right(body))
	f.Join(cols...)
	f.Space(32)

	letterBody(f, cl, ts(fonts.Bold, textMD, ink), body, ts(fonts.Medium, textMD, ink))
	return c.Finish(f.Y + pagePad)
}

func modernLetter(s *scene, cl *record.CoverLetter) *layout.Surface {
	ink := theme.Gray800
	c := s.page(theme.White)
	p := cl.PersonalInfo

	const sideW = 240.0
	c.Add(layout.Node{Kind: layout.BoxNode, Rect: layout.Rect{W: sideW, H: layout.PageMinHeight}, Fill: s.accent})
	side := c.Flow(32, pagePad, sideW-64)
	if p.ProfileImage != "" {
		side.Image(p.ProfileImage, 128, 128, layout.AlignCenter, layout.FitCover, true)
		side.Space(24)
	}
	side.Text(p.Name, center(ts(fonts.Bold, text3XL, theme.White)))
	side.Space(40)
	side.Text("Contact", ts(fonts.Bold, textLG, theme.White))
	side.Space(12)
	for _, l := range contactLines(p) {
		side.Text(l, ts(fonts.Regular, textSM, theme.Lighten(s.accent, 0.85)))
		side.Space(8)
	}

	main := c.Flow(sideW+pagePad, pagePad, layout.PageWidth-sideW-2*pagePad)
	body := leading(ts(fonts.Regular, textMD, ink), 1.625)
	main.Text(Date(cl.Date), ts(fonts.Regular, textSM, theme.Gray500))
	main.Space(24)
	recipient(main, cl.RecipientInfo, ts(fonts.Bold, textMD, ink), body)
	main.Space(32)
	letterBody(main, cl, ts(fonts.Bold, textLG, s.accent), body, ts(fonts.Bold, textMD, s.accent))

	bottom := main.Y
	if side.Y > bottom {
		bottom = side.Y
	}
	out := c.Finish(bottom + pagePad)
	out.Nodes[0].Rect.H = out.Height
	return out
}

func simpleLetter(s *scene, cl *record.CoverLetter) *layout.Surface {
	ink := theme.Ink
	c := s.page(theme.White)
	f := c.Flow(48, 48, layout.PageWidth-96)
	p := cl.PersonalInfo
	body := leading(ts(fonts.Regular, textMD, ink), 1.625)
	small := ts(fonts.Regular, textSM, theme.Gray600)

	f.Text(p.Name, ts(fonts.Bold, text3XL, s.accent))
	for _, l := range nonEmpty(textLine{p.Address, small}, textLine{p.Phone, small}, textLine{p.Email, small}) {
		f.Text(l.text, l.st)
	}
	f.Space(32)
	f.Text(Date(cl.Date), body)
	f.Space(24)
	recipient(f, cl.RecipientInfo, ts(fonts.Bold, textMD, ink), body)
	f.Space(32)
	letterBody(f, cl, ts(fonts.Bold, textMD, ink), body, ts(fonts.Medium, textMD, ink))
	return c.Finish(f.Y + 48)
}
