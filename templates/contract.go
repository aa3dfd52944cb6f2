package templates

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

// Contract placeholders and fixed texts.
const (
	PlaceholderContractTitle = "Contract Agreement"
	PlaceholderContractor    = "Contractor Name"
	LegallyBindingText       = "This is a legally binding document."
)

type clause struct{ title, body string }

func clauses(c *record.Contract, numbered, amp bool) []clause {
	terms := "Terms and Conditions"
	if amp {
		terms = "Terms & Conditions"
	}
	out := []clause{
		{"Scope of Work", c.ScopeOfWork},
		{"Payment Terms", c.PaymentTerms},
		{terms, c.TermsAndConditions},
	}
	if numbered {
		for i := range out {
			out[i].title = strconv.Itoa(i+1) + ". " + out[i].title
		}
	}
	return out
}

// signatures sets two signature blocks over rules.
func signatures(f *layout.Flow, c *record.Contract, suffix string, dashed bool) {
	cols := f.Columns(2, 64)
	for i, who := range [2]struct{ name, role string }{{c.ClientName, "Client"}, {c.ContractorName, "Contractor"}} {
		col := cols[i]
		if dashed {
			dashes(col, theme.Gray300)
		} else {
			col.Rule(1, theme.Gray300)
		}
		col.Space(8)
		col.Text(who.name, ts(fonts.Medium, textSM, theme.Ink))
		col.Text(who.role+suffix, ts(fonts.Regular, textSM, theme.Gray500))
	}
	f.Join(cols...)
}

func dashes(f *layout.Flow, col color.RGBA) {
	const dash, gap = 6.0, 4.0
	c := f.Canvas()
	for x := 0.0; x < f.W; x += dash + gap {
		w := dash
		if x+w > f.W {
			w = f.W - x
		}
		c.Add(layout.Node{Kind: layout.BoxNode, Rect: layout.Rect{X: f.X + x, Y: f.Y, W: w, H: 1}, Fill: col})
	}
	f.Space(1)
}

func formalContract(s *scene, ct *record.Contract) *layout.Surface {
	c := s.page(theme.White)
	f := c.Flow(32, 32, layout.PageWidth-64)
	ink := theme.Ink

	if ct.CompanyLogo != "" {
		f.Image(ct.CompanyLogo, 160, 64, layout.AlignCenter, layout.FitContain, false)
		f.Space(32)
	}
	f.Text(strings.ToUpper(or(ct.Title, PlaceholderContractTitle)), center(ts(fonts.Bold, text3XL, ink)))
	f.Space(8)
	f.Text("Effective Date: "+Date(ct.EffectiveDate), center(ts(fonts.Regular, textSM, theme.Muted)))
	f.Space(32)

	f.Text("Parties Involved", ts(fonts.Bold, textXL, ink))
	f.Space(16)
	parties := f.Columns(2, 32)
	label := ts(fonts.Medium, textSM, s.accent)
	body := ts(fonts.Regular, textSM, ink)
	parties[0].Text("Client", label)
	parties[0].Text(or(ct.ClientName, PlaceholderClientName), body)
	parties[1].Text("Contractor", label)
	parties[1].Text(or(ct.ContractorName, PlaceholderContractor), body)
	f.Join(parties...)
	f.Space(24)

	for _, cl := range clauses(ct, true, false) {
		f.Text(cl.title, ts(fonts.Medium, textLG, s.accent))
		f.Space(8)
		f.Rule(1, s.accent)
		f.Space(12)
		f.Text(cl.body, ts(fonts.Regular, textSM, theme.Gray700))
		f.Space(24)
	}

	f.Space(24)
	f.Text("Signatures", center(ts(fonts.Bold, textXL, ink)))
	f.Space(32)
	signatures(f, ct, "", false)

	f.Space(64)
	f.Text(LegallyBindingText, center(ts(fonts.Regular, textXS, theme.Muted)))
	return c.Finish(f.Y + 32)
}

func modernContract(s *scene, ct *record.Contract) *layout.Surface {
	c := s.page(theme.White)
	f := c.Flow(32, 32, layout.PageWidth-64)
	ink := theme.Ink

	cols := f.Columns(3, 32)
	side := cols[0]
	main := f.Column(cols[1].X-f.X+16, f.W-(cols[1].X-f.X)-16)

	if ct.CompanyLogo != "" {
		side.Image(ct.CompanyLogo, 120, 48, layout.AlignLeft, layout.FitContain, false)
		side.Space(32)
	}
	sh := ts(fonts.Bold, textXL, s.accent)
	muted := ts(fonts.Regular, textSM, theme.Muted)
	side.Text("Parties", sh)
	side.Space(24)
	side.Text("Client", ts(fonts.Bold, textSM, ink))
	side.Text(ct.ClientName, muted)
	side.Space(16)
	side.Text("Contractor", ts(fonts.Bold, textSM, ink))
	side.Text(ct.ContractorName, muted)
	side.Space(32)
	side.Text("Date", sh)
	side.Space(24)
	side.Text(Date(ct.EffectiveDate), muted)

	main.Text(ct.Title, ts(fonts.Bold, text4XL, ink))
	main.Space(32)
	for _, cl := range clauses(ct, true, true) {
		main.Text(cl.title, ts(fonts.Bold, textLG, ink))
		main.Space(8)
		main.Text(cl.body, muted)
		main.Space(24)
	}
	main.Space(24)
	main.Text("Signatures", ts(fonts.Bold, textXL, ink))
	main.Space(32)
	signatures(main, ct, "", true)

	f.Join(side, main)
	divider(c, side.X+side.W, 32, f.Y-32, s.accent)
	return c.Finish(f.Y + 32)
}

func simpleContract(s *scene, ct *record.Contract) *layout.Surface {
	c := s.page(theme.White)
	f := c.Flow(32, 32, layout.PageWidth-64)
	ink := theme.Ink
	body := ts(fonts.Regular, textMD, theme.Gray700)

	if ct.CompanyLogo != "" {
		f.Image(ct.CompanyLogo, 140, 56, layout.AlignLeft, layout.FitContain, false)
		f.Space(32)
	}
	f.Text(ct.Title, ts(fonts.Bold, text3XL, ink))
	f.Space(8)
	f.Text("Effective Date: "+Date(ct.EffectiveDate), ts(fonts.Regular, textMD, theme.Muted))
	f.Space(24)

	f.Panel(layout.PanelStyle{Padding: 16, Fill: theme.Gray100, Radius: 8}, func(in *layout.Flow) {
		in.Text("Parties", ts(fonts.Medium, textLG, ink))
		in.Space(12)
		in.Text("Client: "+ct.ClientName, ts(fonts.Regular, textSM, ink))
		in.Text("Contractor: "+ct.ContractorName, ts(fonts.Regular, textSM, ink))
	})
	f.Space(24)

	for i, cl := range clauses(ct, false, false) {
		if i > 0 {
			f.Space(24)
		}
		f.Text(cl.title, ts(fonts.Medium, textXL, s.accent))
		f.Space(8)
		f.Text(cl.body, body)
	}

	f.Space(80)
	signatures(f, ct, " Signature", false)
	return c.Finish(f.Y + 32)
}
