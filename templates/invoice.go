package templates

import (
	"strings"
	"time"

	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

// Placeholders shown while invoice fields are still blank.
const (
	PlaceholderClientName     = "Client Name"
	PlaceholderClientEmail    = "client@email.com"
	PlaceholderClientAddress  = "Client Address"
	PlaceholderCompanyName    = "Your Company Inc."
	PlaceholderCompanyEmail   = "your-email@company.com"
	PlaceholderCompanyAddress = "123 Business Rd, Suite 100\nBusiness City, 12345"
	NoItemsText               = "No items added yet."
	ThankYouText              = "Thank you for your business!"
)

const pagePad = 40.0

// invoiceView adapts invoices and quotations to the shared invoice templates.
type invoiceView struct {
	*record.Invoice
	number     string
	quote      bool
	validUntil time.Time
}

func (v invoiceView) docType() string {
	if v.quote {
		return "QUOTATION"
	}
	return "INVOICE"
}

func (v invoiceView) money(amount float64) string { return Money(amount, v.CurrencyCode()) }

func (v invoiceView) taxLabel() string { return "Tax (" + Number(v.TaxRate) + "%)" }

// itemColumns are the header labels of the item table.
type itemColumns [4]string

// items renders the line item table, or the placeholder row when there are none.
func (v invoiceView) items(f *layout.Flow, labels itemColumns, descWidth float64, style layout.TableStyle) {
	tb := layout.NewTable(f)
	tb.SetColumns(
		layout.ColumnDef{Width: descWidth},
		layout.ColumnDef{Align: layout.AlignCenter},
		layout.ColumnDef{Align: layout.AlignRight},
		layout.ColumnDef{Align: layout.AlignRight},
	)
	tb.SetStyle(style)
	h := tb.AddHeaderRow()
	for _, l := range labels {
		h.AddCell(l)
	}
	for _, it := range v.Items {
		r := tb.AddRow()
		r.AddCell(it.Name).SetStyle(layout.CellStyle{Font: layout.Ptr(fonts.Spec{Style: fonts.Medium, Size: style.CellFont.Size})})
		r.AddCell(Number(it.Quantity))
		r.AddCell(v.money(it.Price))
		r.AddCell(v.money(it.Amount())).SetStyle(layout.CellStyle{Font: layout.Ptr(fonts.Spec{Style: fonts.Medium, Size: style.CellFont.Size})})
	}
	tb.SetPlaceholder(NoItemsText, layout.CellStyle{
		Align:     layout.Ptr(layout.AlignCenter),
		TextColor: layout.Ptr(theme.Muted),
		Padding:   layout.Ptr(layout.SymmetricPadding(32, 16)),
	})
	tb.MustRender()
}

// totals sets the subtotal and tax rows.
func (v invoiceView) totals(f *layout.Flow, label, value layout.TextStyle, gap float64) record.Totals {
	t := v.Totals()
	f.Space(gap)
	f.Pair("Subtotal", label, v.money(t.Subtotal), value)
	f.Space(2 * gap)
	f.Pair(v.taxLabel(), label, v.money(t.Tax), value)
	f.Space(gap)
	return t
}

func (v invoiceView) footer(f *layout.Flow, withCompany bool) {
	muted := center(ts(fonts.Regular, textXS, theme.Muted))
	f.Space(64)
	f.Text(ThankYouText, muted)
	if withCompany {
		addr := strings.ReplaceAll(v.CompanyAddress, "\n", ", ")
		f.Text(v.CompanyName+" | "+addr+" | "+v.CompanyEmail, muted)
	}
}

func professionalInvoice(s *scene, v invoiceView) *layout.Surface {
	c := s.page(theme.White)
	f := c.Flow(pagePad, pagePad, layout.PageWidth-2*pagePad)
	ink := theme.Ink
	muted := ts(fonts.Regular, textMD, theme.Muted)

	head := f.Columns(2, 16)
	if v.CompanyLogo != "" {
		head[0].Image(v.CompanyLogo, 160, 64, layout.AlignLeft, layout.FitContain, false)
	} else {
		head[0].Text(v.CompanyName, ts(fonts.Bold, text3XL, s.accent))
	}
	head[1].Text(v.docType(), right(ts(fonts.Bold, text3XL, s.accent)))
	head[1].Text("#"+v.number, right(muted))
	head[1].Space(4)
	head[1].Text("Date: "+Date(v.Date), right(muted))
	if v.quote && !v.validUntil.IsZero() {
		head[1].Text("Valid Until: "+Date(v.validUntil), right(muted))
	}
	f.Join(head...)

	f.Space(32)
	f.Rule(1, theme.Border)
	f.Space(32)

	billed := "Billed To:"
	if v.quote {
		billed = "Quote To:"
	}
	label := ts(fonts.Medium, textMD, s.accent)
	bold := ts(fonts.Bold, textMD, ink)
	body := ts(fonts.Regular, textMD, ink)
	parties := f.Columns(2, 32)
	parties[0].Text(billed, label)
	parties[0].Space(8)
	parties[0].Text(or(v.ClientName, PlaceholderClientName), bold)
	parties[0].Text(or(v.ClientEmail, PlaceholderClientEmail), body)
	parties[0].Text(or(v.ClientAddress, PlaceholderClientAddress), body)
	parties[1].Text("From:", right(label))
	parties[1].Space(8)
	parties[1].Text(or(v.CompanyName, PlaceholderCompanyName), right(bold))
	parties[1].Text(or(v.CompanyEmail, PlaceholderCompanyEmail), right(body))
	parties[1].Text(or(v.CompanyAddress, PlaceholderCompanyAddress), right(body))
	f.Join(parties...)
	f.Space(32)

	v.items(f, itemColumns{"Item", "QTY", "Price", "Total"}, f.W/2, layout.TableStyle{
		Outline:     &layout.BorderStyle{Width: 1, Color: theme.Border},
		Border:      &layout.BorderStyle{Width: 1, Color: theme.Border},
		Radius:      8,
		CellPadding: layout.UniformPadding(12),
		CellFont:    fonts.Spec{Style: fonts.Regular, Size: textSM},
		TextColor:   ink,
		HeaderStyle: &layout.CellStyle{
			FillColor: layout.Ptr(s.accent),
			TextColor: layout.Ptr(theme.White),
			Font:      layout.Ptr(fonts.Spec{Style: fonts.Medium, Size: textSM}),
		},
		AlternateRows: &layout.AlternateStyle{
			Even: layout.CellStyle{FillColor: layout.Ptr(theme.RowTint)},
		},
	})

	f.Space(32)
	sum := f.Column(f.W-384, 384)
	t := v.totals(sum, ts(fonts.Regular, textMD, theme.Muted), ts(fonts.Medium, textMD, ink), 8)
	sum.Space(8)
	sum.Rule(1, theme.Border)
	sum.Space(8)
	totalStyle := ts(fonts.Bold, textLG, theme.White)
	sum.Panel(layout.PanelStyle{Padding: 8, Fill: s.accent, Radius: 8}, func(in *layout.Flow) {
		in.X += 8
		in.W -= 16
		in.Pair("Total", totalStyle, v.money(t.Total), totalStyle)
	})
	f.Join(sum)

	if strings.TrimSpace(v.Notes) != "" {
		f.Space(32)
		f.Rule(1, theme.Border)
		f.Space(32)
		f.Text("Notes", label)
		f.Space(8)
		f.Text(v.Notes, ts(fonts.Regular, textSM, theme.Muted))
	}

	v.footer(f, true)
	return c.Finish(f.Y + pagePad)
}

func modernInvoice(s *scene, v invoiceView) *layout.Surface {
	c := s.page(theme.White)
	f := c.Flow(pagePad, pagePad, layout.PageWidth-2*pagePad)
	ink := theme.Ink
	muted := ts(fonts.Regular, textMD, theme.Muted)

	head := f.Columns(2, 16)
	head[0].Text(v.CompanyName, ts(fonts.Bold, text4XL, s.accent))
	if v.CompanyLogo != "" {
		head[1].Image(v.CompanyLogo, 120, 48, layout.AlignRight, layout.FitContain, false)
		head[1].Space(8)
	}
	head[1].Text(v.CompanyAddress, right(muted))
	f.Join(head...)
	f.Space(16)

	f.Text(v.docType(), ts(fonts.Bold, text4XL, ink))
	f.Space(12)
	f.Bar(96, 6, 3, s.accent)
	f.Space(32)

	billed, numLabel := "Billed To", "Invoice No."
	if v.quote {
		billed, numLabel = "Quote To", "Quotation No."
	}
	label := ts(fonts.Medium, textSM, s.accent)
	small := ts(fonts.Regular, textSM, theme.Muted)
	body := ts(fonts.Regular, textMD, ink)
	cols := f.Columns(3, 32)
	cols[0].Text(strings.ToUpper(billed), label)
	cols[0].Space(8)
	cols[0].Text(or(v.ClientName, PlaceholderClientName), ts(fonts.Bold, textMD, ink))
	cols[0].Text(or(v.ClientEmail, PlaceholderClientEmail), small)
	cols[0].Text(or(v.ClientAddress, PlaceholderClientAddress), small)
	cols[1].Text(strings.ToUpper(numLabel), label)
	cols[1].Space(8)
	cols[1].Text(v.number, body)
	cols[2].Text("DATE OF ISSUE", label)
	cols[2].Space(8)
	cols[2].Text(Date(v.Date), body)
	if v.quote && !v.validUntil.IsZero() {
		cols[2].Space(16)
		cols[2].Text("VALID UNTIL", label)
		cols[2].Space(8)
		cols[2].Text(Date(v.validUntil), body)
	}
	f.Join(cols...)
	f.Space(32)

	v.items(f, itemColumns{"Description", "Qty", "Unit Price", "Amount"}, f.W/2, layout.TableStyle{
		CellPadding: layout.SymmetricPadding(12, 8),
		CellFont:    fonts.Spec{Style: fonts.Regular, Size: textSM},
		TextColor:   ink,
		HeaderStyle: &layout.CellStyle{
			TextColor: layout.Ptr(s.accent),
			Font:      layout.Ptr(fonts.Spec{Style: fonts.Bold, Size: textMD}),
		},
	})
	f.Rule(1, s.accent)

	f.Space(32)
	halves := f.Columns(2, 0)
	if strings.TrimSpace(v.Notes) != "" {
		halves[0].Text("NOTES", label)
		halves[0].Space(8)
		halves[0].Text(v.Notes, ts(fonts.Regular, textXS, theme.Muted))
	}
	halves[1].Panel(layout.PanelStyle{Padding: 16, Fill: theme.Lighten(s.accent, 0.9), Radius: 8}, func(in *layout.Flow) {
		t := v.totals(in, small, ts(fonts.Medium, textSM, ink), 4)
		in.Space(4)
		in.Rule(1, theme.Gray300)
		in.Space(8)
		total := ts(fonts.Bold, textLG, s.accent)
		in.Pair("Total", total, v.money(t.Total), total)
	})
	f.Join(halves...)

	v.footer(f, false)
	return c.Finish(f.Y + pagePad)
}

func simpleInvoice(s *scene, v invoiceView) *layout.Surface {
	c := s.page(theme.White)
	f := c.Flow(pagePad, pagePad, layout.PageWidth-2*pagePad)
	ink := theme.Ink
	body := ts(fonts.Regular, textSM, ink)
	bold := ts(fonts.Bold, textSM, ink)

	head := f.Columns(2, 16)
	head[0].Text(v.docType(), ts(fonts.Bold, text3XL, s.accent))
	if v.CompanyLogo != "" {
		head[1].Image(v.CompanyLogo, 140, 56, layout.AlignRight, layout.FitContain, false)
	}
	f.Join(head...)
	f.Space(40)

	numLabel, billTo := "Invoice #:", "Bill To:"
	if v.quote {
		numLabel, billTo = "Quotation #:", "Quote To:"
	}
	cols := f.Columns(2, 32)
	cols[0].Text(or(v.CompanyName, PlaceholderCompanyName), bold)
	cols[0].Text(or(v.CompanyAddress, PlaceholderCompanyAddress), body)
	cols[0].Text(or(v.CompanyEmail, PlaceholderCompanyEmail), body)
	cols[1].Text(numLabel+" "+v.number, right(body))
	cols[1].Text("Date: "+Date(v.Date), right(body))
	if v.quote && !v.validUntil.IsZero() {
		cols[1].Text("Valid Until: "+Date(v.validUntil), right(body))
	}
	f.Join(cols...)
	f.Space(32)

	f.Panel(layout.PanelStyle{Padding: 16, Stroke: theme.Border, StrokeWidth: 1, Radius: 6}, func(in *layout.Flow) {
		in.Text(billTo, ts(fonts.Medium, textSM, ink))
		in.Space(8)
		in.Text(or(v.ClientName, PlaceholderClientName), bold)
		in.Text(or(v.ClientAddress, PlaceholderClientAddress), body)
		in.Text(or(v.ClientEmail, PlaceholderClientEmail), body)
	})
	f.Space(32)

	v.items(f, itemColumns{"Item Description", "Qty", "Rate", "Amount"}, f.W*0.6, layout.TableStyle{
		Border:      &layout.BorderStyle{Width: 1, Color: theme.Border},
		CellPadding: layout.UniformPadding(12),
		CellFont:    fonts.Spec{Style: fonts.Regular, Size: textSM},
		TextColor:   ink,
		HeaderStyle: &layout.CellStyle{
			FillColor: layout.Ptr(theme.Gray100),
			TextColor: layout.Ptr(theme.Muted),
			Font:      layout.Ptr(fonts.Spec{Style: fonts.Medium, Size: textSM}),
		},
	})

	f.Space(32)
	sum := f.Column(f.W-320, 320)
	t := v.totals(sum, ts(fonts.Regular, textSM, theme.Muted), body, 4)
	sum.Space(4)
	sum.Rule(1, theme.Border)
	sum.Space(8)
	total := ts(fonts.Bold, textLG, s.accent)
	sum.Pair("Total", total, v.money(t.Total), total)
	f.Join(sum)

	if strings.TrimSpace(v.Notes) != "" {
		f.Space(32)
		f.Text("Notes", ts(fonts.Medium, textSM, ink))
		f.Space(8)
		f.Panel(layout.PanelStyle{Padding: 12, Stroke: theme.Border, StrokeWidth: 1, Radius: 6}, func(in *layout.Flow) {
			in.Text(v.Notes, ts(fonts.Regular, textXS, theme.Muted))
		})
	}

	v.footer(f, false)
	return c.Finish(f.Y + pagePad)
}
