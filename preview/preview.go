// Package preview renders a layout document as a standalone HTML print view.
//
// Surfaces keep the physical size of the PDF export: page surfaces are
// 210mm wide, cards keep their CSS pixel size, and every node is placed in
// percentages of its surface, so printing the view gives the same page
// geometry as the PDF path.
package preview

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/handoff"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
)

// ErrNoPreviewData is returned by Load when no draft was handed off.
var ErrNoPreviewData = errors.New("preview: no preview data")

// Renderer produces a layout from a record. *templates.Renderer implements it.
type Renderer interface {
	Render(rec record.Record, templateID, accent string) (*layout.Document, error)
}

// Option configures a preview page.
type Option func(*options)

type options struct {
	title     string
	autoPrint bool
}

// WithTitle sets the page title. It defaults to "<Kind> Preview".
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithAutoPrint opens the print dialog once the page has loaded.
func WithAutoPrint() Option {
	return func(o *options) { o.autoPrint = true }
}

type pageData struct {
	Title     string
	PageRule  template.CSS
	AutoPrint bool
	Surfaces  []surfaceData
}

type surfaceData struct {
	Name  string
	Style template.CSS
	Nodes []nodeData
}

type nodeData struct {
	Kind      string
	Style     template.CSS
	LineStyle template.CSS
	Lines     []string
	Src       template.URL
}

// Render writes doc as a standalone HTML document to w.
func Render(w io.Writer, doc *layout.Document, opts ...Option) error {
	if doc == nil || len(doc.Surfaces) == 0 {
		return fmt.Errorf("preview: %w: empty document", docsmith.ErrInvalidParam)
	}
	o := options{title: doc.Kind.Title() + " Preview"}
	for _, opt := range opts {
		opt(&o)
	}
	data := pageData{
		Title:     o.title,
		PageRule:  pageRule(doc),
		AutoPrint: o.autoPrint,
	}
	for _, s := range doc.Surfaces {
		data.Surfaces = append(data.Surfaces, renderSurface(s))
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

// pageRule matches the PDF page format: A4 portrait for pages, the card size
// in points for cards.
func pageRule(doc *layout.Document) template.CSS {
	if doc.Surface(layout.SurfacePage) != nil {
		return "size: A4 portrait; margin: 0;"
	}
	s := doc.Surfaces[0]
	return template.CSS(fmt.Sprintf("size: %spt %spt; margin: 0;",
		num(s.Width*docsmith.PointsPerPixel), num(s.Height*docsmith.PointsPerPixel)))
}

func renderSurface(s *layout.Surface) surfaceData {
	var st strings.Builder
	if s.Name == layout.SurfacePage {
		// One CSS pixel of layout is 210mm/794 on paper.
		fmt.Fprintf(&st, "--u: calc(210mm / %s); width: 210mm; height: calc(210mm * %s / %s);", num(s.Width), num(s.Height), num(s.Width))
	} else {
		fmt.Fprintf(&st, "--u: 1px; width: %spx; height: %spx;", num(s.Width), num(s.Height))
	}
	fmt.Fprintf(&st, " background: %s;", rgba(s.Background))
	if s.Radius > 0 {
		fmt.Fprintf(&st, " border-radius: %s;", units(s.Radius))
	}
	out := surfaceData{Name: s.Name, Style: template.CSS(st.String())}
	for i := range s.Nodes {
		out.Nodes = append(out.Nodes, renderNode(s, &s.Nodes[i]))
	}
	return out
}

func renderNode(s *layout.Surface, n *layout.Node) nodeData {
	var st strings.Builder
	fmt.Fprintf(&st, "left: %s%%; top: %s%%; width: %s%%; height: %s%%;",
		num(n.Rect.X/s.Width*100), num(n.Rect.Y/s.Height*100),
		num(n.Rect.W/s.Width*100), num(n.Rect.H/s.Height*100))

	switch n.Kind {
	case layout.TextNode:
		return renderText(n, &st)
	case layout.ImageNode:
		return renderImage(n, &st)
	default:
		return renderBox(n, &st)
	}
}

func renderBox(n *layout.Node, st *strings.Builder) nodeData {
	if n.Fill.A > 0 {
		fmt.Fprintf(st, " background: %s;", rgba(n.Fill))
	}
	if n.StrokeWidth > 0 && n.Stroke.A > 0 {
		fmt.Fprintf(st, " border: %s solid %s;", units(n.StrokeWidth), rgba(n.Stroke))
	}
	if n.Radius > 0 {
		fmt.Fprintf(st, " border-radius: %s;", units(n.Radius))
	}
	return nodeData{Kind: "box", Style: template.CSS(st.String())}
}

var fontRules = map[fonts.Style]string{
	fonts.Regular:    "font-weight: 400;",
	fonts.Medium:     "font-weight: 500;",
	fonts.Bold:       "font-weight: 700;",
	fonts.Italic:     "font-weight: 400; font-style: italic;",
	fonts.BoldItalic: "font-weight: 700; font-style: italic;",
	fonts.Mono:       "font-family: 'Go Mono', monospace;",
}

var aligns = map[layout.Align]string{
	layout.AlignLeft:   "left",
	layout.AlignCenter: "center",
	layout.AlignRight:  "right",
}

func renderText(n *layout.Node, st *strings.Builder) nodeData {
	fmt.Fprintf(st, " color: %s; font-size: %s; text-align: %s; %s",
		rgba(n.Color), units(n.Font.Size), aligns[n.Align], fontRules[n.Font.Style])
	line := fmt.Sprintf("height: %s; line-height: %s;", units(n.LineHeight), units(n.LineHeight))
	return nodeData{
		Kind:      "text",
		Style:     template.CSS(st.String()),
		LineStyle: template.CSS(line),
		Lines:     n.Lines,
	}
}

var fits = map[layout.Fit]string{
	layout.FitContain: "contain",
	layout.FitCover:   "cover",
	layout.FitFill:    "fill",
}

func renderImage(n *layout.Node, st *strings.Builder) nodeData {
	fmt.Fprintf(st, " object-fit: %s;", fits[n.Fit])
	switch {
	case n.Circle:
		st.WriteString(" border-radius: 50%;")
	case n.Radius > 0:
		fmt.Fprintf(st, " border-radius: %s;", units(n.Radius))
	}
	return nodeData{Kind: "image", Style: template.CSS(st.String()), Src: imageURL(n.Src)}
}

// imageURL passes http(s) and inline image URLs through and blanks anything
// else.
func imageURL(src string) template.URL {
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "data:image/") {
		return template.URL(src)
	}
	return ""
}

func units(v float64) string { return "calc(var(--u) * " + num(v) + ")" }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func rgba(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}

// FailureMessage is shown when the preview has no data to render.
func FailureMessage(kind docsmith.Kind) string {
	return fmt.Sprintf("Failed to load %s preview data. Please go back and try again.", kind.Noun())
}

// RenderFailure writes the failure page for kind.
func RenderFailure(w io.Writer, kind docsmith.Kind) error {
	return failureTmpl.Execute(w, struct{ Title, Message string }{kind.Title() + " Preview", FailureMessage(kind)})
}

// Load consumes the draft handed off for session and writes its print view.
// When nothing can be rendered it writes the failure page and returns an
// error wrapping ErrNoPreviewData.
func Load(ctx context.Context, w io.Writer, ch *handoff.Channel, session string, kind docsmith.Kind, r Renderer, opts ...Option) error {
	doc, err := load(ctx, ch, session, kind, r)
	if err != nil {
		if ferr := RenderFailure(w, kind); ferr != nil {
			return ferr
		}
		return fmt.Errorf("%w: %w", ErrNoPreviewData, err)
	}
	return Render(w, doc, opts...)
}

func load(ctx context.Context, ch *handoff.Channel, session string, kind docsmith.Kind, r Renderer) (*layout.Document, error) {
	p, err := ch.Consume(ctx, session, kind)
	if err != nil {
		return nil, err
	}
	rec, err := p.Decode()
	if err != nil {
		return nil, err
	}
	return r.Render(rec, p.Template, p.Accent)
}
