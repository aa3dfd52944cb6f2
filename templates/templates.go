// Package templates renders document records into layout trees.
//
// Every document kind has a fixed catalog of named templates. Rendering is a
// pure function of (record, template, accent): an unknown template name falls
// back to the kind's default template instead of failing.
package templates

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

// ErrNilRecord is returned when Render is called without a record.
var ErrNilRecord = errors.New("templates: nil record")

// renderFunc lays out one record with one template.
type renderFunc func(s *scene, rec record.Record) ([]*layout.Surface, error)

type entry struct {
	name   string
	render renderFunc
}

// catalog is the ordered template table of one kind. The first entry is the
// default.
type catalog []entry

func (c catalog) lookup(id string) entry {
	for _, e := range c {
		if e.name == id {
			return e
		}
	}
	return c[0]
}

var catalogs = map[docsmith.Kind]catalog{
	docsmith.KindInvoice: {
		{"professional", invoiceTemplate(professionalInvoice)},
		{"modern", invoiceTemplate(modernInvoice)},
		{"simple", invoiceTemplate(simpleInvoice)},
	},
	docsmith.KindQuotation: {
		{"professional", invoiceTemplate(professionalInvoice)},
		{"modern", invoiceTemplate(modernInvoice)},
		{"simple", invoiceTemplate(simpleInvoice)},
	},
	docsmith.KindCV: {
		{"classic", cvTemplate(classicCV)},
		{"modern", cvTemplate(modernCV)},
		{"creative", cvTemplate(creativeCV)},
		{"minimalist", cvTemplate(minimalistCV)},
		{"professional", cvTemplate(professionalCV)},
	},
	docsmith.KindCoverLetter: {
		{"classic", letterTemplate(classicLetter)},
		{"modern", letterTemplate(modernLetter)},
		{"simple", letterTemplate(simpleLetter)},
	},
	docsmith.KindContract: {
		{"formal", contractTemplate(formalContract)},
		{"modern", contractTemplate(modernContract)},
		{"simple", contractTemplate(simpleContract)},
	},
	docsmith.KindBusinessCard: {
		{"sleek", cardTemplate(sleekCard)},
		{"minimal", cardTemplate(minimalCard)},
		{"bold", cardTemplate(boldCard)},
	},
}

// Info describes the templates available for a kind.
type Info struct {
	Kind      docsmith.Kind `json:"kind"`
	Default   string        `json:"default"`
	Templates []string      `json:"templates"`
}

// Catalog lists every kind's templates in kind order.
func Catalog() []Info {
	out := make([]Info, 0, len(docsmith.Kinds))
	for _, k := range docsmith.Kinds {
		c, ok := catalogs[k]
		if !ok {
			continue
		}
		info := Info{Kind: k, Default: c[0].name}
		for _, e := range c {
			info.Templates = append(info.Templates, e.name)
		}
		out = append(out, info)
	}
	return out
}

// Default returns the default template name for kind, or "" when the kind has
// no catalog.
func Default(kind docsmith.Kind) string {
	if c, ok := catalogs[kind]; ok {
		return c[0].name
	}
	return ""
}

// Resolve returns the template name Render will use for id.
func Resolve(kind docsmith.Kind, id string) (string, error) {
	c, ok := catalogs[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", docsmith.ErrUnknownKind, kind)
	}
	return c.lookup(id).name, nil
}

// Renderer renders records with a shared text measurer.
type Renderer struct {
	m *fonts.Measurer
}

// New returns a Renderer measuring text with m, or the shared measurer when m
// is nil.
func New(m *fonts.Measurer) *Renderer {
	if m == nil {
		m = fonts.Default()
	}
	return &Renderer{m: m}
}

var std = New(nil)

// Render renders rec with the shared Renderer.
func Render(rec record.Record, templateID, accent string) (*layout.Document, error) {
	return std.Render(rec, templateID, accent)
}

// Render lays out rec using the named template and accent color. Invalid
// accents fall back to theme.DefaultAccent.
func (r *Renderer) Render(rec record.Record, templateID, accent string) (*layout.Document, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	kind := rec.Kind()
	c, ok := catalogs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", docsmith.ErrUnknownKind, kind)
	}
	e := c.lookup(templateID)
	s := &scene{m: r.m, accent: theme.Resolve(accent, theme.Fallback)}
	surfaces, err := e.render(s, rec)
	if err != nil {
		return nil, err
	}
	return &layout.Document{Kind: kind, Template: e.name, Surfaces: surfaces}, nil
}

// scene carries what every template needs while laying out.
type scene struct {
	m      *fonts.Measurer
	accent color.RGBA
}

func (s *scene) page(bg color.RGBA) *layout.Canvas {
	return layout.NewCanvas(layout.SurfacePage, layout.PageWidth, layout.PageMinHeight, bg, s.m)
}

func (s *scene) card(name string, bg color.RGBA) *layout.Canvas {
	c := layout.NewCanvas(name, layout.CardWidth, layout.CardHeight, bg, s.m)
	c.SetRadius(8)
	return c
}

func wrongType(want string, rec record.Record) error {
	return fmt.Errorf("templates: %s template given %T", want, rec)
}

func invoiceTemplate(fn func(*scene, invoiceView) *layout.Surface) renderFunc {
	return func(s *scene, rec record.Record) ([]*layout.Surface, error) {
		var v invoiceView
		switch r := rec.(type) {
		case *record.Invoice:
			if r == nil {
				return nil, ErrNilRecord
			}
			v = invoiceView{Invoice: r, number: r.InvoiceNumber}
		case *record.Quotation:
			if r == nil {
				return nil, ErrNilRecord
			}
			v = invoiceView{Invoice: &r.Invoice, number: r.QuotationNumber, quote: true, validUntil: r.ValidUntil}
		default:
			return nil, wrongType("invoice", rec)
		}
		return []*layout.Surface{fn(s, v)}, nil
	}
}

func cvTemplate(fn func(*scene, *record.CV) *layout.Surface) renderFunc {
	return func(s *scene, rec record.Record) ([]*layout.Surface, error) {
		cv, ok := rec.(*record.CV)
		if !ok {
			return nil, wrongType("cv", rec)
		}
		if cv == nil {
			return nil, ErrNilRecord
		}
		return []*layout.Surface{fn(s, cv)}, nil
	}
}

func letterTemplate(fn func(*scene, *record.CoverLetter) *layout.Surface) renderFunc {
	return func(s *scene, rec record.Record) ([]*layout.Surface, error) {
		cl, ok := rec.(*record.CoverLetter)
		if !ok {
			return nil, wrongType("cover letter", rec)
		}
		if cl == nil {
			return nil, ErrNilRecord
		}
		return []*layout.Surface{fn(s, cl)}, nil
	}
}

func contractTemplate(fn func(*scene, *record.Contract) *layout.Surface) renderFunc {
	return func(s *scene, rec record.Record) ([]*layout.Surface, error) {
		c, ok := rec.(*record.Contract)
		if !ok {
			return nil, wrongType("contract", rec)
		}
		if c == nil {
			return nil, ErrNilRecord
		}
		return []*layout.Surface{fn(s, c)}, nil
	}
}

// cardTemplate renders the front and back faces, in that order.
func cardTemplate(fn func(*scene, *record.BusinessCard) (front, back *layout.Surface)) renderFunc {
	return func(s *scene, rec record.Record) ([]*layout.Surface, error) {
		bc, ok := rec.(*record.BusinessCard)
		if !ok {
			return nil, wrongType("business card", rec)
		}
		if bc == nil {
			return nil, ErrNilRecord
		}
		if bc.AccentColor != "" {
			cs := *s
			cs.accent = theme.Resolve(bc.AccentColor, s.accent)
			s = &cs
		}
		front, back := fn(s, bc)
		return []*layout.Surface{front, back}, nil
	}
}
