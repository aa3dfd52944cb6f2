package templates

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/theme"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sample(t *testing.T, kind docsmith.Kind) record.Record {
	t.Helper()
	rec, err := record.Sample(kind, fixedNow)
	if err != nil {
		t.Fatalf("sample %s: %v", kind, err)
	}
	return rec
}

func TestCatalogDefaults(t *testing.T) {
	want := map[docsmith.Kind]string{
		docsmith.KindInvoice:      "professional",
		docsmith.KindQuotation:    "professional",
		docsmith.KindCV:           "classic",
		docsmith.KindCoverLetter:  "classic",
		docsmith.KindContract:     "formal",
		docsmith.KindBusinessCard: "sleek",
	}
	cat := Catalog()
	if len(cat) != len(docsmith.Kinds) {
		t.Fatalf("catalog has %d kinds, want %d", len(cat), len(docsmith.Kinds))
	}
	for _, info := range cat {
		if info.Default != want[info.Kind] || info.Templates[0] != info.Default {
			t.Errorf("%s default = %q, want %q", info.Kind, info.Default, want[info.Kind])
		}
		if Default(info.Kind) != info.Default {
			t.Errorf("Default(%s) = %q", info.Kind, Default(info.Kind))
		}
	}
}

func TestEveryTemplateRenders(t *testing.T) {
	for _, info := range Catalog() {
		rec := sample(t, info.Kind)
		for _, name := range info.Templates {
			doc, err := Render(rec, name, theme.DefaultAccent)
			if err != nil {
				t.Fatalf("%s/%s: %v", info.Kind, name, err)
			}
			if doc.Template != name || doc.Kind != info.Kind {
				t.Fatalf("%s/%s rendered as %s/%s", info.Kind, name, doc.Kind, doc.Template)
			}
			for _, s := range doc.Surfaces {
				if len(s.Nodes) == 0 {
					t.Errorf("%s/%s surface %s is empty", info.Kind, name, s.Name)
				}
				if info.Kind == docsmith.KindBusinessCard {
					if s.Width != layout.CardWidth || s.Height != layout.CardHeight {
						t.Errorf("%s/%s card %s is %vx%v", info.Kind, name, s.Name, s.Width, s.Height)
					}
					continue
				}
				if s.Name != layout.SurfacePage || s.Width != layout.PageWidth || s.Height < layout.PageMinHeight {
					t.Errorf("%s/%s page %s is %vx%v", info.Kind, name, s.Name, s.Width, s.Height)
				}
			}
		}
	}
}

func TestUnknownTemplateFallsBack(t *testing.T) {
	doc, err := Render(sample(t, docsmith.KindContract), "baroque", "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Template != "formal" {
		t.Fatalf("template = %q, want formal", doc.Template)
	}
	if name, _ := Resolve(docsmith.KindCV, "baroque"); name != "classic" {
		t.Fatalf("Resolve = %q", name)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(nil, "", ""); !errors.Is(err, ErrNilRecord) {
		t.Fatalf("expected ErrNilRecord, got %v", err)
	}
	var inv *record.Invoice
	if _, err := Render(inv, "", ""); !errors.Is(err, ErrNilRecord) {
		t.Fatalf("expected ErrNilRecord for typed nil, got %v", err)
	}
	if _, err := Resolve("memo", ""); !errors.Is(err, docsmith.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, kind := range docsmith.Kinds {
		rec := sample(t, kind)
		a, err := Render(rec, "", "#10b981")
		if err != nil {
			t.Fatal(err)
		}
		b, _ := Render(rec, "", "#10b981")
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("%s renders differ between calls", kind)
		}
	}
}

func TestEmptyInvoicePlaceholders(t *testing.T) {
	inv := &record.Invoice{InvoiceNumber: "INV-9", Date: fixedNow}
	for _, name := range []string{"professional", "modern", "simple"} {
		doc, err := Render(inv, name, "")
		if err != nil {
			t.Fatal(err)
		}
		text := doc.Surfaces[0].Text()
		for _, want := range []string{NoItemsText, PlaceholderClientName, PlaceholderClientEmail, "INVOICE", "$0.00", ThankYouText} {
			if !strings.Contains(text, want) {
				t.Errorf("%s: missing %q", name, want)
			}
		}
		if strings.Count(text, NoItemsText) != 1 {
			t.Errorf("%s: placeholder row repeated", name)
		}
	}
}

func TestQuotationLabels(t *testing.T) {
	doc, err := Render(sample(t, docsmith.KindQuotation), "simple", "")
	if err != nil {
		t.Fatal(err)
	}
	text := doc.Surfaces[0].Text()
	for _, want := range []string{"QUOTATION", "Quote To:", "Quotation #: QUO-001", "Valid Until: March 15th, 2024", "$1,050.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}
	if strings.Contains(text, "INVOICE") {
		t.Error("quotation shows the invoice label")
	}
}

func TestBusinessCardSurfaces(t *testing.T) {
	doc, err := Render(sample(t, docsmith.KindBusinessCard), "bold", theme.DefaultAccent)
	if err != nil {
		t.Fatal(err)
	}
	if names := doc.Names(); len(names) != 2 || names[0] != layout.SurfaceFront || names[1] != layout.SurfaceBack {
		t.Fatalf("surfaces = %v", names)
	}
	want, _ := theme.Parse("#3b82f6")
	if doc.Surfaces[0].Background != want {
		t.Fatalf("front background = %v, want the card's accent %v", doc.Surfaces[0].Background, want)
	}
	if doc.Surfaces[0].Radius == 0 {
		t.Fatal("cards have rounded corners")
	}
}

func TestRemoteImagesBecomeSources(t *testing.T) {
	inv := sample(t, docsmith.KindInvoice).(*record.Invoice)
	inv.CompanyLogo = record.PlaceholderLogo
	doc, err := Render(inv, "professional", "")
	if err != nil {
		t.Fatal(err)
	}
	if src := doc.Surfaces[0].Sources(); len(src) != 1 || src[0] != record.PlaceholderLogo {
		t.Fatalf("sources = %v", src)
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		v    float64
		code string
		want string
	}{
		{135, "USD", "$135.00"},
		{1234.5, "USD", "$1,234.50"},
		{-5, "EUR", "-€5.00"},
		{10, "", "$10.00"},
		{10, "nope", "$10.00"},
		{0.125, "GBP", "£0.13"},
		{10, "CHF", "CHF 10.00"},
		{10, "CAD", "CA$10.00"},
		{2500, "INR", "₹2,500.00"},
	}
	for _, tt := range tests {
		if got := Money(tt.v, tt.code); got != tt.want {
			t.Errorf("Money(%v, %q) = %q, want %q", tt.v, tt.code, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	tests := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 31: "31st"}
	for day, suffix := range tests {
		got := Date(time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC))
		if want := "January " + suffix + ", 2024"; got != want {
			t.Errorf("Date(day %d) = %q, want %q", day, got, want)
		}
	}
	if Date(time.Time{}) != "-" {
		t.Error("zero date should render a dash")
	}
}

func TestBullets(t *testing.T) {
	got := bullets("- first\n\n  - second  \nthird")
	if len(got) != 3 || got[0] != "first" || got[1] != "second" || got[2] != "third" {
		t.Fatalf("bullets = %q", got)
	}
}
