package assemble

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"

	"github.com/lvillar/docsmith"
)

func writeFPDF(w io.Writer, captures []*docsmith.Capture, pages []page, s settings) error {
	first := pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(s.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreator(s.creator, true)
	if s.title != "" {
		pdf.SetTitle(s.title, true)
	}
	if !s.created.IsZero() {
		pdf.SetCreationDate(s.created)
		pdf.SetModificationDate(s.created)
	}

	names := make([]string, len(captures))
	for _, p := range pages {
		if names[p.capture] == "" {
			c := captures[p.capture]
			data, err := encodePNG(c.Image)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", c.Surface, err)
			}
			names[p.capture] = fmt.Sprintf("capture-%d", p.capture)
			pdf.RegisterImageOptionsReader(names[p.capture], fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
			if err := pdf.Error(); err != nil {
				return fmt.Errorf("registering %s: %w", c.Surface, err)
			}
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.Width, Ht: p.Height})
		pdf.ImageOptions(names[p.capture], 0, p.offset, p.Width, p.imgH, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if len(s.appendix) > 0 {
		if err := appendPDF(pdf, s.appendix); err != nil {
			return err
		}
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// appendPDF imports every page of src at its own media box size.
func appendPDF(pdf *fpdf.Fpdf, src []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("importing appendix: %v", r)
		}
	}()
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))

	tpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	sizes := imp.GetPageSizes()
	for n := 1; n <= len(sizes); n++ {
		if n > 1 {
			tpl = imp.ImportPageFromStream(pdf, &rs, n, "/MediaBox")
		}
		w, h := docsmith.A4Width, docsmith.A4Height
		if box, ok := sizes[n]["/MediaBox"]; ok && box["w"] > 0 && box["h"] > 0 {
			w, h = box["w"], box["h"]
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
	}
	return pdf.Error()
}
