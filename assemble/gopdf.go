package assemble

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"

	"github.com/signintech/gopdf"

	"github.com/lvillar/docsmith"
)

const jpegQuality = 92

func writeGoPDF(w io.Writer, captures []*docsmith.Capture, pages []page, s settings) error {
	first := pages[0]
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: first.Width, H: first.Height},
	})
	if !s.compress {
		pdf.SetNoCompression()
	}
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        s.title,
		Creator:      s.creator,
		CreationDate: s.created,
	})

	holders := make([]gopdf.ImageHolder, len(captures))
	for _, p := range pages {
		if holders[p.capture] == nil {
			c := captures[p.capture]
			data, err := encodeJPEG(c.Image)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", c.Surface, err)
			}
			holder, err := gopdf.ImageHolderByBytes(data)
			if err != nil {
				return fmt.Errorf("loading %s: %w", c.Surface, err)
			}
			holders[p.capture] = holder
		}
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &gopdf.Rect{W: p.Width, H: p.Height}})
		if err := pdf.ImageByHolder(holders[p.capture], 0, p.offset, &gopdf.Rect{W: p.Width, H: p.imgH}); err != nil {
			return fmt.Errorf("drawing %s: %w", p.Surface, err)
		}
	}
	return pdf.Write(w)
}

// encodeJPEG flattens img onto white, since JPEG has no alpha channel.
func encodeJPEG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
