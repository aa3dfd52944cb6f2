// Package fonts provides the embedded typefaces used by templates and the
// rasterizer, together with text measurement and line wrapping.
//
// All sizes are CSS pixels. Faces are created at 72 DPI so that one point of
// font size equals one pixel.
package fonts

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Style selects a typeface.
type Style int

// Typefaces.
const (
	Regular Style = iota
	Medium
	Bold
	Italic
	BoldItalic
	Mono
	numStyles
)

var styleNames = [numStyles]string{"regular", "medium", "bold", "italic", "bold-italic", "mono"}

func (s Style) String() string {
	if s < 0 || s >= numStyles {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

// Spec is a typeface at a size.
type Spec struct {
	Style Style
	Size  float64
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64
}

var (
	parseOnce sync.Once
	parsed    [numStyles]*opentype.Font
	parseErr  error
)

func load() error {
	parseOnce.Do(func() {
		sources := [numStyles][]byte{
			goregular.TTF, gomedium.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF, gomono.TTF,
		}
		for i, src := range sources {
			f, err := opentype.Parse(src)
			if err != nil {
				parseErr = fmt.Errorf("fonts: parsing %s: %w", Style(i), err)
				return
			}
			parsed[i] = f
		}
	})
	return parseErr
}

// NewFace returns a new face for spec scaled by scale. Faces are not safe for
// concurrent use; each rasterization pass creates its own.
func NewFace(spec Spec, scale float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	if spec.Style < 0 || spec.Style >= numStyles {
		return nil, fmt.Errorf("fonts: unknown style %d", spec.Style)
	}
	if spec.Size <= 0 || scale <= 0 {
		return nil, fmt.Errorf("fonts: invalid size %v at scale %v", spec.Size, scale)
	}
	return opentype.NewFace(parsed[spec.Style], &opentype.FaceOptions{
		Size:    spec.Size * scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Measurer measures and wraps text at scale 1. It is safe for concurrent use.
type Measurer struct {
	mu    sync.Mutex
	faces map[Spec]font.Face
}

// NewMeasurer returns an empty Measurer.
func NewMeasurer() *Measurer {
	return &Measurer{faces: make(map[Spec]font.Face)}
}

var shared = NewMeasurer()

// Default returns the process-wide Measurer.
func Default() *Measurer { return shared }

func (m *Measurer) face(spec Spec) (font.Face, error) {
	if f, ok := m.faces[spec]; ok {
		return f, nil
	}
	f, err := NewFace(spec, 1)
	if err != nil {
		return nil, err
	}
	m.faces[spec] = f
	return f, nil
}

// Width returns the advance width of text in pixels.
func (m *Measurer) Width(spec Spec, text string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(spec)
	if err != nil {
		return 0
	}
	return toFloat(font.MeasureString(f, text))
}

// Metrics returns the ascent and descent of spec.
func (m *Measurer) Metrics(spec Spec) Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(spec)
	if err != nil {
		return Metrics{Ascent: spec.Size * 0.8, Descent: spec.Size * 0.2}
	}
	fm := f.Metrics()
	return Metrics{Ascent: toFloat(fm.Ascent), Descent: toFloat(fm.Descent)}
}

// Wrap breaks text into lines no wider than maxWidth. Hard line breaks are
// kept, runs of spaces collapse, and words wider than maxWidth are split
// between runes. An empty paragraph yields an empty line.
func (m *Measurer) Wrap(spec Spec, text string, maxWidth float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if maxWidth <= 0 || m.Width(spec, candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			for m.Width(spec, w) > maxWidth {
				head, tail := m.splitWord(spec, w, maxWidth)
				lines = append(lines, head)
				w = tail
			}
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// splitWord returns the longest prefix of w that fits in maxWidth (at least
// one rune) and the remainder.
func (m *Measurer) splitWord(spec Spec, w string, maxWidth float64) (string, string) {
	cut := 0
	for i := range w {
		if i == 0 {
			continue
		}
		if m.Width(spec, w[:i]) > maxWidth {
			break
		}
		cut = i
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(w)
		cut = size
	}
	return w[:cut], w[cut:]
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
