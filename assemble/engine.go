package assemble

import (
	"fmt"
	"io"
	"strings"

	"github.com/lvillar/docsmith"
)

// Engine names a PDF library used to write documents.
type Engine string

// Supported engines.
const (
	EngineFPDF  Engine = "fpdf"
	EngineGoPDF Engine = "gopdf"
)

// Engines lists the supported engines.
var Engines = []Engine{EngineFPDF, EngineGoPDF}

// ParseEngine converts an engine name into an Engine. An empty name selects
// the fpdf engine.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineFPDF:
		return EngineFPDF, nil
	case EngineGoPDF:
		return EngineGoPDF, nil
	}
	return "", fmt.Errorf("assemble: %w: unknown engine %q", docsmith.ErrInvalidParam, s)
}

type writeFunc func(w io.Writer, captures []*docsmith.Capture, pages []page, s settings) error

func (e Engine) writer() (writeFunc, error) {
	switch e {
	case EngineFPDF, "":
		return writeFPDF, nil
	case EngineGoPDF:
		return writeGoPDF, nil
	}
	return nil, fmt.Errorf("assemble: %w: unknown engine %q", docsmith.ErrInvalidParam, string(e))
}
