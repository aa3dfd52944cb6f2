// Package docsmith holds the shared vocabulary of the document export
// pipeline: document kinds, output formats, page geometry, raster captures,
// export artifacts and the export error taxonomy.
//
// The pipeline stages live in subpackages: templates renders a record into a
// layout tree, raster captures a mounted layout surface as a bitmap, assemble
// turns captures into a PDF or PNG artifact and export sequences the whole
// operation for one editing workspace.
package docsmith

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies a document type.
type Kind string

// Document kinds.
const (
	KindInvoice      Kind = "invoice"
	KindQuotation    Kind = "quotation"
	KindCV           Kind = "cv"
	KindCoverLetter  Kind = "cover-letter"
	KindContract     Kind = "contract"
	KindBusinessCard Kind = "business-card"
)

// Kinds lists every document kind in display order.
var Kinds = []Kind{
	KindInvoice,
	KindQuotation,
	KindCV,
	KindCoverLetter,
	KindContract,
	KindBusinessCard,
}

// ParseKind converts a kind name into a Kind. Underscores and case are tolerated.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string { return string(k) }

// Title returns the human-readable document type name.
func (k Kind) Title() string {
	switch k {
	case KindInvoice:
		return "Invoice"
	case KindQuotation:
		return "Quotation"
	case KindCV:
		return "CV"
	case KindCoverLetter:
		return "Cover Letter"
	case KindContract:
		return "Contract"
	case KindBusinessCard:
		return "Business Card"
	}
	return string(k)
}

// Noun returns the document type name as used inside a sentence.
func (k Kind) Noun() string {
	if k == KindCV {
		return k.Title()
	}
	return strings.ToLower(k.Title())
}

// Formats returns the output formats a kind can be exported to.
func (k Kind) Formats() []Format {
	switch k {
	case KindInvoice, KindQuotation, KindBusinessCard:
		return []Format{FormatPDF, FormatPNG}
	case KindCV, KindCoverLetter, KindContract:
		return []Format{FormatPDF}
	}
	return nil
}

// Supports reports whether k can be exported to f.
func (k Kind) Supports(f Format) bool {
	for _, candidate := range k.Formats() {
		if candidate == f {
			return true
		}
	}
	return false
}

// PreviewKey returns the fixed handoff key used to pass a draft of this kind
// to a separately opened preview view.
func (k Kind) PreviewKey() string {
	switch k {
	case KindInvoice:
		return "invoicePreviewData"
	case KindQuotation:
		return "quotationPreviewData"
	case KindCV:
		return "cvPreviewData"
	case KindCoverLetter:
		return "coverLetterPreviewData"
	case KindContract:
		return "contractPreviewData"
	case KindBusinessCard:
		return "businessCardPreviewData"
	}
	return ""
}

// Format is an export output format.
type Format string

// Output formats.
const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) String() string { return string(f) }

// Label returns the upper-case label used in user-facing messages.
func (f Format) Label() string { return strings.ToUpper(string(f)) }

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string { return "." + string(f) }

// MIMEType returns the media type of files in this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName derives the download file name for a document.
// Whitespace in identifier becomes underscores; an empty identifier falls
// back to "draft", or to "contract" for contracts, which are named by title alone.
func FileName(kind Kind, identifier string, format Format) string {
	id := whitespaceRun.ReplaceAllString(strings.TrimSpace(identifier), "_")
	ext := format.Ext()
	switch kind {
	case KindContract:
		if id == "" {
			id = "contract"
		}
		return id + ext
	case KindBusinessCard:
		if id == "" {
			id = "draft"
		}
		return id + "_BusinessCard" + ext
	}
	if id == "" {
		id = "draft"
	}
	return string(kind) + "-" + id + ext
}
