package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/export"
	"github.com/lvillar/docsmith/preview"
	"github.com/lvillar/docsmith/qrcode"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/studio"
	"github.com/lvillar/docsmith/suggest"
	"github.com/lvillar/docsmith/templates"
	"github.com/lvillar/docsmith/workspace"
)

// RegisterDefaultTools adds the docsmith tools to the server.
func RegisterDefaultTools(s *Server, st *studio.Studio) {
	s.AddTool(listTemplatesTool())
	s.AddTool(exportDocumentTool(st))
	s.AddTool(suggestItemsTool(st))
	s.AddTool(qrCodeTool())
	s.AddTool(previewHTMLTool(st))
}

var kindNames = func() []string {
	out := make([]string, len(docsmith.Kinds))
	for i, k := range docsmith.Kinds {
		out[i] = string(k)
	}
	return out
}()

func draftProperties() map[string]any {
	return map[string]any{
		"kind": map[string]any{
			"type":        "string",
			"enum":        kindNames,
			"description": "Document type",
		},
		"record": map[string]any{
			"type":        "object",
			"description": "Document data using the editor's field names (e.g. invoiceNumber, clientName, items). The kind's sample is used when omitted.",
		},
		"template": map[string]any{
			"type":        "string",
			"description": "Template name from list_templates. Unknown names fall back to the kind's default.",
		},
		"accentColor": map[string]any{
			"type":        "string",
			"description": "Accent color as #rrggbb or an HSL triple such as \"221 83% 53%\"",
		},
	}
}

func listTemplatesTool() Tool {
	return Tool{
		Name:        "list_templates",
		Description: "List the document types, their templates and the default template of each.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			jsonBytes, err := json.MarshalIndent(templates.Catalog(), "", "  ")
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("%s", jsonBytes), nil
		},
	}
}

func exportDocumentTool(st *studio.Studio) Tool {
	props := draftProperties()
	props["format"] = map[string]any{
		"type":        "string",
		"enum":        []string{"pdf", "png"},
		"description": "Output format. PNG is available for invoices, quotations and business cards.",
	}
	props["outputPath"] = map[string]any{
		"type":        "string",
		"description": "Optional file path to save the document. If omitted, returns base64.",
	}
	return Tool{
		Name:        "export_document",
		Description: "Render a document (invoice, quotation, cv, cover-letter, contract, business-card) and export it as PDF or PNG.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   []string{"kind"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			return handleExport(ctx, st, args)
		},
	}
}

func handleExport(ctx context.Context, st *studio.Studio, args map[string]any) (ToolResult, error) {
	kind, draft, err := draftArg(args)
	if err != nil {
		return ToolResult{}, err
	}
	format, err := docsmith.ParseFormat(stringArg(args, "format", "pdf"))
	if err != nil {
		return ToolResult{}, err
	}

	var sink export.Sink = export.WriterSink{W: io.Discard}
	outputPath := stringArg(args, "outputPath", "")
	if outputPath != "" {
		sink = fileSink(outputPath)
	}

	res, err := st.ExportOnce(ctx, kind, draft, format, sink)
	if err != nil {
		return ToolResult{}, err
	}
	a := res.Artifact
	summary := fmt.Sprintf("Exported %s (%d bytes, %s)", a.Name, a.Size(), describePages(a))
	if outputPath != "" {
		return textResult("%s to %s", summary, res.Location), nil
	}
	return binaryResult(summary, a), nil
}

func describePages(a *docsmith.Artifact) string {
	if a.Format == docsmith.FormatPNG {
		return "1 image"
	}
	if len(a.Pages) == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", len(a.Pages))
}

// fileSink writes the artifact to path, creating parent directories.
func fileSink(path string) export.Sink {
	return export.SinkFunc(func(ctx context.Context, a *docsmith.Artifact) (string, error) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
		}
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return "", fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
		}
		return path, nil
	})
}

func binaryResult(summary string, a *docsmith.Artifact) ToolResult {
	encoded := base64.StdEncoding.EncodeToString(a.Data)
	if a.Format == docsmith.FormatPNG {
		return ToolResult{Content: []ContentBlock{
			{Type: "text", Text: summary},
			{Type: "image", MIMEType: a.MIMEType, Data: encoded},
		}}
	}
	return textResult("%s. Base64 data:\n%s", summary, encoded)
}

func suggestItemsTool(st *studio.Studio) Tool {
	return Tool{
		Name:        "suggest_invoice_items",
		Description: "Suggest line item descriptions for an invoice draft. Returns an empty list when the suggestion service is unavailable.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"invoiceDraft": map[string]any{
					"type":        "string",
					"description": "Free-text description of the invoice so far",
				},
				"invoice": map[string]any{
					"type":        "object",
					"description": "Invoice data; used when invoiceDraft is empty",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			draft := stringArg(args, "invoiceDraft", "")
			if strings.TrimSpace(draft) == "" {
				if raw, ok := args["invoice"]; ok {
					data, err := json.Marshal(raw)
					if err != nil {
						return ToolResult{}, fmt.Errorf("encoding invoice: %w", err)
					}
					var inv record.Invoice
					if err := json.Unmarshal(data, &inv); err != nil {
						return ToolResult{}, fmt.Errorf("decoding invoice: %w", err)
					}
					draft = suggest.Draft(&inv)
				}
			}
			items := st.Suggester().Suggest(ctx, draft)
			if len(items) == 0 {
				return textResult("No suggestions available."), nil
			}
			return textResult("- %s", strings.Join(items, "\n- ")), nil
		},
	}
}

func qrCodeTool() Tool {
	return Tool{
		Name:        "generate_qr_code",
		Description: "Generate a QR code (or Code128 / PDF417 barcode) as a PNG image or a printable PDF label.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data": map[string]any{
					"type":        "string",
					"description": "URL or text to encode",
				},
				"size": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Side in pixels, %d to %d (default %d)", qrcode.MinSize, qrcode.MaxSize, qrcode.DefaultSize),
				},
				"type": map[string]any{
					"type": "string",
					"enum": []string{string(qrcode.QR), string(qrcode.Code128), string(qrcode.PDF417)},
				},
				"format": map[string]any{
					"type": "string",
					"enum": []string{"png", "pdf"},
				},
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the image. If omitted, returns base64.",
				},
			},
			"required": []string{"data"},
		},
		Handler: handleQRCode,
	}
}

func handleQRCode(ctx context.Context, args map[string]any) (ToolResult, error) {
	sym, err := qrcode.ParseSymbology(stringArg(args, "type", ""))
	if err != nil {
		return ToolResult{}, err
	}
	opts := []qrcode.Option{qrcode.WithSymbology(sym), qrcode.WithSize(intArg(args, "size", 0))}
	generate := qrcode.Generate
	if strings.EqualFold(stringArg(args, "format", ""), "pdf") {
		generate = qrcode.Label
	}
	a, err := generate(stringArg(args, "data", ""), opts...)
	if err != nil {
		return ToolResult{}, err
	}
	summary := fmt.Sprintf("Generated %s (%d bytes)", a.Name, a.Size())
	if outputPath := stringArg(args, "outputPath", ""); outputPath != "" {
		loc, err := fileSink(outputPath).Deliver(ctx, a)
		if err != nil {
			return ToolResult{}, err
		}
		return textResult("%s to %s", summary, loc), nil
	}
	return binaryResult(summary, a), nil
}

func previewHTMLTool(st *studio.Studio) Tool {
	props := draftProperties()
	props["outputPath"] = map[string]any{
		"type":        "string",
		"description": "Optional file path to save the HTML. If omitted, returns the markup.",
	}
	return Tool{
		Name:        "render_preview_html",
		Description: "Render the printable HTML preview of a document. Its page geometry matches the exported PDF.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   []string{"kind"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			_, draft, err := draftArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			doc, err := st.Renderer().Render(draft.Record, draft.Template, draft.Accent)
			if err != nil {
				return ToolResult{}, err
			}
			var buf bytes.Buffer
			if err := preview.Render(&buf, doc); err != nil {
				return ToolResult{}, err
			}
			if outputPath := stringArg(args, "outputPath", ""); outputPath != "" {
				if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
					return ToolResult{}, fmt.Errorf("writing file: %w", err)
				}
				return textResult("Preview written to %s (%d bytes)", outputPath, buf.Len()), nil
			}
			return textResult("%s", buf.String()), nil
		},
	}
}

// draftArg reads kind, record, template and accentColor. A missing record
// yields the kind's sample.
func draftArg(args map[string]any) (docsmith.Kind, workspace.Draft, error) {
	kind, err := docsmith.ParseKind(stringArg(args, "kind", ""))
	if err != nil {
		return "", workspace.Draft{}, err
	}
	d := workspace.Draft{
		Template: stringArg(args, "template", ""),
		Accent:   stringArg(args, "accentColor", ""),
	}
	if raw, ok := args["record"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return "", workspace.Draft{}, fmt.Errorf("encoding record: %w", err)
		}
		rec, err := record.Decode(kind, data)
		if err != nil {
			return "", workspace.Draft{}, err
		}
		d.Record = rec
	} else {
		rec, err := record.Sample(kind, time.Now())
		if err != nil {
			return "", workspace.Draft{}, err
		}
		d.Record = rec
	}
	return kind, d, nil
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
