package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith/config"
	"github.com/lvillar/docsmith/studio"
)

func newStudio(t *testing.T) *studio.Studio {
	t.Helper()
	cfg := config.Default()
	cfg.Export.OutDir = t.TempDir()
	cfg.Export.PDFScale = 1
	st, err := studio.New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("studio.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServerWithIO(nil, nil)
	RegisterDefaultTools(s, newStudio(t))
	RegisterDefaultResources(s)
	return s
}

func sendRequest(t *testing.T, s *Server, method string, id int, params any) jsonrpcResponse {
	t.Helper()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

// callTool invokes a tool and decodes its result.
func callTool(t *testing.T, s *Server, name string, args map[string]any) ToolResult {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 1, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	resultBytes, _ := json.Marshal(resp.Result)
	var result ToolResult
	if err := json.Unmarshal(resultBytes, &result); err != nil {
		t.Fatalf("decoding tool result %s: %v", resultBytes, err)
	}
	return result
}

func TestServerInitialize(t *testing.T) {
	s := NewServerWithIO(nil, nil, WithVersion("0.3.0"))

	resp := sendRequest(t, s, "initialize", 1, map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatal("result is not a map")
	}
	if result["protocolVersion"] != ProtocolVersion {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]any)
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != "docsmith-mcp" || serverInfo["version"] != "0.3.0" {
		t.Fatalf("unexpected server info: %v", serverInfo)
	}
}

func TestServerToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := sendRequest(t, s, "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result := resp.Result.(map[string]any)
	tools, ok := result["tools"].([]any)
	if !ok {
		t.Fatal("tools is not an array")
	}

	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	want := "export_document,generate_qr_code,list_templates,render_preview_html,suggest_invoice_items"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("tools = %s, want %s", got, want)
	}
}

func TestServerResourcesList(t *testing.T) {
	s := newTestServer(t)

	resp := sendRequest(t, s, "resources/list", 3, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	resources, ok := resp.Result.(map[string]any)["resources"].([]any)
	if !ok {
		t.Fatal("resources is not an array")
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
}

func TestServerReadSampleResource(t *testing.T) {
	s := newTestServer(t)

	resp := sendRequest(t, s, "resources/read", 4, map[string]any{"uri": "docsmith://sample?kind=invoice"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	resultBytes, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(resultBytes), "INV-001") {
		t.Fatalf("sample invoice missing its number: %s", resultBytes)
	}

	resp = sendRequest(t, s, "resources/read", 5, map[string]any{"uri": "docsmith://sample?kind=memo"})
	if resp.Error == nil || resp.Error.Code != codeInternalError {
		t.Fatalf("expected resource error for unknown kind, got %+v", resp.Error)
	}

	resp = sendRequest(t, s, "resources/read", 6, map[string]any{"uri": "docsmith://nothing"})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected unknown resource error, got %+v", resp.Error)
	}
}

func TestServerPing(t *testing.T) {
	s := NewServerWithIO(nil, nil)

	resp := sendRequest(t, s, "ping", 4, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s := NewServerWithIO(nil, nil)

	resp := sendRequest(t, s, "nonexistent/method", 5, nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Fatalf("expected error code -32601, got %d", resp.Error.Code)
	}
}

func TestServerUnknownTool(t *testing.T) {
	s := newTestServer(t)

	resp := sendRequest(t, s, "tools/call", 6, map[string]any{
		"name":      "nonexistent_tool",
		"arguments": map[string]any{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestExportDocumentToFile(t *testing.T) {
	s := newTestServer(t)
	out := filepath.Join(t.TempDir(), "docs", "invoice.pdf")

	result := callTool(t, s, "export_document", map[string]any{
		"kind":       "invoice",
		"template":   "modern",
		"outputPath": out,
	})
	if result.IsError {
		t.Fatalf("tool error: %+v", result.Content)
	}
	if !strings.Contains(result.Content[0].Text, "Exported invoice-INV-001.pdf") {
		t.Fatalf("unexpected result: %s", result.Content[0].Text)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("written file is not a PDF")
	}
}

func TestExportDocumentBase64(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "export_document", map[string]any{
		"kind": "contract",
		"record": map[string]any{
			"title":          "Consulting Agreement",
			"clientName":     "Acme Corp",
			"contractorName": "Jane Smith",
			"effectiveDate":  "2024-01-01T00:00:00Z",
			"scopeOfWork":    "Website redesign.",
			"paymentTerms":   "$5,000 per month",
		},
	})
	if result.IsError {
		t.Fatalf("tool error: %+v", result.Content)
	}
	if !strings.Contains(result.Content[0].Text, "Base64 data") {
		t.Fatalf("expected base64 data in result: %.80s", result.Content[0].Text)
	}
}

func TestExportBusinessCardPNG(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "export_document", map[string]any{
		"kind":   "business-card",
		"format": "png",
	})
	if result.IsError {
		t.Fatalf("tool error: %+v", result.Content)
	}
	if len(result.Content) != 2 || result.Content[1].Type != "image" || result.Content[1].MIMEType != "image/png" {
		t.Fatalf("expected an image block, got %+v", result.Content)
	}
	img, err := base64.StdEncoding.DecodeString(result.Content[1].Data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Fatal("image block is not a PNG")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "export_document", map[string]any{
		"kind":   "cv",
		"format": "png",
	})
	if !result.IsError {
		t.Fatal("expected tool error for CV PNG export")
	}
}

func TestListTemplatesTool(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "list_templates", nil)
	var catalog []map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].Text), &catalog); err != nil {
		t.Fatalf("catalog is not JSON: %v", err)
	}
	if len(catalog) != 6 {
		t.Fatalf("expected 6 kinds, got %d", len(catalog))
	}
}

func TestSuggestWithoutEndpoint(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "suggest_invoice_items", map[string]any{"invoiceDraft": "Web design for Acme"})
	if result.IsError || result.Content[0].Text != "No suggestions available." {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestGenerateQRCodeTool(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "generate_qr_code", map[string]any{"data": "https://example.com", "size": 300})
	if result.IsError {
		t.Fatalf("tool error: %+v", result.Content)
	}
	if result.Content[1].Type != "image" {
		t.Fatalf("expected an image block, got %+v", result.Content)
	}

	result = callTool(t, s, "generate_qr_code", map[string]any{"data": ""})
	if !result.IsError || !strings.Contains(result.Content[0].Text, "Please enter some data") {
		t.Fatalf("expected empty data error, got %+v", result)
	}
}

func TestRenderPreviewHTMLTool(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s, "render_preview_html", map[string]any{"kind": "quotation"})
	if result.IsError {
		t.Fatalf("tool error: %+v", result.Content)
	}
	html := result.Content[0].Text
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.Contains(html, `class="surface"`) {
		t.Fatalf("unexpected markup: %.120s", html)
	}
}

func TestServerMultipleRequests(t *testing.T) {
	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	}

	input := strings.Join(requests, "\n") + "\n"
	var output bytes.Buffer

	s := NewServerWithIO(strings.NewReader(input), &output)
	RegisterDefaultTools(s, newStudio(t))
	RegisterDefaultResources(s)

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), output.String())
	}

	for i, line := range lines {
		var resp jsonrpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d: unmarshal error: %v\nline: %s", i, err, line)
		}
		if resp.Error != nil {
			t.Errorf("response %d: unexpected error: %s", i, resp.Error.Message)
		}
	}
}

func TestToolAddTool(t *testing.T) {
	s := NewServerWithIO(nil, nil)

	s.AddTool(Tool{
		Name:        "custom_tool",
		Description: "A custom test tool",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			return textResult("custom result"), nil
		},
	})

	result := callTool(t, s, "custom_tool", map[string]any{})
	if result.Content[0].Text != "custom result" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
