// Package mcp implements a Model Context Protocol (MCP) server that exposes
// the docsmith pipeline as tools and resources for AI assistants.
//
// The server communicates via JSON-RPC 2.0 over stdio and implements the
// MCP specification (2024-11-05) for tools and resources.
//
// # Usage with Claude Desktop
//
// Add to your claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "docsmith": {
//	      "command": "docsmith-mcp",
//	      "args": ["-config", "/path/to/docsmith.json"]
//	    }
//	  }
//	}
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith/internal/logger"
)

// ProtocolVersion is the MCP revision implemented by the server.
const ProtocolVersion = "2024-11-05"

// ServerName is reported to clients during initialization.
const ServerName = "docsmith-mcp"

// Server is an MCP server that handles JSON-RPC 2.0 messages over stdio.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	input     io.Reader
	output    io.Writer
	version   string
	log       *zap.Logger
	mu        sync.Mutex
}

// Tool defines an MCP tool that can be called by the client.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Handler     ToolHandler    `json:"-"`
}

// ToolHandler executes a tool with the given arguments.
type ToolHandler func(ctx context.Context, args map[string]any) (ToolResult, error)

// ToolResult is the result returned by a tool execution.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is a piece of content in a tool result.
type ContentBlock struct {
	Type     string `json:"type"` // "text" or "image"
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64 for binary
}

func textResult(format string, args ...any) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, args...)}}}
}

// Resource defines an MCP resource. Reads match on the URI without its
// query, so "docsmith://sample?kind=cv" is served by "docsmith://sample".
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler reads a resource and returns its content.
type ResourceHandler func(ctx context.Context, uri string) ([]ResourceContent, error)

// ResourceContent is the content of a read resource.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64
}

// JSON-RPC types
type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Logs must not go to the protocol output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = logger.OrNop(l) }
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a new MCP server reading from stdin and writing to stdout.
func NewServer(opts ...Option) *Server {
	return NewServerWithIO(os.Stdin, os.Stdout, opts...)
}

// NewServerWithIO creates a new MCP server with custom I/O for testing.
func NewServerWithIO(in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		version:   "1.0.0",
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTool registers a tool with the server.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers a resource with the server.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run processes messages until EOF or until ctx is done between messages.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	// MCP uses newline-delimited JSON
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError(nil, codeParseError, "Parse error", err.Error())
			continue
		}

		s.handleRequest(ctx, req)
	}

	return scanner.Err()
}

func (s *Server) handleRequest(ctx context.Context, req jsonrpcRequest) {
	s.log.Debug("request", zap.String("method", req.Method))
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized", "notifications/cancelled":
		// Notifications, no response needed
	case "ping":
		s.sendResult(req.ID, map[string]any{})
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "resources/list":
		s.handleResourcesList(req)
	case "resources/read":
		s.handleResourcesRead(ctx, req)
	default:
		if req.ID == nil {
			return
		}
		s.sendError(req.ID, codeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req jsonrpcRequest) {
	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": s.version,
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsList(req jsonrpcRequest) {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]map[string]any, 0, len(names))
	for _, name := range names {
		t := s.tools[name]
		tools = append(tools, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema,
		})
	}
	s.sendResult(req.ID, map[string]any{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req jsonrpcRequest) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		s.sendError(req.ID, codeInvalidParams, "Unknown tool", params.Name)
		return
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	result, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		s.sendResult(req.ID, ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		})
		return
	}

	s.sendResult(req.ID, result)
}

func (s *Server) handleResourcesList(req jsonrpcRequest) {
	uris := make([]string, 0, len(s.resources))
	for uri := range s.resources {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	resources := make([]map[string]any, 0, len(uris))
	for _, uri := range uris {
		r := s.resources[uri]
		res := map[string]any{
			"uri":  r.URI,
			"name": r.Name,
		}
		if r.Description != "" {
			res["description"] = r.Description
		}
		if r.MIMEType != "" {
			res["mimeType"] = r.MIMEType
		}
		resources = append(resources, res)
	}
	s.sendResult(req.ID, map[string]any{"resources": resources})
}

func (s *Server) handleResourcesRead(ctx context.Context, req jsonrpcRequest) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	base, _, _ := strings.Cut(params.URI, "?")
	resource, ok := s.resources[base]
	if !ok {
		s.sendError(req.ID, codeInvalidParams, "Unknown resource", params.URI)
		return
	}

	contents, err := resource.Handler(ctx, params.URI)
	if err != nil {
		s.sendError(req.ID, codeInternalError, "Resource error", err.Error())
		return
	}

	s.sendResult(req.ID, map[string]any{"contents": contents})
}

func (s *Server) sendResult(id *json.RawMessage, result any) {
	s.send(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id *json.RawMessage, code int, message string, data any) {
	s.send(jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &jsonrpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp jsonrpcResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encoding response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := s.output.Write(data); err != nil {
		s.log.Error("writing response", zap.Error(err))
	}
}
