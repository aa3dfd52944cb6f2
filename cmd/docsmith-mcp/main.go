// Command docsmith-mcp is an MCP (Model Context Protocol) server that exposes
// docsmith document export to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/docsmith/cmd/docsmith-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "docsmith": {
//	      "command": "docsmith-mcp",
//	      "args": ["-config", "/path/to/docsmith.json"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - list_templates: List document types and templates
//   - export_document: Export a document as PDF or PNG
//   - render_preview_html: Render the printable HTML preview
//   - suggest_invoice_items: Suggest invoice line items
//   - generate_qr_code: Generate a QR code or barcode
//
// # Available Resources
//
//   - docsmith://templates : Template catalog
//   - docsmith://sample?kind=... : Sample document data
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/docsmith/config"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/mcp"
	"github.com/lvillar/docsmith/studio"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docsmith-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	st, err := studio.New(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(mcp.WithLogger(log.Named("mcp")), mcp.WithVersion(version))
	mcp.RegisterDefaultTools(server, st)
	mcp.RegisterDefaultResources(server)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
