// Command docsmith exports a document from a JSON record without the editor.
//
//	docsmith -kind invoice -in invoice.json -template modern -format pdf -out ./exports
//	docsmith -kind cv -html cv.html
//
// Without -in the kind's sample record is used. The path of the written file
// is printed on success.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/config"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/preview"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/studio"
	"github.com/lvillar/docsmith/workspace"
)

type options struct {
	config   string
	kind     string
	in       string
	template string
	color    string
	format   string
	out      string
	html     string
}

func main() {
	var o options
	flag.StringVar(&o.config, "config", "", "path to a JSON config file")
	flag.StringVar(&o.kind, "kind", "invoice", "document type: invoice, quotation, cv, cover-letter, contract, business-card")
	flag.StringVar(&o.in, "in", "", "JSON record file, or - for stdin (default: sample data)")
	flag.StringVar(&o.template, "template", "", "template name (default: the kind's default)")
	flag.StringVar(&o.color, "color", "", "accent color as #rrggbb or an HSL triple")
	flag.StringVar(&o.format, "format", "pdf", "export format: pdf or png")
	flag.StringVar(&o.out, "out", "", "output directory (overrides export.outDir)")
	flag.StringVar(&o.html, "html", "", "write the print preview HTML to this file instead of exporting")
	flag.Parse()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "docsmith: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	if o.out != "" {
		cfg.Export.OutDir = o.out
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	kind, err := docsmith.ParseKind(o.kind)
	if err != nil {
		return err
	}
	rec, err := readRecord(kind, o.in)
	if err != nil {
		return err
	}

	st, err := studio.New(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	draft := workspace.Draft{Record: rec, Template: o.template, Accent: o.color}
	if o.html != "" {
		return writePreview(st, draft, o.html)
	}

	format, err := docsmith.ParseFormat(o.format)
	if err != nil {
		return err
	}
	res, err := st.ExportOnce(ctx, kind, draft, format, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", docsmith.UserMessage(format), err)
	}
	fmt.Println(res.Location)
	return nil
}

func readRecord(kind docsmith.Kind, path string) (record.Record, error) {
	if path == "" {
		return record.Sample(kind, time.Now())
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return record.Decode(kind, data)
}

func writePreview(st *studio.Studio, d workspace.Draft, path string) error {
	doc, err := st.Renderer().Render(d.Record, d.Template, d.Accent)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := preview.Render(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
