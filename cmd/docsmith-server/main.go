// Command docsmith-server serves the docsmith editor API over HTTP.
//
//	docsmith-server -config docsmith.json
//
// The listen address comes from the config file unless -addr is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith/config"
	"github.com/lvillar/docsmith/httpapi"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/studio"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docsmith-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
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

	srv, err := httpapi.New(st, httpapi.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting docsmith-server",
		zap.String("engine", cfg.Export.Engine),
		zap.String("handoff", cfg.Handoff.Backend))
	return srv.Run(ctx, cfg.Server.Addr)
}
