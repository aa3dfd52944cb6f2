// Package studio wires the docsmith pipeline together from a configuration:
// templates, image loading, rasterization, assembly, the preview handoff and
// the suggestion client.
//
// A Studio is shared by every session of a process; workspaces and export
// controllers are created per session.
package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/assemble"
	"github.com/lvillar/docsmith/config"
	"github.com/lvillar/docsmith/export"
	"github.com/lvillar/docsmith/fonts"
	"github.com/lvillar/docsmith/handoff"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/preview"
	"github.com/lvillar/docsmith/raster"
	"github.com/lvillar/docsmith/resource"
	"github.com/lvillar/docsmith/suggest"
	"github.com/lvillar/docsmith/templates"
	"github.com/lvillar/docsmith/workspace"
)

const (
	redisPingTimeout = 3 * time.Second
	sweepInterval    = time.Minute
)

// Studio holds the components shared by all sessions.
type Studio struct {
	cfg       config.Config
	log       *zap.Logger
	renderer  *templates.Renderer
	loader    *resource.Loader
	raster    *raster.Rasterizer
	assembler *assemble.Assembler
	store     handoff.Store
	memory    *handoff.MemoryStore
	channel   *handoff.Channel
	suggester suggest.Suggester

	closers   []func() error
	stop      chan struct{}
	closeOnce sync.Once
}

// New builds a Studio from cfg. Unset configuration fields take their
// defaults. A redis handoff backend must answer a ping.
func New(cfg config.Config, log *zap.Logger) (*Studio, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)
	engine, err := assemble.ParseEngine(cfg.Export.Engine)
	if err != nil {
		return nil, fmt.Errorf("studio: %w", err)
	}

	s := &Studio{
		cfg:      cfg,
		log:      log,
		renderer: templates.New(fonts.Default()),
		stop:     make(chan struct{}),
	}
	s.loader = resource.NewLoader(
		resource.WithHTTP(resource.HTTPOptions{
			Timeout:    cfg.Images.Timeout.Std(),
			RetryCount: cfg.Images.Retries,
			UserAgent:  cfg.Images.UserAgent,
		}),
		resource.WithCacheTTL(cfg.Images.CacheTTL.Std()),
		resource.WithBaseDir(cfg.Images.BaseDir),
		resource.WithLogger(log.Named("resource")),
	)
	s.closers = append(s.closers, s.loader.Close)
	s.raster = raster.New(s.loader, raster.WithLogger(log.Named("raster")))
	s.assembler = assemble.New(
		assemble.WithEngine(engine),
		assemble.WithCompression(cfg.Export.Compression()),
		assemble.WithLogger(log.Named("assemble")),
	)

	store, err := s.openStore()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = store
	s.channel = handoff.NewChannel(store, cfg.Handoff.TTL.Std())
	go s.sweep()

	if cfg.Suggest.Endpoint != "" {
		c := suggest.New(cfg.Suggest.Endpoint,
			suggest.WithTimeout(cfg.Suggest.Timeout.Std()),
			suggest.WithRetries(cfg.Suggest.Retries),
			suggest.WithLogger(log.Named("suggest")),
		)
		s.closers = append(s.closers, c.Close)
		s.suggester = c
	} else {
		s.suggester = suggest.Nop{}
	}
	return s, nil
}

func (s *Studio) openStore() (handoff.Store, error) {
	if s.cfg.Handoff.Backend != config.BackendRedis {
		s.memory = handoff.NewMemoryStore()
		return s.memory, nil
	}
	r := handoff.NewRedisStore(handoff.RedisConf{
		Addr:     s.cfg.Handoff.RedisAddr,
		Password: s.cfg.Handoff.RedisPassword,
		DB:       s.cfg.Handoff.RedisDB,
		Prefix:   s.cfg.Handoff.RedisPrefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("studio: handoff store: %w", err)
	}
	s.closers = append(s.closers, r.Close)
	return r, nil
}

// sweep periodically drops expired cached images and handoff payloads.
func (s *Studio) sweep() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Sweep drops expired images and handoff payloads now. It returns how many
// images were removed.
func (s *Studio) Sweep() int {
	n := s.loader.Sweep()
	if n > 0 {
		s.log.Debug("expired images dropped", zap.Int("count", n))
	}
	if s.memory != nil {
		if pending := s.memory.Sweep(); pending > 0 {
			s.log.Debug("handoff entries pending", zap.Int("count", pending))
		}
	}
	return n
}

// Close releases clients and stops background work.
func (s *Studio) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		close(s.stop)
		for _, c := range s.closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// Config returns the effective configuration.
func (s *Studio) Config() config.Config { return s.cfg }

// Logger returns the root logger.
func (s *Studio) Logger() *zap.Logger { return s.log }

// Renderer returns the template renderer.
func (s *Studio) Renderer() *templates.Renderer { return s.renderer }

// Rasterizer returns the rasterizer.
func (s *Studio) Rasterizer() *raster.Rasterizer { return s.raster }

// Assembler returns the document assembler.
func (s *Studio) Assembler() *assemble.Assembler { return s.assembler }

// Handoff returns the preview handoff channel.
func (s *Studio) Handoff() *handoff.Channel { return s.channel }

// Suggester returns the suggestion client.
func (s *Studio) Suggester() suggest.Suggester { return s.suggester }

// NewWorkspace opens a workspace for kind.
func (s *Studio) NewWorkspace(kind docsmith.Kind, opts ...workspace.Option) (*workspace.Workspace, error) {
	opts = append([]workspace.Option{workspace.WithLogger(s.log.Named("workspace"))}, opts...)
	return workspace.New(kind, s.renderer, opts...)
}

// Controller returns an export controller for ws delivering to sink.
func (s *Studio) Controller(ws *workspace.Workspace, sink export.Sink, opts ...export.Option) *export.Controller {
	base := []export.Option{
		export.WithProgressDelay(s.cfg.Export.ProgressDelay.Std()),
		export.WithNotifier(export.LogNotifier{Logger: s.log.Named("notice")}),
		export.WithLogger(s.log.Named("export")),
	}
	return export.New(ws, s.raster, s.assembler, sink, append(base, opts...)...)
}

// ExportOptions returns the export options for kind and format, using the
// configured scales for page documents. Business cards keep their own
// default scale.
func (s *Studio) ExportOptions(kind docsmith.Kind, format docsmith.Format) []docsmith.ExportOption {
	opts := []docsmith.ExportOption{docsmith.WithFormat(format)}
	if kind == docsmith.KindBusinessCard {
		return opts
	}
	if format == docsmith.FormatPNG {
		return append(opts, docsmith.WithScale(s.cfg.Export.PNGScale))
	}
	return append(opts, docsmith.WithScale(s.cfg.Export.PDFScale))
}

// DirSink returns a sink writing into the configured output directory.
func (s *Studio) DirSink() export.Sink { return export.DirSink{Dir: s.cfg.Export.OutDir} }

// ExportOnce exports draft in a throwaway workspace. It is meant for
// stateless callers such as the CLI.
func (s *Studio) ExportOnce(ctx context.Context, kind docsmith.Kind, draft workspace.Draft, format docsmith.Format, sink export.Sink, opts ...export.Option) (*export.Result, error) {
	if sink == nil {
		sink = s.DirSink()
	}
	ws, err := s.NewWorkspace(kind, workspace.WithDraft(draft), workspace.WithView(workspace.ViewPreview))
	if err != nil {
		return nil, err
	}
	defer ws.Close()
	return s.Controller(ws, sink, opts...).Export(ctx, s.ExportOptions(kind, format)...)
}

// Preview consumes the handoff payload of kind for session and writes the
// print view, or the failure page when there is none.
func (s *Studio) Preview(ctx context.Context, w io.Writer, session string, kind docsmith.Kind, opts ...preview.Option) error {
	return preview.Load(ctx, w, s.channel, session, kind, s.renderer, opts...)
}
