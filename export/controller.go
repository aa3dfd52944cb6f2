// Package export drives one document export from request to delivered file.
//
// A Controller owns a workspace for the duration of an export: it makes the
// preview visible, captures each surface in turn, assembles the captures and
// hands the artifact to a sink. Only one export runs at a time; a request
// made while another is in flight fails with docsmith.ErrBusy and changes
// nothing.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/assemble"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/raster"
	"github.com/lvillar/docsmith/workspace"
)

// DefaultProgressDelay is how long an export may run before the user is told
// it is in progress.
const DefaultProgressDelay = 150 * time.Millisecond

// Capturer rasterizes mounted surfaces. *raster.Rasterizer implements it.
type Capturer interface {
	Capture(ctx context.Context, s raster.Surface, scale float64) (*docsmith.Capture, error)
}

// Assembler builds artifacts from captures. *assemble.Assembler implements it.
type Assembler interface {
	PDF(captures []*docsmith.Capture, opts ...assemble.Option) (*docsmith.Artifact, error)
	PNG(c *docsmith.Capture, opts ...assemble.Option) (*docsmith.Artifact, error)
}

// Result describes a delivered export.
type Result struct {
	Artifact *docsmith.Artifact
	Location string // where the sink put the artifact
	Captures int
	Duration time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where user notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithObserver adds a state observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithProgressDelay sets how long an export runs before the progress notice
// is shown. Zero shows it immediately.
func WithProgressDelay(d time.Duration) Option {
	return func(c *Controller) { c.progressDelay = d }
}

// WithAssembleOptions adds options passed to every assembly, such as the
// PDF engine.
func WithAssembleOptions(opts ...assemble.Option) Option {
	return func(c *Controller) { c.assembleOpts = append(c.assembleOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = logger.OrNop(l) }
}

// Controller runs exports for one workspace.
type Controller struct {
	ws        *workspace.Workspace
	capturer  Capturer
	assembler Assembler
	sink      Sink

	notifier      Notifier
	observers     []Observer
	progressDelay time.Duration
	assembleOpts  []assemble.Option
	log           *zap.Logger

	busy  atomic.Bool
	mu    sync.Mutex
	state State
}

// New returns a Controller exporting ws.
func New(ws *workspace.Workspace, c Capturer, a Assembler, sink Sink, opts ...Option) *Controller {
	ctl := &Controller{
		ws:            ws,
		capturer:      c,
		assembler:     a,
		sink:          sink,
		notifier:      nopNotifier{},
		progressDelay: DefaultProgressDelay,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ctl)
	}
	ctl.log = ctl.log.With(zap.String("kind", string(ws.Kind())))
	return ctl
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether an export is in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

func (c *Controller) enter(s State) {
	c.mu.Lock()
	t := Transition{From: c.state, To: s}
	c.state = s
	c.mu.Unlock()
	c.log.Debug("export state", zap.Stringer("from", t.From), zap.Stringer("to", t.To))
	for _, o := range c.observers {
		o(t)
	}
}

// Export exports the workspace document. Options default per kind (see
// docsmith.NewExportOptions). Unsupported formats are rejected before
// anything else happens.
func (c *Controller) Export(ctx context.Context, opts ...docsmith.ExportOption) (*Result, error) {
	kind := c.ws.Kind()
	o := docsmith.NewExportOptions(kind, opts...)
	if err := o.Validate(kind); err != nil {
		return nil, err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, docsmith.ErrBusy
	}
	defer c.busy.Store(false)

	start := time.Now()
	log := c.log.With(zap.String("format", string(o.Format)))
	ctx = logger.WithContext(ctx, log)

	var (
		progressMu sync.Mutex
		finished   bool
	)
	progress := time.AfterFunc(c.progressDelay, func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		if finished {
			return
		}
		c.notifier.Notify(ctx, Notice{
			Title:       fmt.Sprintf("Generating %s...", o.Format.Label()),
			Description: "Please wait a moment.",
		})
	})
	defer progress.Stop()

	res, err := c.run(ctx, kind, o)
	progress.Stop()
	// The progress notice, if already sent, precedes the outcome notice.
	progressMu.Lock()
	finished = true
	progressMu.Unlock()
	if err != nil {
		c.enter(Failed)
		log.Error("export failed",
			zap.String("stage", string(docsmith.StageOf(err))),
			zap.Error(err))
		c.notifier.Notify(ctx, Notice{
			Level:       LevelError,
			Title:       "Error",
			Description: docsmith.UserMessage(o.Format),
		})
		c.enter(Idle)
		return nil, err
	}
	res.Duration = time.Since(start)
	c.enter(Idle)
	log.Info("export delivered",
		zap.String("name", res.Artifact.Name),
		zap.String("location", res.Location),
		zap.Int("bytes", res.Artifact.Size()),
		zap.Duration("duration", res.Duration))
	c.notifier.Notify(ctx, Notice{
		Title:       "Success!",
		Description: fmt.Sprintf("Your %s has been downloaded as a %s.", kind.Noun(), o.Format.Label()),
	})
	return res, nil
}

func (c *Controller) run(ctx context.Context, kind docsmith.Kind, o docsmith.ExportOptions) (*Result, error) {
	const op = "Export"

	c.enter(EnsuringVisible)
	wasForm := c.ws.View() != workspace.ViewPreview
	lease, err := c.ws.Acquire(ctx)
	if err != nil {
		return nil, docsmith.NewExportError(op, docsmith.StageCapture, err)
	}
	defer lease.Release()
	if wasForm {
		c.notifier.Notify(ctx, Notice{
			Title:       "Preview opened",
			Description: fmt.Sprintf("The %s preview is now visible for generation.", kind.Noun()),
		})
	}

	c.enter(Capturing)
	names := c.surfaces(lease, o)
	captures, err := c.captureAll(ctx, lease, names, o.Scale)
	if err != nil {
		return nil, docsmith.NewExportError(op, docsmith.StageCapture, err)
	}

	c.enter(Assembling)
	draft := lease.Draft()
	id := ""
	if draft.Record != nil {
		id = draft.Record.Identifier()
	}
	name := docsmith.FileName(kind, id, o.Format)
	aopts := append([]assemble.Option(nil), c.assembleOpts...)
	aopts = append(aopts, assemble.WithName(name))
	var art *docsmith.Artifact
	if o.Format == docsmith.FormatPNG {
		art, err = c.assembler.PNG(captures[0], aopts...)
	} else {
		aopts = append(aopts,
			assemble.WithPage(o.PageFormat, o.Orientation),
			assemble.WithTitle(strings.TrimSuffix(name, o.Format.Ext())))
		art, err = c.assembler.PDF(captures, aopts...)
	}
	if err != nil {
		return nil, docsmith.NewExportError(op, docsmith.StageAssembly, err)
	}

	c.enter(Delivering)
	loc, err := c.sink.Deliver(ctx, art)
	if err != nil {
		if !errors.Is(err, docsmith.ErrDelivery) {
			err = fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
		}
		return nil, docsmith.NewExportError(op, docsmith.StageDelivery, err)
	}
	return &Result{Artifact: art, Location: loc, Captures: len(captures)}, nil
}

// surfaces picks the surfaces to capture. PNG exports take a single surface:
// the visible side of a flip document, or the first surface otherwise.
func (c *Controller) surfaces(lease *workspace.Lease, o docsmith.ExportOptions) []string {
	names := o.Surfaces
	if len(names) == 0 {
		names = lease.Document().Names()
		if o.Format == docsmith.FormatPNG && lease.Flip() {
			names = []string{lease.Side()}
		}
	}
	if o.Format == docsmith.FormatPNG && len(names) > 1 {
		names = names[:1]
	}
	return names
}

// captureAll captures names strictly one after another. Flip documents show
// each side before capturing it and return to the original side afterwards.
func (c *Controller) captureAll(ctx context.Context, lease *workspace.Lease, names []string, scale float64) ([]*docsmith.Capture, error) {
	if len(names) == 0 {
		return nil, docsmith.ErrNoCaptures
	}
	if lease.Flip() {
		side := lease.Side()
		defer func() {
			if lease.Side() != side {
				if err := lease.Show(context.WithoutCancel(ctx), side); err != nil {
					c.log.Warn("restoring visible side", zap.Error(err))
				}
			}
		}()
	}
	captures := make([]*docsmith.Capture, 0, len(names))
	for _, name := range names {
		if lease.Flip() && lease.Side() != name {
			if err := lease.Show(ctx, name); err != nil {
				return nil, fmt.Errorf("showing %s: %w", name, err)
			}
		}
		cp, err := c.capturer.Capture(ctx, lease.Surface(name), scale)
		if err != nil {
			return nil, fmt.Errorf("capturing %s: %w", name, err)
		}
		captures = append(captures, cp)
	}
	return captures, nil
}
