// Package workspace holds the editable state of one document session: the
// draft, the view mode and the visible side of flip documents.
//
// A render loop goroutine mounts a new frame after every change. Each change
// returns a settle channel that is closed once the frame reflecting it is
// mounted, so callers wait on a real signal rather than a fixed delay.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/record"
)

// ErrClosed is returned by operations on a closed workspace.
var ErrClosed = errors.New("workspace: closed")

// View is what the session currently shows.
type View int

// Views. Only the preview view mounts the document.
const (
	ViewForm View = iota
	ViewPreview
)

func (v View) String() string {
	if v == ViewPreview {
		return "preview"
	}
	return "form"
}

// ParseView converts "form" or "preview" into a View.
func ParseView(s string) (View, error) {
	switch s {
	case "form":
		return ViewForm, nil
	case "preview":
		return ViewPreview, nil
	}
	return 0, fmt.Errorf("%w: view %q", docsmith.ErrInvalidParam, s)
}

// Draft is the editable input of a render.
type Draft struct {
	Record   record.Record
	Template string
	Accent   string
}

func (d Draft) clone() Draft {
	if d.Record != nil {
		d.Record = d.Record.Clone()
	}
	return d
}

// Renderer produces a layout from a draft. *templates.Renderer implements it.
type Renderer interface {
	Render(rec record.Record, templateID, accent string) (*layout.Document, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(rec record.Record, templateID, accent string) (*layout.Document, error)

// Render calls f.
func (f RendererFunc) Render(rec record.Record, templateID, accent string) (*layout.Document, error) {
	return f(rec, templateID, accent)
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithDraft sets the initial draft. Its record must match the workspace kind.
func WithDraft(d Draft) Option {
	return func(w *Workspace) { w.draft = d.clone() }
}

// WithView sets the initial view.
func WithView(v View) Option {
	return func(w *Workspace) { w.view = v }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workspace) { w.log = logger.OrNop(l) }
}

type frame struct {
	gen      uint64
	draftVer uint64
	draft    Draft
	doc      *layout.Document
	err      error
	side     string
}

type waiter struct {
	ver   uint64
	draft bool
	ch    chan struct{}
}

// heldChange is a view or side change made while a lease was held.
type heldChange struct {
	apply func()
	ch    chan struct{}
}

// Workspace is one editing session. All methods are safe for concurrent use.
type Workspace struct {
	kind     docsmith.Kind
	renderer Renderer
	log      *zap.Logger

	mu       sync.RWMutex
	draft    Draft
	view     View
	side     string
	frame    *frame
	version  uint64
	draftVer uint64
	gen      uint64
	waiters  []waiter
	held     []heldChange
	leased   bool
	pinned   bool
	closed   bool

	kick    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// New starts a workspace for kind. Without WithDraft it starts from the
// kind's sample draft and default template.
func New(kind docsmith.Kind, r Renderer, opts ...Option) (*Workspace, error) {
	if r == nil {
		return nil, fmt.Errorf("workspace: %w: nil renderer", docsmith.ErrInvalidParam)
	}
	w := &Workspace{
		kind:     kind,
		renderer: r,
		log:      zap.NewNop(),
		side:     layout.SurfaceFront,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.draft.Record == nil {
		rec, err := record.Sample(kind, time.Now())
		if err != nil {
			return nil, fmt.Errorf("workspace: %w", err)
		}
		w.draft.Record = rec
	}
	if k := w.draft.Record.Kind(); k != kind {
		return nil, fmt.Errorf("workspace: %w: %s draft for %s workspace", docsmith.ErrInvalidParam, k, kind)
	}
	w.log = w.log.With(zap.String("kind", string(kind)))
	go w.run()
	w.signal()
	return w, nil
}

// Kind returns the document kind edited in the workspace.
func (w *Workspace) Kind() docsmith.Kind { return w.kind }

// Draft returns a copy of the current draft.
func (w *Workspace) Draft() Draft {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.draft.clone()
}

// View returns the current view.
func (w *Workspace) View() View {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.view
}

// Side returns the visible side of flip documents.
func (w *Workspace) Side() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.side
}

// Frame returns the currently mounted document, or nil when nothing is
// mounted.
func (w *Workspace) Frame() *layout.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.view != ViewPreview || w.frame == nil {
		return nil
	}
	return w.frame.doc
}

// Edit applies fn to the draft. The record passed to fn may be modified in
// place.
func (w *Workspace) Edit(fn func(d *Draft)) <-chan struct{} {
	return w.commit(true, func() { fn(&w.draft) })
}

// SetRecord replaces the draft record.
func (w *Workspace) SetRecord(rec record.Record) (<-chan struct{}, error) {
	if rec == nil || rec.Kind() != w.kind {
		return nil, fmt.Errorf("workspace: %w: record does not match %s", docsmith.ErrInvalidParam, w.kind)
	}
	rec = rec.Clone()
	return w.commit(true, func() { w.draft.Record = rec }), nil
}

// SetTemplate selects the template.
func (w *Workspace) SetTemplate(id string) <-chan struct{} {
	return w.commit(true, func() { w.draft.Template = id })
}

// SetAccent sets the accent color.
func (w *Workspace) SetAccent(accent string) <-chan struct{} {
	return w.commit(true, func() { w.draft.Accent = accent })
}

// SetView switches between the form and the preview. While a lease is held
// the switch waits for Release.
func (w *Workspace) SetView(v View) <-chan struct{} {
	return w.commitVisibility(func() { w.view = v })
}

// Flip shows side of a flip document. Only the visible side is mounted.
// While a lease is held the flip waits for Release; Lease.Show flips the
// pinned frame.
func (w *Workspace) Flip(side string) (<-chan struct{}, error) {
	if err := checkSide(side); err != nil {
		return nil, err
	}
	return w.commitVisibility(func() { w.side = side }), nil
}

func checkSide(side string) error {
	if side != layout.SurfaceFront && side != layout.SurfaceBack {
		return fmt.Errorf("workspace: %w: side %q", docsmith.ErrInvalidParam, side)
	}
	return nil
}

// Close stops the render loop. Pending settle channels never close.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.done)
	<-w.stopped
}

func (w *Workspace) commit(draft bool, mutate func()) <-chan struct{} {
	w.mu.Lock()
	ch := w.commitLocked(draft, mutate)
	w.mu.Unlock()
	w.signal()
	return ch
}

func (w *Workspace) commitLocked(draft bool, mutate func()) <-chan struct{} {
	mutate()
	w.version++
	if draft {
		w.draftVer = w.version
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, waiter{ver: w.version, draft: draft, ch: ch})
	return ch
}

// commitVisibility applies a user view or side change, or holds it until
// the lease is released.
func (w *Workspace) commitVisibility(mutate func()) <-chan struct{} {
	w.mu.Lock()
	if w.leased {
		ch := make(chan struct{})
		w.held = append(w.held, heldChange{apply: mutate, ch: ch})
		w.mu.Unlock()
		return ch
	}
	ch := w.commitLocked(false, mutate)
	w.mu.Unlock()
	w.signal()
	return ch
}

// tickLocked returns a channel closed on the next settle of the current state.
func (w *Workspace) tickLocked() <-chan struct{} {
	ch := make(chan struct{})
	w.waiters = append(w.waiters, waiter{ver: w.version, ch: ch})
	return ch
}

func (w *Workspace) signal() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *Workspace) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case <-w.kick:
			w.settle()
		}
	}
}

// settle mounts a frame for the latest state. While a lease pins the frame,
// draft edits stay pending and only visibility changes apply.
func (w *Workspace) settle() {
	for {
		w.mu.Lock()
		target := w.version
		if w.view != ViewPreview {
			w.frame = nil
			w.releaseLocked(target, true)
			w.mu.Unlock()
			return
		}
		if w.pinned || (w.frame != nil && w.frame.draftVer == w.draftVer) {
			if w.frame != nil {
				w.frame.side = w.side
			}
			w.releaseLocked(target, !w.pinned)
			w.mu.Unlock()
			return
		}
		d := w.draft.clone()
		dv := w.draftVer
		w.mu.Unlock()

		doc, err := w.renderer.Render(d.Record, d.Template, d.Accent)

		w.mu.Lock()
		if w.draftVer != dv || w.pinned || w.view != ViewPreview {
			w.mu.Unlock()
			continue
		}
		w.gen++
		gen := w.gen
		w.frame = &frame{gen: gen, draftVer: dv, draft: d, doc: doc, err: err, side: w.side}
		w.releaseLocked(target, true)
		w.mu.Unlock()
		if err != nil {
			w.log.Warn("render failed", zap.Error(err))
		} else {
			w.log.Debug("frame mounted", zap.Uint64("gen", gen), zap.String("template", doc.Template))
		}
		return
	}
}

func (w *Workspace) releaseLocked(target uint64, includeDraft bool) {
	kept := w.waiters[:0]
	for _, wt := range w.waiters {
		if wt.ver <= target && (includeDraft || !wt.draft) {
			close(wt.ch)
			continue
		}
		kept = append(kept, wt)
	}
	w.waiters = kept
}

// Acquire gives the caller exclusive use of the mounted frame. It switches
// to the preview if needed, waits for the frame to settle and pins it: edits
// made while the lease is held update the draft but not the mounted frame,
// and view or side changes are held until Release.
// A second Acquire before Release fails with docsmith.ErrBusy.
func (w *Workspace) Acquire(ctx context.Context) (*Lease, error) {
	w.mu.Lock()
	switch {
	case w.closed:
		w.mu.Unlock()
		return nil, ErrClosed
	case w.leased:
		w.mu.Unlock()
		return nil, docsmith.ErrBusy
	}
	w.leased = true
	if w.view != ViewPreview {
		w.view = ViewPreview
		w.version++
	}
	settled := w.tickLocked()
	w.mu.Unlock()
	w.signal()

	select {
	case <-settled:
	case <-ctx.Done():
		w.unlease()
		return nil, ctx.Err()
	case <-w.done:
		w.unlease()
		return nil, ErrClosed
	}

	w.mu.Lock()
	f := w.frame
	if w.view != ViewPreview || f == nil {
		w.mu.Unlock()
		w.unlease()
		return nil, fmt.Errorf("workspace: %w: preview closed while settling", docsmith.ErrNotMounted)
	}
	if f.err != nil {
		w.mu.Unlock()
		w.unlease()
		return nil, f.err
	}
	w.pinned = true
	w.mu.Unlock()
	return &Lease{w: w, f: f}, nil
}

func (w *Workspace) unlease() {
	w.mu.Lock()
	w.leased = false
	w.pinned = false
	for _, h := range w.held {
		h.apply()
		w.version++
		w.waiters = append(w.waiters, waiter{ver: w.version, ch: h.ch})
	}
	w.held = nil
	w.mu.Unlock()
	w.signal()
}

// Lease is exclusive use of one mounted frame.
type Lease struct {
	w    *Workspace
	f    *frame
	once sync.Once
}

// Document returns the pinned document.
func (l *Lease) Document() *layout.Document { return l.f.doc }

// Draft returns a copy of the draft the pinned document was rendered from.
func (l *Lease) Draft() Draft { return l.f.draft.clone() }

// Side returns the visible side of the pinned flip document.
func (l *Lease) Side() string {
	l.w.mu.RLock()
	defer l.w.mu.RUnlock()
	return l.f.side
}

// Flip reports whether the document shows one side at a time.
func (l *Lease) Flip() bool { return isFlip(l.f.doc) }

// Surface returns a handle to the named surface of the pinned frame. The
// handle reports whether the surface is mounted at the time of the call.
func (l *Lease) Surface(name string) *Surface {
	return &Surface{w: l.w, gen: l.f.gen, name: name, ls: l.f.doc.Surface(name)}
}

// Show makes side the visible side of a flip document and waits for the
// change to settle.
func (l *Lease) Show(ctx context.Context, side string) error {
	if !l.Flip() {
		return fmt.Errorf("workspace: %w: %s has no sides", docsmith.ErrInvalidParam, l.f.doc.Kind)
	}
	if err := checkSide(side); err != nil {
		return err
	}
	settled := l.w.commit(false, func() { l.w.side = side })
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.w.done:
		return ErrClosed
	}
}

// Release unpins the frame. Edits, view switches and flips made while it was
// held are applied next.
func (l *Lease) Release() {
	l.once.Do(l.w.unlease)
}

func isFlip(doc *layout.Document) bool {
	return doc != nil && doc.Surface(layout.SurfaceFront) != nil && doc.Surface(layout.SurfaceBack) != nil
}

// Surface is a handle to one surface of a mounted frame.
type Surface struct {
	w    *Workspace
	gen  uint64
	name string
	ls   *layout.Surface
}

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// Layout returns the surface layout, or nil if the frame has no such surface.
func (s *Surface) Layout() *layout.Surface { return s.ls }

// Mounted reports whether the surface is rendered and visible right now.
func (s *Surface) Mounted() bool {
	if s.ls == nil {
		return false
	}
	s.w.mu.RLock()
	defer s.w.mu.RUnlock()
	f := s.w.frame
	if s.w.closed || s.w.view != ViewPreview || f == nil || f.gen != s.gen {
		return false
	}
	return !isFlip(f.doc) || f.side == s.name
}
