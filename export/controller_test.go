package export

import (
	"context"
	"errors"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/assemble"
	"github.com/lvillar/docsmith/layout"
	"github.com/lvillar/docsmith/raster"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/resource"
	"github.com/lvillar/docsmith/templates"
	"github.com/lvillar/docsmith/workspace"
)

// recorder collects notices and transitions.
type recorder struct {
	mu          sync.Mutex
	notices     []Notice
	transitions []Transition
}

func (r *recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) observe(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notices {
		out = append(out, n.Title)
	}
	return out
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, t := range r.transitions {
		out = append(out, t.To)
	}
	return out
}

// stubCapturer returns solid captures and tracks concurrency.
type stubCapturer struct {
	mu       sync.Mutex
	order    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	block    chan struct{}
	started  chan struct{}
	err      error
}

func (s *stubCapturer) Capture(ctx context.Context, surf raster.Surface, scale float64) (*docsmith.Capture, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	if !surf.Mounted() {
		return nil, docsmith.ErrNotMounted
	}
	s.mu.Lock()
	s.order = append(s.order, surf.Name())
	s.mu.Unlock()
	ls := surf.Layout()
	w, h := int(ls.Width*scale), int(ls.Height*scale)
	return &docsmith.Capture{Surface: surf.Name(), Image: image.NewRGBA(image.Rect(0, 0, w, h)), Scale: scale}, nil
}

type memorySink struct {
	mu   sync.Mutex
	got  []*docsmith.Artifact
	fail error
}

func (m *memorySink) Deliver(_ context.Context, a *docsmith.Artifact) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, a)
	return "memory://" + a.Name, nil
}

func newWorkspace(t *testing.T, rec record.Record) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(rec.Kind(), templates.New(nil), workspace.WithDraft(workspace.Draft{Record: rec}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ws.Close)
	return ws
}

func sampleInvoice() *record.Invoice {
	return &record.Invoice{
		InvoiceNumber: "INV-001",
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ClientName:    "Acme Corp",
		Items: []record.Item{
			{ID: "1", Name: "Premium Website Hosting", Quantity: 1, Price: 120},
			{ID: "2", Name: "Domain Name Registration", Quantity: 1, Price: 15},
		},
		TaxRate:  8.5,
		Currency: "USD",
	}
}

func card() *record.BusinessCard {
	return &record.BusinessCard{Name: "Jane Doe", Title: "Designer", Email: "jane@example.com"}
}

func TestInvoiceExport(t *testing.T) {
	rec := &recorder{}
	sink := &memorySink{}
	ws := newWorkspace(t, sampleInvoice())
	loader := resource.NewLoader()
	defer loader.Close()
	ctl := New(ws, raster.New(loader), assemble.New(), sink,
		WithNotifier(rec), WithObserver(rec.observe), WithProgressDelay(time.Hour))

	res, err := ctl.Export(context.Background(), docsmith.WithScale(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Artifact.Name != "invoice-INV-001.pdf" || res.Location != "memory://invoice-INV-001.pdf" {
		t.Fatalf("result = %s at %s", res.Artifact.Name, res.Location)
	}
	if len(res.Artifact.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(res.Artifact.Pages))
	}
	p := res.Artifact.Pages[0]
	if p.Width != docsmith.A4Width {
		t.Fatalf("page width = %v", p.Width)
	}
	doc := ws.Frame()
	page := doc.Surface(layout.SurfacePage)
	want := assemble.FitHeight(int(math.Ceil(page.Width)), int(math.Ceil(page.Height)), docsmith.A4Width)
	if math.Abs(p.ImageHeight-want) > 1e-6 {
		t.Fatalf("image height = %v, want %v", p.ImageHeight, want)
	}

	wantStates := []State{EnsuringVisible, Capturing, Assembling, Delivering, Idle}
	if got := rec.states(); !equalStates(got, wantStates) {
		t.Fatalf("states = %v, want %v", got, wantStates)
	}
	titles := rec.titles()
	if len(titles) != 2 || titles[0] != "Preview opened" || titles[1] != "Success!" {
		t.Fatalf("notices = %v", titles)
	}
	if rec.notices[1].Description != "Your invoice has been downloaded as a PDF." {
		t.Fatalf("success = %q", rec.notices[1].Description)
	}
	if ctl.State() != Idle || ctl.Busy() {
		t.Fatal("controller did not return to idle")
	}
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBusinessCardExportCapturesSidesInOrder(t *testing.T) {
	capt := &stubCapturer{}
	sink := &memorySink{}
	ws := newWorkspace(t, card())
	ctl := New(ws, capt, assemble.New(), sink)

	res, err := ctl.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(capt.order) != 2 || capt.order[0] != "front" || capt.order[1] != "back" {
		t.Fatalf("capture order = %v", capt.order)
	}
	if capt.maxSeen.Load() != 1 {
		t.Fatalf("saw %d concurrent captures", capt.maxSeen.Load())
	}
	pages := res.Artifact.Pages
	if len(pages) != 2 || pages[0].Surface != "front" || pages[1].Surface != "back" {
		t.Fatalf("pages = %+v", pages)
	}
	if res.Artifact.Name != "Jane_Doe_BusinessCard.pdf" {
		t.Fatalf("name = %q", res.Artifact.Name)
	}
	if ws.Side() != layout.SurfaceFront {
		t.Fatalf("visible side = %q, want front restored", ws.Side())
	}
}

func TestBusinessCardPNGUsesVisibleSide(t *testing.T) {
	capt := &stubCapturer{}
	ws := newWorkspace(t, card())
	settled, err := ws.Flip(layout.SurfaceBack)
	if err != nil {
		t.Fatal(err)
	}
	<-settled
	ctl := New(ws, capt, assemble.New(), &memorySink{})

	res, err := ctl.Export(context.Background(), docsmith.WithFormat(docsmith.FormatPNG))
	if err != nil {
		t.Fatal(err)
	}
	if len(capt.order) != 1 || capt.order[0] != "back" {
		t.Fatalf("captured %v, want [back]", capt.order)
	}
	if res.Artifact.MIMEType != "image/png" || res.Artifact.Name != "Jane_Doe_BusinessCard.png" {
		t.Fatalf("artifact = %s %s", res.Artifact.Name, res.Artifact.MIMEType)
	}
}

func TestReentrantExportIsRejected(t *testing.T) {
	capt := &stubCapturer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	ws := newWorkspace(t, sampleInvoice())
	ctl := New(ws, capt, assemble.New(), &memorySink{})

	done := make(chan error, 1)
	go func() {
		_, err := ctl.Export(context.Background())
		done <- err
	}()
	<-capt.started

	if _, err := ctl.Export(context.Background()); !errors.Is(err, docsmith.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if ctl.State() != Capturing {
		t.Fatalf("state = %v, want capturing", ctl.State())
	}
	close(capt.block)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}
	if capt.maxSeen.Load() != 1 {
		t.Fatalf("saw %d concurrent captures", capt.maxSeen.Load())
	}
}

func TestUserVisibilityChangesDuringExport(t *testing.T) {
	capt := &stubCapturer{block: make(chan struct{}), started: make(chan struct{}, 2)}
	ws := newWorkspace(t, card())
	ctl := New(ws, capt, assemble.New(), &memorySink{})

	done := make(chan error, 1)
	go func() {
		_, err := ctl.Export(context.Background())
		done <- err
	}()
	<-capt.started

	sideDone, err := ws.Flip(layout.SurfaceBack)
	if err != nil {
		t.Fatal(err)
	}
	viewDone := ws.SetView(workspace.ViewForm)
	close(capt.block)

	if err := <-done; err != nil {
		t.Fatalf("export with concurrent view changes: %v", err)
	}
	if len(capt.order) != 2 || capt.order[0] != "front" || capt.order[1] != "back" {
		t.Fatalf("captured %v, want [front back]", capt.order)
	}
	for _, ch := range []<-chan struct{}{sideDone, viewDone} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal("held change never settled")
		}
	}
	if ws.View() != workspace.ViewForm || ws.Side() != layout.SurfaceBack {
		t.Fatalf("view=%v side=%s after export", ws.View(), ws.Side())
	}
}

func TestUnsupportedFormatRejectedUpFront(t *testing.T) {
	rec := &recorder{}
	ws := newWorkspace(t, &record.Contract{Title: "NDA"})
	ctl := New(ws, &stubCapturer{}, assemble.New(), &memorySink{}, WithObserver(rec.observe), WithNotifier(rec))

	if _, err := ctl.Export(context.Background(), docsmith.WithFormat(docsmith.FormatPNG)); !errors.Is(err, docsmith.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if len(rec.states()) != 0 || len(rec.titles()) != 0 || ws.View() != workspace.ViewForm {
		t.Fatal("rejected request had side effects")
	}
}

func TestCaptureFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{}
	ws := newWorkspace(t, sampleInvoice())
	capt := &stubCapturer{err: docsmith.ErrRasterize}
	ctl := New(ws, capt, assemble.New(), &memorySink{},
		WithNotifier(rec), WithObserver(rec.observe), WithLogger(zap.New(core)))

	_, err := ctl.Export(context.Background())
	if !errors.Is(err, docsmith.ErrRasterize) || docsmith.StageOf(err) != docsmith.StageCapture {
		t.Fatalf("err = %v (stage %q)", err, docsmith.StageOf(err))
	}
	states := rec.states()
	if states[len(states)-2] != Failed || states[len(states)-1] != Idle {
		t.Fatalf("states = %v", states)
	}
	last := rec.notices[len(rec.notices)-1]
	if last.Level != LevelError || last.Title != "Error" || last.Description != "Failed to generate PDF." {
		t.Fatalf("notice = %+v", last)
	}
	entries := logs.FilterMessage("export failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["stage"] != "capture" {
		t.Fatalf("failure log = %+v", entries)
	}

	capt.err = nil
	if _, err := ctl.Export(context.Background()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestDeliveryFailure(t *testing.T) {
	ws := newWorkspace(t, sampleInvoice())
	ctl := New(ws, &stubCapturer{}, assemble.New(), &memorySink{fail: errors.New("disk full")})
	_, err := ctl.Export(context.Background())
	if !errors.Is(err, docsmith.ErrDelivery) || docsmith.StageOf(err) != docsmith.StageDelivery {
		t.Fatalf("err = %v", err)
	}
}

func TestAssemblyFailure(t *testing.T) {
	ws := newWorkspace(t, sampleInvoice())
	ctl := New(ws, &stubCapturer{}, assemble.New(), &memorySink{})
	_, err := ctl.Export(context.Background(), docsmith.WithPageFormat(docsmith.PageFormat{Name: "B5"}))
	if !errors.Is(err, docsmith.ErrInvalidParam) || docsmith.StageOf(err) != docsmith.StageAssembly {
		t.Fatalf("err = %v", err)
	}
}

func TestSurfaceNotMounted(t *testing.T) {
	ws := newWorkspace(t, sampleInvoice())
	ctl := New(ws, &stubCapturer{}, assemble.New(), &memorySink{})
	_, err := ctl.Export(context.Background(), docsmith.WithSurfaces("back"))
	if !errors.Is(err, docsmith.ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
}

func TestProgressNotice(t *testing.T) {
	rec := &recorder{}
	ws := newWorkspace(t, sampleInvoice())
	capt := &stubCapturer{block: make(chan struct{})}
	ctl := New(ws, capt, assemble.New(), &memorySink{}, WithNotifier(rec), WithProgressDelay(0))

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(capt.block)
	}()
	if _, err := ctl.Export(context.Background()); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range rec.notices {
		if n.Title == "Generating PDF..." && n.Description == "Please wait a moment." {
			found = true
		}
	}
	if !found {
		t.Fatalf("notices = %v", rec.titles())
	}
}

// slowProgress delays the progress notice so it is still being delivered
// when the export finishes.
type slowProgress struct {
	recorder
	started chan struct{}
}

func (s *slowProgress) Notify(ctx context.Context, n Notice) {
	if n.Title == "Generating PDF..." {
		close(s.started)
		time.Sleep(50 * time.Millisecond)
	}
	s.recorder.Notify(ctx, n)
}

func TestProgressNoticePrecedesOutcome(t *testing.T) {
	notes := &slowProgress{started: make(chan struct{})}
	ws := newWorkspace(t, sampleInvoice())
	capt := &stubCapturer{block: make(chan struct{})}
	ctl := New(ws, capt, assemble.New(), &memorySink{}, WithNotifier(notes), WithProgressDelay(0))

	go func() {
		<-notes.started
		close(capt.block)
	}()
	if _, err := ctl.Export(context.Background()); err != nil {
		t.Fatal(err)
	}
	titles := notes.titles()
	if len(titles) < 2 || titles[len(titles)-1] != "Success!" || titles[len(titles)-2] != "Generating PDF..." {
		t.Fatalf("notices = %v", titles)
	}
}

func TestContractFileNameFallback(t *testing.T) {
	dir := t.TempDir()
	ws := newWorkspace(t, &record.Contract{})
	ctl := New(ws, &stubCapturer{}, assemble.New(), DirSink{Dir: dir})

	res, err := ctl.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Location != filepath.Join(dir, "contract.pdf") {
		t.Fatalf("location = %q", res.Location)
	}
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	art := &docsmith.Artifact{Name: "cv-Jane_Doe.pdf", Data: []byte("%PDF-1.3")}
	path, err := DirSink{Dir: dir}.Deliver(context.Background(), art)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF-1.3" {
		t.Fatalf("read back %q, %v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries, want 1", len(entries))
	}
	if _, err := (DirSink{Dir: dir}).Deliver(context.Background(), &docsmith.Artifact{Name: "../x.pdf"}); !errors.Is(err, docsmith.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := LogNotifier{Logger: zap.New(core)}
	n.Notify(context.Background(), Notice{Title: "Success!", Description: "done"})
	n.Notify(context.Background(), Notice{Level: LevelError, Title: "Error", Description: "Failed to generate PNG."})
	all := logs.All()
	if len(all) != 2 || all[0].Level != zapcore.InfoLevel || all[1].Level != zapcore.ErrorLevel {
		t.Fatalf("logs = %+v", all)
	}
	if all[1].ContextMap()["description"] != "Failed to generate PNG." {
		t.Fatalf("fields = %v", all[1].ContextMap())
	}
}

func TestStateString(t *testing.T) {
	if EnsuringVisible.String() != "ensuring-visible" || State(42).String() != "unknown" {
		t.Fatal("unexpected state names")
	}
}
