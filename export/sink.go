package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lvillar/docsmith"
)

// Sink delivers a finished artifact and reports where it went.
type Sink interface {
	Deliver(ctx context.Context, a *docsmith.Artifact) (location string, err error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a *docsmith.Artifact) (string, error)

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, a *docsmith.Artifact) (string, error) {
	return f(ctx, a)
}

// DirSink writes artifacts into a directory under their file names. Files
// appear atomically: readers never see a partial artifact.
type DirSink struct {
	Dir string
}

// Deliver writes a into the directory and returns the file path.
func (s DirSink) Deliver(ctx context.Context, a *docsmith.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.Name == "" || filepath.Base(a.Name) != a.Name {
		return "", fmt.Errorf("%w: invalid file name %q", docsmith.ErrDelivery, a.Name)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
	}
	f, err := os.CreateTemp(dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
	}
	tmp := f.Name()
	_, werr := f.Write(a.Data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: writing %s: %w", docsmith.ErrDelivery, a.Name, werr)
	}
	path := filepath.Join(dir, a.Name)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
	}
	return path, nil
}

// WriterSink copies artifacts to a writer, such as an HTTP response.
type WriterSink struct {
	W io.Writer
}

// Deliver writes the artifact bytes to the writer and returns its name.
func (s WriterSink) Deliver(ctx context.Context, a *docsmith.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.W.Write(a.Data); err != nil {
		return "", fmt.Errorf("%w: %w", docsmith.ErrDelivery, err)
	}
	return a.Name, nil
}
