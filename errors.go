package docsmith

import (
	"errors"
	"fmt"
)

// Sentinel errors for common export failure conditions.
var (
	ErrNotMounted        = errors.New("docsmith: surface is not mounted")
	ErrResourceLoad      = errors.New("docsmith: resource failed to load")
	ErrRasterize         = errors.New("docsmith: rasterization failed")
	ErrZeroSizeCapture   = errors.New("docsmith: capture has zero size")
	ErrNoCaptures        = errors.New("docsmith: no captures to assemble")
	ErrDelivery          = errors.New("docsmith: delivery failed")
	ErrBusy              = errors.New("docsmith: export already in progress")
	ErrUnknownKind       = errors.New("docsmith: unknown document kind")
	ErrUnsupportedFormat = errors.New("docsmith: unsupported output format")
	ErrInvalidParam      = errors.New("docsmith: invalid parameter")
)

// Stage identifies the part of the export pipeline an error came from.
type Stage string

const (
	StageCapture  Stage = "capture"
	StageAssembly Stage = "assembly"
	StageDelivery Stage = "delivery"
)

// ExportError represents an error that occurred during a specific export stage.
// It wraps an underlying error and includes the operation name for context.
type ExportError struct {
	Op    string // operation name, e.g. "Export", "Capture"
	Stage Stage  // pipeline stage
	Err   error  // underlying error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docsmith.%s: %s: %v", e.Op, e.Stage, e.Err)
	}
	return fmt.Sprintf("docsmith.%s: %s: unknown error", e.Op, e.Stage)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates a new ExportError wrapping err with operation and stage context.
func NewExportError(op string, stage Stage, err error) *ExportError {
	return &ExportError{Op: op, Stage: stage, Err: err}
}

// StageOf reports the pipeline stage recorded in err, or "" if err carries none.
func StageOf(err error) Stage {
	var ee *ExportError
	if errors.As(err, &ee) {
		return ee.Stage
	}
	return ""
}

// UserMessage returns the notification text shown when exporting to format fails.
// It never contains technical detail.
func UserMessage(format Format) string {
	return fmt.Sprintf("Failed to generate %s.", format.Label())
}
