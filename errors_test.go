package docsmith

import (
	"errors"
	"fmt"
	"testing"
)

func TestExportErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("capturing front: %w", ErrNotMounted)
	err := NewExportError("Export", StageCapture, cause)

	if !errors.Is(err, ErrNotMounted) {
		t.Fatal("expected errors.Is to see ErrNotMounted through ExportError")
	}
	if got := StageOf(fmt.Errorf("wrapped: %w", err)); got != StageCapture {
		t.Fatalf("StageOf = %q, want %q", got, StageCapture)
	}
	want := "docsmith.Export: capture: capturing front: docsmith: surface is not mounted"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExportErrorNilCause(t *testing.T) {
	err := &ExportError{Op: "Deliver", Stage: StageDelivery}
	if err.Error() != "docsmith.Deliver: delivery: unknown error" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if StageOf(errors.New("plain")) != "" {
		t.Fatal("plain errors carry no stage")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(FormatPDF); got != "Failed to generate PDF." {
		t.Fatalf("UserMessage(pdf) = %q", got)
	}
	if got := UserMessage(FormatPNG); got != "Failed to generate PNG." {
		t.Fatalf("UserMessage(png) = %q", got)
	}
}
