package fonts

import (
	"strings"
	"sync"
	"testing"
)

func TestWidthScalesWithSize(t *testing.T) {
	m := NewMeasurer()
	small := m.Width(Spec{Regular, 10}, "Invoice")
	large := m.Width(Spec{Regular, 20}, "Invoice")
	if small <= 0 {
		t.Fatalf("width = %v", small)
	}
	if large < small*1.8 || large > small*2.2 {
		t.Fatalf("width at 20px = %v, expected about twice %v", large, small)
	}
	if m.Width(Spec{Bold, 10}, "Invoice") <= small*0.9 {
		t.Fatal("bold should not be much narrower than regular")
	}
}

func TestWrap(t *testing.T) {
	m := NewMeasurer()
	spec := Spec{Regular, 14}
	text := "Payment is due within 30 days. Thank you for your business!"
	width := m.Width(spec, "Payment is due within")

	lines := m.Wrap(spec, text, width)
	if len(lines) < 2 {
		t.Fatalf("expected several lines, got %q", lines)
	}
	for _, l := range lines {
		if m.Width(spec, l) > width {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != text {
		t.Errorf("wrapping lost words: %q", lines)
	}
}

func TestWrapKeepsHardBreaks(t *testing.T) {
	m := NewMeasurer()
	lines := m.Wrap(Spec{Regular, 12}, "123 Main Street\n\nAnytown", 1000)
	want := []string{"123 Main Street", "", "Anytown"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("lines = %q, want %q", lines, want)
		}
	}
}

func TestWrapSplitsLongWords(t *testing.T) {
	m := NewMeasurer()
	spec := Spec{Mono, 10}
	word := strings.Repeat("x", 40)
	width := m.Width(spec, "xxxxxxxxxx")
	lines := m.Wrap(spec, word, width)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if strings.Join(lines, "") != word {
		t.Fatal("split lost characters")
	}
}

func TestMeasurerConcurrentUse(t *testing.T) {
	m := NewMeasurer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Wrap(Spec{Style(i % int(numStyles)), 12}, "concurrent measurement of text", 80)
		}(i)
	}
	wg.Wait()
}

func TestNewFaceRejectsBadSpec(t *testing.T) {
	if _, err := NewFace(Spec{Regular, 0}, 1); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := NewFace(Spec{Style(99), 12}, 1); err == nil {
		t.Fatal("expected error for unknown style")
	}
	if mt := NewMeasurer().Metrics(Spec{Regular, 16}); mt.Ascent <= 0 || mt.Descent <= 0 {
		t.Fatalf("metrics = %+v", mt)
	}
}
