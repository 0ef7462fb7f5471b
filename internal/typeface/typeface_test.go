package typeface

import (
	"math"
	"sync"
	"testing"

	"applykit/internal/layout"
)

func newTestMeasurer(t *testing.T) *Measurer {
	t.Helper()
	m, err := NewMeasurer()
	if err != nil {
		t.Fatalf("Failed to create measurer: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestTextWidth(t *testing.T) {
	m := newTestMeasurer(t)
	regular := layout.Font{Style: layout.Regular, Size: 10}

	if w := m.TextWidth("", regular); w != 0 {
		t.Errorf("Expected empty string to measure 0, got %v", w)
	}
	if w := m.TextWidth("abc", layout.Font{Size: 0}); w != 0 {
		t.Errorf("Expected zero size to measure 0, got %v", w)
	}

	short := m.TextWidth("Go", regular)
	long := m.TextWidth("Go developer", regular)
	if short <= 0 || long <= short {
		t.Errorf("Expected longer text to be wider: %v vs %v", short, long)
	}

	double := m.TextWidth("Go developer", layout.Font{Style: layout.Regular, Size: 20})
	if math.Abs(double-2*long) > 0.5 {
		t.Errorf("Expected width to scale with size: %v vs 2*%v", double, long)
	}

	// A line of 10pt text is a few points per glyph, never more than the size.
	if per := long / 12; per <= 1 || per >= 10 {
		t.Errorf("Unexpected average advance %v pt", per)
	}
}

func TestBoldIsWider(t *testing.T) {
	m := newTestMeasurer(t)
	text := "PROFESSIONAL SUMMARY"
	regular := m.TextWidth(text, layout.Font{Style: layout.Regular, Size: 11})
	bold := m.TextWidth(text, layout.Font{Style: layout.Bold, Size: 11})
	if bold <= regular {
		t.Errorf("Expected bold to be wider than regular: %v vs %v", bold, regular)
	}
}

func TestMeasurerConcurrentUse(t *testing.T) {
	m := newTestMeasurer(t)
	want := m.TextWidth("concurrent", layout.Font{Size: 12})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(size float64) {
			defer wg.Done()
			m.TextWidth("warm cache", layout.Font{Size: size})
			if got := m.TextWidth("concurrent", layout.Font{Size: 12}); got != want {
				t.Errorf("Expected %v, got %v", want, got)
			}
		}(float64(8 + i))
	}
	wg.Wait()
}

func TestWrapWithGoFonts(t *testing.T) {
	m := newTestMeasurer(t)
	geo := layout.A4()
	font := layout.Font{Size: 10}
	text := "Media production leader with fifteen years across broadcast, streaming and live events, now building AI tooling for editorial teams."
	for _, line := range layout.Wrap(m, text, font, 60, geo.UnitsPerPoint()) {
		if w := m.TextWidth(line, font) * geo.UnitsPerPoint(); w > 60 {
			t.Errorf("Line %q is %vmm wide, limit 60mm", line, w)
		}
	}
}
