package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"applykit/internal/layout"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Greg Dukes", "Greg_Dukes"},
		{"  José   Álvarez-Núñez ", "Jose_Alvarez_Nunez"},
		{"AI/ML Solutions Architect (Media)", "AI_ML_Solutions_Architect_Media"},
		{"Zoë O'Brien", "Zoe_O_Brien"},
		{"李雷", ""},
		{"", ""},
		{"___", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		person   string
		role     string
		suffix   string
		expected string
	}{
		{"full", "Greg Dukes", "AI Solutions Architect", "Resume", "Greg_Dukes_AI_Solutions_Architect_Resume.pdf"},
		{"no role", "Greg Dukes", "", "CoverLetter", "Greg_Dukes_CoverLetter.pdf"},
		{"no name", "", "Producer", "Brief", "Candidate_Producer_Brief.pdf"},
		{"symbols only", "!!!", "???", "Resume", "Candidate_Resume.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.person, tt.role, tt.suffix); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestParseFamily(t *testing.T) {
	for _, name := range []string{"", "helvetica", "go"} {
		if _, err := ParseFamily(name); err != nil {
			t.Errorf("Expected %q to be valid, got %v", name, err)
		}
	}
	if _, err := ParseFamily("comic-sans"); err == nil {
		t.Error("Expected error for unknown family")
	}
}

func renderSample(t *testing.T, family Family) layout.RenderedDocument {
	t.Helper()
	m, err := MeasurerFor(family)
	if err != nil {
		t.Fatalf("Failed to create measurer: %v", err)
	}
	r := layout.NewRenderer(m)
	return r.Render(layout.Document{
		Geometry: layout.A4(),
		Meta:     layout.Meta{Title: "Resume", Author: "Greg Dukes"},
		Blocks: []layout.Block{
			layout.Title{Text: "GREG DUKES", Size: 22, Bold: true},
			layout.ContactLine{Fields: []string{"Charlotte, NC", "greg@example.com"}},
			layout.Heading{Text: "Summary", Rule: true},
			layout.Paragraph{Text: strings.Repeat("Broadcast engineering leader shipping AI tooling. ", 120)},
			layout.BulletList{Items: []string{"Cut render time by 40%", "Ran live coverage for 3M viewers"}},
			layout.KeyValueRow{Label: "Technical Director", Value: "2018 - Present"},
		},
	})
}

func TestExport(t *testing.T) {
	for _, family := range []Family{FamilyHelvetica, FamilyGo} {
		t.Run(string(family), func(t *testing.T) {
			doc := renderSample(t, family)
			if doc.PageCount() < 2 {
				t.Fatalf("Expected a multi-page sample, got %d page(s)", doc.PageCount())
			}

			out, err := NewExporter(family, WithCreationDate(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))).Bytes(doc)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Errorf("Expected PDF header, got %q", out[:min(len(out), 8)])
			}
			if !bytes.Contains(out, []byte("%%EOF")) {
				t.Error("Expected PDF trailer")
			}
		})
	}
}

func TestCoreMeasurer(t *testing.T) {
	m := NewCoreMeasurer()
	regular := m.TextWidth("Resume", layout.Font{Size: 10})
	bold := m.TextWidth("Resume", layout.Font{Style: layout.Bold, Size: 10})
	if regular <= 0 || bold <= regular {
		t.Errorf("Expected positive width and wider bold: %v vs %v", regular, bold)
	}
	if w := m.TextWidth("•", layout.Font{Size: 10}); w <= 0 {
		t.Errorf("Expected bullet glyph to have width, got %v", w)
	}
}
