// Package pdf serializes rendered documents to PDF with go-pdf/fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"applykit/internal/layout"
	"applykit/internal/typeface"

	"github.com/go-pdf/fpdf"
)

// Family is the font family used for every text op of a document.
type Family string

const (
	// FamilyHelvetica uses the PDF core font; text is limited to cp1252.
	FamilyHelvetica Family = "helvetica"
	// FamilyGo embeds the Go fonts and supports full Unicode text.
	FamilyGo Family = "go"
)

// ParseFamily validates a font family name.
func ParseFamily(name string) (Family, error) {
	switch Family(name) {
	case FamilyHelvetica, "":
		return FamilyHelvetica, nil
	case FamilyGo:
		return FamilyGo, nil
	default:
		return "", fmt.Errorf("unsupported font family '%s'. Supported families: [helvetica go]", name)
	}
}

func styleString(s layout.FontStyle) string {
	switch s {
	case layout.Bold:
		return "B"
	case layout.Italic:
		return "I"
	case layout.BoldItalic:
		return "BI"
	default:
		return ""
	}
}

// Exporter writes RenderedDocuments as PDF.
type Exporter struct {
	family  Family
	creator string
	created time.Time
}

// ExportOption configures an Exporter.
type ExportOption func(*Exporter)

// WithCreator sets the PDF creator field.
func WithCreator(creator string) ExportOption {
	return func(e *Exporter) {
		e.creator = creator
	}
}

// WithCreationDate pins the creation date, making output reproducible.
func WithCreationDate(t time.Time) ExportOption {
	return func(e *Exporter) {
		e.created = t
	}
}

// NewExporter returns an Exporter for a font family.
func NewExporter(family Family, opts ...ExportOption) *Exporter {
	e := &Exporter{family: family, creator: "applykit"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Family returns the exporter's font family.
func (e *Exporter) Family() Family {
	return e.family
}

// Export writes doc to w.
func (e *Exporter) Export(doc layout.RenderedDocument, w io.Writer) error {
	geo := doc.Geometry.Normalize()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        string(geo.Unit),
		Size:           fpdf.SizeType{Wd: geo.Width, Ht: geo.Height},
	})
	pdf.SetMargins(geo.Margins.Left, geo.Margins.Top, geo.Margins.Right)
	pdf.SetAutoPageBreak(false, geo.Margins.Bottom)

	translate := func(s string) string { return s }
	if e.family == FamilyGo {
		for _, style := range []layout.FontStyle{layout.Regular, layout.Bold, layout.Italic, layout.BoldItalic} {
			pdf.AddUTF8FontFromBytes(string(FamilyGo), styleString(style), typeface.TTF(style))
		}
	} else {
		translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetTitle(doc.Meta.Title, true)
	pdf.SetAuthor(doc.Meta.Author, true)
	pdf.SetSubject(doc.Meta.Subject, true)
	pdf.SetCreator(e.creator, true)
	if !e.created.IsZero() {
		pdf.SetCreationDate(e.created)
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case layout.OpText:
				pdf.SetFont(string(e.family), styleString(op.Font.Style), op.Font.Size)
				pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
				pdf.Text(op.X, op.Y, translate(op.Text))
			case layout.OpRule:
				pdf.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
				pdf.SetLineWidth(op.LineWidth)
				pdf.Line(op.X, op.Y, op.X2, op.Y2)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build PDF: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Bytes exports doc into memory.
func (e *Exporter) Bytes(doc layout.RenderedDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CoreMeasurer measures text with the fpdf Helvetica metrics. It is safe
// for concurrent use.
type CoreMeasurer struct {
	mu        sync.Mutex
	pdf       *fpdf.Fpdf
	translate func(string) string
}

// NewCoreMeasurer returns a Measurer matching FamilyHelvetica output.
func NewCoreMeasurer() *CoreMeasurer {
	pdf := fpdf.New("P", "pt", "A4", "")
	return &CoreMeasurer{pdf: pdf, translate: pdf.UnicodeTranslatorFromDescriptor("")}
}

// TextWidth implements layout.Measurer.
func (m *CoreMeasurer) TextWidth(text string, f layout.Font) float64 {
	if text == "" || f.Size <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(string(FamilyHelvetica), styleString(f.Style), f.Size)
	return m.pdf.GetStringWidth(m.translate(text))
}

// MeasurerFor returns the Measurer whose metrics match the family's glyphs.
func MeasurerFor(family Family) (layout.Measurer, error) {
	switch family {
	case FamilyGo:
		m, err := typeface.NewMeasurer()
		if err != nil {
			return nil, err
		}
		return m, nil
	case FamilyHelvetica, "":
		return NewCoreMeasurer(), nil
	default:
		return nil, fmt.Errorf("unsupported font family '%s'", family)
	}
}
