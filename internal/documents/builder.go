package documents

import (
	"fmt"

	"applykit/internal/layout"
	"applykit/internal/pdf"
	"applykit/internal/types"
)

// Output is a finished PDF ready to be written or downloaded.
type Output struct {
	Kind     Kind
	Filename string
	Pages    int
	Data     []byte
}

// Builder composes, lays out and exports documents. It is safe for
// concurrent use.
type Builder struct {
	renderer *layout.Renderer
	exporter *pdf.Exporter
}

// NewBuilder returns a Builder whose text measurement matches the font
// family of the exported PDF.
func NewBuilder(family pdf.Family, style layout.Style, opts ...pdf.ExportOption) (*Builder, error) {
	m, err := pdf.MeasurerFor(family)
	if err != nil {
		return nil, err
	}
	return &Builder{
		renderer: layout.NewRenderer(m, layout.WithStyle(style)),
		exporter: pdf.NewExporter(family, opts...),
	}, nil
}

// Layout composes and renders a document without exporting it.
func (b *Builder) Layout(kind Kind, profile types.CandidateProfile, content types.TailoredContent, opts Options) (layout.RenderedDocument, error) {
	doc, err := Compose(kind, profile, content, opts)
	if err != nil {
		return layout.RenderedDocument{}, err
	}
	return b.renderer.Render(doc), nil
}

// Build produces the PDF of one document kind.
func (b *Builder) Build(kind Kind, profile types.CandidateProfile, content types.TailoredContent, opts Options) (*Output, error) {
	rendered, err := b.Layout(kind, profile, content, opts)
	if err != nil {
		return nil, err
	}
	data, err := b.exporter.Bytes(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", kind, err)
	}
	return &Output{
		Kind:     kind,
		Filename: pdf.Filename(profile.Name, TargetTitle(profile, content, opts), kind.FileSuffix()),
		Pages:    rendered.PageCount(),
		Data:     data,
	}, nil
}
