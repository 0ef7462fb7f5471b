package layout

import (
	"fmt"
	"math"
	"strings"
)

// Renderer lays out documents. It holds no per-document state, so one
// Renderer may render many documents concurrently provided its Measurer is
// safe for concurrent use.
type Renderer struct {
	measurer Measurer
	style    Style
}

// NewRenderer returns a Renderer measuring text with m.
func NewRenderer(m Measurer, opts ...Option) *Renderer {
	r := &Renderer{measurer: m, style: DefaultStyle()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Style returns the style the renderer applies.
func (r *Renderer) Style() Style {
	return r.style
}

// Render lays out doc in a single pass. The last page is always part of the
// result, even when it holds little or nothing.
func (r *Renderer) Render(doc Document) RenderedDocument {
	geo := doc.Geometry.Normalize()
	p := &pass{
		m:     r.measurer,
		st:    r.style,
		geo:   geo,
		scale: geo.UnitsPerPoint(),
	}
	p.newPage()
	for _, b := range doc.Blocks {
		p.render(b)
	}
	return RenderedDocument{Geometry: geo, Meta: doc.Meta, Pages: p.pages}
}

// pass is the mutable state of one Render call.
type pass struct {
	m      Measurer
	st     Style
	geo    Geometry
	scale  float64
	cursor Cursor
	pages  []RenderedPage
}

func (p *pass) render(b Block) {
	switch b := b.(type) {
	case Title:
		p.title(b)
	case Heading:
		p.heading(b)
	case Paragraph:
		p.paragraph(b)
	case BulletList:
		p.bullets(b)
	case ContactLine:
		p.contact(b)
	case KeyValueRow:
		p.keyValue(b)
	case Spacer:
		p.advance(b.Height)
	default:
		panic(fmt.Sprintf("layout: unhandled block type %T", b))
	}
}

func (p *pass) newPage() {
	p.pages = append(p.pages, RenderedPage{Index: len(p.pages)})
	p.cursor = Cursor{Y: p.geo.Margins.Top, Page: len(p.pages) - 1}
}

// ensureSpace starts a new page when need does not fit above the bottom
// margin. A page that has not advanced past its top margin is never left,
// so content taller than a page is placed and overflows.
func (p *pass) ensureSpace(need float64) {
	if p.cursor.Y+need > p.geo.Bottom() && p.cursor.Y > p.geo.Margins.Top {
		p.newPage()
	}
}

func (p *pass) advance(amount float64) {
	if amount > 0 {
		p.cursor.Y += amount
	}
}

func (p *pass) lineHeight(size float64) float64 {
	return size * p.scale * p.st.LineSpacing
}

func (p *pass) width(text string, f Font) float64 {
	return p.m.TextWidth(text, f) * p.scale
}

func (p *pass) emit(op DrawOp) {
	page := &p.pages[len(p.pages)-1]
	page.Ops = append(page.Ops, op)
}

func (p *pass) text(x float64, s string, f Font, c Color) {
	p.emit(DrawOp{Kind: OpText, X: x, Y: p.cursor.Y, Text: s, Font: f, Color: c})
}

// centered returns the x that centers text of width w on the page, kept
// inside the left margin when the text is wider than the content area.
func (p *pass) centered(w float64) float64 {
	return math.Max(p.geo.Margins.Left, (p.geo.Width-w)/2)
}

func sizeOr(size, fallback float64) float64 {
	if size > 0 {
		return size
	}
	return fallback
}

func (p *pass) title(b Title) {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return
	}
	f := Font{Style: Regular, Size: sizeOr(b.Size, p.st.BodySize)}
	if b.Bold {
		f.Style = Bold
	}
	lh := p.lineHeight(f.Size)
	p.ensureSpace(lh)
	x := p.geo.Margins.Left
	if b.Align == AlignCenter {
		x = p.centered(p.width(text, f))
	}
	p.text(x, text, f, p.st.Primary)
	p.advance(lh + b.SpaceAfter)
}

func (p *pass) heading(b Heading) {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return
	}
	if p.st.UppercaseHead {
		text = strings.ToUpper(text)
	}
	f := Font{Style: Bold, Size: sizeOr(b.Size, p.st.HeadingSize)}
	extent := math.Max(p.lineHeight(f.Size), p.st.RuleOffset+p.st.HeadingGap)
	p.ensureSpace(extent)
	p.text(p.geo.Margins.Left, text, f, p.st.Primary)
	if b.Rule {
		y := p.cursor.Y + p.st.RuleOffset
		p.emit(DrawOp{
			Kind:      OpRule,
			X:         p.geo.Margins.Left,
			Y:         y,
			X2:        p.geo.Right(),
			Y2:        y,
			Color:     p.st.Rule,
			LineWidth: p.st.RuleWidth,
		})
	}
	p.advance(extent)
}

func (p *pass) paragraph(b Paragraph) {
	f := Font{Style: Regular, Size: sizeOr(b.Size, p.st.BodySize)}
	if b.Italic {
		f.Style = Italic
	}
	lines := Wrap(p.m, b.Text, f, p.geo.ContentWidth(), p.scale)
	if len(lines) == 0 {
		return
	}
	lh := p.lineHeight(f.Size)
	for _, line := range lines {
		p.ensureSpace(lh)
		if line != "" {
			p.text(p.geo.Margins.Left, line, f, p.st.Text)
		}
		p.advance(lh)
	}
	p.advance(p.st.ParagraphGap)
}

func (p *pass) bullets(b BulletList) {
	f := Font{Style: Regular, Size: sizeOr(b.Size, p.st.BodySize)}
	lh := p.lineHeight(f.Size)
	left := p.geo.Margins.Left
	maxWidth := math.Max(0, p.geo.ContentWidth()-p.st.BulletIndent)

	drawn := false
	for _, item := range b.Items {
		lines := Wrap(p.m, item, f, maxWidth, p.scale)
		if len(lines) == 0 {
			continue
		}
		for i, line := range lines {
			p.ensureSpace(lh)
			if i == 0 {
				p.text(left+p.st.BulletOffset, p.st.BulletGlyph, f, p.st.Text)
			}
			if line != "" {
				p.text(left+p.st.BulletIndent, line, f, p.st.Text)
			}
			p.advance(lh)
		}
		p.advance(p.st.ItemGap)
		drawn = true
	}
	if drawn {
		p.advance(p.st.ParagraphGap - p.st.ItemGap)
	}
}

func (p *pass) contact(b ContactLine) {
	sep := b.Separator
	if sep == "" {
		sep = p.st.Separator
	}
	parts := make([]string, 0, len(b.Fields))
	for _, field := range b.Fields {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}
	if len(parts) == 0 {
		return
	}
	text := strings.Join(parts, sep)
	f := Font{Style: Regular, Size: sizeOr(b.Size, p.st.BodySize)}
	lh := p.lineHeight(f.Size)
	p.ensureSpace(lh)
	p.text(p.centered(p.width(text, f)), text, f, p.st.Accent)
	p.advance(lh)
}

func (p *pass) keyValue(b KeyValueRow) {
	label := strings.TrimSpace(b.Label)
	value := strings.TrimSpace(b.Value)
	if label == "" && value == "" {
		return
	}
	size := sizeOr(b.Size, p.st.BodySize)
	lh := p.lineHeight(size)
	p.ensureSpace(lh)
	if label != "" {
		p.text(p.geo.Margins.Left, label, Font{Style: Bold, Size: size}, p.st.Primary)
	}
	if value != "" {
		f := Font{Style: Regular, Size: size}
		p.text(p.geo.Right()-p.width(value, f), value, f, p.st.Accent)
	}
	p.advance(lh)
}
