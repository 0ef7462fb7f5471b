package layout

// OpKind distinguishes draw operations.
type OpKind int

const (
	OpText OpKind = iota
	OpRule
)

// DrawOp is one positioned instruction for an exporter.
//
// Text ops draw Text with its baseline starting at (X, Y). Rule ops draw a
// straight line from (X, Y) to (X2, Y2).
type DrawOp struct {
	Kind      OpKind
	X, Y      float64
	X2, Y2    float64
	Text      string
	Font      Font
	Color     Color
	LineWidth float64
}

// RenderedPage is the draw list of one page.
type RenderedPage struct {
	Index int
	Ops   []DrawOp
}

// RenderedDocument is the output of a render pass.
type RenderedDocument struct {
	Geometry Geometry
	Meta     Meta
	Pages    []RenderedPage
}

// PageCount returns the number of pages.
func (d RenderedDocument) PageCount() int {
	return len(d.Pages)
}

// Texts returns the text of every text op in draw order.
func (d RenderedDocument) Texts() []string {
	var out []string
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				out = append(out, op.Text)
			}
		}
	}
	return out
}

// Cursor is the write position of a render pass.
type Cursor struct {
	Y    float64
	Page int
}
