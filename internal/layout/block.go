package layout

// Block is one unit of document content. The set of blocks is closed: only
// the types in this package implement it.
type Block interface {
	block()
}

// Align is horizontal placement of a single-line block.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
)

// Title is a single line of large text, typically a name or a role.
type Title struct {
	Text       string
	Size       float64
	Align      Align
	Bold       bool
	SpaceAfter float64
}

// Heading starts a section. Rule draws a line under it across the content width.
type Heading struct {
	Text string
	Rule bool
	// Size overrides Style.HeadingSize when positive.
	Size float64
}

// Paragraph is free text wrapped to the content width.
type Paragraph struct {
	Text string
	// Size overrides Style.BodySize when positive.
	Size float64
	// Italic sets the paragraph in the italic face.
	Italic bool
}

// BulletList renders each item behind a bullet glyph with a hanging indent.
type BulletList struct {
	Items []string
	Size  float64
}

// ContactLine joins the non-empty fields with Separator and centers them.
type ContactLine struct {
	Fields []string
	// Separator defaults to " | ".
	Separator string
	Size      float64
}

// KeyValueRow is a bold label on the left and an optional value flush with
// the right margin, on one baseline. Neither side wraps; a label long enough
// to reach the value is drawn underneath it unchanged.
type KeyValueRow struct {
	Label string
	Value string
	Size  float64
}

// Spacer inserts vertical space. It never starts a new page.
type Spacer struct {
	Height float64
}

func (Title) block()       {}
func (Heading) block()     {}
func (Paragraph) block()   {}
func (BulletList) block()  {}
func (ContactLine) block() {}
func (KeyValueRow) block() {}
func (Spacer) block()      {}

// Meta describes a document for the exporter.
type Meta struct {
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// Document is an ordered list of blocks laid out on one page geometry.
type Document struct {
	Geometry Geometry
	Blocks   []Block
	Meta     Meta
}
