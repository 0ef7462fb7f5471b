package layout

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Style holds the typographic constants shared by all block rules.
// Distances are in geometry units, sizes in points.
type Style struct {
	BodySize     float64
	HeadingSize  float64
	LineSpacing  float64
	ParagraphGap float64

	HeadingGap    float64
	RuleOffset    float64
	RuleWidth     float64
	UppercaseHead bool

	BulletGlyph  string
	BulletOffset float64
	BulletIndent float64
	ItemGap      float64

	Separator string

	Primary Color
	Accent  Color
	Text    Color
	Rule    Color
}

// DefaultStyle returns the resume house style in millimeter units.
func DefaultStyle() Style {
	return Style{
		BodySize:      10,
		HeadingSize:   11,
		LineSpacing:   1.4,
		ParagraphGap:  4,
		HeadingGap:    8,
		RuleOffset:    3,
		RuleWidth:     0.5,
		UppercaseHead: true,
		BulletGlyph:   "•",
		BulletOffset:  1,
		BulletIndent:  6,
		ItemGap:       1,
		Separator:     " | ",
		Primary:       Color{0, 0, 0},
		Accent:        Color{100, 116, 139},
		Text:          Color{30, 41, 59},
		Rule:          Color{200, 200, 200},
	}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle replaces the default style.
func WithStyle(s Style) Option {
	return func(r *Renderer) {
		r.style = s
	}
}
