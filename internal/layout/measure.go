package layout

import "unicode/utf8"

// FontStyle selects the face of the document font family.
type FontStyle int

const (
	Regular FontStyle = iota
	Bold
	Italic
	BoldItalic
)

func (s FontStyle) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// Font is a face and size in points.
type Font struct {
	Style FontStyle
	Size  float64
}

// Measurer reports the advance width of text set in a font, in points.
//
// Implementations must be deterministic: the same text and font always
// measure the same.
type Measurer interface {
	TextWidth(text string, font Font) float64
}

// FixedMeasurer gives every rune the same advance, expressed as a fraction
// of the font size. Bold text is widened by BoldFactor when set.
type FixedMeasurer struct {
	Advance    float64
	BoldFactor float64
}

// TextWidth implements Measurer.
func (m FixedMeasurer) TextWidth(text string, font Font) float64 {
	w := float64(utf8.RuneCountInString(text)) * m.Advance * font.Size
	if m.BoldFactor > 0 && (font.Style == Bold || font.Style == BoldItalic) {
		w *= m.BoldFactor
	}
	return w
}
