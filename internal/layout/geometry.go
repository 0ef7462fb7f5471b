// Package layout places typed content blocks onto fixed-size pages.
//
// A Renderer walks a Document's blocks once, in order, measuring and wrapping
// text through a Measurer and emitting positioned draw operations. Pages are
// broken whenever the next atomic draw would cross the bottom margin. The
// output is a RenderedDocument that an exporter turns into bytes.
package layout

import (
	"fmt"
	"math"
)

// Unit is the coordinate unit of a Geometry.
type Unit string

const (
	UnitMillimeter Unit = "mm"
	UnitPoint      Unit = "pt"
	UnitInch       Unit = "in"
)

// maxMarginShare is the largest fraction of a page dimension the two
// opposing margins may take together after normalization.
const maxMarginShare = 0.9

// Margins holds per-side page margins in geometry units.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns margins of m on every side.
func Uniform(m float64) Margins {
	return Margins{Top: m, Right: m, Bottom: m, Left: m}
}

// Geometry is the page size and margins of a document.
type Geometry struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Margins Margins `json:"margins"`
	Unit    Unit    `json:"unit"`
}

// A4 returns a portrait A4 page in millimeters with 20 mm margins.
func A4() Geometry {
	return Geometry{Width: 210, Height: 297, Margins: Uniform(20), Unit: UnitMillimeter}
}

// Letter returns a portrait US Letter page in millimeters with 20 mm margins.
func Letter() Geometry {
	return Geometry{Width: 215.9, Height: 279.4, Margins: Uniform(20), Unit: UnitMillimeter}
}

// PageSize returns a named page size ("a4" or "letter") with the given margins.
func PageSize(name string, margins Margins) (Geometry, error) {
	var g Geometry
	switch name {
	case "a4", "A4", "":
		g = A4()
	case "letter", "Letter":
		g = Letter()
	default:
		return Geometry{}, fmt.Errorf("unknown page size %q (supported: a4, letter)", name)
	}
	g.Margins = margins
	return g, nil
}

// WithMargins returns a copy of g using margins m.
func (g Geometry) WithMargins(m Margins) Geometry {
	g.Margins = m
	return g
}

// UnitsPerPoint converts a font size in points to geometry units.
func (g Geometry) UnitsPerPoint() float64 {
	switch g.Unit {
	case UnitPoint:
		return 1
	case UnitInch:
		return 1.0 / 72
	default:
		return 25.4 / 72
	}
}

// ContentWidth is the horizontal space between the left and right margins.
func (g Geometry) ContentWidth() float64 {
	return math.Max(0, g.Width-g.Margins.Left-g.Margins.Right)
}

// ContentHeight is the vertical space between the top and bottom margins.
func (g Geometry) ContentHeight() float64 {
	return math.Max(0, g.Height-g.Margins.Top-g.Margins.Bottom)
}

// Bottom is the lowest y a line may reach before a page break.
func (g Geometry) Bottom() float64 {
	return g.Height - g.Margins.Bottom
}

// Right is the x coordinate of the right margin.
func (g Geometry) Right() float64 {
	return g.Width - g.Margins.Right
}

// Validate reports geometry that Normalize would have to correct.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("page size must be positive, got %gx%g", g.Width, g.Height)
	}
	m := g.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("margins must not be negative: %+v", m)
	}
	if m.Left+m.Right >= g.Width {
		return fmt.Errorf("horizontal margins %g+%g leave no room on a %g wide page", m.Left, m.Right, g.Width)
	}
	if m.Top+m.Bottom >= g.Height {
		return fmt.Errorf("vertical margins %g+%g leave no room on a %g high page", m.Top, m.Bottom, g.Height)
	}
	return nil
}

// Normalize returns a geometry that always leaves positive content area.
// Non-positive page sizes fall back to A4, negative margins become zero and
// a margin pair taking more than 90% of its dimension is scaled down.
func (g Geometry) Normalize() Geometry {
	if g.Unit == "" {
		g.Unit = UnitMillimeter
	}
	if g.Width <= 0 || g.Height <= 0 {
		a4 := A4()
		g.Width, g.Height, g.Unit = a4.Width, a4.Height, a4.Unit
	}
	m := &g.Margins
	m.Top, m.Right = math.Max(0, m.Top), math.Max(0, m.Right)
	m.Bottom, m.Left = math.Max(0, m.Bottom), math.Max(0, m.Left)
	m.Left, m.Right = clampPair(m.Left, m.Right, g.Width)
	m.Top, m.Bottom = clampPair(m.Top, m.Bottom, g.Height)
	return g
}

func clampPair(a, b, extent float64) (float64, float64) {
	limit := extent * maxMarginShare
	if a+b <= limit {
		return a, b
	}
	scale := limit / (a + b)
	return a * scale, b * scale
}
