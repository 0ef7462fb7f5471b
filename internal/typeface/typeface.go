// Package typeface measures text with the Go font family so layout and the
// embedded PDF fonts agree on glyph advances.
package typeface

import (
	"fmt"
	"sync"

	"applykit/internal/layout"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TTF returns the TrueType bytes of the Go font face for a style.
func TTF(style layout.FontStyle) []byte {
	switch style {
	case layout.Bold:
		return gobold.TTF
	case layout.Italic:
		return goitalic.TTF
	case layout.BoldItalic:
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}

type faceKey struct {
	style layout.FontStyle
	size  float64
}

// Measurer implements layout.Measurer over the Go fonts. Faces are parsed
// once and cached per style and size. It is safe for concurrent use.
type Measurer struct {
	mu    sync.Mutex
	fonts map[layout.FontStyle]*opentype.Font
	faces map[faceKey]font.Face
}

// NewMeasurer parses the four Go font faces.
func NewMeasurer() (*Measurer, error) {
	m := &Measurer{
		fonts: make(map[layout.FontStyle]*opentype.Font, 4),
		faces: make(map[faceKey]font.Face),
	}
	for _, style := range []layout.FontStyle{layout.Regular, layout.Bold, layout.Italic, layout.BoldItalic} {
		f, err := opentype.Parse(TTF(style))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s face: %w", style, err)
		}
		m.fonts[style] = f
	}
	return m, nil
}

// TextWidth implements layout.Measurer. At 72 DPI one pixel is one point.
func (m *Measurer) TextWidth(text string, f layout.Font) float64 {
	if text == "" || f.Size <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(f)
	if err != nil {
		return 0
	}
	return float64(font.MeasureString(face, text)) / 64
}

func (m *Measurer) face(f layout.Font) (font.Face, error) {
	key := faceKey{style: f.Style, size: f.Size}
	if face, ok := m.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(m.fonts[f.Style], &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = face
	return face, nil
}

// Close releases the cached faces.
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, face := range m.faces {
		face.Close()
		delete(m.faces, key)
	}
	return nil
}
