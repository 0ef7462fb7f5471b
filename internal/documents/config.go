package documents

import (
	"time"

	"applykit/internal/config"
	"applykit/internal/layout"
	"applykit/internal/pdf"
)

// OptionsFor returns the page setup of kind from the document settings.
// The brief uses its own margins in place of the resume page.
func OptionsFor(cfg config.DocumentConfig, kind Kind) (Options, error) {
	page, err := cfg.ResumeGeometry()
	if kind == KindBrief {
		page, err = cfg.BriefGeometry()
	}
	if err != nil {
		return Options{}, err
	}
	letter, err := cfg.CoverLetterGeometry()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Geometry:       page,
		LetterGeometry: letter,
		ShowDates:      cfg.ShowDates,
		Date:           time.Now(),
	}, nil
}

// NewBuilderFromConfig creates a Builder for the configured font family.
func NewBuilderFromConfig(cfg config.DocumentConfig, creator string) (*Builder, error) {
	family, err := pdf.ParseFamily(cfg.FontFamily)
	if err != nil {
		return nil, err
	}
	return NewBuilder(family, layout.DefaultStyle(), pdf.WithCreator(creator))
}
