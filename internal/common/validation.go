package common

import (
	"fmt"
	"slices"

	"applykit/internal/documents"
)

// ValidateOutputFormat checks format against the configured formats. An
// empty list allows any format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ResolveOutputFormat applies the default format and validates the result.
func ResolveOutputFormat(format, defaultFormat string, supportedFormats []string) (string, error) {
	if format == "" {
		format = defaultFormat
	}
	return format, ValidateOutputFormat(format, supportedFormats)
}

// ParseKinds expands "all" and validates every requested document kind.
// Duplicates are dropped; order follows the request.
func ParseKinds(values []string) ([]documents.Kind, error) {
	if len(values) == 0 || slices.Contains(values, "all") {
		return documents.Kinds(), nil
	}
	kinds := make([]documents.Kind, 0, len(values))
	for _, v := range values {
		k, err := documents.ParseKind(v)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}
