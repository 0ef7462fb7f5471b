package common

import (
	"slices"
	"testing"

	"applykit/internal/documents"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectedError    string
	}{
		{name: "json", format: "json", supportedFormats: supported},
		{name: "markdown", format: "markdown", supportedFormats: supported},
		{
			name:             "unknown format",
			format:           "xml",
			supportedFormats: supported,
			expectedError:    "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive",
			format:           "JSON",
			supportedFormats: supported,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{name: "no restrictions", format: "xml", supportedFormats: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if tt.expectedError == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.expectedError {
				t.Errorf("Expected error '%s', got '%v'", tt.expectedError, err)
			}
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	format, err := ResolveOutputFormat("", "text", []string{"json", "text"})
	if err != nil || format != "text" {
		t.Errorf("Expected default format 'text', got '%s' (%v)", format, err)
	}
	if _, err := ResolveOutputFormat("yaml", "text", []string{"json", "text"}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []documents.Kind
		wantErr bool
	}{
		{name: "empty means all", values: nil, want: documents.Kinds()},
		{name: "all keyword", values: []string{"resume", "all"}, want: documents.Kinds()},
		{name: "subset keeps order", values: []string{"brief", "resume"}, want: []documents.Kind{documents.KindBrief, documents.KindResume}},
		{name: "duplicates dropped", values: []string{"resume", "resume"}, want: []documents.Kind{documents.KindResume}},
		{name: "unknown kind", values: []string{"poster"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKinds(tt.values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKinds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}
	for b.Loop() {
		_ = ValidateOutputFormat("markdown", supportedFormats)
	}
}
