package ai

import (
	"context"

	"applykit/internal/types"
)

// Provider is an AI backend able to run every operation. Token usage is
// returned alongside results and may be nil.
type Provider interface {
	GenerateContent(ctx context.Context, input types.GenerateContentInput) (types.TailoredContent, *types.TokenUsage, error)
	ParseProfile(ctx context.Context, input types.ParseProfileInput) (types.CandidateProfile, *types.TokenUsage, error)
	ExtractText(ctx context.Context, input types.ExtractTextInput) (types.ExtractTextOutput, *types.TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
