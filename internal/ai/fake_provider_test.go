package ai

import (
	"context"

	"applykit/internal/types"
)

type fakeProvider struct {
	content types.TailoredContent
	profile types.CandidateProfile
	text    string
	usage   *types.TokenUsage
	err     error

	calls       int
	lastGen     types.GenerateContentInput
	lastParse   types.ParseProfileInput
	lastExtract types.ExtractTextInput
}

func (f *fakeProvider) GenerateContent(_ context.Context, input types.GenerateContentInput) (types.TailoredContent, *types.TokenUsage, error) {
	f.calls++
	f.lastGen = input
	return f.content, f.usage, f.err
}

func (f *fakeProvider) ParseProfile(_ context.Context, input types.ParseProfileInput) (types.CandidateProfile, *types.TokenUsage, error) {
	f.calls++
	f.lastParse = input
	return f.profile, f.usage, f.err
}

func (f *fakeProvider) ExtractText(_ context.Context, input types.ExtractTextInput) (types.ExtractTextOutput, *types.TokenUsage, error) {
	f.calls++
	f.lastExtract = input
	return types.ExtractTextOutput{Text: f.text}, f.usage, f.err
}

func (f *fakeProvider) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Available: f.err == nil}
}

func (f *fakeProvider) Close() error { return nil }
