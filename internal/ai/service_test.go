package ai

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"applykit/internal/errors"
	"applykit/internal/types"
)

func testLogger() *errors.Logger {
	return errors.NewLoggerWithWriter(io.Discard, slog.LevelError, "text")
}

func validContent() types.TailoredContent {
	return types.TailoredContent{
		ResumeTargetTitle:         "  Platform Engineer ",
		ResumeProfessionalSummary: "Builds platforms.",
		CoverLetterBody:           "Dear team,\n\nI build platforms.",
		ResumeCoreBullets:         []string{"Shipped things", "  ", ""},
		MatchScore:                140,
	}
}

func TestServiceGenerateContent(t *testing.T) {
	fake := &fakeProvider{content: validContent(), usage: &types.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}
	svc := NewServiceWithProvider(fake, "generate", testLogger())

	input := types.GenerateContentInput{
		Profile:        types.CandidateProfile{Name: "Ada Lovelace"},
		JobDescription: "Build a platform",
		TargetRole:     "Platform Engineer",
	}
	got, err := svc.GenerateContent(context.Background(), input)
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if got.MatchScore != 100 {
		t.Errorf("Expected match score clamped to 100, got %d", got.MatchScore)
	}
	if got.ResumeTargetTitle != "Platform Engineer" {
		t.Errorf("Expected trimmed title, got %q", got.ResumeTargetTitle)
	}
	if len(got.ResumeCoreBullets) != 1 {
		t.Errorf("Expected blank bullets dropped, got %v", got.ResumeCoreBullets)
	}
	if got.InterviewBullets == nil {
		t.Error("Expected empty lists to be non-nil")
	}
	if fake.lastGen.TargetRole != "Platform Engineer" {
		t.Errorf("Expected input forwarded to provider, got %+v", fake.lastGen)
	}
}

func TestServiceGenerateContentRejectsInput(t *testing.T) {
	tests := []struct {
		name  string
		input types.GenerateContentInput
		code  string
	}{
		{
			name:  "empty job description",
			input: types.GenerateContentInput{Profile: types.CandidateProfile{Name: "Ada"}, JobDescription: "  "},
			code:  errors.ErrCodeInvalidRequest,
		},
		{
			name:  "profile without name",
			input: types.GenerateContentInput{JobDescription: "Build things"},
			code:  errors.ErrCodeInvalidProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{content: validContent()}
			svc := NewServiceWithProvider(fake, "generate", testLogger())
			_, err := svc.GenerateContent(context.Background(), tt.input)
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("Expected AppError, got %v", err)
			}
			if appErr.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, appErr.Code)
			}
			if fake.calls != 0 {
				t.Errorf("Expected provider not to be called, got %d calls", fake.calls)
			}
		})
	}
}

func TestServiceGenerateContentInvalidOutput(t *testing.T) {
	content := validContent()
	content.CoverLetterBody = " "
	svc := NewServiceWithProvider(&fakeProvider{content: content}, "generate", testLogger())

	_, err := svc.GenerateContent(context.Background(), types.GenerateContentInput{
		Profile:        types.CandidateProfile{Name: "Ada"},
		JobDescription: "Build things",
	})
	if !errors.IsType(err, errors.ErrorTypeAI) {
		t.Fatalf("Expected AI error for missing cover letter, got %v", err)
	}
}

func TestServiceProviderError(t *testing.T) {
	providerErr := stderrors.New("upstream down")
	svc := NewServiceWithProvider(&fakeProvider{err: providerErr}, "parse", testLogger())

	_, err := svc.ParseProfile(context.Background(), types.ParseProfileInput{Text: "Ada Lovelace, engineer"})
	if !stderrors.Is(err, providerErr) {
		t.Errorf("Expected provider error to propagate, got %v", err)
	}
}

func TestServiceParseProfile(t *testing.T) {
	fake := &fakeProvider{profile: types.CandidateProfile{
		Name:  " Ada Lovelace ",
		Roles: []string{"Engineer", ""},
	}}
	svc := NewServiceWithProvider(fake, "parse", testLogger())

	profile, err := svc.ParseProfile(context.Background(), types.ParseProfileInput{Document: []byte("%PDF-1.4"), MIMEType: "application/pdf"})
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	if profile.Name != "Ada Lovelace" {
		t.Errorf("Expected trimmed name, got %q", profile.Name)
	}
	if len(profile.Roles) != 1 || profile.CoreSkills == nil {
		t.Errorf("Expected compacted lists, got roles=%v skills=%v", profile.Roles, profile.CoreSkills)
	}

	if _, err := svc.ParseProfile(context.Background(), types.ParseProfileInput{}); err == nil {
		t.Error("Expected error for empty input")
	}

	fake.profile = types.CandidateProfile{Location: "London"}
	if _, err := svc.ParseProfile(context.Background(), types.ParseProfileInput{Text: "no name here"}); err == nil {
		t.Error("Expected error for profile without name")
	}
}

func TestServiceExtractText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		doc     []byte
		want    string
		wantErr string
	}{
		{name: "text returned", text: "  Senior Engineer\nRemote ", doc: []byte("pdf"), want: "Senior Engineer\nRemote"},
		{name: "empty transcription", text: "   ", doc: []byte("pdf"), wantErr: errors.ErrCodeExtractionEmpty},
		{name: "empty document", doc: nil, wantErr: errors.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewServiceWithProvider(&fakeProvider{text: tt.text}, "extract", testLogger())
			got, err := svc.ExtractText(context.Background(), types.ExtractTextInput{Document: tt.doc, MIMEType: "application/pdf"})
			if tt.wantErr != "" {
				appErr, ok := errors.AsAppError(err)
				if !ok || appErr.Code != tt.wantErr {
					t.Fatalf("Expected error code %s, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestServiceMetadata(t *testing.T) {
	svc := NewServiceWithProvider(&fakeProvider{}, "generate", testLogger(), WithMetrics(nil))
	if svc.Operation() != "generate" {
		t.Errorf("Expected operation generate, got %s", svc.Operation())
	}
	if info := svc.GetModelInfo(context.Background()); !info.Available {
		t.Error("Expected fake model to be available")
	}
	if stats := svc.BreakerStats(); stats != nil {
		t.Errorf("Expected no breaker stats from fake provider, got %v", stats)
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	_, err := NewService(context.Background(), configWithProvider("openai"), "generate", testLogger())
	if !errors.IsType(err, errors.ErrorTypeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}
