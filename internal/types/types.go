package types

import (
	"strings"
	"time"
)

// WorkExperience is one position held by the candidate
type WorkExperience struct {
	Role        string `json:"role"`
	Company     string `json:"company,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// CandidateProfile is the career profile every generation is grounded in
type CandidateProfile struct {
	Name              string           `json:"name"`
	Location          string           `json:"location"`
	Email             string           `json:"email,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	GitHub            string           `json:"github,omitempty"`
	LinkedIn          string           `json:"linkedin,omitempty"`
	PortfolioName     string           `json:"portfolio_name,omitempty"`
	Roles             []string         `json:"roles"`
	CoreSkills        []string         `json:"core_skills"`
	SignatureProjects []string         `json:"signature_projects"`
	MediaCredentials  []string         `json:"media_credentials,omitempty"`
	Experience        []WorkExperience `json:"experience,omitempty"`
	Education         string           `json:"education"`
	Certifications    []string         `json:"certifications,omitempty"`
}

// ContactFields returns the contact line fields in display order; absent
// fields are empty strings.
func (p CandidateProfile) ContactFields() []string {
	return []string{p.Location, p.Phone, p.Email, p.GitHub, p.LinkedIn, p.PortfolioName}
}

// PrimaryRole returns the first listed role, or "" when there is none.
func (p CandidateProfile) PrimaryRole() string {
	for _, r := range p.Roles {
		if r = strings.TrimSpace(r); r != "" {
			return r
		}
	}
	return ""
}

// TailoredContent is the structured output of a content generation call
type TailoredContent struct {
	LinkedInHeadline           string   `json:"linkedin_headline"`
	LinkedInAboutSection       string   `json:"linkedin_about_section"`
	EasyApplyIntroduceYourself string   `json:"easy_apply_introduce_yourself"`
	EasyApplyWhyGoodFit        string   `json:"easy_apply_why_good_fit"`
	RecruiterDM                string   `json:"recruiter_dm"`
	ConnectionNote             string   `json:"connection_note"`
	InterviewBullets           []string `json:"interview_bullets"`
	InterviewPrepTips          []string `json:"interview_prep_tips"`
	TailoredKeywords           []string `json:"tailored_keywords"`
	ResumeTargetTitle          string   `json:"resume_target_title"`
	ResumeProfessionalSummary  string   `json:"resume_professional_summary"`
	ResumeCoreBullets          []string `json:"resume_core_bullets"`
	ResumeRoleSpecificBullets  []string `json:"resume_role_specific_bullets"`
	CoverLetterBody            string   `json:"cover_letter_body"`
	MatchScore                 int      `json:"match_score"`
	MatchExplanation           string   `json:"match_explanation"`
}

// JobDescription is an entry of the job library
type JobDescription struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AddedAt     time.Time `json:"added_at,omitzero"`
}

// GenerateContentInput is the input of a content generation call
type GenerateContentInput struct {
	Profile        CandidateProfile `json:"profile"`
	JobDescription string           `json:"jobDescription"`
	TargetRole     string           `json:"targetRole"`
}

// ParseProfileInput carries either a document or plain text to turn into a profile
type ParseProfileInput struct {
	Document []byte `json:"-"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ExtractTextInput carries a document whose text should be returned verbatim
type ExtractTextInput struct {
	Document []byte `json:"-"`
	MIMEType string `json:"mimeType"`
}

// ExtractTextOutput is the raw text of a document
type ExtractTextOutput struct {
	Text string `json:"text"`
}

// RenderRequest asks for one document to be rendered
type RenderRequest struct {
	Profile    *CandidateProfile `json:"profile,omitempty"`
	Content    TailoredContent   `json:"content"`
	TargetRole string            `json:"targetRole,omitempty"`
	ShowDates  *bool             `json:"showDates,omitempty"`
}

// GenerateRequest is the HTTP body of a content generation call
type GenerateRequest struct {
	Profile        *CandidateProfile `json:"profile,omitempty"`
	JobDescription string            `json:"jobDescription"`
	JobID          string            `json:"jobId,omitempty"`
	TargetRole     string            `json:"targetRole,omitempty"`
}

// TokenUsage is the token accounting of one AI call
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}
