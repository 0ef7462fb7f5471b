package ai

import (
	"strings"

	"applykit/internal/errors"
	"applykit/internal/types"
)

// ErrCodeInvalidAIResponse marks model output that parsed but is unusable.
const ErrCodeInvalidAIResponse = "AI_RESPONSE_INVALID"

// normalizeContent trims generated text, drops empty list items and clamps
// the match score. Content without a summary or cover letter is rejected.
func normalizeContent(c *types.TailoredContent) error {
	for _, s := range []*string{
		&c.LinkedInHeadline, &c.LinkedInAboutSection, &c.EasyApplyIntroduceYourself,
		&c.EasyApplyWhyGoodFit, &c.RecruiterDM, &c.ConnectionNote, &c.ResumeTargetTitle,
		&c.ResumeProfessionalSummary, &c.CoverLetterBody, &c.MatchExplanation,
	} {
		*s = strings.TrimSpace(*s)
	}
	for _, list := range []*[]string{
		&c.InterviewBullets, &c.InterviewPrepTips, &c.TailoredKeywords,
		&c.ResumeCoreBullets, &c.ResumeRoleSpecificBullets,
	} {
		*list = compact(*list)
	}
	c.MatchScore = min(max(c.MatchScore, 0), 100)

	if c.ResumeProfessionalSummary == "" {
		return errors.NewAIError(ErrCodeInvalidAIResponse, "generated content has no professional summary", nil)
	}
	if c.CoverLetterBody == "" {
		return errors.NewAIError(ErrCodeInvalidAIResponse, "generated content has no cover letter body", nil)
	}
	return nil
}

// normalizeProfile trims a parsed profile and rejects one without a name.
func normalizeProfile(p *types.CandidateProfile) error {
	for _, s := range []*string{
		&p.Name, &p.Location, &p.Email, &p.Phone, &p.GitHub,
		&p.LinkedIn, &p.PortfolioName, &p.Education,
	} {
		*s = strings.TrimSpace(*s)
	}
	for _, list := range []*[]string{
		&p.Roles, &p.CoreSkills, &p.SignatureProjects, &p.MediaCredentials, &p.Certifications,
	} {
		*list = compact(*list)
	}
	if p.Name == "" {
		return errors.NewAIError(ErrCodeInvalidAIResponse, "parsed profile has no name", nil)
	}
	return nil
}

// compact trims items and drops empty ones. The result is never nil so
// that JSON output shows [] rather than null.
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
