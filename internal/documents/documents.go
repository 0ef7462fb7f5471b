// Package documents composes layout documents from a candidate profile and
// generated content.
package documents

import (
	"fmt"
	"strings"
	"time"

	"applykit/internal/layout"
	"applykit/internal/types"
)

// Kind names a document the tool can render.
type Kind string

const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover-letter"
	KindBrief       Kind = "brief"
)

// Kinds lists every document kind in render order.
func Kinds() []Kind {
	return []Kind{KindResume, KindCoverLetter, KindBrief}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported document kind '%s'. Supported kinds: %v", s, Kinds())
}

// FileSuffix is the last part of the document's download name.
func (k Kind) FileSuffix() string {
	switch k {
	case KindCoverLetter:
		return "CoverLetter"
	case KindBrief:
		return "Brief"
	default:
		return "Resume"
	}
}

// Options control composition.
type Options struct {
	// Geometry is the page used for the resume and the brief.
	Geometry layout.Geometry
	// LetterGeometry is the page of the cover letter. A zero value uses
	// Geometry with 25 mm margins.
	LetterGeometry layout.Geometry
	// TargetRole is used when the content carries no resume title.
	TargetRole string
	// ShowDates prints date ranges next to work experience entries.
	ShowDates bool
	// Date is printed under the cover letter header when set.
	Date time.Time
}

func (o Options) letterGeometry() layout.Geometry {
	if o.LetterGeometry.Width > 0 {
		return o.LetterGeometry
	}
	return o.Geometry.WithMargins(layout.Uniform(25))
}

// Compose builds the document of the given kind.
func Compose(kind Kind, profile types.CandidateProfile, content types.TailoredContent, opts Options) (layout.Document, error) {
	switch kind {
	case KindResume:
		return Resume(profile, content, opts), nil
	case KindCoverLetter:
		return CoverLetter(profile, content, opts), nil
	case KindBrief:
		return Brief(profile, content, opts), nil
	default:
		return layout.Document{}, fmt.Errorf("unsupported document kind '%s'", kind)
	}
}

// TargetTitle picks the title printed under the candidate name.
func TargetTitle(profile types.CandidateProfile, content types.TailoredContent, opts Options) string {
	for _, s := range []string{content.ResumeTargetTitle, opts.TargetRole, profile.PrimaryRole()} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// DateRange formats a start and end date; an open end reads "Present".
func DateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start + " - Present"
	default:
		return start + " - " + end
	}
}

// MatchBand classifies a match score.
func MatchBand(score int) string {
	switch {
	case score >= 85:
		return "strong"
	case score >= 65:
		return "moderate"
	default:
		return "weak"
	}
}

func nonEmpty(items ...[]string) []string {
	var out []string
	for _, list := range items {
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Resume lays out the tailored resume.
func Resume(profile types.CandidateProfile, content types.TailoredContent, opts Options) layout.Document {
	blocks := []layout.Block{
		layout.Title{Text: strings.ToUpper(profile.Name), Size: 22, Bold: true, SpaceAfter: 2},
		layout.ContactLine{Fields: profile.ContactFields()},
		layout.Spacer{Height: 3},
		layout.Title{Text: strings.ToUpper(TargetTitle(profile, content, opts)), Size: 12, Bold: true, SpaceAfter: 4},
	}

	if summary := strings.TrimSpace(content.ResumeProfessionalSummary); summary != "" {
		blocks = append(blocks,
			layout.Heading{Text: "Professional Summary", Rule: true},
			layout.Paragraph{Text: summary},
		)
	}

	if bullets := nonEmpty(content.ResumeRoleSpecificBullets, content.ResumeCoreBullets); len(bullets) > 0 {
		blocks = append(blocks,
			layout.Heading{Text: "Relevant Experience & Impact", Rule: true},
			layout.BulletList{Items: bullets},
		)
	}

	if len(profile.Experience) > 0 {
		blocks = append(blocks, layout.Heading{Text: "Professional Experience", Rule: true})
		for _, exp := range profile.Experience {
			label := strings.TrimSpace(exp.Role)
			if company := strings.TrimSpace(exp.Company); company != "" {
				if label != "" {
					label += ", "
				}
				label += company
			}
			row := layout.KeyValueRow{Label: label}
			if opts.ShowDates {
				row.Value = DateRange(exp.StartDate, exp.EndDate)
			}
			blocks = append(blocks, row, layout.Paragraph{Text: exp.Description})
		}
	}

	if skills := nonEmpty(profile.CoreSkills); len(skills) > 0 {
		blocks = append(blocks,
			layout.Heading{Text: "Core Skills", Rule: true},
			layout.Paragraph{Text: strings.Join(skills, " • ")},
		)
	}

	if projects := nonEmpty(profile.SignatureProjects); len(projects) > 0 {
		blocks = append(blocks,
			layout.Heading{Text: "Signature Projects", Rule: true},
			layout.BulletList{Items: projects},
		)
	}

	credentials := nonEmpty(profile.Certifications, profile.MediaCredentials)
	if strings.TrimSpace(profile.Education) != "" || len(credentials) > 0 {
		blocks = append(blocks,
			layout.Heading{Text: "Education & Certifications", Rule: true},
			layout.Paragraph{Text: profile.Education},
			layout.BulletList{Items: credentials},
		)
	}

	return layout.Document{
		Geometry: opts.Geometry,
		Blocks:   blocks,
		Meta: layout.Meta{
			Title:   profile.Name + " - Resume",
			Author:  profile.Name,
			Subject: TargetTitle(profile, content, opts),
		},
	}
}

// CoverLetter lays out the cover letter on the letter geometry.
func CoverLetter(profile types.CandidateProfile, content types.TailoredContent, opts Options) layout.Document {
	blocks := []layout.Block{
		layout.Title{Text: strings.ToUpper(profile.Name), Size: 18, Align: layout.AlignLeft, Bold: true},
		layout.ContactLine{Fields: profile.ContactFields()},
	}
	if !opts.Date.IsZero() {
		blocks = append(blocks, layout.Spacer{Height: 4}, layout.Paragraph{Text: opts.Date.Format("January 2, 2006")})
	}
	blocks = append(blocks, layout.Spacer{Height: 8}, layout.Paragraph{Text: content.CoverLetterBody})

	blocks = append(blocks,
		layout.Paragraph{Text: "Sincerely,"},
		layout.Paragraph{Text: profile.Name},
	)

	return layout.Document{
		Geometry: opts.letterGeometry(),
		Blocks:   blocks,
		Meta: layout.Meta{
			Title:   profile.Name + " - Cover Letter",
			Author:  profile.Name,
			Subject: TargetTitle(profile, content, opts),
		},
	}
}

// Brief lays out the networking and interview material that does not go
// into the resume or letter.
func Brief(profile types.CandidateProfile, content types.TailoredContent, opts Options) layout.Document {
	role := TargetTitle(profile, content, opts)
	score := min(max(content.MatchScore, 0), 100)
	blocks := []layout.Block{
		layout.Title{Text: "APPLICATION BRIEF", Size: 20, Bold: true, Align: layout.AlignLeft},
		layout.Title{Text: profile.Name, Size: 12, Align: layout.AlignLeft, SpaceAfter: 4},
		layout.KeyValueRow{Label: "Target role", Value: role},
		layout.KeyValueRow{Label: "Match score", Value: fmt.Sprintf("%d/100 (%s)", score, MatchBand(score))},
		layout.Spacer{Height: 2},
		layout.Paragraph{Text: content.MatchExplanation, Italic: true},
	}

	section := func(title string, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		blocks = append(blocks, layout.Heading{Text: title, Rule: true}, layout.Paragraph{Text: text})
	}
	list := func(title string, items []string) {
		items = nonEmpty(items)
		if len(items) == 0 {
			return
		}
		blocks = append(blocks, layout.Heading{Text: title, Rule: true}, layout.BulletList{Items: items})
	}

	section("LinkedIn Headline", content.LinkedInHeadline)
	section("LinkedIn About", content.LinkedInAboutSection)
	section("Easy Apply: Introduce Yourself", content.EasyApplyIntroduceYourself)
	section("Easy Apply: Why You Fit", content.EasyApplyWhyGoodFit)
	section("Recruiter Message", content.RecruiterDM)
	section("Connection Note", content.ConnectionNote)
	list("Interview Talking Points", content.InterviewBullets)
	list("Interview Prep", content.InterviewPrepTips)
	if keywords := nonEmpty(content.TailoredKeywords); len(keywords) > 0 {
		section("Keywords", strings.Join(keywords, ", "))
	}

	return layout.Document{
		Geometry: opts.Geometry,
		Blocks:   blocks,
		Meta: layout.Meta{
			Title:   profile.Name + " - Application Brief",
			Author:  profile.Name,
			Subject: role,
		},
	}
}
