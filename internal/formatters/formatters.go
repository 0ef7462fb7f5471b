// Package formatters renders command results as json, text or markdown.
package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"applykit/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a registry with the default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailoredContent", &ContentTextFormatter{})
	registry.RegisterFormatter("markdown", "TailoredContent", &ContentMarkdownFormatter{})
	registry.RegisterFormatter("text", "CandidateProfile", &ProfileTextFormatter{})
	registry.RegisterFormatter("markdown", "CandidateProfile", &ProfileMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobList", &JobsTextFormatter{})
	registry.RegisterFormatter("markdown", "JobList", &JobsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a formatter for a format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the most specific formatter registered for format
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all registered formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailoredContent:
		return "TailoredContent"
	case types.CandidateProfile:
		return "CandidateProfile"
	case []types.JobDescription:
		return "JobList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// writeText writes a "=== TITLE ===" block; empty values are skipped.
func writeText(b *strings.Builder, title, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "=== %s ===\n%s\n\n", title, value)
}

func writeTextList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "=== %s ===\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func writeMarkdown(b *strings.Builder, title, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", title, value)
}

func writeMarkdownList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// ContentTextFormatter prints every generated section in plain text
type ContentTextFormatter struct{}

func (f *ContentTextFormatter) Format(data any) (string, error) {
	c, ok := data.(types.TailoredContent)
	if !ok {
		return "", fmt.Errorf("expected TailoredContent, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "=== MATCH ===\nScore: %d/100\n", c.MatchScore)
	if c.MatchExplanation != "" {
		output.WriteString(c.MatchExplanation)
		output.WriteString("\n")
	}
	output.WriteString("\n")

	writeText(&output, "RESUME TARGET TITLE", c.ResumeTargetTitle)
	writeText(&output, "PROFESSIONAL SUMMARY", c.ResumeProfessionalSummary)
	writeTextList(&output, "CORE BULLETS", c.ResumeCoreBullets)
	writeTextList(&output, "ROLE-SPECIFIC BULLETS", c.ResumeRoleSpecificBullets)
	writeText(&output, "COVER LETTER", c.CoverLetterBody)
	writeText(&output, "LINKEDIN HEADLINE", c.LinkedInHeadline)
	writeText(&output, "LINKEDIN ABOUT", c.LinkedInAboutSection)
	writeText(&output, "EASY APPLY: INTRODUCE YOURSELF", c.EasyApplyIntroduceYourself)
	writeText(&output, "EASY APPLY: WHY A GOOD FIT", c.EasyApplyWhyGoodFit)
	writeText(&output, "RECRUITER DM", c.RecruiterDM)
	writeText(&output, "CONNECTION NOTE", c.ConnectionNote)
	writeTextList(&output, "INTERVIEW TALKING POINTS", c.InterviewBullets)
	writeTextList(&output, "INTERVIEW PREP TIPS", c.InterviewPrepTips)
	if len(c.TailoredKeywords) > 0 {
		writeText(&output, "KEYWORDS", strings.Join(c.TailoredKeywords, ", "))
	}

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (f *ContentTextFormatter) SupportedType() string {
	return "TailoredContent"
}

// ContentMarkdownFormatter prints every generated section as markdown
type ContentMarkdownFormatter struct{}

func (f *ContentMarkdownFormatter) Format(data any) (string, error) {
	c, ok := data.(types.TailoredContent)
	if !ok {
		return "", fmt.Errorf("expected TailoredContent, got %T", data)
	}

	var output strings.Builder
	title := c.ResumeTargetTitle
	if title == "" {
		title = "Application Kit"
	}
	fmt.Fprintf(&output, "# %s\n\n**Match score:** %d/100\n\n", title, c.MatchScore)
	if c.MatchExplanation != "" {
		output.WriteString(c.MatchExplanation)
		output.WriteString("\n\n")
	}

	writeMarkdown(&output, "Professional Summary", c.ResumeProfessionalSummary)
	writeMarkdownList(&output, "Core Bullets", c.ResumeCoreBullets)
	writeMarkdownList(&output, "Role-Specific Bullets", c.ResumeRoleSpecificBullets)
	writeMarkdown(&output, "Cover Letter", c.CoverLetterBody)
	writeMarkdown(&output, "LinkedIn Headline", c.LinkedInHeadline)
	writeMarkdown(&output, "LinkedIn About", c.LinkedInAboutSection)
	writeMarkdown(&output, "Easy Apply: Introduce Yourself", c.EasyApplyIntroduceYourself)
	writeMarkdown(&output, "Easy Apply: Why a Good Fit", c.EasyApplyWhyGoodFit)
	writeMarkdown(&output, "Recruiter DM", c.RecruiterDM)
	writeMarkdown(&output, "Connection Note", c.ConnectionNote)
	writeMarkdownList(&output, "Interview Talking Points", c.InterviewBullets)
	writeMarkdownList(&output, "Interview Prep Tips", c.InterviewPrepTips)
	if len(c.TailoredKeywords) > 0 {
		keywords := make([]string, len(c.TailoredKeywords))
		for i, k := range c.TailoredKeywords {
			keywords[i] = "`" + k + "`"
		}
		writeMarkdown(&output, "Keywords", strings.Join(keywords, " "))
	}

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (f *ContentMarkdownFormatter) SupportedType() string {
	return "TailoredContent"
}

func experienceLines(p types.CandidateProfile) []string {
	lines := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		line := e.Role
		if e.Company != "" {
			line += " at " + e.Company
		}
		if e.StartDate != "" || e.EndDate != "" {
			line += fmt.Sprintf(" (%s - %s)", e.StartDate, e.EndDate)
		}
		if e.Description != "" {
			line += ": " + e.Description
		}
		lines = append(lines, line)
	}
	return lines
}

func contactLine(p types.CandidateProfile) string {
	var fields []string
	for _, f := range p.ContactFields() {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return strings.Join(fields, " | ")
}

// ProfileTextFormatter prints a candidate profile in plain text
type ProfileTextFormatter struct{}

func (f *ProfileTextFormatter) Format(data any) (string, error) {
	p, ok := data.(types.CandidateProfile)
	if !ok {
		return "", fmt.Errorf("expected CandidateProfile, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "%s\n", p.Name)
	if contact := contactLine(p); contact != "" {
		fmt.Fprintf(&output, "%s\n", contact)
	}
	output.WriteString("\n")

	writeTextList(&output, "ROLES", p.Roles)
	writeTextList(&output, "CORE SKILLS", p.CoreSkills)
	writeTextList(&output, "SIGNATURE PROJECTS", p.SignatureProjects)
	writeTextList(&output, "EXPERIENCE", experienceLines(p))
	writeTextList(&output, "MEDIA CREDENTIALS", p.MediaCredentials)
	writeText(&output, "EDUCATION", p.Education)
	writeTextList(&output, "CERTIFICATIONS", p.Certifications)

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (f *ProfileTextFormatter) SupportedType() string {
	return "CandidateProfile"
}

// ProfileMarkdownFormatter prints a candidate profile as markdown
type ProfileMarkdownFormatter struct{}

func (f *ProfileMarkdownFormatter) Format(data any) (string, error) {
	p, ok := data.(types.CandidateProfile)
	if !ok {
		return "", fmt.Errorf("expected CandidateProfile, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# %s\n\n", p.Name)
	if contact := contactLine(p); contact != "" {
		fmt.Fprintf(&output, "%s\n\n", contact)
	}

	writeMarkdownList(&output, "Roles", p.Roles)
	writeMarkdownList(&output, "Core Skills", p.CoreSkills)
	writeMarkdownList(&output, "Signature Projects", p.SignatureProjects)
	writeMarkdownList(&output, "Experience", experienceLines(p))
	writeMarkdownList(&output, "Media Credentials", p.MediaCredentials)
	writeMarkdown(&output, "Education", p.Education)
	writeMarkdownList(&output, "Certifications", p.Certifications)

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (f *ProfileMarkdownFormatter) SupportedType() string {
	return "CandidateProfile"
}

// JobsTextFormatter prints the job library as an aligned list
type JobsTextFormatter struct{}

func (f *JobsTextFormatter) Format(data any) (string, error) {
	jobs, ok := data.([]types.JobDescription)
	if !ok {
		return "", fmt.Errorf("expected []JobDescription, got %T", data)
	}
	if len(jobs) == 0 {
		return "No jobs stored.\n", nil
	}

	var output strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&output, "%-36s  %s", j.ID, j.Title)
		if j.Source != "" {
			fmt.Fprintf(&output, " (%s)", j.Source)
		}
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (f *JobsTextFormatter) SupportedType() string {
	return "JobList"
}

// JobsMarkdownFormatter prints the job library as a markdown table
type JobsMarkdownFormatter struct{}

func (f *JobsMarkdownFormatter) Format(data any) (string, error) {
	jobs, ok := data.([]types.JobDescription)
	if !ok {
		return "", fmt.Errorf("expected []JobDescription, got %T", data)
	}

	var output strings.Builder
	output.WriteString("| ID | Title | Source | Added |\n|---|---|---|---|\n")
	for _, j := range jobs {
		added := ""
		if !j.AddedAt.IsZero() {
			added = j.AddedAt.Format("2006-01-02")
		}
		fmt.Fprintf(&output, "| %s | %s | %s | %s |\n", j.ID, escapeCell(j.Title), escapeCell(j.Source), added)
	}
	return output.String(), nil
}

func (f *JobsMarkdownFormatter) SupportedType() string {
	return "JobList"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
