package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"applykit/internal/types"
)

// Default prompts. Templates use indexed verbs so custom prompts may
// reorder or omit arguments.
const (
	// %[1]s candidate name, %[2]s roles, %[3]s profile JSON
	defaultGenerateSystemPrompt = `You are an AI career copilot for **%[1]s**, %[2]s. Your job is to turn a job description into tailored LinkedIn and resume content.

You have access to this candidate_profile:
%[3]s

CRITICAL RULES:
1. Respect all character limits provided in the schema descriptions.
2. Output MUST be valid JSON exactly matching the output schema.
3. Do NOT invent fake employers, degrees, or technologies the candidate has never used. Ground everything in the candidate_profile.
4. If the job description is media production focused, lean heavily into the candidate's media credentials and signature projects.

STYLE:
- Tone: confident but humble, corporate-savvy, modern and concise.
- Focus on impact, systems thinking, automation, and making messy workflows simple and scalable.

TAILORING LOGIC:
1. Read the job description carefully. Identify core responsibilities, key tools and domain.
2. Map those signals onto %[1]s's background.
3. Highlight aspects that best match the target role.`

	// %[1]s candidate name, %[2]s job description, %[3]s target role
	defaultGenerateUserPrompt = `Generate tailored LinkedIn and resume content for %[1]s.

JOB DESCRIPTION:
"""
%[2]s
"""

TARGET ROLE: %[3]s`

	defaultParseSystemPrompt = `You extract structured career information from resumes and bios. Copy facts exactly as written. Never invent employers, dates, degrees or skills. Leave a field empty when the source does not mention it.`

	// %[1]s resume text; empty when a document is attached
	defaultParseUserPrompt = `Extract the career information from this resume and format it into the specified JSON structure. Be precise.%[1]s`

	defaultExtractSystemPrompt = `You transcribe documents. Return the document text exactly, without commentary or formatting.`

	defaultExtractUserPrompt = `Extract all the text from this job description document. Return only the raw text.`
)

// formatPrompt applies args to templates that contain indexed verbs and
// returns other templates unchanged.
func formatPrompt(template string, args ...any) string {
	if !strings.Contains(template, "%[") {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// resolvePrompt prefers the configured prompt over the built-in one.
func resolvePrompt(configured, fallback string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return fallback
}

func profileJSON(profile types.CandidateProfile) string {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// generatePrompts returns the system and user prompts of a generation call.
func generatePrompts(systemTemplate, userTemplate string, input types.GenerateContentInput) (string, string) {
	profile := input.Profile
	roles := strings.Join(profile.Roles, ", ")
	if roles == "" {
		roles = "professional"
	}
	targetRole := strings.TrimSpace(input.TargetRole)
	if targetRole == "" {
		targetRole = profile.PrimaryRole()
	}
	system := formatPrompt(resolvePrompt(systemTemplate, defaultGenerateSystemPrompt), profile.Name, roles, profileJSON(profile))
	user := formatPrompt(resolvePrompt(userTemplate, defaultGenerateUserPrompt), profile.Name, input.JobDescription, targetRole)
	return system, user
}

// parsePrompts returns the prompts of a profile parsing call.
func parsePrompts(systemTemplate, userTemplate string, input types.ParseProfileInput) (string, string) {
	text := ""
	if len(input.Document) == 0 {
		text = "\n\nTEXT:\n" + input.Text
	}
	system := resolvePrompt(systemTemplate, defaultParseSystemPrompt)
	user := formatPrompt(resolvePrompt(userTemplate, defaultParseUserPrompt), text)
	return system, user
}

// extractPrompts returns the prompts of a text extraction call.
func extractPrompts(systemTemplate, userTemplate string) (string, string) {
	return resolvePrompt(systemTemplate, defaultExtractSystemPrompt), resolvePrompt(userTemplate, defaultExtractUserPrompt)
}
