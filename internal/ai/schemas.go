package ai

import "google.golang.org/genai"

func stringField(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: description,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

// contentSchema describes TailoredContent. The descriptions carry the
// length limits the model is asked to respect.
func contentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"linkedin_headline":             stringField("LinkedIn headline, max 220 characters."),
			"linkedin_about_section":        stringField("LinkedIn 'About' section summary, max 2200 characters."),
			"easy_apply_introduce_yourself": stringField("Short intro for Easy Apply, max 500 characters."),
			"easy_apply_why_good_fit":       stringField("Answer for 'Why are you a good fit?', max 500 characters."),
			"recruiter_dm":                  stringField("Short DM for a recruiter, max 350 characters. Must mention a specific project or skill requirement from the job description."),
			"connection_note":               stringField("Personalized connection note, max 250 characters."),
			"interview_bullets":             stringList("5 to 7 high-impact talking points for a phone screen or interview, each max 180 characters."),
			"interview_prep_tips":           stringList("4 to 6 specific study tips or technical topics to review based on the job description, each max 200 characters."),
			"tailored_keywords":             stringList("Keywords from the job description."),
			"resume_target_title":           stringField("Suggested resume title."),
			"resume_professional_summary":   stringField("Resume summary, max 900 characters."),
			"resume_core_bullets":           stringList("4 to 7 reusable core bullets, max 220 characters each."),
			"resume_role_specific_bullets":  stringList("4 to 8 tailored bullets, max 220 characters each."),
			"cover_letter_body":             stringField("Cover letter body text without closing or signature, max 1800 characters."),
			"match_score":                   {Type: genai.TypeInteger, Description: "Match percentage (0-100)."},
			"match_explanation":             stringField("1-2 sentence explanation of the match score."),
		},
		Required: []string{
			"linkedin_headline", "linkedin_about_section", "easy_apply_introduce_yourself",
			"easy_apply_why_good_fit", "recruiter_dm", "connection_note", "interview_bullets",
			"interview_prep_tips", "tailored_keywords", "resume_target_title", "resume_professional_summary",
			"resume_core_bullets", "resume_role_specific_bullets", "cover_letter_body",
			"match_score", "match_explanation",
		},
	}
}

// profileSchema describes CandidateProfile.
func profileSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":               {Type: genai.TypeString},
			"location":           {Type: genai.TypeString},
			"email":              {Type: genai.TypeString},
			"phone":              {Type: genai.TypeString},
			"github":             {Type: genai.TypeString},
			"linkedin":           {Type: genai.TypeString},
			"portfolio_name":     {Type: genai.TypeString},
			"roles":              stringList(""),
			"core_skills":        stringList(""),
			"signature_projects": stringList(""),
			"media_credentials":  stringList(""),
			"experience": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"role":        {Type: genai.TypeString},
						"company":     {Type: genai.TypeString},
						"start_date":  {Type: genai.TypeString},
						"end_date":    {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"role"},
				},
			},
			"education":      {Type: genai.TypeString},
			"certifications": stringList(""),
		},
		Required: []string{"name", "location", "roles", "core_skills", "signature_projects", "education"},
	}
}
