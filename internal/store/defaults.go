package store

import "applykit/internal/types"

// DefaultProfile is the profile a fresh store starts with.
func DefaultProfile() types.CandidateProfile {
	return types.CandidateProfile{
		Name:          "Greg Dukes",
		Location:      "Charlotte, NC",
		Email:         "greg@example.com",
		GitHub:        "github.com/BLKDMND-DIGITAL",
		PortfolioName: "AI Portfolio Profile",
		Roles: []string{
			"AI Solutions Architect",
			"Full-Stack + AI Integration Engineer",
			"LLM Prompt Workflow Designer",
			"Media Production Specialist",
		},
		CoreSkills: []string{
			"LLM prompt engineering",
			"LLM workflow design",
			"JSON schema design",
			"Python automation",
			"JavaScript / TypeScript",
			"AWS (S3, CloudFront, Route 53)",
			"Adobe Premiere Pro",
			"Color Grading (DaVinci Resolve)",
			"Cinematography",
		},
		SignatureProjects: []string{
			"AI Visual Thesis (AWS-hosted living portfolio)",
			"Hybrid AI color correction pipeline (Python + OpenCV)",
			"Legal-tech automation stack for document processing",
			"Documentary Series for BBC Reel",
		},
		MediaCredentials: []string{
			"Documentary filmmaker with credits at BBC Reel",
			"Visual storyteller for global brands",
			"Expert in AI-enhanced post-production workflows",
		},
		Education: "B.A. in Media Studies",
		Certifications: []string{
			"AI / ML certifications from Google",
			"AWS cloud certification",
			"Professional Colorist Certification",
		},
	}
}

// DefaultJobs is the seeded job library.
func DefaultJobs() []types.JobDescription {
	return []types.JobDescription{
		{
			ID:          "glimmer-1",
			Source:      "Glimmer",
			Title:       "Senior Video Producer (Remote)",
			Description: "We are looking for a Senior Video Producer to lead high-impact visual storytelling for tech brands. Must have experience with end-to-end production, remote crew management, and high-end post-production workflows. Experience with AI-assisted editing tools is a plus.",
		},
		{
			ID:          "glimmer-2",
			Source:      "Glimmer",
			Title:       "Creative Director - Digital Media",
			Description: "Seeking a Creative Director to oversee a slate of digital documentaries. You will define the visual language, manage editors, and ensure narrative consistency across platforms. Deep knowledge of digital-first platforms like YouTube and BBC Reel is preferred.",
		},
		{
			ID:          "glimmer-3",
			Source:      "Glimmer",
			Title:       "AI-Workflow Post-Production Lead",
			Description: "Innovate at the intersection of media and technology. We need a lead who can implement AI-driven automation into our post-production pipeline. Must be comfortable with Python scripting for media assets and traditional NLE workflows.",
		},
	}
}
