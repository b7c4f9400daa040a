package ai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"jobtracker_backend/internal/models"
)

// System roles per task.
const (
	RoleResumeWriter     = "You are an expert resume writer and career coach."
	RoleCoverLetter      = "You are an expert cover letter writer."
	RoleCareerAdvisor    = "You are a career advisor analyzing job fit."
	RoleInterviewCoach   = "You are an interview preparation coach."
	RoleKeywordExtractor = "Extract important keywords and skills from job descriptions."
	RoleResumeReviewer   = "You are a recruiter reviewing resumes for clarity and impact."
)

// maxDescriptionLen bounds job descriptions embedded in prompts.
const maxDescriptionLen = 8000

// Candidate is the profile slice that prompts need.
type Candidate struct {
	Name       string
	Email      string
	Headline   string
	Skills     []string
	Experience []models.ProfileExperience
	Education  []models.ProfileEducation
}

// CandidateFromUser flattens a user profile.
func CandidateFromUser(u *models.User) Candidate {
	profile := u.Profile.Data()
	skills := make([]string, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		skills = append(skills, s.Name)
	}
	return Candidate{
		Name:       u.FullName(),
		Email:      u.Email,
		Headline:   u.Headline,
		Skills:     skills,
		Experience: profile.Experience,
		Education:  profile.Education,
	}
}

func ResumeContentPrompt(c Candidate, targetTitle, targetCompany, jobDescription string) string {
	var b strings.Builder
	b.WriteString("Generate ATS-optimized resume content.\n\n")
	writeCandidate(&b, c, true)
	if targetTitle != "" {
		fmt.Fprintf(&b, "\nTarget position: %s\n", targetTitle)
	}
	if targetCompany != "" {
		fmt.Fprintf(&b, "Target company: %s\n", targetCompany)
	}
	if jobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", truncate(jobDescription))
	}
	b.WriteString(`
Create a tailored resume that:
1. Highlights skills matching the job
2. Rewrites experience with action verbs
3. Includes relevant keywords for ATS

Return only JSON, no markdown, with this shape:
{"summary": "...", "skills": ["..."], "experience": [{"title": "...", "company": "...", "description": "...", "achievements": ["..."]}]}
`)
	return b.String()
}

func CoverLetterPrompt(c Candidate, job *models.JobApplication, resumeSummary, tone string) string {
	if tone == "" {
		tone = "professional"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s cover letter.\n\n", tone)
	fmt.Fprintf(&b, "Position: %s\nCompany: %s\n\n", job.JobTitle, job.Company)
	writeCandidate(&b, c, false)
	if resumeSummary != "" {
		fmt.Fprintf(&b, "\nResume summary:\n%s\n", resumeSummary)
	}
	if job.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", truncate(job.JobDescription))
	}
	b.WriteString(`
The letter must show enthusiasm for the role, highlight relevant achievements and stay between 300 and 400 words.
Return plain text only.
`)
	return b.String()
}

func JobFitPrompt(c Candidate, job *models.JobApplication) string {
	var b strings.Builder
	b.WriteString("Analyze the fit between the candidate and the job.\n\n")
	writeCandidate(&b, c, false)
	fmt.Fprintf(&b, "\nPosition: %s at %s\n", job.JobTitle, job.Company)
	if len(job.SkillsRequired) > 0 {
		fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(job.SkillsRequired, ", "))
	}
	if job.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", truncate(job.JobDescription))
	}
	b.WriteString(`
Return only JSON, no markdown, with this shape:
{"matchScore": 0-100, "keywordMatches": ["..."], "missingSkills": ["..."], "suggestedImprovements": ["..."], "summary": "..."}
`)
	return b.String()
}

func InterviewTipsPrompt(job *models.JobApplication) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate interview preparation tips.\n\nPosition: %s\nCompany: %s\n", job.JobTitle, job.Company)
	if job.JobDescription != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", truncate(job.JobDescription))
	}
	b.WriteString(`
Provide:
1. Five likely interview questions
2. Key skills to emphasize
3. Company research points
4. STAR method examples
`)
	return b.String()
}

func KeywordsPrompt(jobDescription string) string {
	return fmt.Sprintf("Extract key skills, technologies and requirements from the text below. Return only a JSON array of strings.\n\n%s", truncate(jobDescription))
}

func ResumeReviewPrompt(r *models.Resume) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review this resume titled %q and list concrete improvements.\n\n", r.Title)
	if r.Summary != "" {
		fmt.Fprintf(&b, "Summary:\n%s\n\n", r.Summary)
	}
	for _, exp := range r.Experience {
		fmt.Fprintf(&b, "- %s at %s: %s\n", exp.Title, exp.Company, exp.Description)
		for _, a := range exp.Achievements {
			fmt.Fprintf(&b, "  * %s\n", a)
		}
	}
	b.WriteString("\nAnswer with a short paragraph followed by a bullet list of improvements.\n")
	return b.String()
}

// ---------------- response parsing ----------------

// ResumeDraft is the JSON returned by ResumeContentPrompt.
type ResumeDraft struct {
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Experience []struct {
		Title        string   `json:"title"`
		Company      string   `json:"company"`
		Description  string   `json:"description"`
		Achievements []string `json:"achievements"`
	} `json:"experience"`
}

func ParseResumeDraft(raw string) (*ResumeDraft, error) {
	var draft ResumeDraft
	if err := json.Unmarshal([]byte(stripFences(raw)), &draft); err != nil {
		return nil, fmt.Errorf("parse resume draft: %w", err)
	}
	return &draft, nil
}

// ParseJobFit reads the JobFitPrompt answer. The score is clamped to 0..100.
func ParseJobFit(raw string) (*models.AIInsights, error) {
	var insights models.AIInsights
	if err := json.Unmarshal([]byte(stripFences(raw)), &insights); err != nil {
		return nil, fmt.Errorf("parse job fit: %w", err)
	}
	if insights.MatchScore < 0 {
		insights.MatchScore = 0
	}
	if insights.MatchScore > 100 {
		insights.MatchScore = 100
	}
	return &insights, nil
}

func ParseKeywords(raw string) ([]string, error) {
	var keywords []string
	if err := json.Unmarshal([]byte(stripFences(raw)), &keywords); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}
	out := keywords[:0]
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}
	return out, nil
}

// stripFences removes a markdown code fence around a JSON answer.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func writeCandidate(b *strings.Builder, c Candidate, withEducation bool) {
	fmt.Fprintf(b, "Candidate: %s\n", c.Name)
	if c.Headline != "" {
		fmt.Fprintf(b, "Headline: %s\n", c.Headline)
	}
	if len(c.Skills) > 0 {
		fmt.Fprintf(b, "Skills: %s\n", strings.Join(c.Skills, ", "))
	} else {
		b.WriteString("Skills: N/A\n")
	}
	if len(c.Experience) > 0 {
		b.WriteString("Experience:\n")
		for _, e := range c.Experience {
			fmt.Fprintf(b, "- %s at %s", e.Title, e.Company)
			if e.Description != "" {
				fmt.Fprintf(b, ": %s", e.Description)
			}
			b.WriteByte('\n')
		}
	}
	if withEducation && len(c.Education) > 0 {
		b.WriteString("Education:\n")
		for _, e := range c.Education {
			fmt.Fprintf(b, "- %s, %s\n", e.Degree, e.Institution)
		}
	}
}

func truncate(s string) string {
	if len(s) <= maxDescriptionLen {
		return s
	}
	return s[:maxDescriptionLen]
}
