package judgment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fmuoria/resume-screener/internal/models"
)

// snippetLimit caps the resume and job description excerpts embedded in the
// user prompt.
const snippetLimit = 800

// systemPrompt fixes the analyst persona and the output schema. It is
// deterministic: the same pair of inputs always produces the same prompts.
const systemPrompt = `You are an expert HR Technology Analyst. Your task is to evaluate a candidate's resume against a job description and provide a structured JSON analysis.

You MUST follow these rules:
1.  Your entire response must be a single, valid JSON object. Do not include any text before or after the JSON.
2.  Analyze the candidate based ONLY on the provided resume text. Do not invent skills or experience.
3.  The 'match_score' must be a float between 1.0 and 10.0.
4.  'summary', 'strengths', and 'gaps' must be concise, insightful, and directly related to the job requirements.
5.  If the candidate is a student or has low experience, focus on potential, projects, and academic alignment.

Here is a perfect example of your required output format:

{
  "match_score": 8.2,
  "summary": "Strong candidate with excellent alignment in core web technologies (React, Node.js) and cloud experience (AWS). Meets the required years of experience and possesses strong project management skills. Minor gap in PostgreSQL, but has related SQL experience making it a low risk.",
  "strengths": [
    "Exceeds requirement for React and Node.js proficiency.",
    "3 years of professional AWS experience aligns perfectly with job needs.",
    "Demonstrated leadership and agile methodology experience in past projects."
  ],
  "gaps": [
    "Lacks direct experience with PostgreSQL, a required skill.",
    "No mention of CI/CD tools like Jenkins or Terraform."
  ],
  "is_student": false
}`

var whitespaceRun = regexp.MustCompile(`\s+`)

// BuildPrompts constructs the deterministic system/user prompt pair for one
// (candidate, job) pair.
func BuildPrompts(profile models.CandidateProfile, job models.JobRequirement) (string, string) {
	studentContext := "This is an EXPERIENCED PROFESSIONAL profile. Evaluate against specific years of experience."
	if profile.ExperienceYears <= studentThreshold {
		studentContext = "This is a STUDENT/ENTRY-LEVEL profile. Prioritize potential and foundational skills."
	}

	userPrompt := fmt.Sprintf(`Analyze the following data and generate the JSON response.

**CANDIDATE PROFILE**
- **Type**: %s
- **Experience (Years)**: %g
- **Skills**: %s
- **Resume Snippet**: "%s..."

**JOB DESCRIPTION**
- **Title**: %s
- **Required Experience (Years)**: %g
- **Required Skills**: %s
- **Details**: "%s..."`,
		studentContext,
		profile.ExperienceYears,
		strings.Join(profile.Skills, ", "),
		snippet(profile.RawText),
		job.Title,
		job.RequiredExperience,
		strings.Join(job.RequiredSkills, ", "),
		snippet(job.Description))

	return systemPrompt, userPrompt
}

// snippet collapses whitespace and truncates to the embed limit.
func snippet(text string) string {
	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if len(cleaned) > snippetLimit {
		return cleaned[:snippetLimit]
	}
	return cleaned
}
