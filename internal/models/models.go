package models

import "time"

// CandidateProfile holds the structured data extracted from one resume.
// Skills are always a subset of the configured taxonomy, sorted
// lexicographically. ExperienceYears is non-negative with one decimal of
// precision.
type CandidateProfile struct {
	ID              int64    `json:"id,omitempty"`
	Filename        string   `json:"filename,omitempty"`
	Name            string   `json:"name"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience"`
	Education       []string `json:"education"`
	RawText         string   `json:"raw_text"`
}

// FailedProfileName is the sentinel name assigned when resume parsing fails
// terminally. Batch pipelines check for it instead of handling errors.
const FailedProfileName = "Parsing Failed"

// FailedProfile returns the sentinel profile produced when a document cannot
// be parsed at all.
func FailedProfile(filename string) CandidateProfile {
	return CandidateProfile{
		Filename:  filename,
		Name:      FailedProfileName,
		Skills:    []string{},
		Education: []string{},
	}
}

// ParseFailed reports whether the profile is the parsing-failure sentinel.
func (p CandidateProfile) ParseFailed() bool {
	return p.Name == FailedProfileName
}

// JobRequirement represents a job posting with its requirements.
type JobRequirement struct {
	ID                 int64    `json:"id,omitempty"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RequiredSkills     []string `json:"required_skills"`
	RequiredExperience float64  `json:"required_experience"`
	RequiredEducation  string   `json:"required_education,omitempty"`
}

// JudgmentMode identifies which tier of the fallback cascade produced a
// MatchJudgment.
type JudgmentMode string

const (
	// ModeLLM means the external provider returned a usable response.
	ModeLLM JudgmentMode = "llm"
	// ModeFormatError means the provider responded but the payload could not
	// be parsed, so the generic format-error judgment was substituted.
	ModeFormatError JudgmentMode = "format_error"
	// ModeRuleBased means the provider call failed and the rule-based
	// judgment was substituted.
	ModeRuleBased JudgmentMode = "rule_based"
	// ModeUnavailable means the provider was never available and the service
	// runs in rule-based-only mode.
	ModeUnavailable JudgmentMode = "unavailable"
)

// MatchJudgment is the validated opinion of the judgment provider for one
// (candidate, job) pair. It is immutable once returned.
type MatchJudgment struct {
	MatchScore float64      `json:"match_score"` // clamped to [1.0, 10.0]
	Summary    string       `json:"summary"`
	Strengths  []string     `json:"strengths"`
	Gaps       []string     `json:"gaps"`
	IsStudent  bool         `json:"is_student"`
	Mode       JudgmentMode `json:"-"`
}

// MatchResult is the final outcome of matching one candidate against one job.
type MatchResult struct {
	ID         int64     `json:"id,omitempty"`
	ResumeID   int64     `json:"resume_id"`
	JobID      int64     `json:"job_description_id"`
	FinalScore float64   `json:"match_score"` // 0-10, one decimal
	Summary    string    `json:"summary"`
	Strengths  []string  `json:"strengths"`
	Gaps       []string  `json:"gaps"`
	IsStudent  bool      `json:"is_student"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// BulkMatchRequest asks for many stored resumes to be matched against one job.
type BulkMatchRequest struct {
	ResumeIDs []int64 `json:"resume_ids"`
	JobID     int64   `json:"job_description_id"`
}

// BulkMatchResponse carries the ranked results of a bulk match.
type BulkMatchResponse struct {
	Results []MatchResult `json:"results"`
}
