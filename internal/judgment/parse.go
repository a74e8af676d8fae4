package judgment

import (
	"encoding/json"
	"strings"

	"github.com/fmuoria/resume-screener/internal/models"
)

// parseResponse validates the provider's structured payload. Missing fields
// are defaulted and the score is clamped into [1.0, 10.0]; a payload that
// cannot be parsed at all is replaced wholesale with the generic
// format-error judgment.
func parseResponse(raw string) models.MatchJudgment {
	var payload struct {
		MatchScore *float64 `json:"match_score"`
		Summary    *string  `json:"summary"`
		Strengths  []string `json:"strengths"`
		Gaps       []string `json:"gaps"`
		IsStudent  *bool    `json:"is_student"`
	}

	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return formatErrorJudgment()
	}

	judgment := models.MatchJudgment{
		MatchScore: 5.0,
		Summary:    "AI summary generation failed.",
		Strengths:  []string{},
		Gaps:       []string{},
		Mode:       models.ModeLLM,
	}

	if payload.MatchScore != nil {
		judgment.MatchScore = *payload.MatchScore
	}
	if payload.Summary != nil {
		judgment.Summary = *payload.Summary
	}
	if payload.Strengths != nil {
		judgment.Strengths = payload.Strengths
	}
	if payload.Gaps != nil {
		judgment.Gaps = payload.Gaps
	}
	if payload.IsStudent != nil {
		judgment.IsStudent = *payload.IsStudent
	}

	judgment.MatchScore = clamp(judgment.MatchScore, 1.0, 10.0)
	return judgment
}

// formatErrorJudgment is returned when the provider responded but the
// payload could not be understood.
func formatErrorJudgment() models.MatchJudgment {
	return models.MatchJudgment{
		MatchScore: 3.0,
		Summary:    "AI analysis was performed, but a technical issue occurred while formatting the response. Please review the rule-based scores for guidance.",
		Strengths:  []string{"Rule-based assessment completed."},
		Gaps:       []string{"AI analysis could not be formatted correctly."},
		IsStudent:  false,
		Mode:       models.ModeFormatError,
	}
}

// extractJSON strips markdown code fences some providers wrap around their
// JSON output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
