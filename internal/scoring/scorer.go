package scoring

import (
	"strings"
)

// Weights of the baseline rule score.
const (
	skillWeight      = 0.7
	experienceWeight = 0.3
)

// SkillScore measures the lexical similarity between candidate and required
// skills. The primary method is TF-IDF cosine similarity over the
// space-joined lowercase skill texts; when vectorization fails it degrades
// to set-intersection over the required set. Either list being empty scores
// 0.0.
func SkillScore(candidateSkills, requiredSkills []string) float64 {
	if len(candidateSkills) == 0 || len(requiredSkills) == 0 {
		return 0.0
	}

	candidateText := joinLower(candidateSkills)
	requiredText := joinLower(requiredSkills)

	similarity, err := tfidfCosine(candidateText, requiredText)
	if err != nil {
		return overlapScore(candidateSkills, requiredSkills)
	}
	return similarity
}

// overlapScore is the deterministic fallback: |candidate ∩ required| over
// |required|.
func overlapScore(candidateSkills, requiredSkills []string) float64 {
	candidateSet := lowerSet(candidateSkills)
	requiredSet := lowerSet(requiredSkills)

	intersection := 0
	for skill := range requiredSet {
		if _, ok := candidateSet[skill]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(requiredSet))
}

// ExperienceScore rewards experience up to the requirement and caps it
// there: exceeding the requirement is never penalized, and a requirement of
// zero is always fully met.
func ExperienceScore(candidateYears, requiredYears float64) float64 {
	if requiredYears <= 0 {
		return 1.0
	}
	if candidateYears <= 0 {
		return 0.0
	}
	if candidateYears >= requiredYears {
		return 1.0
	}
	return candidateYears / requiredYears
}

// RuleScore combines the skill and experience scores into the baseline
// rule-based score in [0, 1].
func RuleScore(skillScore, experienceScore float64) float64 {
	return skillScore*skillWeight + experienceScore*experienceWeight
}

func joinLower(skills []string) string {
	lowered := make([]string, len(skills))
	for i, s := range skills {
		lowered[i] = strings.ToLower(s)
	}
	return strings.Join(lowered, " ")
}

func lowerSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}
