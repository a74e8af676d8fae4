// Package matching blends the rule-based baseline with the external
// judgment into final match results and handles bulk candidate sets.
package matching

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fmuoria/resume-screener/internal/models"
	"github.com/fmuoria/resume-screener/internal/scoring"
)

// Blend weights: 60% external judgment, 40% rule-based baseline.
const (
	judgmentWeight = 0.6
	ruleWeight     = 0.4
)

// fallbackStudentThreshold is the student boundary used only in the
// defensive fallback path. It deliberately differs from the 1.5-year
// threshold used by the judgment service; see TestHybridMatch_FallbackStudentThreshold.
const fallbackStudentThreshold = 2.0

// defaultWorkers bounds the parallelism of bulk matching.
const defaultWorkers = 4

// Judge produces a MatchJudgment for a (candidate, job) pair. It is total:
// implementations never return an error.
type Judge interface {
	Match(ctx context.Context, profile models.CandidateProfile, job models.JobRequirement) models.MatchJudgment
}

// Engine computes hybrid match results. Safe for concurrent use: matches
// share no mutable state beyond the read-only judge.
type Engine struct {
	judge  Judge
	logger *zap.Logger

	// Workers caps concurrent candidate evaluations in BulkMatch.
	Workers int
}

// NewEngine creates a hybrid matching engine on top of the given judge.
func NewEngine(judge Judge, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		judge:   judge,
		logger:  logger,
		Workers: defaultWorkers,
	}
}

// HybridMatch scores one candidate against one job. The rule-based baseline
// is always computed; when the judgment path succeeds the final score blends
// both and the narrative fields come from the judgment. When the judgment
// path cannot run at all, the result degrades to the rule-based baseline
// with the two sub-scores surfaced as strengths.
func (e *Engine) HybridMatch(ctx context.Context, profile models.CandidateProfile, job models.JobRequirement) models.MatchResult {
	skillScore := scoring.SkillScore(profile.Skills, job.RequiredSkills)
	expScore := scoring.ExperienceScore(profile.ExperienceYears, job.RequiredExperience)
	ruleScore := scoring.RuleScore(skillScore, expScore)

	if e.judge == nil {
		e.logger.Warn("no judge wired, falling back to rule-based result",
			zap.String("candidate", profile.Name))
		return models.MatchResult{
			ResumeID:   profile.ID,
			JobID:      job.ID,
			FinalScore: round1(ruleScore * 10),
			Summary:    "AI analysis failed. This result is based on a keyword and experience match only.",
			Strengths: []string{
				fmt.Sprintf("Skill match score: %.2f", skillScore),
				fmt.Sprintf("Experience match score: %.2f", expScore),
			},
			Gaps:      []string{"Detailed AI analysis is unavailable."},
			IsStudent: profile.ExperienceYears < fallbackStudentThreshold,
		}
	}

	judgment := e.judge.Match(ctx, profile, job)
	final := round1(10 * (judgmentWeight*(judgment.MatchScore/10) + ruleWeight*ruleScore))

	e.logger.Debug("hybrid match computed",
		zap.String("candidate", profile.Name),
		zap.Float64("rule_score", ruleScore),
		zap.Float64("judgment_score", judgment.MatchScore),
		zap.Float64("final_score", final),
		zap.String("judgment_mode", string(judgment.Mode)))

	return models.MatchResult{
		ResumeID:   profile.ID,
		JobID:      job.ID,
		FinalScore: final,
		Summary:    judgment.Summary,
		Strengths:  judgment.Strengths,
		Gaps:       judgment.Gaps,
		IsStudent:  judgment.IsStudent,
	}
}

// BulkMatch evaluates every candidate against the job independently and
// returns exactly one result per candidate, ranked descending by final
// score. Candidates are processed by a bounded worker pool; results are
// reassembled in input order before the stable sort so ties keep their
// insertion order regardless of scheduling. A per-candidate failure yields a
// zero-score, error-flagged result instead of aborting the batch.
func (e *Engine) BulkMatch(ctx context.Context, profiles []models.CandidateProfile, job models.JobRequirement) []models.MatchResult {
	results := make([]models.MatchResult, len(profiles))

	workers := e.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, profile := range profiles {
		g.Go(func() error {
			results[i] = e.matchOne(gctx, profile, job)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes the pool.
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}

// matchOne wraps a single bulk evaluation so that any internal failure
// produces an error-flagged result.
func (e *Engine) matchOne(ctx context.Context, profile models.CandidateProfile, job models.JobRequirement) (result models.MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("matching failed for candidate",
				zap.String("candidate", profile.Name),
				zap.Any("panic", r))
			result = models.MatchResult{
				ResumeID:   profile.ID,
				JobID:      job.ID,
				FinalScore: 0.0,
				Summary:    fmt.Sprintf("A critical error occurred during matching: %v", r),
				Strengths:  []string{},
				Gaps:       []string{"Matching process failed for this candidate."},
			}
		}
	}()
	return e.HybridMatch(ctx, profile, job)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
