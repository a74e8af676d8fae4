// Package judgment owns the external-model orchestration for resume/job
// matching: the prompt contract, the response validation contract and the
// fallback policy. The network call itself lives behind ContentGenerator.
package judgment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/models"
)

// studentThreshold separates student/entry-level profiles from experienced
// professionals in the prompt framing and the rule-based judgments.
const studentThreshold = 1.5

// callTimeout bounds a single provider call so one unresponsive judgment
// cannot stall a bulk batch.
const callTimeout = 30 * time.Second

// ContentGenerator abstracts the external judgment provider. Implementations
// take a system/user prompt pair and return a raw structured response.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Prober is optionally implemented by generators that support a cheap
// connectivity check.
type Prober interface {
	Probe(ctx context.Context) error
}

// Service produces a MatchJudgment for every (candidate, job) pair, always.
// Availability is decided once at construction: if the provider probe fails,
// the service operates in rule-based-only mode for its lifetime. Match never
// returns an error; the three-tier cascade (external judgment, format-error
// response, rule-based response) absorbs every failure.
type Service struct {
	generator ContentGenerator
	available bool
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService probes the provider once and fixes the availability flag for
// the service's lifetime. A nil generator yields a rule-based-only service.
func NewService(ctx context.Context, generator ContentGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		generator: generator,
		timeout:   callTimeout,
		logger:    logger,
	}

	if generator == nil {
		logger.Warn("no judgment provider configured, operating in rule-based analysis mode")
		return s
	}

	if prober, ok := generator.(Prober); ok {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := prober.Probe(probeCtx); err != nil {
			logger.Warn("judgment provider probe failed, operating in rule-based analysis mode",
				zap.Error(err))
			return s
		}
	}

	s.available = true
	logger.Info("judgment provider is configured and available for AI matching")
	return s
}

// Available reports whether the external provider passed its startup probe.
func (s *Service) Available() bool {
	return s.available
}

// Match evaluates the candidate against the job. The result is one of:
// the validated provider judgment, the generic format-error judgment when
// the provider response cannot be parsed, or the rule-based judgment when
// the provider is unavailable or the call fails.
func (s *Service) Match(ctx context.Context, profile models.CandidateProfile, job models.JobRequirement) models.MatchJudgment {
	if !s.available {
		return s.ruleBasedJudgment(profile, models.ModeUnavailable)
	}

	systemPrompt, userPrompt := BuildPrompts(profile, job)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.generator.GenerateContent(callCtx, systemPrompt, userPrompt)
	if err != nil {
		s.logger.Warn("judgment provider call failed, falling back to rule-based analysis",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return s.ruleBasedJudgment(profile, models.ModeRuleBased)
	}

	judgment := parseResponse(raw)
	s.logger.Debug("judgment produced",
		zap.String("mode", string(judgment.Mode)),
		zap.Float64("match_score", judgment.MatchScore),
		zap.Duration("elapsed", time.Since(start)))

	return judgment
}

// ruleBasedJudgment is the structured analysis used when no AI opinion is
// obtainable.
func (s *Service) ruleBasedJudgment(profile models.CandidateProfile, mode models.JudgmentMode) models.MatchJudgment {
	return models.MatchJudgment{
		MatchScore: 5.0,
		Summary:    "This analysis is based on a rule-based comparison of skills and experience, as the AI model is currently unavailable.",
		Strengths:  []string{"Rule-based analysis was performed."},
		Gaps:       []string{"Detailed AI-powered insights are not available in this mode."},
		IsStudent:  profile.ExperienceYears <= studentThreshold,
		Mode:       mode,
	}
}
