package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/models"
)

// Parser turns raw extracted resume text into a CandidateProfile. It is
// safe for concurrent use: all state is set at construction.
type Parser struct {
	cfg    *Config
	logger *zap.Logger

	// Now supplies the current time for open-ended date ranges. Overridable
	// in tests.
	Now func() time.Time

	// Entities detects person entities for name extraction. Defaults to the
	// built-in heuristic detector.
	Entities EntityDetector

	sectionPatterns map[string]*regexp.Regexp
	skillPatterns   []skillPattern
	directPatterns  []*regexp.Regexp
	datePattern     *regexp.Regexp
	emailPattern    *regexp.Regexp
	phonePattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	wsPattern       *regexp.Regexp
}

type skillPattern struct {
	skill   string
	pattern *regexp.Regexp
}

// NewParser compiles the extraction patterns for the given configuration.
func NewParser(cfg *Config, logger *zap.Logger) (*Parser, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Parser{
		cfg:      cfg,
		logger:   logger,
		Now:      time.Now,
		Entities: NewHeuristicDetector(),

		sectionPatterns: make(map[string]*regexp.Regexp, len(cfg.SectionHeaders)),
		wsPattern:       regexp.MustCompile(`\s+`),
		emailPattern:    regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phonePattern:    regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		sentencePattern: regexp.MustCompile(`\.\s+`),
		datePattern: regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s*(?:19|20)\d{2}\s*-\s*(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s*(?:19|20)\d{2}|Present|Current)`),
		directPatterns: []*regexp.Regexp{
			// "8+ years of professional experience", "5 years experience"
			regexp.MustCompile(`(\d+\.?\d*)\+?\s*years?\s*(?:of|in|as)?\s*(?:professional\s*|work\s*|total\s*)?experience`),
			// "experience: 8 years", "experience is now 5+ years"
			regexp.MustCompile(`experience\s*(?:is|:)?\s*(?:currently|now|about|over)?\s*(\d+\.?\d*)\+?\s*years?`),
		},
	}

	for label, pattern := range cfg.SectionHeaders {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid section header pattern for %q: %w", label, err)
		}
		p.sectionPatterns[label] = re
	}

	for _, skills := range cfg.Skills {
		for _, skill := range skills {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("invalid skill %q: %w", skill, err)
			}
			p.skillPatterns = append(p.skillPatterns, skillPattern{skill: strings.TrimSpace(skill), pattern: re})
		}
	}

	return p, nil
}

// NormalizeText collapses all whitespace runs into single spaces and trims
// the result.
func (p *Parser) NormalizeText(text string) string {
	return strings.TrimSpace(p.wsPattern.ReplaceAllString(text, " "))
}

// ExtractSections locates the configured section labels in the text. Each
// found section spans from its header to the next found header, or to the
// end of the document. A label with no header match is simply absent from
// the returned map; callers fall back to the full document.
func (p *Parser) ExtractSections(text string) map[string]string {
	type headerHit struct {
		label string
		start int
	}

	hits := make([]headerHit, 0, len(p.sectionPatterns))
	for label, re := range p.sectionPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			hits = append(hits, headerHit{label: label, start: loc[0]})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	sections := make(map[string]string, len(hits))
	for i, hit := range hits {
		end := len(text)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		sections[hit.label] = text[hit.start:end]
	}

	return sections
}

// ExtractSkills matches the taxonomy against the text with word-boundary
// anchoring and returns the deduplicated hits in lexicographic order.
func (p *Parser) ExtractSkills(text string) []string {
	found := make(map[string]struct{})
	for _, sp := range p.skillPatterns {
		if sp.pattern.MatchString(text) {
			found[sp.skill] = struct{}{}
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// ExtractContactInfo captures the first email address (lowercased) and the
// first phone-shaped number in the text. Missing values are empty strings.
func (p *Parser) ExtractContactInfo(text string) (email, phone string) {
	if m := p.emailPattern.FindString(text); m != "" {
		email = strings.ToLower(m)
	}
	phone = p.phonePattern.FindString(text)
	return email, phone
}

// ExtractEducation returns up to three short sentences from the education
// section (or the whole document when no such section exists) that mention
// an education keyword.
func (p *Parser) ExtractEducation(text string) []string {
	educationText, ok := p.ExtractSections(text)["education"]
	if !ok {
		educationText = text
	}

	entries := []string{}
	for _, sentence := range p.sentencePattern.Split(educationText, -1) {
		if len(sentence) >= 200 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, keyword := range p.cfg.EducationKeywords {
			if strings.Contains(lower, keyword) {
				entries = append(entries, strings.TrimSpace(sentence))
				break
			}
		}
		if len(entries) == 3 {
			break
		}
	}
	return entries
}

// ExtractName picks the candidate name from the person entities detected in
// the document head. The first entity with two to four tokens wins; when
// nothing qualifies the profile is named "Candidate".
func (p *Parser) ExtractName(text string) string {
	snippet := text
	if len(snippet) > 500 {
		snippet = snippet[:500]
	}

	for _, ent := range p.Entities.DetectPersonEntities(snippet) {
		if !strings.EqualFold(ent.Label, LabelPerson) {
			continue
		}
		parts := strings.Fields(strings.TrimSpace(ent.Text))
		if len(parts) >= 2 && len(parts) <= 4 {
			for i, part := range parts {
				parts[i] = capitalize(part)
			}
			return strings.Join(parts, " ")
		}
	}
	return "Candidate"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Parse runs the full extraction pipeline over raw document text. It is a
// total function: an empty document yields the parsing-failure sentinel
// profile, never an error, so batch pipelines keep going.
func (p *Parser) Parse(rawText, filename string) models.CandidateProfile {
	normalized := p.NormalizeText(rawText)
	if normalized == "" {
		p.logger.Warn("document produced no text, returning sentinel profile",
			zap.String("filename", filename))
		return models.FailedProfile(filename)
	}

	email, phone := p.ExtractContactInfo(normalized)

	profile := models.CandidateProfile{
		Filename:        filename,
		Name:            p.ExtractName(normalized),
		Email:           email,
		Phone:           phone,
		Skills:          p.ExtractSkills(normalized),
		ExperienceYears: p.ExtractExperience(normalized),
		Education:       p.ExtractEducation(normalized),
		RawText:         normalized,
	}

	p.logger.Info("parsed resume",
		zap.String("name", profile.Name),
		zap.Float64("experience_years", profile.ExperienceYears),
		zap.Int("skills", len(profile.Skills)))

	return profile
}
