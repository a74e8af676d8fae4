package parser

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Evidence sources, in descending order of confidence.
const (
	SourceRegexDirect    = "regex_direct"
	SourceDateRange      = "date_range"
	SourceFresherKeyword = "fresher_keyword"
	SourceStudentKeyword = "student_keyword"
)

// EvidenceItem is one independent estimate of years of experience. Items are
// ephemeral: they exist only to pick the best estimate for a single parse.
type EvidenceItem struct {
	Value      float64
	Confidence float64
	Source     string
}

// GatherEvidence collects every experience signal found in the text and
// returns them ranked best-first: descending by confidence, with value as
// the tie-break so that equally trusted heuristics prefer the larger
// estimate. Returning the full list keeps the decision auditable.
func (p *Parser) GatherEvidence(text string) []EvidenceItem {
	var evidence []EvidenceItem
	lower := strings.ToLower(text)

	// Explicit numeric statements such as "8+ years of experience".
	for _, re := range p.directPatterns {
		for _, match := range re.FindAllStringSubmatch(lower, -1) {
			years, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			if years > 0 && years < 40 {
				evidence = append(evidence, EvidenceItem{Value: years, Confidence: 0.9, Source: SourceRegexDirect})
			}
		}
	}

	// Employment date ranges, summed. Concurrent jobs overcount on purpose:
	// merging overlaps would change observed behavior.
	workText, ok := p.ExtractSections(text)["experience"]
	if !ok {
		workText = text
	}
	if months := p.sumDateRangeMonths(workText); months > 0 {
		evidence = append(evidence, EvidenceItem{
			Value:      round1(float64(months) / 12.0),
			Confidence: 0.75,
			Source:     SourceDateRange,
		})
	}

	// Low-confidence vocabulary signals. These fire independently of the
	// numeric evidence above.
	if containsAny(lower, p.cfg.FresherKeywords) {
		evidence = append(evidence, EvidenceItem{Value: 0.0, Confidence: 0.4, Source: SourceFresherKeyword})
	}
	if containsAny(lower, p.cfg.StudentKeywords) {
		evidence = append(evidence, EvidenceItem{Value: 0.5, Confidence: 0.3, Source: SourceStudentKeyword})
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		if evidence[i].Confidence != evidence[j].Confidence {
			return evidence[i].Confidence > evidence[j].Confidence
		}
		return evidence[i].Value > evidence[j].Value
	})

	return evidence
}

// ExtractExperience estimates years of professional experience by ranked
// evidence fusion: the most confident signal wins, never an average or the
// first match. No evidence at all means 0.0.
func (p *Parser) ExtractExperience(text string) float64 {
	evidence := p.GatherEvidence(text)
	if len(evidence) == 0 {
		return 0.0
	}

	best := evidence[0]
	p.logger.Debug("experience evidence selected",
		zap.Float64("years", best.Value),
		zap.String("source", best.Source),
		zap.Float64("confidence", best.Confidence),
		zap.Int("candidates", len(evidence)))

	return round1(best.Value)
}

// sumDateRangeMonths adds up the whole-month durations of every parseable
// "Mon YYYY - Mon YYYY|Present|Current" range in the text.
func (p *Parser) sumDateRangeMonths(text string) int {
	total := 0
	for _, raw := range p.datePattern.FindAllString(text, -1) {
		parts := strings.SplitN(raw, "-", 2)
		if len(parts) != 2 {
			continue
		}

		start, err := time.Parse("Jan 2006", strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}

		endStr := strings.ToLower(strings.TrimSpace(parts[1]))
		var end time.Time
		if strings.Contains(endStr, "present") || strings.Contains(endStr, "current") {
			end = p.Now()
		} else {
			end, err = time.Parse("Jan 2006", strings.TrimSpace(parts[1]))
			if err != nil {
				continue
			}
		}

		months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
		if months > 0 {
			total += months
		}
	}
	return total
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
