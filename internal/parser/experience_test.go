package parser

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newClockedParser(t *testing.T, now time.Time) *Parser {
	t.Helper()
	p, err := NewParser(DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewParser() failed: %v", err)
	}
	p.Now = func() time.Time { return now }
	return p
}

// TestExtractExperience_NoEvidence tests that unrecognizable text yields exactly 0.0
func TestExtractExperience_NoEvidence(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "Plain prose",
			input: "A motivated engineer who loves building things.",
		},
		{
			name:  "Numbers without experience context",
			input: "Shipped 12 releases across 3 products.",
		},
		{
			name:  "Empty text",
			input: "",
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ExtractExperience(tt.input); got != 0.0 {
				t.Errorf("ExtractExperience(%q) = %v, want 0.0", tt.input, got)
			}
		})
	}
}

// TestExtractExperience_DirectStatements tests the high-confidence regex evidence
func TestExtractExperience_DirectStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{
			name:     "Simple statement",
			input:    "5 years of experience in backend development",
			expected: 5.0,
		},
		{
			name:     "Plus-suffixed statement",
			input:    "8+ years of professional experience",
			expected: 8.0,
		},
		{
			name:     "Colon form",
			input:    "Experience: 6 years",
			expected: 6.0,
		},
		{
			name:     "Fractional years",
			input:    "3.5 years of experience with distributed systems",
			expected: 3.5,
		},
		{
			name:     "Implausible value out of range is discarded",
			input:    "45 years of experience",
			expected: 0.0,
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ExtractExperience(tt.input); got != tt.expected {
				t.Errorf("ExtractExperience(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestGatherEvidence_DateRanges tests summed date-range durations at a fixed clock
func TestGatherEvidence_DateRanges(t *testing.T) {
	// Fixed "now": May 2022.
	now := time.Date(2022, time.May, 15, 0, 0, 0, 0, time.UTC)
	p := newClockedParser(t, now)

	// Jan 2019 - Jan 2021 is 24 months; Feb 2021 - Present is 15 months at
	// the mocked clock. Total 39 months = 3.25 years, rounded to 3.3.
	text := "Experience Jan 2019 - Jan 2021 backend engineer at Acme. Feb 2021 - Present platform engineer at Beta."

	evidence := p.GatherEvidence(text)
	if len(evidence) != 1 {
		t.Fatalf("Expected exactly one evidence item, got %d: %v", len(evidence), evidence)
	}

	item := evidence[0]
	if item.Source != SourceDateRange {
		t.Errorf("source = %q, want %q", item.Source, SourceDateRange)
	}
	if item.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", item.Confidence)
	}
	if item.Value != 3.3 {
		t.Errorf("value = %v, want 3.3", item.Value)
	}
}

// TestGatherEvidence_DirectBeatsDateRange tests that 0.9 confidence dominates 0.75
func TestGatherEvidence_DirectBeatsDateRange(t *testing.T) {
	now := time.Date(2022, time.May, 15, 0, 0, 0, 0, time.UTC)
	p := newClockedParser(t, now)

	text := "10 years of experience overall. Experience Jan 2019 - Jan 2021 engineer at Acme."

	evidence := p.GatherEvidence(text)
	if len(evidence) < 2 {
		t.Fatalf("Expected both evidence kinds, got %v", evidence)
	}
	if evidence[0].Source != SourceRegexDirect {
		t.Errorf("winner source = %q, want %q", evidence[0].Source, SourceRegexDirect)
	}
	if got := p.ExtractExperience(text); got != 10.0 {
		t.Errorf("ExtractExperience() = %v, want 10.0", got)
	}
}

// TestGatherEvidence_Keywords tests the low-confidence vocabulary signals
func TestGatherEvidence_Keywords(t *testing.T) {
	p := newTestParser(t)

	t.Run("Fresher keyword", func(t *testing.T) {
		evidence := p.GatherEvidence("Recent graduate seeking a first role")
		if len(evidence) != 1 {
			t.Fatalf("Expected one item, got %v", evidence)
		}
		if evidence[0].Source != SourceFresherKeyword || evidence[0].Value != 0.0 || evidence[0].Confidence != 0.4 {
			t.Errorf("unexpected evidence: %+v", evidence[0])
		}
	})

	t.Run("Student keyword", func(t *testing.T) {
		evidence := p.GatherEvidence("Undergraduate with one internship")
		if len(evidence) != 1 {
			t.Fatalf("Expected one item, got %v", evidence)
		}
		if evidence[0].Source != SourceStudentKeyword || evidence[0].Value != 0.5 || evidence[0].Confidence != 0.3 {
			t.Errorf("unexpected evidence: %+v", evidence[0])
		}
	})

	t.Run("Both keywords fire and fresher wins on confidence", func(t *testing.T) {
		evidence := p.GatherEvidence("Recent graduate student looking for opportunities")
		if len(evidence) != 2 {
			t.Fatalf("Expected two items, got %v", evidence)
		}
		if evidence[0].Source != SourceFresherKeyword {
			t.Errorf("winner = %q, want fresher_keyword", evidence[0].Source)
		}
	})

	t.Run("Keywords are never suppressed by numeric evidence", func(t *testing.T) {
		evidence := p.GatherEvidence("Former intern, now 4 years of experience. internship alumni program.")
		sources := make(map[string]bool)
		for _, e := range evidence {
			sources[e.Source] = true
		}
		if !sources[SourceRegexDirect] || !sources[SourceStudentKeyword] {
			t.Errorf("Expected both regex_direct and student_keyword, got %v", evidence)
		}
		if evidence[0].Source != SourceRegexDirect {
			t.Errorf("winner = %q, want regex_direct", evidence[0].Source)
		}
	})
}

// TestGatherEvidence_TieBreakPrefersLargerValue tests the (confidence, value) ordering
func TestGatherEvidence_TieBreakPrefersLargerValue(t *testing.T) {
	p := newTestParser(t)

	// Two direct statements share confidence 0.9; the larger estimate wins.
	text := "3 years of experience in support. 7 years of experience in engineering."
	evidence := p.GatherEvidence(text)
	if len(evidence) != 2 {
		t.Fatalf("Expected two items, got %v", evidence)
	}
	if evidence[0].Value != 7.0 {
		t.Errorf("winner value = %v, want 7.0", evidence[0].Value)
	}
	if got := p.ExtractExperience(text); got != 7.0 {
		t.Errorf("ExtractExperience() = %v, want 7.0", got)
	}
}

// TestSumDateRangeMonths tests range parsing edge cases
func TestSumDateRangeMonths(t *testing.T) {
	now := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	p := newClockedParser(t, now)

	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "Closed range",
			input:    "Mar 2020 - Mar 2021",
			expected: 12,
		},
		{
			name:     "Open range resolves to the injected clock",
			input:    "Jan 2023 - Present",
			expected: 2,
		},
		{
			name:     "Current is treated like Present",
			input:    "Feb 2023 - Current",
			expected: 1,
		},
		{
			name:     "Non-positive duration is skipped",
			input:    "Jan 2021 - Jan 2020",
			expected: 0,
		},
		{
			name:     "Multiple ranges are summed, not merged",
			input:    "Jan 2019 - Jan 2020 and also Jun 2019 - Jun 2020",
			expected: 24,
		},
		{
			name:     "No ranges",
			input:    "worked for a while",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.sumDateRangeMonths(tt.input); got != tt.expected {
				t.Errorf("sumDateRangeMonths(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}
