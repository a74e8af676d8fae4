package parser

// Config is the static extraction configuration: the skill taxonomy, the
// section header patterns and the keyword lists. It is injected at
// construction and never mutated afterwards, so tests can run with a
// taxonomy of their own.
type Config struct {
	// Skills maps a category name to its canonical skill strings. Matching
	// is case-insensitive but results keep the casing defined here.
	Skills map[string][]string

	// SectionHeaders maps a section label to the alternation pattern of its
	// header synonyms. Patterns are applied case-insensitively against the
	// normalized document.
	SectionHeaders map[string]string

	// FresherKeywords and StudentKeywords feed the low-confidence experience
	// evidence signals.
	FresherKeywords []string
	StudentKeywords []string

	// EducationKeywords select sentences that look like education entries.
	EducationKeywords []string
}

// DefaultConfig returns the built-in taxonomy and patterns.
func DefaultConfig() *Config {
	return &Config{
		Skills: map[string][]string{
			"programming": {"python", "java", "javascript", "c++", "c#", "ruby", "go", "rust", "swift", "kotlin", "typescript"},
			"web":         {"html", "css", "react", "angular", "vue", "django", "flask", "node.js", "express", "spring", "laravel"},
			"database":    {"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "sql", "nosql"},
			"cloud":       {"aws", "azure", "google cloud", "gcp", "docker", "kubernetes", "terraform", "jenkins", "ci/cd"},
			"ml":          {"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn", "nlp", "computer vision", "ai"},
			"tools":       {"git", "jira", "confluence", "linux", "bash", "powershell", "vscode", "eclipse", "figma"},
			"soft_skills": {"leadership", "communication", "teamwork", "problem solving", "project management", "agile"},
		},
		SectionHeaders: map[string]string{
			"experience": `(?:work\s+)?experience|employment|professional\s+experience`,
			"education":  `education|academic|qualifications`,
		},
		FresherKeywords:   []string{"fresher", "recent graduate", "entry-level"},
		StudentKeywords:   []string{"student", "undergraduate", "internship"},
		EducationKeywords: []string{"university", "college", "institute", "b.tech", "m.tech", "bachelor", "master", "ph.d"},
	}
}
