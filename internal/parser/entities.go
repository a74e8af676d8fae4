package parser

import (
	"strings"
	"unicode"
)

// LabelPerson is the only entity label the parser consumes.
const LabelPerson = "person"

// Entity is a labeled span returned by an entity detector.
type Entity struct {
	Text  string
	Label string
}

// EntityDetector abstracts the named-entity-recognition collaborator. The
// real model lives outside this module; implementations only need to return
// person spans in document order.
type EntityDetector interface {
	DetectPersonEntities(text string) []Entity
}

// HeuristicDetector is the built-in fallback detector: it treats leading
// runs of capitalized words as person candidates. It exists so the parser
// works without an external NER service and so tests can run hermetically.
type HeuristicDetector struct{}

func NewHeuristicDetector() *HeuristicDetector {
	return &HeuristicDetector{}
}

// DetectPersonEntities scans the snippet for consecutive capitalized words
// and reports each run as a person entity, in document order.
func (d *HeuristicDetector) DetectPersonEntities(text string) []Entity {
	var entities []Entity
	var run []string

	flush := func() {
		if len(run) >= 2 {
			entities = append(entities, Entity{Text: strings.Join(run, " "), Label: LabelPerson})
		}
		run = nil
	}

	for _, word := range strings.Fields(text) {
		if isCapitalizedWord(word) {
			run = append(run, word)
			continue
		}
		flush()
	}
	flush()

	return entities
}

func isCapitalizedWord(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
