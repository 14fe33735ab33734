package toolkit

import "strings"

type Level string

const (
	LevelA1 Level = "A1 (Beginner)"
	LevelA2 Level = "A2 (Elementary)"
	LevelB1 Level = "B1 (Intermediate)"
	LevelB2 Level = "B2 (Upper-Intermediate)"
	LevelC1 Level = "C1 (Advanced)"
	LevelC2 Level = "C2 (Proficient)"
)

type Domain string

const (
	DomainGrammar    Domain = "Grammar"
	DomainVocabulary Domain = "Vocabulary"
	DomainReading    Domain = "Reading"
	DomainSpeaking   Domain = "Speaking"
	DomainWriting    Domain = "Writing"
	DomainListening  Domain = "Listening"
)

type AgeGroup string

const (
	AgeKids   AgeGroup = "Kids (6-10)"
	AgeTeens  AgeGroup = "Teens (11-17)"
	AgeAdults AgeGroup = "Adults (18+)"
)

var (
	Levels    = []string{string(LevelA1), string(LevelA2), string(LevelB1), string(LevelB2), string(LevelC1), string(LevelC2)}
	Domains   = []string{string(DomainGrammar), string(DomainVocabulary), string(DomainReading), string(DomainSpeaking), string(DomainWriting), string(DomainListening)}
	AgeGroups = []string{string(AgeKids), string(AgeTeens), string(AgeAdults)}

	ActivityTypes = []string{"Matching", "Fill-in-the-blanks", "Multiple Choice", "Sentence Scramble", "Short Answer Questions"}

	ProDevTopics = []string{
		"Integrating AI Tools in the ESL Curriculum",
		"Task-Based Learning for Online Classes",
		"Gamification Strategies for Vocabulary Acquisition",
		"Teaching Mixed-Proficiency Level Classes",
		"Using Authentic Materials for Reading Comprehension",
	}
)

// matchOption finds v among options ignoring case. The short form before
// " (" also matches, so "b1" resolves to "B1 (Intermediate)".
func matchOption(options []string, v string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return o, true
		}
		if short, _, ok := strings.Cut(o, " ("); ok && strings.EqualFold(short, v) {
			return o, true
		}
	}
	return "", false
}
