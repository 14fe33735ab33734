// Package gamify mines a scoring rubric and a badge out of generated
// speaking-practice text and tracks which criteria a teacher has awarded.
package gamify

import "strings"

// Separator is the token the model is asked to put between the exercise and
// its gamification suggestions. It must appear literally.
const Separator = "---GAMIFICATION---"

// Split cuts text at the first Separator. Without a separator the whole text is
// the exercise and ok is false.
func Split(text string) (exercise, gamification string, ok bool) {
	exercise, gamification, ok = strings.Cut(text, Separator)
	if !ok {
		return text, "", false
	}
	return exercise, gamification, true
}
