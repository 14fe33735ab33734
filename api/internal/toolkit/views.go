package toolkit

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names one workflow. The first five are the toolkit views;
// Pronunciation is the speaking coach's audio sub-flow.
type Kind string

const (
	LessonPlanner      Kind = "lessonPlanner"
	WorksheetGenerator Kind = "worksheetGenerator"
	FeedbackTool       Kind = "feedbackTool"
	SpeakingCoach      Kind = "speakingCoach"
	ProDev             Kind = "proDev"
	Pronunciation      Kind = "pronunciation"
)

var ErrUnknownKind = errors.New("unknown view kind")

type FieldType string

const (
	FieldChoice   FieldType = "choice"
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
)

type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Options     []string  `json:"options,omitempty"`
	Default     string    `json:"default,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	// Strict limits the value to Options.
	Strict bool `json:"strict,omitempty"`
}

// Accept normalizes one raw value for f, mapping short choice names to their
// option. It reports false for a blank required value or an unknown strict choice.
func (f Field) Accept(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return f.Default, f.Default != "" || !f.Required
	}
	if !f.Strict {
		return v, true
	}
	return matchOption(f.Options, v)
}

type View struct {
	Kind     Kind    `json:"kind"`
	Label    string  `json:"label"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Parent   Kind    `json:"parent,omitempty"`
	Fields   []Field `json:"fields"`
}

func levelField(def Level) Field {
	return Field{Name: "level", Label: "Proficiency Level", Type: FieldChoice, Options: Levels, Default: string(def), Strict: true}
}

func domainField(def Domain) Field {
	return Field{Name: "domain", Label: "Language Domain", Type: FieldChoice, Options: Domains, Default: string(def), Strict: true}
}

var views = []View{
	{
		Kind:     LessonPlanner,
		Label:    "Lesson Planner",
		Title:    "AI Lesson Planner",
		Subtitle: "Generate comprehensive, ready-to-use lesson plans for any ESL class.",
		Fields: []Field{
			levelField(LevelB1),
			domainField(DomainSpeaking),
			{Name: "age", Label: "Age Group", Type: FieldChoice, Options: AgeGroups, Default: string(AgeAdults), Strict: true},
			{Name: "topic", Label: "Topic", Type: FieldText, Placeholder: "e.g., Ordering food at a restaurant", Required: true},
			{Name: "objectives", Label: "Learning Objectives", Type: FieldTextarea, Placeholder: "e.g., Students will be able to use polite requests", Required: true},
		},
	},
	{
		Kind:     WorksheetGenerator,
		Label:    "Worksheet Generator",
		Title:    "AI Worksheet Generator",
		Subtitle: "Instantly create customized worksheets for vocabulary, grammar, reading, and more.",
		Fields: []Field{
			levelField(LevelA2),
			domainField(DomainVocabulary),
			{Name: "topic", Label: "Topic", Type: FieldText, Placeholder: "e.g., Animals on the farm", Required: true},
			{Name: "activityType", Label: "Activity Type", Type: FieldChoice, Options: ActivityTypes, Default: "Matching", Required: true},
		},
	},
	{
		Kind:     FeedbackTool,
		Label:    "Writing Feedback",
		Title:    "AI Writing Feedback Tool",
		Subtitle: "Get instant, constructive feedback on student writing with specific corrections and suggestions.",
		Fields: []Field{
			levelField(LevelB1),
			{Name: "text", Label: "Student's Text", Type: FieldTextarea, Placeholder: "Paste the student's writing here", Required: true},
		},
	},
	{
		Kind:     SpeakingCoach,
		Label:    "Speaking Coach",
		Title:    "AI Speaking Coach",
		Subtitle: "Generate tailored speaking exercises with dialogues, key vocabulary, and feedback rubrics.",
		Fields: []Field{
			levelField(LevelB1),
			{Name: "topic", Label: "Topic", Type: FieldText, Placeholder: "e.g., Job interviews", Required: true},
			{Name: "scenario", Label: "Scenario", Type: FieldTextarea, Placeholder: "e.g., Answering questions about strengths and weaknesses", Required: true},
		},
	},
	{
		Kind:     ProDev,
		Label:    "Professional Dev",
		Title:    "Professional Development Hub",
		Subtitle: "Explore AI-generated articles on modern ESL teaching methodologies and best practices.",
		Fields: []Field{
			{Name: "topic", Label: "Topic", Type: FieldChoice, Options: ProDevTopics, Required: true},
		},
	},
	{
		Kind:     Pronunciation,
		Label:    "Pronunciation Feedback",
		Title:    "Pronunciation Feedback",
		Subtitle: "Record yourself reading the exercise and get feedback on specific sounds.",
		Parent:   SpeakingCoach,
		Fields: []Field{
			levelField(LevelB1),
			{Name: "exerciseText", Label: "Exercise Text", Type: FieldTextarea, Required: true},
		},
	},
}

// Views returns the registry in display order. The slice is a copy.
func Views() []View {
	out := make([]View, len(views))
	copy(out, views)
	return out
}

func Lookup(k Kind) (View, error) {
	for _, v := range views {
		if v.Kind == k {
			return v, nil
		}
	}
	return View{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

// Valid reports whether k is a registered kind.
func (k Kind) Valid() bool {
	_, err := Lookup(k)
	return err == nil
}

// action is the phrase used in failure messages.
func (k Kind) action() string {
	switch k {
	case LessonPlanner:
		return "generate lesson plan"
	case WorksheetGenerator:
		return "generate worksheet"
	case FeedbackTool:
		return "provide feedback"
	case SpeakingCoach:
		return "generate speaking practice material"
	case ProDev:
		return "generate professional development content"
	case Pronunciation:
		return "analyze pronunciation"
	}
	return "generate content"
}
