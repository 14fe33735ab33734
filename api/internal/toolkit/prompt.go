package toolkit

import (
	"fmt"
	"strings"
	"text/template"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/util"
)

const DefaultPreamble = `You are an expert AI assistant for ESL teachers. Your responses must be structured, clear, and ready-to-use in a classroom setting.
You must align with Communicative Language Teaching (CLT) and Task-Based Learning (TBL) principles.
Format your output using Markdown. Use headings, bullet points, and bold text to organize the content effectively.`

// Prompts builds the text sent to the model. Output depends only on the
// preamble, the overrides and the params.
type Prompts struct {
	Preamble string
	// Overrides replace the built-in body for a kind. They run with
	// promptData, so {{.Topic}} or {{.Separator}} are available.
	Overrides map[Kind]*template.Template
}

type promptData struct {
	Params
	Separator string
}

// LoadPrompts uses <dir>/preamble.txt when present and the built-in preamble
// otherwise. A <dir>/<kind>.txt file, e.g. lessonPlanner.txt, overrides that
// kind's body and must parse as a text/template.
func LoadPrompts(dir string) (*Prompts, error) {
	pr := &Prompts{Preamble: DefaultPreamble}
	if s, err := util.LoadPrompt(dir, "preamble"); err == nil {
		pr.Preamble = s
	}
	for _, v := range Views() {
		s, err := util.LoadPrompt(dir, string(v.Kind))
		if err != nil {
			continue
		}
		t, err := template.New(string(v.Kind)).Option("missingkey=error").Parse(s)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", v.Kind, err)
		}
		if pr.Overrides == nil {
			pr.Overrides = map[Kind]*template.Template{}
		}
		pr.Overrides[v.Kind] = t
	}
	return pr, nil
}

func (pr *Prompts) Build(p Params) string {
	body, ok := pr.override(p)
	if !ok {
		body = builtinBody(p)
	}
	return strings.TrimSpace(pr.preamble()) + "\n\n" + body
}

// override runs the kind's template. A template that fails at execution
// falls back to the built-in body.
func (pr *Prompts) override(p Params) (string, bool) {
	if pr == nil {
		return "", false
	}
	t := pr.Overrides[p.Kind]
	if t == nil {
		return "", false
	}
	var b strings.Builder
	if err := t.Execute(&b, promptData{Params: p, Separator: gamify.Separator}); err != nil {
		return "", false
	}
	return strings.TrimSpace(b.String()), true
}

func builtinBody(p Params) string {
	switch p.Kind {
	case LessonPlanner:
		return fmt.Sprintf(lessonPlanTmpl, p.Level, p.Domain, p.Age, p.Topic, p.Objectives)
	case WorksheetGenerator:
		return fmt.Sprintf(worksheetTmpl, p.Level, p.Domain, p.Topic, p.ActivityType)
	case FeedbackTool:
		return fmt.Sprintf(feedbackTmpl, p.Level, p.Text)
	case ProDev:
		return fmt.Sprintf(proDevTmpl, p.Topic)
	case SpeakingCoach:
		return fmt.Sprintf(speakingTmpl, p.Level, p.Topic, p.Scenario, gamify.Separator)
	case Pronunciation:
		return fmt.Sprintf(pronunciationTmpl, p.Level, p.ExerciseText)
	default:
		return p.Topic
	}
}

func (pr *Prompts) preamble() string {
	if pr == nil || strings.TrimSpace(pr.Preamble) == "" {
		return DefaultPreamble
	}
	return pr.Preamble
}

const lessonPlanTmpl = `Generate a comprehensive lesson plan for an ESL class with the following specifications:
- **Proficiency Level:** %s
- **Language Domain:** %s
- **Age Group:** %s
- **Topic:** "%s"
- **Learning Objectives:** "%s"

The lesson plan should include the following sections:
1. **Lesson Title:** A creative and engaging title.
2. **Materials:** A list of required materials (e.g., whiteboard, markers, handouts, projector).
3. **Warm-up (5-10 mins):** An interactive activity to engage students and activate prior knowledge.
4. **Presentation (10-15 mins):** Clear presentation of the new language point or vocabulary.
5. **Practice (15-20 mins):** A communicative, task-based activity for students to practice in pairs or small groups.
6. **Production (10-15 mins):** A task where students use the target language more freely and creatively.
7. **Cool-down & Wrap-up (5 mins):** A brief review and homework assignment.

Ensure all activities are appropriate for the specified age group and proficiency level.`

const worksheetTmpl = `Generate a ready-to-print worksheet for an ESL class with the following specifications:
- **Proficiency Level:** %s
- **Language Domain:** %s
- **Topic:** "%s"
- **Activity Type:** "%s"

The worksheet should include:
1. **Title:** A clear title for the worksheet.
2. **Instructions:** Simple and clear instructions for the students.
3. **Exercises:** A series of well-structured exercises based on the activity type. For "Fill-in-the-blanks", provide sentences with gaps. For "Matching", provide two columns to match.
4. **Answer Key:** A separate section at the bottom with the answers.

Make the content engaging and relevant to the topic.`

const feedbackTmpl = `Act as an expert ESL teacher providing feedback on a student's writing.
- **Student's Proficiency Level:** %s

Here is the student's text:
---
%s
---

Provide feedback in the following format:
1. **Overall Comments:** Start with positive reinforcement. Give a brief summary of what the student did well and the main areas for improvement.
2. **Corrections & Suggestions (Table):** Create a Markdown table with three columns: "Original Sentence", "Correction/Suggestion", and "Explanation". In the explanation, briefly explain the grammatical rule or vocabulary choice.
3. **Next Steps:** Suggest 1-2 specific practice exercises the student can do to improve.`

const proDevTmpl = `Generate a professional development article for ESL teachers on the topic of "%s".
The article should be practical, insightful, and provide actionable tips.
Structure it with a clear introduction, several main points with examples, and a concluding summary.`

const speakingTmpl = `Generate a speaking practice exercise for an ESL student with the following specifications:
- **Proficiency Level:** %s
- **Topic:** "%s"
- **Scenario:** "%s"

The exercise should include the following sections:
1. **Exercise Title:** A clear, relevant title.
2. **Scenario Description:** A brief paragraph explaining the context for the student.
3. **Key Vocabulary & Phrases:** A list of 5-7 useful words or phrases with simple definitions that are relevant to the scenario.
4. **Sample Dialogue:** A short, clear dialogue between two speakers (e.g., Speaker A, Speaker B) that models the conversation. The student would typically take on one of these roles.
5. **Teacher's Feedback Rubric:** A checklist or simple rubric for the teacher to provide feedback. It should cover:
   - **Fluency:** (e.g., Smoothness, use of fillers)
   - **Pronunciation:** (e.g., Clarity of specific sounds, intonation)
   - **Vocabulary Usage:** (e.g., Use of key vocabulary, appropriate word choice)
   - **Grammar & Accuracy:** (e.g., Correct verb tense, sentence structure)

Ensure the language and complexity are appropriate for the specified proficiency level.

%s

### Gamification Suggestions

Based on the exercise, suggest gamification elements to motivate the student.
- **Point System:** Propose a simple point system based on the rubric (e.g., Fluency: 25 points, Pronunciation: 25 points, etc., totaling 100).
- **Badge Unlocked:** Create a creative and relevant badge name and a short, encouraging description for completing this task successfully. For example, for a job interview topic, a "Career Champion" badge.`

const pronunciationTmpl = `You are an expert ESL pronunciation coach. Analyze the provided audio from a student at the %s proficiency level.
The student was practicing the following text:
---
%s
---
Listen for pronunciation errors in the audio. Provide feedback in the following format:
1. **Overall Summary:** Give one or two sentences of encouraging and constructive feedback.
2. **Pronunciation Analysis (Table):** Create a Markdown table with four columns: "Word/Phrase", "Phoneme Error", "Suggestion for Improvement", and "Resource".
   - In the "Phoneme Error" column, identify the specific sound error (e.g., "The phoneme /θ/ was pronounced as /d/.").
   - In the "Suggestion for Improvement" column, provide a clear, actionable tip (e.g., "To make the /θ/ sound, gently place your tongue between your teeth and blow air.").
   - In the "Resource" column, provide a helpful resource. This can be a link to a video explaining the sound, or a description of a visual aid.

Focus on the 2-4 most critical errors for this proficiency level to avoid overwhelming the student. Make the resources high-quality and relevant.`
