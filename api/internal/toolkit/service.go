// Package toolkit turns teacher input into prompts, calls the generation
// channel once and reports the outcome as an explicit Result.
package toolkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/llm"
	"esl-toolkit/api/internal/logging"
	"esl-toolkit/api/internal/util"
)

// Result is the outcome of one generation. Exactly one of Text and Err is
// meaningful.
type Result struct {
	Kind  Kind
	Model string
	Text  string
	Err   error
}

func (r Result) OK() bool { return r.Err == nil }

// Message is what a user sees: the text on success, otherwise a
// "Failed to ..." line carrying the error.
func (r Result) Message() string {
	if r.Err == nil {
		return r.Text
	}
	var verr *ValidationError
	if errors.As(r.Err, &verr) {
		return "Please fill in all fields. " + verr.Error()
	}
	return fmt.Sprintf("Failed to %s. Error: %s", r.Kind.action(), r.Err.Error())
}

// Speaking is a speaking-coach result split into its exercise and
// gamification segments.
type Speaking struct {
	Result
	Exercise     string
	Gamification string
	Extraction   gamify.Extraction
}

// SplitSpeaking splits a successful speaking result and extracts its rubric.
// Without a separator the whole text is the exercise and the extraction is empty.
func SplitSpeaking(r Result) Speaking {
	s := Speaking{Result: r}
	if !r.OK() {
		return s
	}
	ex, gm, ok := gamify.Split(r.Text)
	s.Exercise = ex
	if ok {
		s.Gamification = gm
		s.Extraction = gamify.Extract(gm)
	}
	return s
}

// Record is one finished generation, handed to a Recorder.
type Record struct {
	Source   string
	Kind     Kind
	Model    string
	Params   map[string]string
	Text     string
	Err      string
	Duration time.Duration
}

type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type sourceKey struct{}

// WithSource tags generations made with ctx, e.g. "tg:42" or "http".
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func SourceFrom(ctx context.Context) string {
	s, _ := ctx.Value(sourceKey{}).(string)
	return s
}

type Service struct {
	ch         llm.Channel
	log        *zap.Logger
	prompts    *Prompts
	textModel  string
	audioModel string
	rec        Recorder
}

type Option func(*Service)

func WithModels(text, audio string) Option {
	return func(s *Service) {
		if text != "" {
			s.textModel = text
		}
		if audio != "" {
			s.audioModel = audio
		}
	}
}

func WithPrompts(p *Prompts) Option { return func(s *Service) { s.prompts = p } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.rec = r } }

func New(ch llm.Channel, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		ch:         ch,
		log:        log,
		prompts:    &Prompts{Preamble: DefaultPreamble},
		textModel:  "gemini-2.5-pro",
		audioModel: "gemini-2.5-flash-native-audio-preview-09-2025",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate validates p, builds its prompt and makes one channel call.
// A validation failure is returned in Result.Err without calling the channel.
func (s *Service) Generate(ctx context.Context, p Params) Result {
	kind := p.Kind
	p, err := p.Normalize()
	if err != nil {
		return Result{Kind: kind, Err: err}
	}

	model := s.textModel
	if p.Kind == Pronunciation {
		model = s.audioModel
	}
	prompt := s.prompts.Build(p)
	log := s.log.With(zap.String("kind", string(p.Kind)), zap.String("model", model), logging.PromptField(prompt))

	start := time.Now()
	var text string
	if p.Kind == Pronunciation {
		text, err = s.ch.GenerateWithAudio(ctx, model, prompt, *p.Audio)
	} else {
		text, err = s.ch.GenerateText(ctx, model, prompt)
	}
	elapsed := time.Since(start)

	res := Result{Kind: p.Kind, Model: model}
	if err != nil {
		log.Error("generation failed", zap.Duration("took", elapsed), zap.Error(err))
		res.Err = err
	} else {
		res.Text = util.StripCodeFences(text)
		log.Info("generation done", zap.Duration("took", elapsed), zap.Int("text_len", len(res.Text)))
	}
	s.record(ctx, p, res, elapsed)
	return res
}

// Prompt sends a raw prompt to the text model. It backs the prompt proxy and
// returns channel errors unchanged.
func (s *Service) Prompt(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := s.ch.GenerateText(ctx, s.textModel, prompt)
	if err != nil {
		s.log.Error("raw prompt failed", zap.String("model", s.textModel), logging.PromptField(prompt), zap.Error(err))
		return "", err
	}
	s.log.Info("raw prompt done", zap.String("model", s.textModel), zap.Duration("took", time.Since(start)))
	return text, nil
}

func (s *Service) LessonPlan(ctx context.Context, level Level, domain Domain, age AgeGroup, topic, objectives string) Result {
	return s.Generate(ctx, Params{Kind: LessonPlanner, Level: level, Domain: domain, Age: age, Topic: topic, Objectives: objectives})
}

func (s *Service) Worksheet(ctx context.Context, level Level, domain Domain, topic, activityType string) Result {
	return s.Generate(ctx, Params{Kind: WorksheetGenerator, Level: level, Domain: domain, Topic: topic, ActivityType: activityType})
}

func (s *Service) WritingFeedback(ctx context.Context, level Level, text string) Result {
	return s.Generate(ctx, Params{Kind: FeedbackTool, Level: level, Text: text})
}

func (s *Service) ProDevArticle(ctx context.Context, topic string) Result {
	return s.Generate(ctx, Params{Kind: ProDev, Topic: topic})
}

func (s *Service) SpeakingPractice(ctx context.Context, level Level, topic, scenario string) Speaking {
	return SplitSpeaking(s.Generate(ctx, Params{Kind: SpeakingCoach, Level: level, Topic: topic, Scenario: scenario}))
}

func (s *Service) Pronunciation(ctx context.Context, level Level, exerciseText string, clip llm.Clip) Result {
	return s.Generate(ctx, Params{Kind: Pronunciation, Level: level, ExerciseText: exerciseText, Audio: &clip})
}

func (s *Service) record(ctx context.Context, p Params, res Result, took time.Duration) {
	if s.rec == nil {
		return
	}
	rec := Record{Source: SourceFrom(ctx), Kind: p.Kind, Model: res.Model, Params: p.Values(), Text: res.Text, Duration: took}
	if res.Err != nil {
		rec.Err = res.Err.Error()
	}
	if err := s.rec.Record(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Warn("record generation", zap.String("kind", string(p.Kind)), zap.Error(err))
	}
}
