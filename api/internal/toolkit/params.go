package toolkit

import (
	"fmt"
	"strings"

	"esl-toolkit/api/internal/llm"
)

// Params are the decoded form values for one request. Only the fields the
// kind uses are set.
type Params struct {
	Kind         Kind
	Level        Level
	Domain       Domain
	Age          AgeGroup
	Topic        string
	Objectives   string
	ActivityType string
	Text         string
	Scenario     string
	ExerciseText string

	// Audio is required for Pronunciation and ignored otherwise.
	Audio *llm.Clip
}

// ValidationError lists the fields that stopped a request from being sent.
type ValidationError struct {
	Kind    Kind
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values for: "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

// Decode builds Params for kind from raw form values. Omitted choice fields
// take the view's default. Unknown keys are ignored.
func Decode(kind Kind, values map[string]string) (Params, error) {
	v, err := Lookup(kind)
	if err != nil {
		return Params{}, err
	}
	p := Params{Kind: kind}
	verr := &ValidationError{Kind: kind}

	for _, f := range v.Fields {
		val := strings.TrimSpace(values[f.Name])
		if val == "" {
			val = f.Default
		}
		if val != "" && f.Strict {
			opt, ok := matchOption(f.Options, val)
			if !ok {
				verr.Invalid = append(verr.Invalid, f.Name)
				continue
			}
			val = opt
		}
		if val == "" && f.Required {
			verr.Missing = append(verr.Missing, f.Name)
			continue
		}
		p.set(f.Name, val)
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return Params{}, verr
	}
	return p, nil
}

// Normalize runs params built by hand through Decode, filling defaults, and
// checks the audio clip that Decode cannot see.
func (p Params) Normalize() (Params, error) {
	n, err := Decode(p.Kind, p.Values())
	if err != nil {
		return Params{}, err
	}
	n.Audio = p.Audio
	if n.Kind == Pronunciation && (n.Audio == nil || len(n.Audio.Data) == 0) {
		return Params{}, &ValidationError{Kind: n.Kind, Missing: []string{"audio"}}
	}
	return n, nil
}

func (p *Params) set(name, val string) {
	switch name {
	case "level":
		p.Level = Level(val)
	case "domain":
		p.Domain = Domain(val)
	case "age":
		p.Age = AgeGroup(val)
	case "topic":
		p.Topic = val
	case "objectives":
		p.Objectives = val
	case "activityType":
		p.ActivityType = val
	case "text":
		p.Text = val
	case "scenario":
		p.Scenario = val
	case "exerciseText":
		p.ExerciseText = val
	}
}

// Values is the inverse of Decode for the fields the kind uses.
func (p Params) Values() map[string]string {
	all := map[string]string{
		"level":        string(p.Level),
		"domain":       string(p.Domain),
		"age":          string(p.Age),
		"topic":        p.Topic,
		"objectives":   p.Objectives,
		"activityType": p.ActivityType,
		"text":         p.Text,
		"scenario":     p.Scenario,
		"exerciseText": p.ExerciseText,
	}
	v, err := Lookup(p.Kind)
	if err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(v.Fields))
	for _, f := range v.Fields {
		out[f.Name] = all[f.Name]
	}
	return out
}
