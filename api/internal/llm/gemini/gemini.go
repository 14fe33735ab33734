package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"esl-toolkit/api/internal/llm"
)

// Channel is an llm.Channel backed by the Gemini API. One client is shared by
// all calls; Close it on shutdown.
type Channel struct {
	cl *genai.Client
}

func New(ctx context.Context, apiKey string) (*Channel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Channel{cl: cl}, nil
}

func (c *Channel) Close() error { return c.cl.Close() }

func (c *Channel) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	return c.generate(ctx, model, genai.Text(prompt))
}

func (c *Channel) GenerateWithAudio(ctx context.Context, model, prompt string, clip llm.Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", errors.New("gemini: audio clip is empty")
	}
	return c.generate(ctx, model,
		genai.Text(prompt),
		&genai.Blob{MIMEType: clip.MIMEType, Data: clip.Data},
	)
}

func (c *Channel) generate(ctx context.Context, model string, parts ...genai.Part) (string, error) {
	m := c.cl.GenerativeModel(strings.TrimSpace(model))
	if m == nil {
		return "", fmt.Errorf("gemini: model %q is nil", model)
	}
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	txt := joinText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", llm.ErrEmptyResponse
	}
	return txt, nil
}

// joinText concatenates the text parts of the first candidate that has any.
func joinText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
