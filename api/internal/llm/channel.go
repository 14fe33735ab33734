// Package llm defines the generation channel the toolkit talks to.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Clip is an inline audio payload.
type Clip struct {
	MIMEType string
	Data     []byte
}

// Channel generates text. Implementations make exactly one upstream call per
// method call and do not retry.
type Channel interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
	GenerateWithAudio(ctx context.Context, model, prompt string, clip Clip) (string, error)
}
