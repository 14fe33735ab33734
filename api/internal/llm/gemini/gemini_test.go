package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestJoinText(t *testing.T) {
	assert.Empty(t, joinText(nil))
	assert.Empty(t, joinText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Text("# Lesson"),
				&genai.Blob{MIMEType: "audio/ogg"},
				genai.Text("\n- warm-up"),
			}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	assert.Equal(t, "# Lesson\n- warm-up", joinText(resp))
}

func TestNew_EmptyKey(t *testing.T) {
	_, err := New(context.Background(), "  ")
	assert.Error(t, err)
}
