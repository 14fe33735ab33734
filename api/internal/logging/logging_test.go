package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"production", "PROD", "development", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l)
	}

	dev, _ := New("dev")
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
	prod, _ := New("production")
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))
}

func TestPromptField(t *testing.T) {
	f := PromptField("hello")
	assert.Equal(t, "prompt_len", f.Key)
	assert.EqualValues(t, 5, f.Integer)
}
