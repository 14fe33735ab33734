package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil", nil, 0},
		{"429 with hint", errors.New("Too Many Requests: retry after 7"), 7 * time.Second},
		{"429 bare", errors.New("too many requests"), 3 * time.Second},
		{"timeout", timeoutErr{}, 2 * time.Second},
		{"other", errors.New("boom"), time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryDelayFromError(tt.err))
		})
	}
}

func TestShortHash(t *testing.T) {
	a := shortHash("123:abc")
	assert.Len(t, a, 16)
	assert.Equal(t, a, shortHash("123:abc"))
	assert.NotEqual(t, a, shortHash("123:abd"))
	// FNV-1a offset basis for the empty string
	assert.Equal(t, "cbf29ce484222325", shortHash(""))
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	sleep(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
