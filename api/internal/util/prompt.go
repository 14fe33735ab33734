package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadPrompt reads <dir>/<name>.txt. An empty dir falls back to PROMPT_DIR.
// It returns an error when the file is missing or blank so callers can keep
// their built-in text.
func LoadPrompt(dir, name string) (string, error) {
	if dir == "" {
		dir = os.Getenv("PROMPT_DIR")
	}
	if dir == "" {
		return "", fmt.Errorf("prompt %q: no prompt dir", name)
	}
	p := filepath.Join(dir, name+".txt")
	b, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", name, err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("prompt %q is empty in %s", name, p)
	}
	return s, nil
}
