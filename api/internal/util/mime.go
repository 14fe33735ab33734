package util

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"
)

// SniffAudioMIME recognises the containers browsers and Telegram produce for
// voice recordings. It returns "" when unsure.
func SniffAudioMIME(b []byte) string {
	switch {
	case len(b) >= 4 && bytes.Equal(b[:4], []byte("OggS")):
		return "audio/ogg"
	case len(b) >= 4 && bytes.Equal(b[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "audio/webm"
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return "audio/wav"
	case len(b) >= 3 && bytes.Equal(b[:3], []byte("ID3")),
		len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return "audio/mpeg"
	case len(b) >= 8 && bytes.Equal(b[4:8], []byte("ftyp")):
		return "audio/mp4"
	case len(b) >= 4 && bytes.Equal(b[:4], []byte("fLaC")):
		return "audio/flac"
	}
	return ""
}

// DecodeBase64MaybeDataURL decodes base64. For a data: URI it also returns the
// MIME type from the prefix.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		// data:<mime>;base64,<payload>
		if meta, payload, ok := strings.Cut(rest, ","); ok {
			hintMIME, _, _ = strings.Cut(meta, ";")
			s = payload
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, hintMIME, nil
	}
	if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, hintMIME, nil
	}
	if b3, err3 := base64.RawStdEncoding.DecodeString(s); err3 == nil {
		return b3, hintMIME, nil
	}
	return nil, "", err
}

// PickMIME prefers the explicit type, then the data URI hint, then sniffing.
// Codec parameters ("audio/webm;codecs=opus") are dropped.
func PickMIME(explicit, hint string, data []byte) string {
	for _, m := range []string{explicit, hint} {
		if m = strings.TrimSpace(m); m != "" {
			base, _, _ := strings.Cut(m, ";")
			return strings.TrimSpace(base)
		}
	}
	if m := SniffAudioMIME(data); m != "" {
		return m
	}
	if len(data) > 0 {
		if m := http.DetectContentType(data); strings.HasPrefix(m, "audio/") || strings.HasPrefix(m, "video/") {
			base, _, _ := strings.Cut(m, ";")
			return base
		}
	}
	return "audio/ogg"
}
