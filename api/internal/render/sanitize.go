package render

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Safe renders text and strips everything the renderer itself would not emit.
// Generated text is not trusted, so HTTP responses use this instead of HTML.
func Safe(text string) string {
	return sanitizer().Sanitize(HTML(text))
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("h1", "h2", "h3", "strong", "em", "li", "br",
			"div", "table", "thead", "tbody", "tr", "th", "td")
		p.AllowAttrs("class").
			Matching(regexp.MustCompile(`^[\w\s:/.\-]+$`)).
			OnElements("h1", "h2", "h3", "a", "li", "div", "table", "tr", "th", "td")
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		p.AllowAttrs("rel").Matching(regexp.MustCompile(`^[a-z ]+$`)).OnElements("a")
		policy = p
	})
	return policy
}
