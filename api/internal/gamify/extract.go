package gamify

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultBadgeDescription = "Great work on this exercise!"
	FallbackCategory        = "Exercise Completion"
)

type Criterion struct {
	Category string `json:"category"`
	Points   int    `json:"points"`
}

type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Extraction is whatever could be recovered from the text. Any part may be
// missing; extraction never fails.
type Extraction struct {
	TotalPossiblePoints int         `json:"totalPossiblePoints"`
	Criteria            []Criterion `json:"criteria"`
	Badge               *Badge      `json:"badge,omitempty"`
}

// Empty reports whether there is nothing to show a rubric panel for.
func (e Extraction) Empty() bool {
	return len(e.Criteria) == 0 && e.Badge == nil
}

var (
	reTotal       = regexp.MustCompile(`(?i)(?:totaling|total of|Total:)\s*(\d+)\s*points`)
	reBadge       = regexp.MustCompile(`\*\*Badge Unlocked:\*\* \*\*(.*?)\*\*`)
	rePointSystem = regexp.MustCompile(`(?i)\*\*Point System:\*\*(.*)`)

	reExample  = regexp.MustCompile(`(?i)\(e\.g\.,(.*?)\)`)
	reTotaling = regexp.MustCompile(`(?i),?\s*totaling.*$`)
	reEtc      = regexp.MustCompile(`(?i)etc\.`)
	reClause   = regexp.MustCompile(`,|\sand\s`)
	reQuantity = regexp.MustCompile(`(?i)(.*?)(?:\s*\(|\s*:)?\s*(\d+)\s*p(?:oin)?ts?`)
)

// Extract scans generated text for a point system, a points total and a badge.
func Extract(text string) Extraction {
	total := 0
	if m := reTotal.FindStringSubmatch(text); m != nil {
		total = atoi(m[1])
	}

	out := Extraction{Badge: findBadge(text)}

	if m := rePointSystem.FindStringSubmatch(text); m != nil {
		out.Criteria = parseCriteria(m[1])
	}
	if len(out.Criteria) == 0 && total > 0 {
		out.Criteria = []Criterion{{Category: FallbackCategory, Points: total}}
	}

	sum := 0
	for _, c := range out.Criteria {
		sum += c.Points
	}
	if sum > 0 {
		out.TotalPossiblePoints = sum
	} else {
		out.TotalPossiblePoints = total
	}
	return out
}

func findBadge(text string) *Badge {
	loc := reBadge.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	marker := text[loc[0]:loc[1]]
	rest := text[loc[1]:]
	if i := strings.Index(rest, marker); i >= 0 {
		rest = rest[:i]
	}
	desc := strings.TrimPrefix(strings.TrimSpace(rest), "- ")
	desc, _, _ = strings.Cut(desc, "\n")
	desc = strings.TrimSpace(desc)
	if desc == "" {
		desc = DefaultBadgeDescription
	}
	return &Badge{Name: text[loc[2]:loc[3]], Description: desc}
}

// parseCriteria reads a line like
// "Fluency: 25 points, Accuracy (25 pts) and Range: 10 points, totaling 60 points".
func parseCriteria(line string) []Criterion {
	line = replaceFirst(reExample, line, "$1")
	line = reTotaling.ReplaceAllString(line, "")
	line = replaceFirst(reEtc, line, "")
	line = strings.TrimSpace(line)

	var (
		out  []Criterion
		seen = map[string]bool{}
	)
	for _, part := range reClause.Split(line, -1) {
		if part == "" {
			continue
		}
		m := reQuantity.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		category := cleanCategory(m[1])
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		out = append(out, Criterion{Category: category, Points: atoi(m[2])})
	}
	return out
}

func cleanCategory(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*")
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	return strings.TrimSpace(strings.Trim(s, "*"))
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	var dst []byte
	dst = re.ExpandString(dst, repl, s, loc)
	return s[:loc[0]] + string(dst) + s[loc[1]:]
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
