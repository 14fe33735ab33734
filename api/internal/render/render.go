// Package render turns generated Markdown-like text into HTML.
//
// Only the dialect the model actually emits is handled: headings 1-3, bold,
// italic, links, "- " list items, line breaks and pipe tables.
package render

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	linkAttrs = `target="_blank" rel="noopener noreferrer" class="text-indigo-500 hover:underline"`
)

var (
	reH3   = regexp.MustCompile(`(?im)^### ([^\r\n]*)`)
	reH2   = regexp.MustCompile(`(?im)^## ([^\r\n]*)`)
	reH1   = regexp.MustCompile(`(?im)^# ([^\r\n]*)`)
	reLink = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reBold = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reEm   = regexp.MustCompile(`\*(.*?)\*`)
	reLi   = regexp.MustCompile(`(?im)^- ([^\r\n]*)`)
	reNL   = regexp.MustCompile(`\r\n|\n|\r`)

	reManyBr    = regexp.MustCompile(`(<br>){2,}`)
	reBrBeforeL = regexp.MustCompile(`<br><li`)
	reBrAfterT  = regexp.MustCompile(`</div><br>`)
)

// HTML renders text. It never fails: a table that cannot be parsed is left as is.
func HTML(text string) string {
	out, tables := replaceTables(text)

	out = reH3.ReplaceAllString(out, `<h3 class="text-lg font-semibold mt-4 mb-2">${1}</h3>`)
	out = reH2.ReplaceAllString(out, `<h2 class="text-xl font-bold mt-6 mb-3">${1}</h2>`)
	out = reH1.ReplaceAllString(out, `<h1 class="text-2xl font-bold mt-8 mb-4">${1}</h1>`)
	out = reLink.ReplaceAllString(out, `<a href="${2}" `+linkAttrs+`>${1}</a>`)
	out = reBold.ReplaceAllString(out, `<strong>${1}</strong>`)
	out = reEm.ReplaceAllString(out, `<em>${1}</em>`)
	out = reLi.ReplaceAllString(out, `<li class="ml-6 list-disc">${1}</li>`)
	out = reNL.ReplaceAllString(out, `<br>`)
	out = restoreTables(out, tables)

	out = reManyBr.ReplaceAllString(out, `<br><br>`)
	out = reBrBeforeL.ReplaceAllString(out, `<li`)
	out = reBrAfterT.ReplaceAllString(out, `</div>`)
	return out
}

// tableToken marks where table i sits while the text passes run. It holds no
// character any pass matches.
func tableToken(i int) string {
	return "\x00tbl" + strconv.Itoa(i) + "\x00"
}

func restoreTables(s string, tables []string) string {
	for i, t := range tables {
		s = strings.Replace(s, tableToken(i), t, 1)
	}
	return s
}

// inline applies the emphasis and link passes used inside table cells.
func inline(s string) string {
	s = reBold.ReplaceAllString(s, `<strong>${1}</strong>`)
	s = reEm.ReplaceAllString(s, `<em>${1}</em>`)
	s = reLink.ReplaceAllString(s, `<a href="${2}" `+linkAttrs+`>${1}</a>`)
	return s
}
