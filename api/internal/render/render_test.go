package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_PlainText(t *testing.T) {
	in := "Good morning class\nToday we practise greetings\nSee you soon"
	assert.Equal(t, "Good morning class<br>Today we practise greetings<br>See you soon", HTML(in))
}

func TestHTML_CollapsesBreaks(t *testing.T) {
	assert.Equal(t, "a<br><br>b", HTML("a\n\n\n\nb"))
	assert.Equal(t, "a<br>b<br>c", HTML("a\r\nb\rc"))
}

func TestHTML_Headings(t *testing.T) {
	out := HTML("# Title\n## Section\n### Sub")
	assert.Contains(t, out, `<h1 class="text-2xl font-bold mt-8 mb-4">Title</h1>`)
	assert.Contains(t, out, `<h2 class="text-xl font-bold mt-6 mb-3">Section</h2>`)
	assert.Contains(t, out, `<h3 class="text-lg font-semibold mt-4 mb-2">Sub</h3>`)
	assert.NotContains(t, out, "#")
}

func TestHTML_Inline(t *testing.T) {
	out := HTML("**Bold** and *soft* and [video](https://example.com/th)")
	assert.Contains(t, out, "<strong>Bold</strong>")
	assert.Contains(t, out, "<em>soft</em>")
	assert.Contains(t, out, `<a href="https://example.com/th" target="_blank" rel="noopener noreferrer"`)
	assert.Contains(t, out, ">video</a>")
}

func TestHTML_ListItemsAreContiguous(t *testing.T) {
	out := HTML("Materials:\n- whiteboard\n- markers")
	assert.Equal(t, `Materials:<li class="ml-6 list-disc">whiteboard</li><li class="ml-6 list-disc">markers</li>`, out)
}

func TestHTML_Table(t *testing.T) {
	in := "| Word | Tip |\n|---|---|\n| think | tongue between teeth |\n| three | **soft** th |\n"
	out := HTML(in)

	assert.Equal(t, 2, strings.Count(out, "<th "))
	assert.Equal(t, 2, strings.Count(out, `<tr class="border-t`))
	assert.Contains(t, out, "<strong>soft</strong> th")
	assert.True(t, strings.HasSuffix(out, "</table></div>"), out)
}

func TestHTML_TableUntouchedByTextPasses(t *testing.T) {
	in := "| Item | Score |\n|---|---|\n| Warm-up | 2 * 3 |\n| Quiz | 4 * 5 |\n"
	out := HTML(in)

	assert.NotContains(t, out, "<em>")
	assert.NotContains(t, out, "</em>")
	assert.Contains(t, out, `<td class="border dark:border-gray-600 px-4 py-2 align-top">2 * 3</td>`)
	assert.Contains(t, out, `<td class="border dark:border-gray-600 px-4 py-2 align-top">4 * 5</td>`)
	assert.True(t, strings.HasPrefix(out, `<div class="overflow-x-auto my-4">`), out)
}

func TestHTML_TwoTablesKeepOrder(t *testing.T) {
	in := "| A |\n|---|\n| first |\n\nBetween *x*\n| B |\n|---|\n| second |\n"
	out := HTML(in)

	first := strings.Index(out, ">first<")
	mid := strings.Index(out, "Between <em>x</em>")
	second := strings.Index(out, ">second<")
	require.True(t, first >= 0 && mid >= 0 && second >= 0, out)
	assert.Less(t, first, mid)
	assert.Less(t, mid, second)
	assert.NotContains(t, out, "\x00")
}

func TestHTML_CRLFHeadingsAndLists(t *testing.T) {
	out := HTML("### Title\r\nBody\r\n- item\r\n")
	assert.Equal(t, `<h3 class="text-lg font-semibold mt-4 mb-2">Title</h3><br>Body<li class="ml-6 list-disc">item</li><br>`, out)
}

func TestHTML_TableDropsMismatchedRows(t *testing.T) {
	in := "| A | B |\n| :-- | --: |\n| 1 | 2 |\n| only one |\n| 3 | 4 | 5 |\n"
	out := HTML(in)

	assert.Equal(t, 1, strings.Count(out, `<tr class="border-t`))
	assert.NotContains(t, out, "only one")
	assert.NotContains(t, out, ">5<")
}

func TestHTML_TableFollowedByText(t *testing.T) {
	in := "Intro\n| A | B |\n|---|---|\n| 1 | 2 |\nAfter"
	out := HTML(in)
	assert.Contains(t, out, "Intro<br><div")
	assert.Contains(t, out, "</table></div>After")
}

func TestHTML_NotATable(t *testing.T) {
	in := "| just a pipe line |\nno separator here"
	assert.Equal(t, "| just a pipe line |<br>no separator here", HTML(in))
}

func TestParseTable_Errors(t *testing.T) {
	_, err := parseTable("| a |")
	assert.ErrorIs(t, err, errShortTable)

	_, err = parseTable("x\n|---|")
	assert.ErrorIs(t, err, errNoHeader)
}

func TestSafe_StripsScripts(t *testing.T) {
	out := Safe("**hi** <script>alert(1)</script>\n[x](javascript:alert(1))")
	assert.Contains(t, out, "<strong>hi</strong>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}

func TestSafe_KeepsTables(t *testing.T) {
	out := Safe("| A | B |\n|---|---|\n| [l](https://example.com) | 2 |\n")
	assert.Contains(t, out, "<table")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `class="border dark:border-gray-600 px-4 py-2 align-top"`)
}

func TestDocument(t *testing.T) {
	doc, err := Document("Food <Worksheet>", "# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\n<b>raw</b>")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>Food &lt;Worksheet&gt;</title>")
	assert.Contains(t, doc, "<h1>Title</h1>")
	assert.Contains(t, doc, "<table>")
	assert.NotContains(t, doc, "<b>raw</b>")
}
