package render

import (
	"errors"
	"regexp"
	"strings"
)

// header row, separator row, then any number of body rows.
var reTable = regexp.MustCompile(`(?m)^\|(.+)\|\s*\n\|( *[-:]+ *\|)+\s*\n((?:\|.*\|\s*\n?)*)`)

var (
	errShortTable = errors.New("table: need header and separator")
	errNoHeader   = errors.New("table: header has no cells")
)

// replaceTables swaps every parseable table block for a token and returns the
// rendered tables in token order.
func replaceTables(text string) (string, []string) {
	text = strings.ReplaceAll(text, "\x00", "")
	var tables []string
	out := reTable.ReplaceAllStringFunc(text, func(block string) string {
		html, err := parseTable(block)
		if err != nil {
			return block
		}
		tables = append(tables, html)
		return tableToken(len(tables) - 1)
	})
	return out, tables
}

// parseTable builds an HTML table from a matched block. Body rows whose cell
// count differs from the header are skipped.
func parseTable(block string) (string, error) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) < 2 {
		return "", errShortTable
	}
	header := splitRow(lines[0])
	if len(header) == 0 {
		return "", errNoHeader
	}

	var b strings.Builder
	b.WriteString(`<div class="overflow-x-auto my-4"><table class="min-w-full border-collapse text-sm">`)
	b.WriteString(`<thead><tr class="bg-gray-100 dark:bg-gray-700">`)
	for _, h := range header {
		b.WriteString(`<th class="border dark:border-gray-600 px-4 py-2 text-left font-semibold">`)
		b.WriteString(h)
		b.WriteString(`</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)
	for _, line := range lines[2:] {
		row := splitRow(line)
		if len(row) != len(header) {
			continue
		}
		b.WriteString(`<tr class="border-t dark:border-gray-600 even:bg-gray-50 dark:even:bg-gray-900/50">`)
		for _, cell := range row {
			b.WriteString(`<td class="border dark:border-gray-600 px-4 py-2 align-top">`)
			b.WriteString(inline(cell))
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String(), nil
}

// splitRow splits "| a | b |" into trimmed cells, dropping the empty outer fields.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return nil
	}
	parts = parts[1 : len(parts)-1]
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
