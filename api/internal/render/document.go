package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

var printMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
)

const printCSS = `body{font-family:Georgia,serif;max-width:780px;margin:2rem auto;line-height:1.5;color:#111}
table{border-collapse:collapse;width:100%;margin:1rem 0}th,td{border:1px solid #999;padding:.4rem .6rem;text-align:left;vertical-align:top}
th{background:#eee}h1,h2,h3{page-break-after:avoid}@media print{a{color:#000;text-decoration:none}}`

// Document renders text as a standalone printable HTML page. Unlike HTML it uses
// a full CommonMark+GFM parser and never passes raw HTML through.
func Document(title, text string) (string, error) {
	var body bytes.Buffer
	if err := printMarkdown.Convert([]byte(text), &body); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&out, "<title>%s</title><style>%s</style></head><body>\n", html.EscapeString(title), printCSS)
	out.Write(body.Bytes())
	out.WriteString("</body></html>\n")
	return out.String(), nil
}
