package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlShell wraps the rendered body in a minimal standalone page.
const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f0f2f6; }
</style>
</head>
<body>
%s
</body>
</html>
`

// RenderHTML converts the Markdown report into a standalone HTML page.
// GFM tables are enabled so the summary table renders as an actual table.
func RenderHTML(doc Document) (string, error) {
	md, err := RenderMarkdown(doc)
	if err != nil {
		return "", err
	}

	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := converter.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("failed to convert report to HTML: %w", err)
	}
	return fmt.Sprintf(htmlShell, doc.Title, body.String()), nil
}
