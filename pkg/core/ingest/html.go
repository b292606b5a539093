package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"insight_engine/pkg/core/clean"
)

// ReadHTMLTable extracts the first <table> from an HTML document. Header
// cells come from <th> elements when present, otherwise from the first row.
// Platforms that only offer "export as web page" land here.
func ReadHTMLTable(r io.Reader) (clean.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return clean.Table{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return clean.Table{}, fmt.Errorf("no <table> element found in HTML input")
	}

	var out clean.Table
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		ths := row.Find("th")
		if ths.Length() > 0 && out.Headers == nil {
			ths.Each(func(_ int, cell *goquery.Selection) {
				out.Headers = append(out.Headers, strings.TrimSpace(cell.Text()))
			})
			return
		}
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if out.Headers == nil {
			out.Headers = cells
			return
		}
		out.Rows = append(out.Rows, cells)
	})

	if out.Headers == nil {
		return clean.Table{}, fmt.Errorf("table has no rows")
	}
	return out, nil
}
