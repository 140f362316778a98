package tablesaf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLSource turns an HTML document into narrative text plus one candidate
// grid per <table>. When a table carries <th> cells in its first row, the
// grid's header is pre-resolved; otherwise the header locator decides.
type HTMLSource struct{}

// CanProcess returns true for HTML content types or .html/.htm extensions.
func (hs *HTMLSource) CanProcess(contentType, path string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}

// Extract parses the document with goquery and returns a single page holding
// the body text (tables excluded) and the tables as grids.
func (hs *HTMLSource) Extract(path string, content []byte) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := PageContent{Source: path, Page: 1}

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		grid := htmlTableGrid(table, path, i)
		if grid != nil {
			page.Grids = append(page.Grids, grid)
		}
	})

	// Narrative text without table content, so numbers inside tables are not
	// double-counted by the firewall's ground truth.
	body := doc.Find("body").Clone()
	body.Find("table, script, style").Remove()
	page.Text = strings.TrimSpace(body.Text())

	return &Extraction{Source: path, Pages: []PageContent{page}}, nil
}

// htmlTableGrid converts one <table> selection into a grid. A leading row of
// <th> cells becomes the resolved header.
func htmlTableGrid(table *goquery.Selection, path string, index int) *Grid {
	grid := &Grid{Source: path, Page: 1, Index: index}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		ths := tr.Find("th")
		if grid.Header == nil && len(grid.Cells) == 0 && ths.Length() > 0 {
			header := make([]string, 0, ths.Length())
			ths.Each(func(_ int, th *goquery.Selection) {
				header = append(header, strings.TrimSpace(th.Text()))
			})
			grid.Header = header
			return
		}

		tds := tr.Find("td, th")
		if tds.Length() == 0 {
			return
		}
		row := make([]Cell, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			row = append(row, ValueCell(strings.TrimSpace(td.Text())))
		})
		grid.Cells = append(grid.Cells, row)
	})

	if len(grid.Cells) == 0 && len(grid.Header) == 0 {
		return nil
	}
	return grid
}
