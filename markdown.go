package tablesaf

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNoTable is returned when a markdown reconstruction contains no table.
var ErrNoTable = errors.New("no table found in markdown")

// ParseMarkdownTable parses the first pipe table out of a markdown document
// and returns it as a grid with the header row resolved. This is how
// AI-proposed reconstructions are deserialized before the firewall check;
// generated structure is parsed strictly and anything unparseable is an
// error, never a guess.
func ParseMarkdownTable(source, src string) (*Grid, error) {
	content := []byte(stripFences(src))

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(content))

	var table *east.Table
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*east.Table); ok && table == nil {
			table = t
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrNoTable
	}

	grid := &Grid{Source: source}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, nodeText(cell, content))
		}

		if _, isHeader := row.(*east.TableHeader); isHeader && grid.Header == nil {
			grid.Header = cells
			continue
		}
		gridRow := make([]Cell, len(cells))
		for i, v := range cells {
			gridRow[i] = ValueCell(v)
		}
		grid.Cells = append(grid.Cells, gridRow)
	}

	if len(grid.Cells) == 0 {
		return nil, ErrNoTable
	}
	return grid, nil
}

// nodeText extracts the text content of an AST node.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		buf.Write(child.Text(source))
	}
	return strings.TrimSpace(buf.String())
}

// stripFences removes a surrounding ``` code fence, which models routinely
// wrap tabular answers in despite instructions.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
