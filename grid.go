package tablesaf

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CellKind identifies the raw value carried by a Cell.
type CellKind int

const (
	// CellEmpty marks a cell with no value (blank, null, or missing).
	CellEmpty CellKind = iota
	// CellText marks a cell carrying a string value.
	CellText
	// CellNumber marks a cell carrying a numeric value.
	CellNumber
)

// Cell is a single untyped grid value. Loaders produce mostly text cells;
// the type enforcer resolves columns to numeric or text later.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell returns a text cell, or an empty cell if s is blank.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// ValueCell infers the cell kind from a raw string: clean numeric literals
// become number cells, everything else stays text. Loaders use this so the
// header locator can tell label rows (strings) from data rows (numbers);
// formatted figures like "1,200.50" stay text until type enforcement.
func ValueCell(s string) Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Cell{}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return NumberCell(v)
	}
	return Cell{Kind: CellText, Text: s}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String serializes the cell value. Empty cells serialize to "".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// hasDigit reports whether the serialized cell contains any digit.
func (c Cell) hasDigit() bool {
	if c.Kind == CellNumber {
		return true
	}
	return strings.ContainsFunc(c.Text, unicode.IsDigit)
}

// Grid is a raw 2-D block of cell values extracted from one region of a
// document, before any header interpretation. A Grid is treated as immutable
// once built: the sanitization pipeline copies what it needs and never writes
// back into the source grid.
type Grid struct {
	// Source identifies the originating document (path or logical id).
	Source string

	// Page is the 1-based page or sheet index the grid came from.
	Page int

	// Index is the 0-based table index within the page, for provenance when a
	// page carries several tables.
	Index int

	// Header holds column labels already resolved by an upstream parser
	// (e.g. a markdown or HTML table with an explicit header row). Empty for
	// grids that still need header detection.
	Header []string

	// Cells holds the grid rows. Rows may be ragged; readers must use At.
	Cells [][]Cell
}

// GridFromStrings builds a Grid from raw string rows with cell kinds
// inferred. Blank strings become empty cells, numeric literals become number
// cells. This is the common constructor for loaders that only see text.
func GridFromStrings(source string, page int, rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = ValueCell(v)
		}
	}
	return &Grid{Source: source, Page: page, Cells: cells}
}

// Rows returns the number of rows in the grid.
func (g *Grid) Rows() int {
	return len(g.Cells)
}

// Cols returns the widest row length in the grid.
func (g *Grid) Cols() int {
	max := len(g.Header)
	for _, row := range g.Cells {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// At returns the cell at (row, col), or an empty cell when the coordinates
// fall outside the grid or beyond a ragged row.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g.Cells) {
		return Cell{}
	}
	r := g.Cells[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// emptyRatio returns the fraction of empty cells over the full rectangular
// extent of the grid. An empty grid counts as fully empty.
func (g *Grid) emptyRatio() float64 {
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return 1.0
	}
	empty := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(r, c).IsEmpty() {
				empty++
			}
		}
	}
	return float64(empty) / float64(rows*cols)
}

// hasDigit reports whether any cell in the grid contains a digit.
func (g *Grid) hasDigit() bool {
	for _, h := range g.Header {
		if strings.ContainsFunc(h, unicode.IsDigit) {
			return true
		}
	}
	for _, row := range g.Cells {
		for _, c := range row {
			if c.hasDigit() {
				return true
			}
		}
	}
	return false
}
