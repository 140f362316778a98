package tablesaf

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFLayoutConfig controls the geometric heuristics used to rebuild rows and
// columns from absolutely positioned PDF text fragments.
type PDFLayoutConfig struct {
	// RowTolerance is the vertical distance (points) within which fragments
	// belong to the same row. Default: 3.0.
	RowTolerance float64

	// CellGap is the horizontal gap (points) above which adjacent fragments
	// on a row are separate cells rather than parts of one. Default: 8.0.
	CellGap float64

	// ColumnTolerance is the horizontal distance (points) within which cell
	// start positions across rows are considered the same column.
	// Default: 12.0.
	ColumnTolerance float64

	// MinTableRows is the minimum run of multi-cell rows that counts as a
	// structural table. Default: 2.
	MinTableRows int
}

// DefaultPDFLayoutConfig returns the recommended layout thresholds.
func DefaultPDFLayoutConfig() PDFLayoutConfig {
	return PDFLayoutConfig{
		RowTolerance:    3.0,
		CellGap:         8.0,
		ColumnTolerance: 12.0,
		MinTableRows:    2,
	}
}

// PDFSource turns a PDF into per-page narrative text plus candidate grids
// sliced out of aligned text fragments. Structural slicing is best-effort:
// pages whose tables defeat it keep their raw text so the AI reconstruction
// path still has ground truth to work against.
type PDFSource struct {
	// Layout overrides the geometric thresholds. Zero value uses defaults.
	Layout PDFLayoutConfig
}

// CanProcess returns true for PDF content types or .pdf extensions.
func (ps *PDFSource) CanProcess(contentType, path string) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

func (ps *PDFSource) layout() PDFLayoutConfig {
	cfg := ps.Layout
	if cfg.RowTolerance == 0 {
		cfg.RowTolerance = 3.0
	}
	if cfg.CellGap == 0 {
		cfg.CellGap = 8.0
	}
	if cfg.ColumnTolerance == 0 {
		cfg.ColumnTolerance = 12.0
	}
	if cfg.MinTableRows == 0 {
		cfg.MinTableRows = 2
	}
	return cfg
}

// Extract reads every page and returns its text and structural table grids.
func (ps *PDFSource) Extract(path string, content []byte) (*Extraction, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	cfg := ps.layout()
	extraction := &Extraction{Source: path}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		p := reader.Page(pageNum)
		if p.V.IsNull() {
			continue
		}

		rows := groupPageRows(p.Content().Text, cfg)
		if len(rows) == 0 {
			continue
		}

		page := PageContent{
			Source: path,
			Page:   pageNum,
			Text:   rowsText(rows),
		}
		for i, block := range sliceTableRuns(rows, cfg) {
			grid := runGrid(block, cfg)
			if grid == nil {
				continue
			}
			grid.Source = path
			grid.Page = pageNum
			grid.Index = i
			page.Grids = append(page.Grids, grid)
		}

		extraction.Pages = append(extraction.Pages, page)
	}
	return extraction, nil
}

// pdfCell is one reassembled cell on a text row: merged fragments plus the
// left edge used for column assignment.
type pdfCell struct {
	x    float64
	text string
}

// pdfRow is one horizontal line of reassembled cells.
type pdfRow struct {
	y     float64
	cells []pdfCell
}

// groupPageRows clusters positioned fragments into rows by Y, then merges
// horizontally adjacent fragments into cells. PDF Y grows upward, so rows are
// emitted top of page first.
func groupPageRows(texts []pdf.Text, cfg PDFLayoutConfig) []pdfRow {
	frags := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			frags = append(frags, t)
		}
	}
	if len(frags) == 0 {
		return nil
	}

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Y != frags[j].Y {
			return frags[i].Y > frags[j].Y
		}
		return frags[i].X < frags[j].X
	})

	var rows []pdfRow
	var current []pdf.Text
	currentY := frags[0].Y

	flush := func() {
		if len(current) > 0 {
			rows = append(rows, mergeRowCells(current, cfg))
			current = nil
		}
	}

	for _, f := range frags {
		if math.Abs(f.Y-currentY) > cfg.RowTolerance {
			flush()
			currentY = f.Y
		}
		current = append(current, f)
	}
	flush()
	return rows
}

// mergeRowCells joins fragments whose horizontal gap is below CellGap into
// single cells, left to right.
func mergeRowCells(frags []pdf.Text, cfg PDFLayoutConfig) pdfRow {
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	row := pdfRow{y: frags[0].Y}
	var cur pdfCell
	var curEnd float64

	for i, f := range frags {
		if i == 0 {
			cur = pdfCell{x: f.X, text: f.S}
			curEnd = f.X + f.W
			continue
		}
		if f.X-curEnd <= cfg.CellGap {
			cur.text += f.S
			curEnd = f.X + f.W
			continue
		}
		cur.text = strings.TrimSpace(cur.text)
		if cur.text != "" {
			row.cells = append(row.cells, cur)
		}
		cur = pdfCell{x: f.X, text: f.S}
		curEnd = f.X + f.W
	}
	cur.text = strings.TrimSpace(cur.text)
	if cur.text != "" {
		row.cells = append(row.cells, cur)
	}
	return row
}

// rowsText renders reassembled rows as plain page text, cells separated by
// spaces. This is the ground truth the extraction firewall scans.
func rowsText(rows []pdfRow) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		for j, c := range row.cells {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(c.text)
		}
	}
	return b.String()
}

// sliceTableRuns finds consecutive runs of multi-cell rows, the geometric
// signature of a table.
func sliceTableRuns(rows []pdfRow, cfg PDFLayoutConfig) [][]pdfRow {
	var runs [][]pdfRow
	var current []pdfRow

	flush := func() {
		if len(current) >= cfg.MinTableRows {
			runs = append(runs, current)
		}
		current = nil
	}

	for _, row := range rows {
		if len(row.cells) >= 2 {
			current = append(current, row)
			continue
		}
		flush()
	}
	flush()
	return runs
}

// runGrid aligns a run of multi-cell rows onto shared column positions and
// returns the resulting raw grid. Rows whose cells drift beyond
// ColumnTolerance land in the nearest column; collisions keep the first
// value.
func runGrid(run []pdfRow, cfg PDFLayoutConfig) *Grid {
	columns := clusterColumns(run, cfg)
	if len(columns) < 2 {
		return nil
	}

	cells := make([][]Cell, len(run))
	for r, row := range run {
		cells[r] = make([]Cell, len(columns))
		for _, c := range row.cells {
			idx := nearestColumn(columns, c.x)
			if cells[r][idx].IsEmpty() {
				cells[r][idx] = ValueCell(c.text)
			}
		}
	}
	return &Grid{Cells: cells}
}

// clusterColumns collects distinct cell start positions across a run,
// merging starts within ColumnTolerance.
func clusterColumns(run []pdfRow, cfg PDFLayoutConfig) []float64 {
	var xs []float64
	for _, row := range run {
		for _, c := range row.cells {
			xs = append(xs, c.x)
		}
	}
	sort.Float64s(xs)

	var columns []float64
	for _, x := range xs {
		if len(columns) == 0 || x-columns[len(columns)-1] > cfg.ColumnTolerance {
			columns = append(columns, x)
		}
	}
	return columns
}

// nearestColumn returns the index of the column position closest to x.
func nearestColumn(columns []float64, x float64) int {
	best := 0
	bestDist := math.Abs(columns[0] - x)
	for i, c := range columns[1:] {
		if d := math.Abs(c - x); d < bestDist {
			bestDist = d
			best = i + 1
		}
	}
	return best
}
