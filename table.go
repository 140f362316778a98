package tablesaf

import (
	"encoding/json"
	"strings"
)

// ColumnKind is the resolved type of a sanitized column. The pipeline decides
// the kind once per column; later consumers switch over it instead of
// re-inspecting individual values.
type ColumnKind int

const (
	// ColumnText holds trimmed string values.
	ColumnText ColumnKind = iota
	// ColumnNumeric holds floating-point values; unparsable cells are null.
	ColumnNumeric
)

// String returns the column kind name used in serialized output.
func (k ColumnKind) String() string {
	if k == ColumnNumeric {
		return "numeric"
	}
	return "text"
}

// Column is one named, typed column of a sanitized table. For numeric columns
// every cell is CellNumber or CellEmpty; for text columns every cell is
// CellText or CellEmpty.
type Column struct {
	Name  string
	Kind  ColumnKind
	Cells []Cell
}

// Table is the sanitized output of the pipeline: uniquely named, typed
// columns with values aligned by row index. Tables are the only artifact that
// survives into downstream analysis.
type Table struct {
	// Source and Page carry the provenance of the grid the table came from.
	Source string
	Page   int

	Columns []Column
}

// Rows returns the table's row count.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Markdown renders the table as a GitHub-style markdown table. This is the
// canonical serialization handed to report components, and the form the
// extraction firewall scans for numeric content.
func (t *Table) Markdown() string {
	if len(t.Columns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("|")
	for _, col := range t.Columns {
		b.WriteString(" ")
		b.WriteString(col.Name)
		b.WriteString(" |")
	}
	b.WriteString("\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for r := 0; r < t.Rows(); r++ {
		b.WriteString("|")
		for _, col := range t.Columns {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(col.Cells[r].String(), "|", "\\|"))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// tableJSON is the wire shape of a serialized table.
type tableJSON struct {
	Source  string       `json:"source,omitempty"`
	Page    int          `json:"page,omitempty"`
	Columns []columnJSON `json:"columns"`
}

type columnJSON struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Values []any  `json:"values"`
}

// MarshalJSON serializes the table with one entry per column. Numeric nulls
// and empty text cells serialize as JSON null.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Source: t.Source, Page: t.Page, Columns: make([]columnJSON, len(t.Columns))}
	for i, col := range t.Columns {
		cj := columnJSON{Name: col.Name, Kind: col.Kind.String(), Values: make([]any, len(col.Cells))}
		for j, cell := range col.Cells {
			switch cell.Kind {
			case CellNumber:
				cj.Values[j] = cell.Number
			case CellText:
				cj.Values[j] = cell.Text
			default:
				cj.Values[j] = nil
			}
		}
		out.Columns[i] = cj
	}
	return json.Marshal(out)
}
