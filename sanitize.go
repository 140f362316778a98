package tablesaf

import (
	"go.uber.org/zap"
)

// Sanitizer is the table sanitization pipeline. It statistically locates the
// real header row, flattens multi-row headers, canonicalizes and deduplicates
// column names, repairs merged cells, and coerces column types, without any
// AI assistance.
//
// Clean never mutates the input grid and is deterministic: the same grid
// always yields a byte-identical table.
type Sanitizer struct {
	cfg     SanitizeConfig
	log     *zap.Logger
	metrics *Metrics
}

// NewSanitizer creates a sanitizer with the given thresholds. A nil logger
// disables logging.
func NewSanitizer(cfg SanitizeConfig, logger *zap.Logger) *Sanitizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sanitizer{cfg: cfg, log: logger}
}

// WithMetrics attaches pipeline counters to the sanitizer.
func (s *Sanitizer) WithMetrics(m *Metrics) *Sanitizer {
	s.metrics = m
	return s
}

// Clean runs the full pipeline on a raw grid and returns the typed table.
// Stage order matters: each stage relies on the invariants of the previous
// one (names must be unique before columns are addressed individually, merged
// cells must be repaired before type votes are counted).
func (s *Sanitizer) Clean(g *Grid) *Table {
	names, rows, promoted, headerRow := locateHeader(g, s.cfg)
	if promoted {
		if headerRow >= 0 {
			s.log.Debug("header promoted",
				zap.String("source", g.Source),
				zap.Int("page", g.Page),
				zap.Int("header_row", headerRow),
				zap.Int("dropped_rows", headerRow))
		}
	} else {
		s.log.Warn("no clear header row found, keeping positional columns",
			zap.String("source", g.Source),
			zap.Int("page", g.Page))
	}

	names, rows = flattenMultiHeader(names, rows, s.cfg)
	names = normalizeColumns(names)

	cols := toColumns(rows, len(names))
	for i := range cols {
		if repairMergedCells(cols[i], s.cfg) {
			s.log.Debug("forward-filled merged cells",
				zap.String("source", g.Source),
				zap.String("column", names[i]))
		}
	}

	table := &Table{
		Source:  g.Source,
		Page:    g.Page,
		Columns: make([]Column, len(cols)),
	}
	for i := range cols {
		kind := enforceColumnType(cols[i], s.cfg)
		table.Columns[i] = Column{Name: names[i], Kind: kind, Cells: cols[i]}
	}

	dropEmptyRows(table)

	s.log.Info("grid sanitized",
		zap.String("source", g.Source),
		zap.Int("page", g.Page),
		zap.Strings("columns", names),
		zap.Int("rows", table.Rows()))
	if s.metrics != nil {
		s.metrics.TablesSanitized.Inc()
	}
	return table
}

// toColumns transposes rectangular rows into column-major cell slices.
func toColumns(rows [][]Cell, width int) [][]Cell {
	cols := make([][]Cell, width)
	for c := 0; c < width; c++ {
		cols[c] = make([]Cell, len(rows))
		for r := range rows {
			if c < len(rows[r]) {
				cols[c][r] = rows[r][c]
			}
		}
	}
	return cols
}

// dropEmptyRows removes rows whose cells are all empty across every column.
func dropEmptyRows(t *Table) {
	if len(t.Columns) == 0 {
		return
	}
	total := t.Rows()
	keep := make([]int, 0, total)
	for r := 0; r < total; r++ {
		empty := true
		for _, col := range t.Columns {
			if !col.Cells[r].IsEmpty() {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, r)
		}
	}
	if len(keep) == total {
		return
	}
	for i := range t.Columns {
		kept := make([]Cell, len(keep))
		for j, r := range keep {
			kept[j] = t.Columns[i].Cells[r]
		}
		t.Columns[i].Cells = kept
	}
}
