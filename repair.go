package tablesaf

// isTextish reports whether a column still carries string content, i.e. it
// has at least one text cell among its non-empty values. Purely numeric
// columns are never forward-filled.
func isTextish(cells []Cell) bool {
	for _, c := range cells {
		if c.Kind == CellText {
			return true
		}
	}
	return false
}

// nullRatio returns the fraction of empty cells in the column.
func nullRatio(cells []Cell) float64 {
	if len(cells) == 0 {
		return 0
	}
	empty := 0
	for _, c := range cells {
		if c.IsEmpty() {
			empty++
		}
	}
	return float64(empty) / float64(len(cells))
}

// repairMergedCells forward-fills a text column whose null fraction strictly
// exceeds FillRatio. Nulls below that bound are treated as genuine gaps, not
// merge artifacts, and left alone. Returns whether a fill was applied.
func repairMergedCells(cells []Cell, cfg SanitizeConfig) bool {
	if !isTextish(cells) {
		return false
	}
	if nullRatio(cells) <= cfg.FillRatio {
		return false
	}

	var last Cell
	filled := false
	for i := range cells {
		if cells[i].IsEmpty() {
			if !last.IsEmpty() {
				cells[i] = last
				filled = true
			}
			continue
		}
		last = cells[i]
	}
	return filled
}
