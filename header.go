package tablesaf

import (
	"strconv"
	"strings"
)

// textScore counts the cells in a row that look like header labels: non-empty
// strings that are not a literal "nan". Real headers are dense with short
// label strings; metadata banners are usually one long string or padding.
func textScore(row []Cell) int {
	score := 0
	for _, c := range row {
		if c.Kind != CellText {
			continue
		}
		trimmed := strings.TrimSpace(c.Text)
		if trimmed == "" || strings.EqualFold(trimmed, "nan") {
			continue
		}
		score++
	}
	return score
}

// looksResolved reports whether an upstream-supplied header already carries
// valid field names: more than half of the labels are non-numeric,
// non-placeholder strings. Such headers are kept as-is rather than re-detected.
func looksResolved(labels []string) bool {
	if len(labels) == 0 {
		return false
	}
	valid := 0
	for _, l := range labels {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if lower == "nan" || strings.Contains(lower, "unnamed") {
			continue
		}
		if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
			continue
		}
		valid++
	}
	return valid*2 > len(labels)
}

// locateHeader finds the header row within the first HeaderScanRows rows of
// the grid and returns the column names plus the remaining data rows,
// rectangularized to the grid width.
//
// When no row reaches MinHeaderScore the grid keeps a positional column
// scheme (index digits) and nothing is dropped; promoted is false so the
// caller can emit a diagnostic instead of failing.
func locateHeader(g *Grid, cfg SanitizeConfig) (names []string, rows [][]Cell, promoted bool, headerRow int) {
	width := g.Cols()

	rect := func(from int) [][]Cell {
		out := make([][]Cell, 0, g.Rows()-from)
		for r := from; r < g.Rows(); r++ {
			row := make([]Cell, width)
			for c := 0; c < width; c++ {
				row[c] = g.At(r, c)
			}
			out = append(out, row)
		}
		return out
	}

	if looksResolved(g.Header) {
		names = make([]string, width)
		for i := range names {
			if i < len(g.Header) {
				names[i] = strings.TrimSpace(g.Header[i])
			}
		}
		return names, rect(0), true, -1
	}

	bestIdx := 0
	maxScore := -1
	scan := cfg.HeaderScanRows
	if g.Rows() < scan {
		scan = g.Rows()
	}
	for i := 0; i < scan; i++ {
		row := make([]Cell, width)
		for c := 0; c < width; c++ {
			row[c] = g.At(i, c)
		}
		// Strictly greater keeps the earliest row on ties, so a banner above
		// the true header only wins if it actually scores higher.
		if s := textScore(row); s > maxScore {
			maxScore = s
			bestIdx = i
		}
	}

	if maxScore >= cfg.MinHeaderScore {
		names = make([]string, width)
		for c := 0; c < width; c++ {
			names[c] = strings.TrimSpace(g.At(bestIdx, c).String())
		}
		return names, rect(bestIdx + 1), true, bestIdx
	}

	names = make([]string, width)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names, rect(0), false, -1
}

// isUnnamed reports whether a promoted column label is a "no name"
// placeholder.
func isUnnamed(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	return lower == "nan" || strings.Contains(lower, "unnamed")
}

// flattenMultiHeader detects a second header row beneath freshly promoted
// column names and merges the two levels into single names. The second row is
// consumed from the data. Triggered when more than UnnamedRatio of the
// promoted names are placeholders.
func flattenMultiHeader(names []string, rows [][]Cell, cfg SanitizeConfig) ([]string, [][]Cell) {
	if len(rows) < 2 || len(names) == 0 {
		return names, rows
	}

	unnamed := 0
	for _, n := range names {
		if isUnnamed(n) {
			unnamed++
		}
	}
	if unnamed == 0 || float64(unnamed)/float64(len(names)) <= cfg.UnnamedRatio {
		return names, rows
	}

	second := rows[0]
	merged := make([]string, len(names))
	for i := range names {
		upper := ""
		if !isUnnamed(names[i]) {
			upper = strings.TrimSpace(names[i])
		}
		lower := ""
		if i < len(second) {
			v := strings.TrimSpace(second[i].String())
			if !strings.EqualFold(v, "nan") {
				lower = v
			}
		}

		switch {
		case upper != "" && lower != "":
			merged[i] = upper + "_" + lower
		case lower != "":
			merged[i] = lower
		default:
			merged[i] = upper
		}
	}

	return merged, rows[1:]
}
