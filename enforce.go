package tablesaf

import (
	"regexp"
	"strconv"
	"strings"
)

// numberToken matches the first contiguous signed number-like token in a
// string, after thousands separators have been stripped.
var numberToken = regexp.MustCompile(`-?\d+\.?\d*`)

// parseNumericCell attempts numeric interpretation of a single cell.
// Currency symbols, thousands separators and trailing units are treated as
// ignorable noise: "1,234.50 Cr" parses as 1234.50. Empty cells never parse.
func parseNumericCell(c Cell) (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellEmpty:
		return 0, false
	}

	s := strings.ReplaceAll(c.Text, ",", "")
	token := numberToken.FindString(s)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// enforceColumnType classifies a column as numeric or text and coerces its
// cells in place. A column is numeric when strictly more than NumericRatio of
// its values parse; the minority that does not parse becomes null rather than
// downgrading the whole column. Text columns get stringified, trimmed values.
func enforceColumnType(cells []Cell, cfg SanitizeConfig) ColumnKind {
	if len(cells) == 0 {
		return ColumnText
	}

	parsed := make([]float64, len(cells))
	ok := make([]bool, len(cells))
	successes := 0
	for i, c := range cells {
		parsed[i], ok[i] = parseNumericCell(c)
		if ok[i] {
			successes++
		}
	}

	if float64(successes)/float64(len(cells)) > cfg.NumericRatio {
		for i := range cells {
			if ok[i] {
				cells[i] = NumberCell(parsed[i])
			} else {
				cells[i] = Cell{}
			}
		}
		return ColumnNumeric
	}

	for i := range cells {
		if cells[i].IsEmpty() {
			continue
		}
		cells[i] = TextCell(strings.TrimSpace(cells[i].String()))
	}
	return ColumnText
}
