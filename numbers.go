package tablesaf

import (
	"regexp"
	"sort"
	"strconv"
)

// thousandsSep matches a comma used as a thousands separator, i.e. a comma
// with digits on both sides.
var thousandsSep = regexp.MustCompile(`(\d),(\d)`)

// numericLiteral matches a signed decimal literal.
var numericLiteral = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// extractNumbers collects the set of numeric literals in a text, with
// thousands separators handled: "1,234.50" contributes 1234.5, not 1 and
// 234.5. The set is keyed by value, so "300" and "300.0" collide as intended.
func extractNumbers(text string) map[float64]struct{} {
	cleaned := thousandsSep.ReplaceAllString(text, "$1$2")
	// A second pass finishes groups the first one skipped ("1,234,567").
	cleaned = thousandsSep.ReplaceAllString(cleaned, "$1$2")

	set := make(map[float64]struct{})
	for _, token := range numericLiteral.FindAllString(cleaned, -1) {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// sortedValues returns the set's values in ascending order.
func sortedValues(set map[float64]struct{}) []float64 {
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
