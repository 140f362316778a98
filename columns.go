package tablesaf

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// placeholderName returns the positional label used for a blank column: the
// first column is assumed to be the metric/label column, the rest are
// numbered.
func placeholderName(index int) string {
	if index == 0 {
		return "Metric"
	}
	return fmt.Sprintf("Column_%d", index)
}

// canonicalName maps one raw label to its canonical form: NFKC-normalized,
// trimmed, whitespace runs collapsed to underscores, and every character that
// is not a word character removed. Labels that come out empty get a
// positional placeholder.
func canonicalName(raw string, index int) string {
	name := strings.TrimSpace(norm.NFKC.String(raw))
	if name == "" || strings.EqualFold(name, "nan") {
		return placeholderName(index)
	}

	name = strings.Join(strings.Fields(name), "_")
	name = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)

	if name == "" {
		return placeholderName(index)
	}
	return name
}

// normalizeColumns canonicalizes and uniquifies a full set of column labels.
// For repeated names the first occurrence keeps the plain name and later ones
// get _1, _2, ... suffixes in order of appearance. The returned set is always
// unique and non-empty.
func normalizeColumns(raw []string) []string {
	names := make([]string, len(raw))
	for i, r := range raw {
		names[i] = canonicalName(r, i)
	}

	taken := make(map[string]bool, len(names))
	next := make(map[string]int, len(names))
	for i, name := range names {
		if !taken[name] {
			taken[name] = true
			continue
		}
		n := next[name] + 1
		candidate := fmt.Sprintf("%s_%d", name, n)
		for taken[candidate] {
			n++
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		next[name] = n
		names[i] = candidate
		taken[candidate] = true
	}
	return names
}
