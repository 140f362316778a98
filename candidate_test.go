package tablesaf

import (
	"strings"
	"testing"
)

func TestCandidateFilter(t *testing.T) {
	pdfFilter := NewCandidateFilter(DefaultPDFFilterConfig(), nil)
	docFilter := NewCandidateFilter(DefaultDocFilterConfig(), nil)

	t.Run("genuine table accepted", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{"Category", "Quantity", "Total"},
			{"Widgets", "10", "100"},
			{"Gadgets", "20", "400"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if !d.Accepted {
			t.Errorf("rejected genuine table: %s (%s)", d.Reason, d.Detail)
		}
	})

	t.Run("single row rejected", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{"a", "b", "c", "d", "e"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if d.Accepted || d.Reason != RejectTooSmall {
			t.Errorf("decision = %+v, want rejection too_small", d)
		}
	})

	t.Run("single column rejected", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{"alpha"}, {"beta"}, {"gamma"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if d.Accepted || d.Reason != RejectTooSmall {
			t.Errorf("decision = %+v, want rejection too_small", d)
		}
	})

	t.Run("ghost table rejected", func(t *testing.T) {
		rows := make([][]string, 5)
		for i := range rows {
			rows[i] = make([]string, 5)
		}
		rows[0][0] = "Data 1"

		d := pdfFilter.Check(NewCandidate(GridFromStrings("doc.pdf", 1, rows)))
		if d.Accepted || d.Reason != RejectMostlyEmpty {
			t.Errorf("decision = %+v, want rejection mostly_empty", d)
		}
	})

	t.Run("oversized first cell rejected", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{strings.Repeat("word ", 300), "1"},
			{"x", "2"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if d.Accepted || d.Reason != RejectOversizedCell {
			t.Errorf("decision = %+v, want rejection oversized_cell", d)
		}
	})

	t.Run("no digits rejected", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{"alpha", "beta"},
			{"gamma", "delta"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if d.Accepted || d.Reason != RejectNoDigits {
			t.Errorf("decision = %+v, want rejection no_digits", d)
		}
	})

	t.Run("sliced header fragment rejected", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{"Cat", "egory", "Total"},
			{"Widgets", "10", "100"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if d.Accepted || d.Reason != RejectBadFragment {
			t.Errorf("decision = %+v, want rejection bad_fragment", d)
		}
	})

	t.Run("lowercase remnant in header rejected", func(t *testing.T) {
		g := GridFromStrings("doc.pdf", 1, [][]string{
			{"Item", "ntity", "Total"},
			{"Widgets", "10", "100"},
		})

		d := pdfFilter.Check(NewCandidate(g))
		if d.Accepted || d.Reason != RejectBadFragment {
			t.Errorf("decision = %+v, want rejection bad_fragment", d)
		}
	})

	t.Run("document filter skips fragment rules", func(t *testing.T) {
		g := GridFromStrings("doc.docx", 1, [][]string{
			{"Item", "ntity", "Total"},
			{"Widgets", "10", "100"},
		})

		d := docFilter.Check(NewCandidate(g))
		if !d.Accepted {
			t.Errorf("document tables must not be subject to PDF slicing rules, got %+v", d)
		}
	})

	t.Run("document filter tolerates more padding", func(t *testing.T) {
		// 21 of 25 empty = 0.84: above the PDF bound, below the document bound.
		rows := make([][]string, 5)
		for i := range rows {
			rows[i] = make([]string, 5)
		}
		rows[0][0] = "Sales"
		rows[0][1] = "2024"
		rows[1][0] = "Total"
		rows[1][1] = "900"

		c := NewCandidate(GridFromStrings("doc.docx", 1, rows))
		if d := pdfFilter.Check(c); d.Accepted {
			t.Error("PDF filter accepted a mostly empty block")
		}
		if d := docFilter.Check(c); !d.Accepted {
			t.Errorf("document filter rejected tolerable padding: %+v", d)
		}
	})
}

func TestIsLowercaseRemnant(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"ntity", true},
		{"escription", true},
		{"Quantity", false},
		{"Unit Price", false},
		{"abc", false},
		{"x42z", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			if got := isLowercaseRemnant(tt.cell); got != tt.want {
				t.Errorf("isLowercaseRemnant(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestCandidateScore(t *testing.T) {
	g := GridFromStrings("doc.pdf", 1, [][]string{
		{"a", "1"},
		{"b", ""},
	})

	c := NewCandidate(g)
	if c.Score != 0.75 {
		t.Errorf("Score = %v, want 0.75", c.Score)
	}
}
