package tablesaf

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// RejectReason identifies why the candidate filter dropped a block.
type RejectReason string

const (
	// RejectTooSmall marks a block below the minimum 2x2 shape.
	RejectTooSmall RejectReason = "too_small"
	// RejectMostlyEmpty marks a ghost table: mostly empty cells.
	RejectMostlyEmpty RejectReason = "mostly_empty"
	// RejectOversizedCell marks a paragraph block misread as a table.
	RejectOversizedCell RejectReason = "oversized_cell"
	// RejectNoDigits marks a block with no numeric content anywhere.
	RejectNoDigits RejectReason = "no_digits"
	// RejectBadFragment marks a PDF slicing artifact: a header cell chopped
	// mid-word by column-boundary misdetection.
	RejectBadFragment RejectReason = "bad_fragment"
)

// CandidateTable is a raw extracted block awaiting the accept/reject
// decision. It lives only long enough to be promoted to sanitization input or
// dropped.
type CandidateTable struct {
	Grid *Grid

	// Score is the fill ratio of the block, kept for logging and ranking.
	Score float64
}

// FilterDecision is the typed outcome of the candidate filter. "Not a table"
// is a normal result here, not an error.
type FilterDecision struct {
	Accepted bool
	Reason   RejectReason
	Detail   string
}

// CandidateFilter decides whether a raw extracted block is a genuine data
// table before it reaches the sanitization pipeline.
type CandidateFilter struct {
	cfg     FilterConfig
	log     *zap.Logger
	metrics *Metrics
}

// NewCandidateFilter creates a filter with the given rules. A nil logger
// disables logging.
func NewCandidateFilter(cfg FilterConfig, logger *zap.Logger) *CandidateFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateFilter{cfg: cfg, log: logger}
}

// WithMetrics attaches accept/reject counters to the filter.
func (f *CandidateFilter) WithMetrics(m *Metrics) *CandidateFilter {
	f.metrics = m
	return f
}

// Check applies every rejection rule in order; all must pass for the block to
// be accepted. Rejections are logged and counted, never surfaced as errors.
func (f *CandidateFilter) Check(c CandidateTable) FilterDecision {
	decision := f.check(c)
	if decision.Accepted {
		if f.metrics != nil {
			f.metrics.CandidatesAccepted.Inc()
		}
		return decision
	}

	f.log.Debug("candidate rejected",
		zap.String("source", c.Grid.Source),
		zap.Int("page", c.Grid.Page),
		zap.Int("table", c.Grid.Index),
		zap.String("reason", string(decision.Reason)),
		zap.String("detail", decision.Detail))
	if f.metrics != nil {
		f.metrics.CandidatesRejected.WithLabelValues(string(decision.Reason)).Inc()
	}
	return decision
}

func (f *CandidateFilter) check(c CandidateTable) FilterDecision {
	g := c.Grid

	if g.Rows() < f.cfg.MinRows || g.Cols() < f.cfg.MinCols {
		return FilterDecision{Reason: RejectTooSmall}
	}

	if ratio := g.emptyRatio(); ratio > f.cfg.MaxEmptyRatio {
		return FilterDecision{Reason: RejectMostlyEmpty}
	}

	if first := g.At(0, 0).String(); len(first) > f.cfg.MaxFirstCellLen {
		return FilterDecision{Reason: RejectOversizedCell}
	}

	if f.cfg.RequireDigit && !g.hasDigit() {
		return FilterDecision{Reason: RejectNoDigits}
	}

	if f.cfg.CheckFragments {
		if detail, bad := f.findBadFragment(g); bad {
			return FilterDecision{Reason: RejectBadFragment, Detail: detail}
		}
	}

	return FilterDecision{Accepted: true}
}

// findBadFragment scans for column-boundary misdetection artifacts: cells
// beginning with a known chopped-label fragment in any row, and standalone
// lowercase word remnants sitting where a header is expected.
func (f *CandidateFilter) findBadFragment(g *Grid) (string, bool) {
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cell := strings.TrimSpace(g.At(r, c).String())
			if cell == "" {
				continue
			}
			// Prefix match: a chopped cell starts mid-word ("egory"), while an
			// intact label ("Category") merely contains the fragment.
			lower := strings.ToLower(cell)
			for _, frag := range f.cfg.BadFragments {
				if strings.HasPrefix(lower, frag) {
					return frag, true
				}
			}
		}
	}

	for c := 0; c < g.Cols(); c++ {
		cell := strings.TrimSpace(g.At(0, c).String())
		if isLowercaseRemnant(cell) {
			return cell, true
		}
	}
	return "", false
}

// isLowercaseRemnant reports whether a header cell is a single alphabetic
// token longer than 3 runes starting with a lowercase letter. Real header
// labels are capitalized or multi-word; a lone lowercase word is the tail of
// a label sliced by a misplaced column boundary.
func isLowercaseRemnant(cell string) bool {
	if cell == "" || strings.ContainsAny(cell, " \t") {
		return false
	}
	runes := []rune(cell)
	if len(runes) <= 3 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return unicode.IsLower(runes[0])
}

// NewCandidate wraps a grid with its fill ratio score.
func NewCandidate(g *Grid) CandidateTable {
	return CandidateTable{Grid: g, Score: 1 - g.emptyRatio()}
}
