package tablesaf

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AcquisitionState is one state of the PDF table-acquisition path. The path
// is a bounded machine, not exception-driven control flow: every page ends in
// exactly one terminal state.
type AcquisitionState int

const (
	// StateTextExtracted is the initial state: page text is available.
	StateTextExtracted AcquisitionState = iota
	// StateStructuralAttempt covers structural table extraction + filtering.
	StateStructuralAttempt
	// StateAIAttempt covers the model-backed reconstruction call.
	StateAIAttempt
	// StateFirewallCheck covers numeric validation of the reconstruction.
	StateFirewallCheck

	// StateAcceptedStructural is terminal: a structural table passed the
	// candidate filter and was sanitized.
	StateAcceptedStructural
	// StateAcceptedAI is terminal: an AI reconstruction passed the firewall.
	StateAcceptedAI
	// StateSkipped is terminal: the page shows no data potential, no AI call
	// was made.
	StateSkipped
	// StateRejected is terminal: every path failed; no table for this page.
	StateRejected
)

// String returns the state name.
func (s AcquisitionState) String() string {
	switch s {
	case StateTextExtracted:
		return "TEXT_EXTRACTED"
	case StateStructuralAttempt:
		return "STRUCTURAL_ATTEMPT"
	case StateAIAttempt:
		return "AI_ATTEMPT"
	case StateFirewallCheck:
		return "FIREWALL_CHECK"
	case StateAcceptedStructural:
		return "ACCEPTED_STRUCTURAL"
	case StateAcceptedAI:
		return "ACCEPTED_AI"
	case StateSkipped:
		return "SKIPPED"
	case StateRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state ends the acquisition.
func (s AcquisitionState) Terminal() bool {
	switch s {
	case StateAcceptedStructural, StateAcceptedAI, StateSkipped, StateRejected:
		return true
	}
	return false
}

// PageContent is one extracted page: its raw text plus whatever structural
// table grids the loader managed to slice out of it.
type PageContent struct {
	Source string
	Page   int
	Text   string
	Grids  []*Grid
}

// PageResult is the terminal outcome of acquiring tables from one page.
type PageResult struct {
	State AcquisitionState
	Table *Table

	// Hallucinated carries the offending values when the firewall rejected
	// an AI reconstruction.
	Hallucinated []float64

	// Reason explains SKIPPED and REJECTED outcomes.
	Reason string
}

// reconstructPrompt asks the model for a strict markdown table and nothing
// else. The output is still never trusted: it goes through the firewall.
const reconstructPrompt = `The following text was extracted from one page of a business document.
It contains tabular data whose layout was lost during extraction.

Reconstruct the table as a GitHub-flavored markdown table. Use the first
line of labels as the header row. Copy every number exactly as it appears
in the text. Do not invent, estimate, or total any value. Output only the
markdown table.

TEXT:
`

// Acquirer runs the table-acquisition path for PDF pages: structural
// extraction first, then the firewalled AI fallback. All stages fail closed;
// the worst case for a page is "no table recovered".
type Acquirer struct {
	filter    *CandidateFilter
	sanitizer *Sanitizer
	firewall  *Firewall
	gen       TextGenerator
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewAcquirer wires the acquisition path. gen may be nil, in which case the
// AI fallback is skipped entirely. A nil logger disables logging.
func NewAcquirer(filter *CandidateFilter, sanitizer *Sanitizer, firewall *Firewall,
	gen TextGenerator, logger *zap.Logger) *Acquirer {

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{
		filter:    filter,
		sanitizer: sanitizer,
		firewall:  firewall,
		gen:       gen,
		log:       logger,
	}
}

// WithRateLimit bounds the rate of text-generation calls across pages.
func (a *Acquirer) WithRateLimit(l *rate.Limiter) *Acquirer {
	a.limiter = l
	return a
}

// AcquirePage runs one page through the state machine:
//
//	TEXT_EXTRACTED -> STRUCTURAL_ATTEMPT -> {ACCEPTED_STRUCTURAL | AI_ATTEMPT}
//	AI_ATTEMPT -> {SKIPPED | FIREWALL_CHECK}
//	FIREWALL_CHECK -> {ACCEPTED_AI | REJECTED}
func (a *Acquirer) AcquirePage(ctx context.Context, page PageContent) PageResult {
	// STRUCTURAL_ATTEMPT: take the first extracted grid that survives the
	// candidate filter.
	for _, g := range page.Grids {
		decision := a.filter.Check(NewCandidate(g))
		if decision.Accepted {
			return PageResult{
				State: StateAcceptedStructural,
				Table: a.sanitizer.Clean(g),
			}
		}
	}

	// AI_ATTEMPT: only worth a model call if the page text could plausibly
	// hold a data table.
	if a.gen == nil {
		return PageResult{State: StateSkipped, Reason: "no text generator configured"}
	}
	if !hasDataPotential(page.Text) {
		return PageResult{State: StateSkipped, Reason: "page text has no data potential"}
	}

	grid, err := a.reconstruct(ctx, page)
	if err != nil {
		// Fail closed: a failed or timed-out generation is treated exactly
		// like a hallucination, never accepted unvalidated.
		a.log.Warn("AI reconstruction failed",
			zap.String("source", page.Source),
			zap.Int("page", page.Page),
			zap.Error(err))
		return PageResult{State: StateRejected, Reason: err.Error()}
	}

	// FIREWALL_CHECK
	verdict := a.firewall.ValidateGrid(page.Text, grid)
	if !verdict.Accepted {
		a.log.Warn("AI reconstruction rejected by firewall",
			zap.String("source", page.Source),
			zap.Int("page", page.Page),
			zap.Float64s("hallucinated", verdict.Hallucinated),
			zap.String("reason", verdict.Reason))
		return PageResult{
			State:        StateRejected,
			Hallucinated: verdict.Hallucinated,
			Reason:       verdict.Reason,
		}
	}

	return PageResult{
		State: StateAcceptedAI,
		Table: a.sanitizer.Clean(grid),
	}
}

// reconstruct performs the single bounded text-generation call and parses
// its output strictly.
func (a *Acquirer) reconstruct(ctx context.Context, page PageContent) (*Grid, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	genCtx := ctx
	if timeout := a.firewall.cfg.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := a.gen.Generate(genCtx, reconstructPrompt+page.Text)
	if err != nil {
		return nil, err
	}

	grid, err := ParseMarkdownTable(page.Source, out)
	if err != nil {
		return nil, err
	}
	grid.Page = page.Page
	return grid, nil
}

// hasDataPotential reports whether page text could plausibly contain a data
// table: enough content and at least one digit.
func hasDataPotential(text string) bool {
	if len(strings.TrimSpace(text)) < 20 {
		return false
	}
	return strings.ContainsFunc(text, unicode.IsDigit)
}
