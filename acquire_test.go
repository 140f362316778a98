package tablesaf

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAcquirer(gen TextGenerator) *Acquirer {
	return NewAcquirer(
		NewCandidateFilter(DefaultPDFFilterConfig(), nil),
		NewSanitizer(DefaultSanitizeConfig(), nil),
		NewFirewall(DefaultFirewallConfig(), nil),
		gen,
		nil,
	)
}

const pageText = `Quarterly results.
Revenue 1200 Cost 300 Margin 900`

func TestAcquirePage(t *testing.T) {
	ctx := context.Background()

	t.Run("structural table accepted without AI", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			t.Fatal("generator must not be called when structural extraction succeeds")
			return "", nil
		})
		a := newTestAcquirer(gen)

		page := PageContent{
			Source: "doc.pdf",
			Page:   1,
			Text:   pageText,
			Grids: []*Grid{GridFromStrings("doc.pdf", 1, [][]string{
				{"Metric", "Value"},
				{"Revenue", "1200"},
				{"Cost", "300"},
			})},
		}

		r := a.AcquirePage(ctx, page)
		if r.State != StateAcceptedStructural {
			t.Fatalf("state = %s, want ACCEPTED_STRUCTURAL", r.State)
		}
		if r.Table == nil || r.Table.Rows() != 2 {
			t.Errorf("table = %+v, want 2 sanitized rows", r.Table)
		}
	})

	t.Run("faithful AI reconstruction accepted", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "| Metric | Value |\n| --- | --- |\n| Revenue | 1200 |\n| Cost | 300 |", nil
		})
		a := newTestAcquirer(gen)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText})
		if r.State != StateAcceptedAI {
			t.Fatalf("state = %s (%s), want ACCEPTED_AI", r.State, r.Reason)
		}
		if r.Table == nil || r.Table.Rows() != 2 {
			t.Errorf("table = %+v, want 2 rows", r.Table)
		}
	})

	t.Run("hallucinated reconstruction rejected", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "| Metric | Value |\n| --- | --- |\n| Revenue | 1200 |\n| Profit | 9999 |", nil
		})
		a := newTestAcquirer(gen)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText})
		if r.State != StateRejected {
			t.Fatalf("state = %s, want REJECTED", r.State)
		}
		if len(r.Hallucinated) != 1 || r.Hallucinated[0] != 9999 {
			t.Errorf("Hallucinated = %v, want [9999]", r.Hallucinated)
		}
		if r.Table != nil {
			t.Error("rejected page must not carry a table")
		}
	})

	t.Run("generator error fails closed", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("upstream unavailable")
		})
		a := newTestAcquirer(gen)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText})
		if r.State != StateRejected {
			t.Errorf("state = %s, want REJECTED (fail closed)", r.State)
		}
	})

	t.Run("generator timeout fails closed", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "| A | B |\n| --- | --- |\n| 1200 | 300 |", nil
			}
		})

		fwCfg := DefaultFirewallConfig()
		fwCfg.Timeout = 10 * time.Millisecond
		a := NewAcquirer(
			NewCandidateFilter(DefaultPDFFilterConfig(), nil),
			NewSanitizer(DefaultSanitizeConfig(), nil),
			NewFirewall(fwCfg, nil),
			gen,
			nil,
		)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText})
		if r.State != StateRejected {
			t.Errorf("state = %s, want REJECTED on timeout", r.State)
		}
	})

	t.Run("unparseable reconstruction rejected", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "Sorry, the page contains no table.", nil
		})
		a := newTestAcquirer(gen)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText})
		if r.State != StateRejected {
			t.Errorf("state = %s, want REJECTED", r.State)
		}
	})

	t.Run("no generator skips page", func(t *testing.T) {
		a := newTestAcquirer(nil)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText})
		if r.State != StateSkipped {
			t.Errorf("state = %s, want SKIPPED", r.State)
		}
	})

	t.Run("page without data potential skipped", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			t.Fatal("generator must not be called for pages without data potential")
			return "", nil
		})
		a := newTestAcquirer(gen)

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: "Intentionally left blank."})
		if r.State != StateSkipped {
			t.Errorf("state = %s, want SKIPPED", r.State)
		}
	})

	t.Run("filtered structural grid falls through to AI", func(t *testing.T) {
		called := false
		gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			called = true
			return "| Metric | Value |\n| --- | --- |\n| Revenue | 1200 |", nil
		})
		a := newTestAcquirer(gen)

		// Ghost grid: mostly empty, fails the candidate filter.
		ghost := GridFromStrings("doc.pdf", 2, [][]string{
			{"Data 1", "", "", "", ""},
			{"", "", "", "", ""},
			{"", "", "", "", ""},
		})

		r := a.AcquirePage(ctx, PageContent{Source: "doc.pdf", Page: 2, Text: pageText, Grids: []*Grid{ghost}})
		if !called {
			t.Error("AI fallback was not attempted after filter rejection")
		}
		if r.State != StateAcceptedAI {
			t.Errorf("state = %s, want ACCEPTED_AI", r.State)
		}
	})
}

func TestAcquisitionStateString(t *testing.T) {
	tests := []struct {
		state AcquisitionState
		want  string
	}{
		{StateTextExtracted, "TEXT_EXTRACTED"},
		{StateStructuralAttempt, "STRUCTURAL_ATTEMPT"},
		{StateAIAttempt, "AI_ATTEMPT"},
		{StateFirewallCheck, "FIREWALL_CHECK"},
		{StateAcceptedStructural, "ACCEPTED_STRUCTURAL"},
		{StateAcceptedAI, "ACCEPTED_AI"},
		{StateSkipped, "SKIPPED"},
		{StateRejected, "REJECTED"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	for _, s := range []AcquisitionState{StateAcceptedStructural, StateAcceptedAI, StateSkipped, StateRejected} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	if StateTextExtracted.Terminal() {
		t.Error("TEXT_EXTRACTED must not be terminal")
	}
}
