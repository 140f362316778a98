package tablesaf

import (
	"math"

	"go.uber.org/zap"
)

// Verdict is the outcome of one firewall validation. It is produced per
// invocation and not persisted beyond the call that created it.
type Verdict struct {
	Accepted bool

	// Hallucinated lists the material numeric values present in the
	// AI-proposed table but absent from the source text, ascending. Empty
	// when accepted or when rejection had another cause.
	Hallucinated []float64

	// Reason explains a rejection in one short phrase.
	Reason string
}

// Firewall cross-checks an AI-reconstructed table against the raw source
// text it was reconstructed from. It never trusts generated structure; it
// only validates the numbers against ground truth extracted independently.
type Firewall struct {
	cfg     FirewallConfig
	log     *zap.Logger
	metrics *Metrics
}

// NewFirewall creates a firewall with the given materiality threshold. A nil
// logger disables logging.
func NewFirewall(cfg FirewallConfig, logger *zap.Logger) *Firewall {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Firewall{cfg: cfg, log: logger}
}

// WithMetrics attaches hallucination counters to the firewall.
func (f *Firewall) WithMetrics(m *Metrics) *Firewall {
	f.metrics = m
	return f
}

// Validate compares the numeric literals of the AI table's serialized values
// against those of the source text. Numbers found only in the AI output and
// exceeding the materiality threshold in magnitude are hallucinations and
// cause rejection. An AI table with no numeric content at all is also
// rejected: an empty numeric set cannot be trusted as a genuine data table.
func (f *Firewall) Validate(sourceText string, table *Table) Verdict {
	return f.validateSerialized(sourceText, table.Markdown())
}

// ValidateGrid is Validate for a reconstruction that has not been sanitized
// into a Table yet.
func (f *Firewall) ValidateGrid(sourceText string, g *Grid) Verdict {
	var b []byte
	for _, h := range g.Header {
		b = append(b, h...)
		b = append(b, ' ')
	}
	for _, row := range g.Cells {
		for _, c := range row {
			b = append(b, c.String()...)
			b = append(b, ' ')
		}
	}
	return f.validateSerialized(sourceText, string(b))
}

func (f *Firewall) validateSerialized(sourceText, serialized string) Verdict {
	aiNumbers := extractNumbers(serialized)
	if len(aiNumbers) == 0 {
		f.log.Debug("firewall rejected table with no numeric content")
		return f.reject(Verdict{Reason: "no numeric content in reconstruction"})
	}

	sourceNumbers := extractNumbers(sourceText)

	var hallucinated []float64
	for v := range aiNumbers {
		if _, ok := sourceNumbers[v]; ok {
			continue
		}
		if math.Abs(v) <= f.cfg.Materiality {
			// Small mismatches are formatting artifacts (page numbers, row
			// indices, rounding), not fabricated figures.
			continue
		}
		hallucinated = append(hallucinated, v)
	}

	if len(hallucinated) > 0 {
		set := make(map[float64]struct{}, len(hallucinated))
		for _, v := range hallucinated {
			set[v] = struct{}{}
		}
		sorted := sortedValues(set)
		f.log.Warn("firewall rejected hallucinated values",
			zap.Float64s("values", sorted))
		return f.reject(Verdict{
			Hallucinated: sorted,
			Reason:       "fabricated numeric values",
		})
	}

	return Verdict{Accepted: true}
}

func (f *Firewall) reject(v Verdict) Verdict {
	if f.metrics != nil {
		f.metrics.HallucinationsRejected.Inc()
	}
	return v
}
