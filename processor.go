package tablesaf

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DocumentResult is everything recovered from one document: the narrative
// text, the sanitized tables, and the per-page terminal states of the PDF
// acquisition path (empty for other formats).
type DocumentResult struct {
	Source string
	Text   string
	Tables []*Table
	Pages  []PageResult
}

// Processor runs documents end to end: source dispatch, candidate filtering,
// sanitization, and (for PDFs with a generator configured) the firewalled AI
// fallback. A single failing page or sheet never fails the document; the
// worst case is that no table is recovered from it.
type Processor struct {
	registry  SourceRegistry
	sanitizer *Sanitizer
	docFilter *CandidateFilter
	acquirer  *Acquirer
	log       *zap.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorOptions)

type processorOptions struct {
	registry SourceRegistry
	gen      TextGenerator
	limiter  *rate.Limiter
	metrics  *Metrics
}

// WithRegistry replaces the default source registry.
func WithRegistry(r SourceRegistry) ProcessorOption {
	return func(o *processorOptions) { o.registry = r }
}

// WithGenerator enables the AI reconstruction path for PDF pages whose
// structural extraction fails. Without it those pages are skipped.
func WithGenerator(gen TextGenerator) ProcessorOption {
	return func(o *processorOptions) { o.gen = gen }
}

// WithGenerationRateLimit bounds the rate of generator calls.
func WithGenerationRateLimit(l *rate.Limiter) ProcessorOption {
	return func(o *processorOptions) { o.limiter = l }
}

// WithProcessorMetrics attaches pipeline counters to every stage.
func WithProcessorMetrics(m *Metrics) ProcessorOption {
	return func(o *processorOptions) { o.metrics = m }
}

// NewProcessor wires the full pipeline from a Config. A nil logger disables
// logging.
func NewProcessor(cfg Config, logger *zap.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	var o processorOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultSourceRegistry()
	}

	sanitizer := NewSanitizer(cfg.Sanitize, logger)
	pdfFilter := NewCandidateFilter(cfg.PDFFilter, logger)
	docFilter := NewCandidateFilter(cfg.DocFilter, logger)
	firewall := NewFirewall(cfg.Firewall, logger)
	if o.metrics != nil {
		sanitizer.WithMetrics(o.metrics)
		pdfFilter.WithMetrics(o.metrics)
		docFilter.WithMetrics(o.metrics)
		firewall.WithMetrics(o.metrics)
	}

	acquirer := NewAcquirer(pdfFilter, sanitizer, firewall, o.gen, logger)
	if o.limiter != nil {
		acquirer.WithRateLimit(o.limiter)
	}

	return &Processor{
		registry:  o.registry,
		sanitizer: sanitizer,
		docFilter: docFilter,
		acquirer:  acquirer,
		log:       logger,
	}
}

// ProcessFile dispatches raw document bytes to the matching source and
// recovers its tables.
func (p *Processor) ProcessFile(ctx context.Context, path string, content []byte) (*DocumentResult, error) {
	source := p.registry.GetSource("", path)
	if source == nil {
		return nil, fmt.Errorf("unsupported document type: %s", path)
	}

	extraction, err := source.Extract(path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return p.Process(ctx, source, extraction), nil
}

// Process recovers tables from an already-extracted document. PDF pages run
// through the acquisition state machine; tabular formats (CSV, XLSX) go
// straight to sanitization; DOCX and HTML tables pass the document-grade
// candidate filter first.
func (p *Processor) Process(ctx context.Context, source GridSource, extraction *Extraction) *DocumentResult {
	result := &DocumentResult{
		Source: extraction.Source,
		Text:   extraction.Text(),
	}

	switch source.(type) {
	case *PDFSource:
		for _, page := range extraction.Pages {
			pr := p.acquirer.AcquirePage(ctx, page)
			result.Pages = append(result.Pages, pr)
			if pr.Table != nil {
				result.Tables = append(result.Tables, pr.Table)
			}
		}

	case *CSVSource, *XLSXSource:
		// Spreadsheets are tabular by construction; no ghost-table filter.
		for _, g := range extraction.Grids() {
			result.Tables = append(result.Tables, p.sanitizer.Clean(g))
		}

	default:
		for _, g := range extraction.Grids() {
			if decision := p.docFilter.Check(NewCandidate(g)); !decision.Accepted {
				continue
			}
			result.Tables = append(result.Tables, p.sanitizer.Clean(g))
		}
	}

	p.log.Info("document processed",
		zap.String("source", extraction.Source),
		zap.Int("pages", len(extraction.Pages)),
		zap.Int("tables", len(result.Tables)),
		zap.Int("text_len", len(strings.TrimSpace(result.Text))))
	return result
}
