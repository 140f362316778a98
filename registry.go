package tablesaf

// Extraction is the raw output of a grid source for one document: per-page
// narrative text and candidate grids, with no header interpretation applied.
type Extraction struct {
	Source string
	Pages  []PageContent
}

// Text concatenates the narrative text of all pages.
func (e *Extraction) Text() string {
	var out string
	for i, p := range e.Pages {
		if i > 0 {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// Grids flattens the candidate grids of all pages in page order.
func (e *Extraction) Grids() []*Grid {
	var out []*Grid
	for _, p := range e.Pages {
		out = append(out, p.Grids...)
	}
	return out
}

// GridSource turns one document format into raw grids and page text.
// Implementations never interpret headers or types; that is the pipeline's
// job.
type GridSource interface {
	// CanProcess returns true if this source handles the given content.
	// contentType is the MIME type (may be empty) and path carries the
	// extension.
	CanProcess(contentType, path string) bool

	// Extract parses raw document bytes into pages of text and grids.
	Extract(path string, content []byte) (*Extraction, error)
}

// SourceRegistry manages a collection of GridSources.
type SourceRegistry interface {
	// Register adds a source to the registry.
	Register(source GridSource)

	// GetSource returns the first source that can handle the given content,
	// or nil if none can.
	GetSource(contentType, path string) GridSource

	// Sources returns all registered sources.
	Sources() []GridSource
}

// sourceRegistry is the plain slice-backed SourceRegistry.
type sourceRegistry struct {
	sources []GridSource
}

// NewSourceRegistry creates an empty registry for callers that want a custom
// source set.
func NewSourceRegistry() SourceRegistry {
	return &sourceRegistry{}
}

// DefaultSourceRegistry creates a registry with all built-in sources:
// CSV, XLSX, DOCX, HTML, and PDF.
func DefaultSourceRegistry() SourceRegistry {
	r := &sourceRegistry{sources: make([]GridSource, 0, 5)}
	r.Register(&CSVSource{})
	r.Register(&XLSXSource{})
	r.Register(&DocxSource{})
	r.Register(&HTMLSource{})
	r.Register(&PDFSource{})
	return r
}

func (r *sourceRegistry) Register(source GridSource) {
	r.sources = append(r.sources, source)
}

func (r *sourceRegistry) GetSource(contentType, path string) GridSource {
	for _, s := range r.sources {
		if s.CanProcess(contentType, path) {
			return s
		}
	}
	return nil
}

func (r *sourceRegistry) Sources() []GridSource {
	return r.sources
}
