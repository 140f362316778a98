package tablesaf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SanitizeConfig controls the thresholds of the sanitization pipeline.
// Defaults were carried over from the tuning of the original cleaning engine;
// they are starting points, not derived optima.
type SanitizeConfig struct {
	// HeaderScanRows is how many leading rows the header locator inspects.
	// Default: 20.
	HeaderScanRows int `yaml:"header_scan_rows"`

	// MinHeaderScore is the minimum text score a row needs to be promoted to
	// headers. Rows below this leave the grid on a positional column scheme.
	// Default: 2.
	MinHeaderScore int `yaml:"min_header_score"`

	// UnnamedRatio is the fraction of unnamed columns above which a second
	// header row is assumed and flattened into the first. Default: 0.3.
	UnnamedRatio float64 `yaml:"unnamed_ratio"`

	// FillRatio is the null fraction a text column must strictly exceed
	// before merged-cell forward-filling kicks in. Columns at or below the
	// threshold keep their gaps. Default: 0.1.
	FillRatio float64 `yaml:"fill_ratio"`

	// NumericRatio is the fraction of parseable values a column must strictly
	// exceed to be typed numeric. Default: 0.5.
	NumericRatio float64 `yaml:"numeric_ratio"`
}

// DefaultSanitizeConfig returns the recommended pipeline thresholds.
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		HeaderScanRows: 20,
		MinHeaderScore: 2,
		UnnamedRatio:   0.3,
		FillRatio:      0.1,
		NumericRatio:   0.5,
	}
}

// FilterConfig controls the candidate filter's ghost-table rejection rules.
type FilterConfig struct {
	// MinRows and MinCols set the minimum candidate shape. Default: 2x2.
	MinRows int `yaml:"min_rows"`
	MinCols int `yaml:"min_cols"`

	// MaxEmptyRatio rejects candidates whose empty-cell fraction exceeds it.
	// PDF blocks use a tighter bound than word-processor tables because PDF
	// slicing produces denser noise. Defaults: 0.8 (PDF), 0.9 (documents).
	MaxEmptyRatio float64 `yaml:"max_empty_ratio"`

	// MaxFirstCellLen rejects candidates whose first cell is longer than this
	// many characters; oversized first cells indicate a paragraph block that
	// was misread as a table. Default: 1000.
	MaxFirstCellLen int `yaml:"max_first_cell_len"`

	// RequireDigit rejects candidates with no digit anywhere. Business data
	// tables carry numbers; pure-text blocks belong to the narrative path.
	// Default: true.
	RequireDigit bool `yaml:"require_digit"`

	// CheckFragments enables the PDF slicing-artifact rules: bad fragment
	// substrings anywhere, and standalone lowercase word remnants in the
	// header row. Default: true for PDF, false for documents.
	CheckFragments bool `yaml:"check_fragments"`

	// BadFragments are cell prefixes that mark a block as a column-boundary
	// misdetection (a header cell chopped mid-word).
	BadFragments []string `yaml:"bad_fragments"`
}

// defaultBadFragments are mid-word remnants commonly produced when a column
// boundary lands inside a header label.
var defaultBadFragments = []string{"egory", "escription", "uantity", "mount", "evenue"}

// DefaultPDFFilterConfig returns the filter thresholds for PDF-extracted blocks.
func DefaultPDFFilterConfig() FilterConfig {
	return FilterConfig{
		MinRows:         2,
		MinCols:         2,
		MaxEmptyRatio:   0.8,
		MaxFirstCellLen: 1000,
		RequireDigit:    true,
		CheckFragments:  true,
		BadFragments:    append([]string(nil), defaultBadFragments...),
	}
}

// DefaultDocFilterConfig returns the filter thresholds for DOCX, HTML and
// spreadsheet tables, which tolerate more empty padding and are not subject
// to PDF slicing artifacts.
func DefaultDocFilterConfig() FilterConfig {
	return FilterConfig{
		MinRows:         2,
		MinCols:         2,
		MaxEmptyRatio:   0.9,
		MaxFirstCellLen: 1000,
		RequireDigit:    true,
		CheckFragments:  false,
	}
}

// FirewallConfig controls the extraction firewall's hallucination check.
type FirewallConfig struct {
	// Materiality is the absolute magnitude a mismatched number must exceed
	// to count as a hallucination. Smaller mismatches are treated as
	// formatting artifacts (page numbers, row indices, rounding).
	// Default: 50. Hand-tuned; flagged for domain review.
	Materiality float64 `yaml:"materiality"`

	// Timeout bounds a single text-generation call on the AI path. On
	// timeout the candidate is rejected, never accepted unvalidated.
	// Default: 30s. Set by the caller, not the config file.
	Timeout time.Duration `yaml:"-"`
}

// DefaultFirewallConfig returns the recommended firewall settings.
func DefaultFirewallConfig() FirewallConfig {
	return FirewallConfig{
		Materiality: 50,
		Timeout:     30 * time.Second,
	}
}

// Config bundles the threshold sets for a full extraction run.
type Config struct {
	Sanitize  SanitizeConfig `yaml:"sanitize"`
	PDFFilter FilterConfig   `yaml:"pdf_filter"`
	DocFilter FilterConfig   `yaml:"doc_filter"`
	Firewall  FirewallConfig `yaml:"firewall"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		Sanitize:  DefaultSanitizeConfig(),
		PDFFilter: DefaultPDFFilterConfig(),
		DocFilter: DefaultDocFilterConfig(),
		Firewall:  DefaultFirewallConfig(),
	}
}

// LoadConfig reads a YAML config file over the defaults. Missing keys keep
// their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}
