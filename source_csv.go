package tablesaf

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVSource turns CSV content into a single one-page grid. The whole file is
// read with no header assumption; the header locator decides later which row
// carries the field names.
type CSVSource struct{}

// CanProcess returns true for CSV content types or .csv extensions.
func (cs *CSVSource) CanProcess(contentType, path string) bool {
	if strings.Contains(contentType, "text/csv") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(path), ".csv")
}

// Extract parses the CSV into one grid. Ragged records are allowed; short
// rows are padded implicitly by the grid's bounds-safe access.
func (cs *CSVSource) Extract(path string, content []byte) (*Extraction, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	grid := GridFromStrings(path, 1, records)
	return &Extraction{
		Source: path,
		Pages:  []PageContent{{Source: path, Page: 1, Grids: []*Grid{grid}}},
	}, nil
}
