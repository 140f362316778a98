// Package tablesaf recovers clean, typed tables from messy documents.
//
// It combines three stages. Grid sources pull raw cell grids and narrative
// text out of CSV, XLSX, DOCX, HTML, and PDF files. A candidate filter
// rejects ghost tables that layout-based extraction hallucinates out of
// ordinary paragraphs. A sanitizer then locates the real header row, flattens
// multi-row headers, normalizes and deduplicates column names, repairs
// merged-cell gaps, and coerces each column to text or numeric.
//
// For PDF pages whose structural extraction fails, an optional AI
// reconstruction path asks a text generator to rebuild the table from the
// page text; its output only survives if a numeric firewall finds every
// material value in the generated table present in the source text.
package tablesaf
