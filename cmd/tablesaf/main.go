package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tablesaf",
	Short: "Tablesaf - Table extraction, sanitization, and hallucination firewall",
	Long: `Tablesaf recovers clean, typed tables from messy documents.

It supports:
- CSV, XLSX, DOCX, HTML, and PDF inputs
- Ghost-table rejection for layout-based extraction
- Header location, multi-header flattening, column name repair
- Merged-cell repair and per-column type coercion
- Optional AI table reconstruction for PDFs, cross-validated against
  the source text so fabricated numbers never reach the output

Use tablesaf to extract tables from single documents or whole directories.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
