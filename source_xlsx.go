package tablesaf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSource turns an Excel workbook into one grid per sheet. Merged cell
// ranges are expanded so every covered position carries the merged value;
// vertically merged labels that Excel leaves blank are handled later by the
// pipeline's merged-cell repairer.
type XLSXSource struct{}

// CanProcess returns true for XLSX content types or .xlsx/.xlsm extensions.
func (xs *XLSXSource) CanProcess(contentType, path string) bool {
	if strings.Contains(contentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") {
		return true
	}
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

// Extract reads every sheet into a raw grid, one page per sheet in workbook
// order. Empty sheets are skipped.
func (xs *XLSXSource) Extract(path string, content []byte) (*Extraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	extraction := &Extraction{Source: path}
	for i, sheet := range f.GetSheetList() {
		grid, err := sheetGrid(f, sheet, path, i+1)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		if grid == nil || grid.Rows() == 0 {
			continue
		}
		extraction.Pages = append(extraction.Pages, PageContent{
			Source: path,
			Page:   i + 1,
			Grids:  []*Grid{grid},
		})
	}
	return extraction, nil
}

// sheetGrid reads one sheet's cells and expands merged ranges over every
// position they cover.
func sheetGrid(f *excelize.File, sheet, path string, page int) (*Grid, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	values := make([][]string, len(rows))
	for r := range rows {
		values[r] = make([]string, width)
		for c, v := range rows[r] {
			values[r][c] = strings.TrimSpace(v)
		}
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merge ranges: %w", err)
	}
	for _, merge := range merges {
		val := strings.TrimSpace(merge.GetCellValue())
		startCol, startRow, err := excelize.CellNameToCoordinates(merge.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(merge.GetEndAxis())
		if err != nil {
			continue
		}
		for r := startRow - 1; r <= endRow-1; r++ {
			for c := startCol - 1; c <= endCol-1; c++ {
				if r >= 0 && r < len(values) && c >= 0 && c < width {
					values[r][c] = val
				}
			}
		}
	}

	grid := GridFromStrings(path, page, values)
	return grid, nil
}
