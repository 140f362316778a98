package tablesaf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// nsWordprocessingML is the OOXML WordprocessingML namespace.
const nsWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DocxSource turns a Word document into narrative text plus one candidate
// grid per top-level table. Tables come out raw, cell text only, with no
// header row assumption; nested tables are flattened into their parent cell's
// text.
type DocxSource struct{}

// CanProcess returns true for DOCX content types or .docx extensions.
func (ds *DocxSource) CanProcess(contentType, path string) bool {
	if strings.Contains(contentType, "application/vnd.openxmlformats-officedocument.wordprocessingml.document") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(path), ".docx")
}

// Extract parses word/document.xml and returns a single page holding the
// document's paragraph text and its tables as grids.
func (ds *DocxSource) Extract(path string, content []byte) (*Extraction, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	docXML, err := readArchiveFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to read document.xml: %w", err)
	}

	text, tables, err := parseDocxBody(docXML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document.xml: %w", err)
	}

	page := PageContent{Source: path, Page: 1, Text: text}
	for i, rows := range tables {
		grid := GridFromStrings(path, 1, rows)
		grid.Index = i
		page.Grids = append(page.Grids, grid)
	}

	return &Extraction{Source: path, Pages: []PageContent{page}}, nil
}

// readArchiveFile reads one file out of the OOXML zip container.
func readArchiveFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("file %q not found in archive", name)
}

// parseDocxBody walks the WordprocessingML body and splits it into narrative
// paragraph text and top-level tables as raw string rows.
func parseDocxBody(data []byte) (string, [][][]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var paragraphs []string
	var tables [][][]string

	// Table state. Only depth-1 tables become grids; deeper nesting is
	// flattened into the enclosing cell's text.
	var tblDepth int
	var curTable [][]string
	var curRow []string
	var cellText strings.Builder

	var paraText strings.Builder
	inParagraph := false
	inRun := false
	styleDepth := 0

	wordElem := func(name xml.Name) bool {
		return name.Space == nsWordprocessingML || name.Space == ""
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !wordElem(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					curTable = nil
				}
			case "tr":
				if tblDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tblDepth == 1 {
					cellText.Reset()
				}
			case "p":
				if tblDepth == 0 {
					inParagraph = true
					paraText.Reset()
				}
			case "r":
				inRun = true
			case "pStyle", "rPr", "pPr":
				styleDepth++
			case "tab":
				if inRun && inParagraph {
					paraText.WriteString("\t")
				}
			case "br":
				if inRun && inParagraph {
					paraText.WriteString("\n")
				}
			}

		case xml.EndElement:
			if !wordElem(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				if tblDepth == 1 && len(curTable) > 0 {
					tables = append(tables, curTable)
					curTable = nil
				}
				if tblDepth > 0 {
					tblDepth--
				}
			case "tr":
				if tblDepth == 1 {
					curTable = append(curTable, curRow)
					curRow = nil
				}
			case "tc":
				if tblDepth == 1 {
					curRow = append(curRow, strings.TrimSpace(cellText.String()))
					cellText.Reset()
				}
			case "p":
				if tblDepth == 0 && inParagraph {
					if text := strings.TrimSpace(paraText.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					inParagraph = false
				} else if tblDepth >= 1 {
					// Separate multi-paragraph cell content.
					cellText.WriteString(" ")
				}
			case "r":
				inRun = false
			case "pStyle", "rPr", "pPr":
				if styleDepth > 0 {
					styleDepth--
				}
			}

		case xml.CharData:
			if !inRun || styleDepth > 0 {
				continue
			}
			if tblDepth >= 1 {
				cellText.Write(t)
			} else if inParagraph {
				paraText.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), tables, nil
}
