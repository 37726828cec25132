package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"bookquote-backend/internal/domains/importer/model"

	"github.com/xuri/excelize/v2"
)

// Sheet is a parsed spreadsheet: the header row plus dynamic data rows.
// Rows keep the header-string → value shape until the normalizer converts
// them; the file's column layout is unknown up front.
type Sheet struct {
	Headers []string
	Rows    []model.RawRow
}

// ReadSheet parses an uploaded spreadsheet. xlsx/xlsm go through excelize,
// everything else is treated as CSV. The first row is the header row; data
// rows are numbered from 2 to match what users see in their spreadsheet
// application.
//
// Errors here are fatal to the whole import: an unreadable file or a
// missing header row never produces a partial report.
func ReadSheet(filename string, r io.Reader) (*Sheet, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readExcelRows(r)
	default:
		records, err = readCSVRows(r)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	headers := make([]string, len(records[0]))
	nonEmpty := 0
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, fmt.Errorf("sheet has no header row")
	}

	sheet := &Sheet{Headers: headers}
	for i, record := range records[1:] {
		cells := make(map[string]string, len(headers))
		for col, header := range headers {
			if header == "" || col >= len(record) {
				continue
			}
			cells[header] = strings.TrimSpace(record[col])
		}
		sheet.Rows = append(sheet.Rows, model.RawRow{
			Number: i + 2,
			Cells:  cells,
		})
	}

	return sheet, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // ragged rows are fine, cells map by header

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	// Data is always expected on the first sheet.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return rows, nil
}
