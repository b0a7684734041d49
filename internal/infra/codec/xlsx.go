package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const exportSheet = "Leads"

// ParseXLSX reads the first sheet; the first row is the header.
func ParseXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in XLSX file")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []map[string]string{}, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteXLSX builds a single-sheet workbook matching the CSV column set.
func WriteXLSX(w io.Writer, leads []entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	titles := []any{"Name", "Email", "Phone", "Company", "Status", "Notes", "Created At"}
	if err := f.SetSheetRow(exportSheet, "A1", &titles); err != nil {
		return err
	}

	for i, lead := range leads {
		row := []any{
			lead.Name,
			strOrEmpty(lead.Email),
			strOrEmpty(lead.Phone),
			strOrEmpty(lead.Company),
			lead.Status,
			strOrEmpty(lead.Notes),
			lead.CreatedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	widths := []float64{20, 25, 15, 20, 12, 30, 20}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
