// Package codec maps import/export files to and from lead rows. Parsing is
// a plain row-mapping concern: the first line is the header, keys are
// lowercased, and validation happens later, per row, in the use case.
package codec

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var exportHeader = []string{"name", "email", "phone", "company", "status", "notes", "created_at"}

// ParseCSV returns one map per data row, keyed by the lowercased header.
func ParseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []map[string]string{}, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
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

// WriteCSV streams the export; encoding/csv handles quoting and escaping.
func WriteCSV(w io.Writer, leads []entity.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, lead := range leads {
		record := []string{
			lead.Name,
			strOrEmpty(lead.Email),
			strOrEmpty(lead.Phone),
			strOrEmpty(lead.Company),
			lead.Status,
			strOrEmpty(lead.Notes),
			lead.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
