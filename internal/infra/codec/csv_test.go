package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestParseCSV(t *testing.T) {
	input := "Name,Email,Status\nAlice,alice@example.com,new\nBob,,contacted\n"

	rows, err := ParseCSV(strings.NewReader(input))

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["name"])
	assert.Equal(t, "alice@example.com", rows[0]["email"])
	assert.Equal(t, "", rows[1]["email"])
	assert.Equal(t, "contacted", rows[1]["status"])
}

func TestParseCSVStripsBOM(t *testing.T) {
	input := "\ufeffname,status\nAlice,new\n"

	rows, err := ParseCSV(strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, "Alice", rows[0]["name"])
}

func TestParseCSVRaggedRows(t *testing.T) {
	input := "name,email,status\nAlice\nBob,bob@example.com,new,extra\n"

	rows, err := ParseCSV(strings.NewReader(input))

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["name"])
	assert.Equal(t, "", rows[0]["email"])
	assert.Equal(t, "new", rows[1]["status"])
}

func TestParseCSVEmpty(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteCSVQuotesSpecialChars(t *testing.T) {
	notes := "said \"maybe\", call back\nnext week"
	company := "Acme, Inc."
	leads := []entity.Lead{{
		Name:      "Alice",
		Company:   &company,
		Status:    "new",
		Notes:     &notes,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	err := WriteCSV(&buf, leads)
	assert.NoError(t, err)

	// The writer must quote so a reparse reproduces the values exactly.
	rows, err := ParseCSV(&buf)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, notes, rows[0]["notes"])
	assert.Equal(t, company, rows[0]["company"])
	assert.Equal(t, "2026-03-01T12:00:00Z", rows[0]["created_at"])
}

func TestWriteCSVNilOptionalsAreEmpty(t *testing.T) {
	leads := []entity.Lead{{Name: "Bob", Status: "won"}}

	var buf bytes.Buffer
	assert.NoError(t, WriteCSV(&buf, leads))

	rows, err := ParseCSV(&buf)
	assert.NoError(t, err)
	assert.Equal(t, "", rows[0]["email"])
	assert.Equal(t, "", rows[0]["phone"])
}

func TestXLSXRoundTrip(t *testing.T) {
	email := "alice@example.com"
	leads := []entity.Lead{{
		Name:      "Alice",
		Email:     &email,
		Status:    "new",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	assert.NoError(t, WriteXLSX(&buf, leads))

	rows, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0]["name"])
	assert.Equal(t, email, rows[0]["email"])
	assert.Equal(t, "new", rows[0]["status"])
}
