package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/codec"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxImportBytes = 10 << 20 // 10 MiB upload cap

type ImportExportHandler struct {
	UC *usecase.LeadUseCase
}

func NewImportExportHandler(uc *usecase.LeadUseCase) *ImportExportHandler {
	return &ImportExportHandler{UC: uc}
}

// Import handles POST /leads/import (multipart, field "file", CSV or XLSX).
func (h *ImportExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("No file provided", map[string][]string{
			"file": {"File is required"},
		}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("No file provided", map[string][]string{
			"file": {"File is required"},
		}))
		return
	}
	defer file.Close()

	name := strings.ToLower(header.Filename)
	var rows []map[string]string
	switch {
	case strings.HasSuffix(name, ".csv"):
		rows, err = codec.ParseCSV(file)
	case strings.HasSuffix(name, ".xlsx"):
		rows, err = codec.ParseXLSX(file)
	default:
		apperr.WriteHTTP(w, apperr.Validation("Invalid file type", map[string][]string{
			"file": {"Only CSV and XLSX files are supported"},
		}))
		return
	}
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("Failed to parse file", map[string][]string{
			"file": {"File format is invalid or corrupted"},
		}))
		return
	}

	result, err := h.UC.ImportLeads(r.Context(), principal.ID, rows)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	for i := 0; i < result.Success; i++ {
		middleware.RecordLeadCreated("import")
	}
	writeJSON(w, http.StatusOK, result)
}

// Export handles GET /leads/export?format=csv|xlsx.
func (h *ImportExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		apperr.WriteHTTP(w, apperr.Validation("Invalid format", map[string][]string{
			"format": {"must be one of: csv, xlsx"},
		}))
		return
	}

	leads, err := h.UC.ExportLeads(r.Context(), principal.ID)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}

	filename := fmt.Sprintf("leads-export-%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := codec.WriteCSV(w, leads); err != nil {
			// Headers already sent; the stream is broken either way.
			return
		}
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	codec.WriteXLSX(w, leads)
}
