package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/sanitize"
	"github.com/xavierca1/ligue-crm/internal/validate"
)

const maxImportRows = 1000

// ImportLeads validates and sanitizes each parsed row independently; a
// failing row is reported with its file row number (header is row 1) and
// never aborts the batch.
func (uc *LeadUseCase) ImportLeads(ctx context.Context, userID string, rows []map[string]string) (*ImportResult, error) {
	if len(rows) > maxImportRows {
		return nil, apperr.Validation("Too many rows", map[string][]string{
			"file": {fmt.Sprintf("Maximum %d rows allowed per import", maxImportRows)},
		})
	}
	if len(rows) == 0 {
		return nil, apperr.Validation("Empty file", map[string][]string{
			"file": {"File contains no data rows"},
		})
	}

	var leads []*entity.Lead
	var rowErrors []RowError

	for i, row := range rows {
		rowNumber := i + 2 // zero-based index plus header line

		in := rowToLeadInput(row)
		lead, errs := uc.buildImportLead(userID, in)
		if len(errs) > 0 {
			rowErrors = append(rowErrors, RowError{Row: rowNumber, Errors: errs})
			continue
		}
		leads = append(leads, lead)
	}

	inserted := 0
	if len(leads) > 0 {
		n, err := uc.Repo.CreateBatch(ctx, leads)
		if err != nil {
			log.Printf("database error inserting leads: %v", err)
			return nil, apperr.Database("Failed to insert leads")
		}
		inserted = n
		uc.notify(ctx, LeadEvent{Action: "imported", UserID: userID})
	}

	result := &ImportResult{
		Success: inserted,
		Failed:  len(rowErrors),
		Errors:  rowErrors,
	}
	if result.Errors == nil {
		result.Errors = []RowError{}
	}
	return result, nil
}

// ExportLeads returns every lead the principal owns, newest first.
func (uc *LeadUseCase) ExportLeads(ctx context.Context, userID string) ([]entity.Lead, error) {
	leads, _, err := uc.Repo.List(ctx, userID, LeadFilter{Limit: -1})
	if err != nil {
		log.Printf("database error exporting leads: %v", err)
		return nil, apperr.Database("Failed to export leads")
	}
	return leads, nil
}

func (uc *LeadUseCase) buildImportLead(userID string, in LeadInput) (*entity.Lead, []string) {
	errs := validate.Fields(in.values(), validate.LeadRules, false)

	var name *string
	if !errs.Any() {
		name = sanitize.String(in.Name.Value)
		if name == nil {
			errs = validate.Errors{"name": {"is required"}}
		}
	}
	if errs.Any() {
		return nil, flattenErrors(errs)
	}

	lead := entity.NewLead(userID, *name, in.Status.Value)
	lead.Email = sanitizeOpt(in.Email, sanitize.Email)
	lead.Phone = sanitizeOpt(in.Phone, sanitize.Phone)
	lead.Company = sanitizeOpt(in.Company, sanitize.String)
	lead.Notes = sanitizeOpt(in.Notes, sanitize.Text)
	return lead, nil
}

// rowToLeadInput maps a parsed file row (keys already lowercased by the
// codec) onto the create payload. Missing status defaults to "new".
func rowToLeadInput(row map[string]string) LeadInput {
	in := LeadInput{
		Name:   Str(row["name"]),
		Status: Str(entity.StatusNew),
	}
	if row["status"] != "" {
		in.Status = Str(row["status"])
	}
	if row["email"] != "" {
		in.Email = Str(row["email"])
	}
	if row["phone"] != "" {
		in.Phone = Str(row["phone"])
	}
	if row["company"] != "" {
		in.Company = Str(row["company"])
	}
	if row["notes"] != "" {
		in.Notes = Str(row["notes"])
	}
	return in
}

func flattenErrors(errs validate.Errors) []string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var out []string
	for _, field := range fields {
		for _, msg := range errs[field] {
			out = append(out, field+": "+msg)
		}
	}
	return out
}
