package usecase

import (
	"encoding/json"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/validate"
)

// OptString distinguishes the three payload states of a field: absent
// (Set=false, "no change"), explicit null (Set=true, Valid=false, "clear"),
// and a value. UnmarshalJSON only runs for keys present in the body, which
// is exactly the presence signal partial updates need.
type OptString struct {
	Set   bool
	Valid bool
	Value string
}

func (o *OptString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o OptString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Str builds a set, non-null OptString. Test and import helper.
func Str(s string) OptString {
	return OptString{Set: true, Valid: true, Value: s}
}

// Null builds an explicit-null OptString.
func Null() OptString {
	return OptString{Set: true}
}

func (o OptString) value() validate.Value {
	return validate.Value{Present: o.Set, Null: o.Set && !o.Valid, Str: o.Value}
}

// LeadInput is both the full-create and the partial-update payload; the
// pipeline decides which rule mode applies.
type LeadInput struct {
	Name    OptString `json:"name,omitzero"`
	Email   OptString `json:"email,omitzero"`
	Phone   OptString `json:"phone,omitzero"`
	Company OptString `json:"company,omitzero"`
	Status  OptString `json:"status,omitzero"`
	Notes   OptString `json:"notes,omitzero"`
}

func (in LeadInput) values() map[string]validate.Value {
	return map[string]validate.Value{
		"name":    in.Name.value(),
		"email":   in.Email.value(),
		"phone":   in.Phone.value(),
		"company": in.Company.value(),
		"status":  in.Status.value(),
		"notes":   in.Notes.value(),
	}
}

type InteractionInput struct {
	LeadID      OptString `json:"lead_id,omitzero"`
	Type        OptString `json:"type,omitzero"`
	Description OptString `json:"description,omitzero"`
}

func (in InteractionInput) values() map[string]validate.Value {
	return map[string]validate.Value{
		"lead_id":     in.LeadID.value(),
		"type":        in.Type.value(),
		"description": in.Description.value(),
	}
}

// LeadFilter is the conjunctive read-side filter. Limit <= 0 means
// "no limit" (export uses it).
type LeadFilter struct {
	Statuses []string
	Company  string
	DateFrom string
	DateTo   string
	// Query is the free-text term matched across name/email/company/notes.
	// Only the search endpoint sets it.
	Query  string
	Limit  int
	Offset int
}

type LeadPage struct {
	Leads  []entity.Lead `json:"leads"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type SearchPage struct {
	LeadPage
	Query string `json:"query,omitempty"`
}

type InteractionPage struct {
	Interactions []entity.Interaction `json:"interactions"`
	Total        int                  `json:"total"`
}

type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

type ImportResult struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}
