package validate

import (
	"regexp"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)

// LeadRules covers both shapes: full-create enforces Required, the
// partial-update schema reuses the same table with partial=true.
var LeadRules = map[string]Rule{
	"name":    {Required: true, MinLen: 1, MaxLen: 100},
	"email":   {Format: FormatEmail},
	"phone":   {Pattern: phonePattern},
	"company": {MaxLen: 100},
	"status":  {Required: true, Enum: entity.LeadStatuses},
	"notes":   {MaxLen: 1000},
}

var InteractionRules = map[string]Rule{
	"lead_id":     {Required: true, Format: FormatUUID},
	"type":        {Required: true, Enum: entity.InteractionTypes},
	"description": {Required: true, MinLen: 1, MaxLen: 1000},
}
