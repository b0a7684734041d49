package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func present(s string) Value { return Value{Present: true, Str: s} }

func TestFullValidationRequiresFields(t *testing.T) {
	errs := Fields(map[string]Value{}, LeadRules, false)

	assert.True(t, errs.Any())
	assert.Contains(t, errs["name"], "is required")
	assert.Contains(t, errs["status"], "is required")
	assert.NotContains(t, errs, "email")
}

func TestCollectsAllErrorsNotJustFirst(t *testing.T) {
	errs := Fields(map[string]Value{
		"name":   present(strings.Repeat("a", 101)),
		"email":  present("not-an-email"),
		"status": present("archived"),
	}, LeadRules, false)

	assert.Len(t, errs, 3)
	assert.Contains(t, errs["name"], "must not exceed 100 characters")
	assert.Contains(t, errs["email"], "is invalid")
	assert.Contains(t, errs["status"][0], "must be one of:")
}

func TestPartialSkipsAbsentFields(t *testing.T) {
	errs := Fields(map[string]Value{
		"company": present("Acme"),
	}, LeadRules, true)

	assert.False(t, errs.Any())
}

func TestPartialNullOnRequiredFieldFails(t *testing.T) {
	errs := Fields(map[string]Value{
		"name": {Present: true, Null: true},
	}, LeadRules, true)

	assert.Contains(t, errs["name"], "is required")
}

func TestPartialNullOnOptionalFieldAllowed(t *testing.T) {
	errs := Fields(map[string]Value{
		"notes": {Present: true, Null: true},
	}, LeadRules, true)

	assert.False(t, errs.Any())
}

func TestPartialEmptyMapIsValid(t *testing.T) {
	errs := Fields(map[string]Value{}, LeadRules, true)
	assert.False(t, errs.Any())
}

func TestMaxLenCountsRunesNotBytes(t *testing.T) {
	// 100 two-byte runes: 200 bytes but exactly at the rune limit.
	errs := Fields(map[string]Value{
		"name":   present(strings.Repeat("é", 100)),
		"status": present("new"),
	}, LeadRules, false)

	assert.False(t, errs.Any())
}

func TestPhonePattern(t *testing.T) {
	errs := Fields(map[string]Value{
		"name":   present("Maria"),
		"status": present("new"),
		"phone":  present("555-CALL"),
	}, LeadRules, false)
	assert.Contains(t, errs["phone"], "is invalid")

	errs = Fields(map[string]Value{
		"name":   present("Maria"),
		"status": present("new"),
		"phone":  present("+55 (11) 98765-4321"),
	}, LeadRules, false)
	assert.False(t, errs.Any())
}

func TestInteractionRules(t *testing.T) {
	errs := Fields(map[string]Value{
		"lead_id":     present("not-a-uuid"),
		"type":        present("telepathy"),
		"description": present(""),
	}, InteractionRules, false)

	assert.Contains(t, errs["lead_id"], "is invalid")
	assert.Contains(t, errs["type"][0], "must be one of:")
	assert.Contains(t, errs["description"], "is required")
}

func TestInteractionValid(t *testing.T) {
	errs := Fields(map[string]Value{
		"lead_id":     present("7f9c24e5-1b3a-4f5d-9e2c-8a7b6c5d4e3f"),
		"type":        present("call"),
		"description": present("Spoke about pricing"),
	}, InteractionRules, false)

	assert.False(t, errs.Any())
}
