// Package validate is a small data-driven validator: each entity carries a
// rule table (field -> constraints) evaluated by a generic collector. All
// field failures are gathered, never just the first one.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Format int

const (
	FormatNone Format = iota
	FormatEmail
	FormatUUID
)

// Value is the raw state of one payload field before validation.
// Present distinguishes an explicit null from an absent key.
type Value struct {
	Present bool
	Null    bool
	Str     string
}

type Rule struct {
	Required bool
	MinLen   int
	MaxLen   int
	Pattern  *regexp.Regexp
	Enum     []string
	Format   Format
}

// Errors maps a field path to its list of human-readable messages.
type Errors map[string][]string

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Any() bool { return len(e) > 0 }

// Fields evaluates values against rules. In partial mode absent fields are
// skipped entirely; an explicit null on a required field is still an error
// because required fields cannot be cleared.
func Fields(values map[string]Value, rules map[string]Rule, partial bool) Errors {
	errs := Errors{}

	for field, rule := range rules {
		v := values[field]

		if !v.Present {
			if rule.Required && !partial {
				errs.add(field, "is required")
			}
			continue
		}
		if v.Null {
			if rule.Required {
				errs.add(field, "is required")
			}
			continue
		}

		s := v.Str
		if s == "" {
			if rule.Required {
				errs.add(field, "is required")
			}
			// Empty optional fields are cleared by sanitization, not rejected.
			continue
		}

		n := utf8.RuneCountInString(s)
		if rule.MinLen > 0 && n < rule.MinLen {
			errs.add(field, fmt.Sprintf("must have at least %d characters", rule.MinLen))
		}
		if rule.MaxLen > 0 && n > rule.MaxLen {
			errs.add(field, fmt.Sprintf("must not exceed %d characters", rule.MaxLen))
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
			errs.add(field, "is invalid")
		}
		if len(rule.Enum) > 0 && !contains(rule.Enum, s) {
			errs.add(field, "must be one of: "+strings.Join(rule.Enum, ", "))
		}
		switch rule.Format {
		case FormatEmail:
			if _, err := mail.ParseAddress(s); err != nil {
				errs.add(field, "is invalid")
			}
		case FormatUUID:
			if _, err := uuid.Parse(s); err != nil {
				errs.add(field, "is invalid")
			}
		}
	}

	return errs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
