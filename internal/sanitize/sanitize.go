// Package sanitize holds the pure input cleaners applied after structural
// validation and before persistence. Empty and absent collapse to the same
// state: every function returns nil instead of an empty string.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	phoneChars    = regexp.MustCompile(`[^\d\s\-\+\(\)]`)
	scriptBlocks  = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	eventHandlers = regexp.MustCompile(`(?i)on\w+\s*=\s*["'][^"']*["']`)
	jsProtocol    = regexp.MustCompile(`(?i)javascript:`)
)

// String drops NUL and control characters (newlines and tabs survive) and
// trims surrounding whitespace. Empty results become nil.
func String(input string) *string {
	s := strings.ReplaceAll(input, "\x00", "")
	s = controlChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Email applies String then lowercases.
func Email(input string) *string {
	s := String(input)
	if s == nil {
		return nil
	}
	lowered := strings.ToLower(*s)
	return &lowered
}

// Phone applies String then strips anything outside digits, spaces,
// dashes, plus and parentheses.
func Phone(input string) *string {
	s := String(input)
	if s == nil {
		return nil
	}
	cleaned := strings.TrimSpace(phoneChars.ReplaceAllString(*s, ""))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// Text is for free-form notes and descriptions. On top of String it strips
// script blocks, inline event-handler attributes and javascript: prefixes,
// so stored content stays inert even in front ends that skip escaping.
func Text(input string) *string {
	s := String(input)
	if s == nil {
		return nil
	}
	cleaned := scriptBlocks.ReplaceAllString(*s, "")
	cleaned = eventHandlers.ReplaceAllString(cleaned, "")
	cleaned = jsProtocol.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
