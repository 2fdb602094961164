package form

import (
	"fmt"
	"strings"
	"unicode"
)

// FindByLabel returns the first field whose label contains label as a
// substring, or nil if no field matches. Substring matching is deliberate:
// the form provider decorates labels between form versions, so an exact
// match would silently lose fields.
func FindByLabel(fields []Field, label string) *Field {
	for i := range fields {
		if strings.Contains(fields[i].Label, label) {
			return &fields[i]
		}
	}
	return nil
}

// NormalizeEmail lowercases and trims an email value for comparison.
// Non-string values normalize to the empty string.
func NormalizeEmail(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone strips all whitespace from a phone value for comparison.
// Non-string values normalize to the empty string.
func NormalizePhone(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// StringValue returns a field value as a trimmed string, or "" when the
// value is absent or not a string.
func StringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// TeamPair is one team member's normalized contact pair.
type TeamPair struct {
	Email string
	Phone string
}

// ExtractTeamPairs derives the team-member contact pairs embedded in a
// registration record from the numbered "1: Email".."9: Email" and
// "1: Phone number".."9: Phone number" fields. An index is skipped unless
// both halves are present and non-empty after normalization. Output order
// follows increasing index; duplicates are kept.
func ExtractTeamPairs(rec *Record) []TeamPair {
	var pairs []TeamPair
	for i := 1; i <= 9; i++ {
		emailField := FindByLabel(rec.Data.Fields, fmt.Sprintf("%d: Email", i))
		phoneField := FindByLabel(rec.Data.Fields, fmt.Sprintf("%d: Phone number", i))
		if emailField == nil || phoneField == nil {
			continue
		}
		email := NormalizeEmail(emailField.Value)
		phone := NormalizePhone(phoneField.Value)
		if email == "" || phone == "" {
			continue
		}
		pairs = append(pairs, TeamPair{Email: email, Phone: phone})
	}
	return pairs
}

// Authorize reports whether the submitter's normalized contact pair matches
// one of the team-member pairs. A record yielding zero pairs never
// authorizes anyone.
func Authorize(pairs []TeamPair, email, phone string) bool {
	for _, p := range pairs {
		if p.Email == email && p.Phone == phone {
			return true
		}
	}
	return false
}
