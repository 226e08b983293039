// Package validation holds the pure field rules shared by the request form
// and the submission endpoint.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailPattern accepts local@domain.tld where no part holds '@' or whitespace.
const EmailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

var emailRe = regexp.MustCompile(EmailPattern)

// Rule checks a value and returns a user-facing message, or "" when it passes.
// label is the human name of the field.
type Rule func(value, label string) string

// Required fails on empty or whitespace-only values.
func Required(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return label + " is required"
	}
	return ""
}

// MinLength fails when the trimmed value has fewer than n characters.
// An empty value passes; pair it with Required.
func MinLength(n int) Rule {
	return func(value, label string) string {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" && utf8.RuneCountInString(trimmed) < n {
			return fmt.Sprintf("%s must be at least %d characters", label, n)
		}
		return ""
	}
}

// Email fails unless the value looks like an address.
func Email(value, _ string) string {
	if !IsEmail(value) {
		return "Please enter a valid email address"
	}
	return ""
}

// IsEmail reports whether value matches EmailPattern.
func IsEmail(value string) bool {
	return emailRe.MatchString(value)
}

// SkillsList fails unless the comma separated list has a non-blank entry.
func SkillsList(value, _ string) string {
	if len(ParseSkills(value)) == 0 {
		return "Please enter at least one valid skill"
	}
	return ""
}

// ParseSkills splits a comma separated list and drops blank entries.
func ParseSkills(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
