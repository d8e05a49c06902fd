package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Aashish23092/case-intake/dto"
)

// Rule is one declarative field constraint. Message is returned verbatim on
// the first check that fails.
type Rule struct {
	Required bool
	// MinLen and MaxLen bound the trimmed value's rune count.
	MinLen    int
	MaxLen    int
	Min       *float64
	Max       *float64
	Pattern   *regexp.Regexp
	NotFuture bool
	Message   string
}

// RuleSet maps field names to their rule for one workflow step.
type RuleSet map[string]Rule

// ValidateField evaluates a single field against its rule and returns the
// rule's message on failure, or "" when the value passes. Checks run in fixed
// order: required, length bounds, numeric bounds, pattern, date-not-in-future.
// An empty value on an optional field always passes.
func ValidateField(name, value string, rules RuleSet) string {
	rule, ok := rules[name]
	if !ok {
		return ""
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if rule.Required {
			return rule.Message
		}
		return ""
	}

	runes := utf8.RuneCountInString(trimmed)
	if rule.MinLen > 0 && runes < rule.MinLen {
		return rule.Message
	}
	if rule.MaxLen > 0 && runes > rule.MaxLen {
		return rule.Message
	}

	if rule.Min != nil || rule.Max != nil {
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return rule.Message
		}
		if rule.Min != nil && n < *rule.Min {
			return rule.Message
		}
		if rule.Max != nil && n > *rule.Max {
			return rule.Message
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(trimmed) {
		return rule.Message
	}

	if rule.NotFuture {
		d, err := time.Parse(dto.DateLayout, trimmed)
		if err != nil || d.After(time.Now()) {
			return rule.Message
		}
	}

	return ""
}

// ValidateRecord evaluates every rule in the set against the record and
// returns a field → message map for the failures.
func ValidateRecord(record *dto.ApplicationRecord, rules RuleSet) map[string]string {
	errs := make(map[string]string)
	for name := range rules {
		if msg := ValidateField(name, record.FieldValue(name), rules); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}

// IsFormValid reports whether every rule in the set passes. Recomputed on
// every call; never cached across mutations.
func IsFormValid(record *dto.ApplicationRecord, rules RuleSet) bool {
	for name := range rules {
		if ValidateField(name, record.FieldValue(name), rules) != "" {
			return false
		}
	}
	return true
}

// FirstError returns a deterministic "first failing field" message by walking
// the given field order.
func FirstError(errs map[string]string, order []string) string {
	for _, name := range order {
		if msg, ok := errs[name]; ok {
			return msg
		}
	}
	for _, msg := range errs {
		return msg
	}
	return ""
}

func floatPtr(v float64) *float64 {
	return &v
}
