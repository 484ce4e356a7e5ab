package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var idPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// ValidateID validates resource id format (UUID)
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !idPattern.MatchString(strings.ToLower(id)) {
		return fmt.Errorf("invalid id format")
	}
	return nil
}

// ValidateSeverity checks the severity filter value; empty means no filter.
func ValidateSeverity(severity string) error {
	switch strings.ToLower(severity) {
	case "", "critical", "high", "medium", "low":
		return nil
	}
	return fmt.Errorf("invalid severity: %s (allowed: critical, high, medium, low)", severity)
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateSkip validates pagination offset
func ValidateSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateState validates the OAuth state parameter format
func ValidateState(state string) error {
	if state == "" {
		return nil // state is optional on the callback
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]{1,128}$`, state)
	if !matched {
		return fmt.Errorf("invalid state format")
	}
	return nil
}
