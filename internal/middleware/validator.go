package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var requestIDPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

// ValidateLanguage checks a language identifier against an allow-list.
// An empty allow-list accepts any non-empty identifier.
func ValidateLanguage(language string, allowed []string) error {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, l := range allowed {
		if strings.EqualFold(l, language) {
			return nil
		}
	}
	return fmt.Errorf("unsupported language: %s (allowed: %s)", language, strings.Join(allowed, ", "))
}

// ValidateRequestID validates an analysis request ID format (UUID)
func ValidateRequestID(id string) error {
	if id == "" {
		return fmt.Errorf("request ID cannot be empty")
	}
	if !requestIDPattern.MatchString(id) {
		return fmt.Errorf("invalid request ID format")
	}
	return nil
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

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
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
