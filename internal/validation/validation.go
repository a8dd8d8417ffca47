package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxNameLength    = 50
	maxCountryLength = 100
)

// colorRegex accepts CSS named colors and hex codes
var colorRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)

var strictPolicy = bluemonday.StrictPolicy()

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SanitizeText strips markup and surrounding whitespace from free text
func SanitizeText(s string) string {
	// bluemonday escapes what it keeps; the templates escape again on output
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// ValidateName checks a family member's display name and returns it sanitized
func ValidateName(name string) (string, error) {
	name = SanitizeText(name)
	if name == "" {
		return "", ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}
	return name, nil
}

// ValidateColor checks a display color, falling back to def when empty
func ValidateColor(color, def string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return def, nil
	}
	if !colorRegex.MatchString(color) {
		return "", ValidationError{Field: "color", Message: "color must be a color name or hex code"}
	}
	return strings.ToLower(color), nil
}

// ValidateCountryQuery checks the free-text country input
func ValidateCountryQuery(country string) (string, error) {
	country = SanitizeText(country)
	if country == "" {
		return "", ValidationError{Field: "country", Message: "country is required"}
	}
	if utf8.RuneCountInString(country) > maxCountryLength {
		return "", ValidationError{Field: "country", Message: "country name is too long"}
	}
	return country, nil
}
