package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Email validation pattern, matched case-insensitively
	EmailPattern = `(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Usernames are 3 to 64 characters of letters, digits, dot, underscore or dash
	UsernamePattern = `^[A-Za-z0-9_.\-]+$`

	// Password min length
	PasswordMinLength = 8

	UsernameMinLength = 3
	UsernameMaxLength = 64
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email    *regexp.Regexp
	Username *regexp.Regexp
}{
	Email:    regexp.MustCompile(EmailPattern),
	Username: regexp.MustCompile(UsernamePattern),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// ValidUsername checks the username rules
func ValidUsername(username string) bool {
	return NewStringValidation(username).
		WithMinLength(UsernameMinLength).
		WithMaxLength(UsernameMaxLength).
		WithPattern(CompiledPatterns.Username).
		Validate()
}

// ValidEmail checks the email format
func ValidEmail(email string) bool {
	return NewStringValidation(email).
		WithMaxLength(120).
		WithPattern(CompiledPatterns.Email).
		Validate()
}

// ValidPassword checks the password length rule
func ValidPassword(password string) bool {
	return NewStringValidation(password).WithMinLength(PasswordMinLength).Validate()
}
