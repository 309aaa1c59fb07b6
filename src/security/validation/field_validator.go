// backend/src/security/validation/field_validator.go
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = errors.New("validation failed")

const (
	MaxTickerLength   = 32
	MaxTagLength      = 50
	MaxNoteLength     = 5000
	MaxUsernameLength = 50
	MaxEmailLength    = 254
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything longer
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// --- Journal fields ---

var (
	tickerRegex   = regexp.MustCompile(`^[A-Z0-9./ -]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateTicker normalizes a user-edited ticker to upper case and checks its format.
func ValidateTicker(s string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(s))
	if err := ValidateStringNotEmpty(ticker, "ticker"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(ticker, MaxTickerLength, "ticker"); err != nil {
		return "", err
	}
	if err := ValidateStringRegex(ticker, tickerRegex, "ticker", "letters, digits, '.', '/', '-' and spaces"); err != nil {
		return "", err
	}
	return ticker, nil
}

// ValidatePositiveAmount checks that a quantity or price is finite and greater than zero.
func ValidatePositiveAmount(v float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateTag checks a trade tag and returns it trimmed and sanitized.
func ValidateTag(s, contextID string) (string, error) {
	tag := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(tag, "tag"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(tag, MaxTagLength, "tag"); err != nil {
		return "", err
	}
	if err := CheckXSSPatterns(tag, "tag", contextID); err != nil {
		return "", err
	}
	if err := CheckFormulaInjection(tag, "tag", contextID); err != nil {
		return "", err
	}
	return SanitizeText(tag), nil
}

// ValidateNote checks a trade note and returns it sanitized. Notes may span lines.
func ValidateNote(s, contextID string) (string, error) {
	if err := ValidateStringNotEmpty(s, "note"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(s, MaxNoteLength, "note"); err != nil {
		return "", err
	}
	if err := CheckXSSPatterns(s, "note", contextID); err != nil {
		return "", err
	}
	return SanitizeText(strings.TrimSpace(s)), nil
}

// --- Account fields ---

func ValidateUsername(s string) error {
	if err := ValidateStringMaxLength(s, MaxUsernameLength, "username"); err != nil {
		return err
	}
	return ValidateStringRegex(s, usernameRegex, "username", "at least 3 letters, digits, '_', '.' or '-'")
}

func ValidateEmail(s string) error {
	if err := ValidateStringMaxLength(s, MaxEmailLength, "email"); err != nil {
		return err
	}
	if !emailRegex.MatchString(s) {
		return fmt.Errorf("%w: email is not a valid address", ErrValidationFailed)
	}
	return nil
}

func ValidatePassword(s string) error {
	n := len(s)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be between %d and %d characters", ErrValidationFailed, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}
