package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxStockSymbolLength = 50
	MaxNotesLength       = 1024
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

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

// ValidateEmail checks the normalized (lowercased, trimmed) email format.
func ValidateEmail(s string) error {
	if !emailRegex.MatchString(s) {
		return fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}
	return nil
}

// ValidatePositiveFloat checks that a numeric field is a finite positive value.
func ValidatePositiveFloat(v float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidatePositiveInt checks that an integer field is strictly positive.
func ValidatePositiveInt(v int, fieldName string) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be a positive integer", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateTradeType checks the trade side enum. Accepted values are exactly
// "BUY" and "SELL"; anything else is rejected, never defaulted.
func ValidateTradeType(s string) error {
	if s != "BUY" && s != "SELL" {
		return fmt.Errorf("%w: tradeType must be \"BUY\" or \"SELL\"", ErrValidationFailed)
	}
	return nil
}
