package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrEmptyEmail indicates the email is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email is not a valid address
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidDate indicates a date is not in YYYY-MM-DD format
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrPasswordTooShort indicates the password is below the policy minimum
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrPasswordMismatch indicates password and confirmation differ
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// emailRegex matches a pragmatic subset of RFC 5322 addresses
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// InputValidator handles request field validation
type InputValidator struct {
	minPasswordLength int
}

// NewInputValidator creates a new input validator instance
func NewInputValidator(minPasswordLength int) *InputValidator {
	return &InputValidator{minPasswordLength: minPasswordLength}
}

// ValidateEmail validates an email address and returns it lowercased and
// trimmed.
func (v *InputValidator) ValidateEmail(email string) (string, error) {
	sanitized := strings.ToLower(strings.TrimSpace(email))
	if sanitized == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}
	return sanitized, nil
}

// ValidatePassword checks the password policy for a new password and its
// confirmation.
func (v *InputValidator) ValidatePassword(password, confirm string) error {
	if len(password) < v.minPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date. The parsed value must render
// back to the same string, which rejects inputs like 2024-2-5 or 2024-02-30.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if t.Format(DateLayout) != value {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseDateRange parses a check-in/check-out pair and enforces that the stay
// covers at least one night.
func ParseDateRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !in.Before(out) {
		return time.Time{}, time.Time{}, errors.New("check-out date must be after check-in date")
	}
	return in, out, nil
}
