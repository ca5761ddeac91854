// Package refcode generates human-facing booking confirmation codes.
package refcode

import (
	"crypto/rand"
	"fmt"
)

// CodeLength is the number of characters in a confirmation code
const CodeLength = 8

// alphabet excludes nothing: codes are plain uppercase alphanumerics as they
// appear on vouchers and in confirmation mails.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const maxAttempts = 10

// ExistsFunc reports whether a code is already taken
type ExistsFunc func(code string) (bool, error)

// Generator produces unique confirmation codes, retrying on collision
type Generator struct {
	exists ExistsFunc
}

// NewGenerator creates a generator backed by the given uniqueness check
func NewGenerator(exists ExistsFunc) *Generator {
	return &Generator{exists: exists}
}

// Generate returns a fresh confirmation code that the exists check does not
// know yet. It retries up to 10 times before failing loudly.
func (g *Generator) Generate() (string, error) {
	for attempts := 0; attempts < maxAttempts; attempts++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}

		taken, err := g.exists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}

		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique confirmation code after %d attempts", maxAttempts)
}

// randomCode builds one candidate code from crypto/rand bytes
func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	code := make([]byte, CodeLength)
	for i, b := range buf {
		code[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(code), nil
}
