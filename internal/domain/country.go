package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCountry rejects country codes that are not two ASCII letters.
var ErrInvalidCountry = errors.New("country code must be two letters")

// NormalizeCountry lowercases and validates a country code.
func NormalizeCountry(code string) (string, error) {
	cc := strings.ToLower(strings.TrimSpace(code))
	if len(cc) != 2 || cc[0] < 'a' || cc[0] > 'z' || cc[1] < 'a' || cc[1] > 'z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidCountry, code)
	}
	return cc, nil
}
