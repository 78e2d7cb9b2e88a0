// Package phone normalizes customer phone numbers.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country prefix.
const DefaultRegion = "PL"

// ErrInvalidNumber is returned for input that is not a dialable number.
var ErrInvalidNumber = errors.New("invalid phone number")

// Normalize parses input in region (DefaultRegion when empty) and returns
// its E.164 form.
func Normalize(input, region string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidNumber
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// NormalizeE164 is the lenient form used for search input: it returns the
// trimmed input unchanged when it cannot be parsed.
func NormalizeE164(input string) string {
	normalized, err := Normalize(input, DefaultRegion)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return normalized
}
