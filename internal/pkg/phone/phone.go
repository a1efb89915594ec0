// Package phone normalizes stored phone numbers to E.164 before they are
// handed to the SMS provider. Numbers without a country code get the platform
// default (Colombia, +57).
package phone

import "strings"

const defaultCountryCode = "57"

// Normalize returns the canonical international form with a leading "+".
// An empty input stays empty; the caller treats that as "channel unavailable".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if cleaned == "" {
		return ""
	}

	if strings.HasPrefix(cleaned, defaultCountryCode) && len(cleaned) == 12 {
		return "+" + cleaned
	}

	// Local ten-digit number
	if len(cleaned) == 10 {
		return "+" + defaultCountryCode + cleaned
	}

	return "+" + cleaned
}
