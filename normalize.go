package fieldseal

import "strings"

// Normalizer transforms input strings into a canonical form before computing
// blind indexes. This is what makes equality search case- or
// format-insensitive: the digest is computed over the normalized value on both
// write and search.
//
// IMPORTANT: Use the SAME normalizer on both write and search.
// Mixing normalizers breaks lookups.
type Normalizer func(string) string

// NormalizeDefault trims surrounding whitespace and lowercases. This is the
// engine default, matching typical lookup UX: searching an email or name
// should not be sensitive to case or stray spaces.
//
// Example: " Alice@Example.COM " -> "alice@example.com"
var NormalizeDefault Normalizer = func(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail normalizes email addresses for case-insensitive lookup.
// Identical to NormalizeDefault; named for call-site clarity.
var NormalizeEmail Normalizer = NormalizeDefault

// NormalizePhone normalizes phone numbers by extracting ASCII digits only.
//
// Example: "(555) 123-4567" -> "5551234567"
// Example: "+1-555-123-4567" -> "15551234567"
var NormalizePhone Normalizer = func(s string) string {
	var digits strings.Builder
	digits.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// NormalizeTrim trims leading and trailing whitespace only, preserving case.
var NormalizeTrim Normalizer = func(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeLower lowercases only (no trim).
var NormalizeLower Normalizer = func(s string) string {
	return strings.ToLower(s)
}

// NormalizeNone is an identity normalizer for exact-match (case-sensitive) search.
var NormalizeNone Normalizer = func(s string) string {
	return s
}
