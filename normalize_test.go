package fieldseal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDefault(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" Alice@Example.COM ", "alice@example.com"},
		{"ALREADY", "already"},
		{"  spaced  words  ", "spaced  words"},
		{"", ""},
		{"\t\n", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeDefault(tt.in), "%q", tt.in)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(555) 123-4567", "5551234567"},
		{"+1-555-123-4567", "15551234567"},
		{"no digits", ""},
		{"555 123 4567 ext. 89", "555123456789"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizePhone(tt.in), "%q", tt.in)
	}
}

func TestNormalizeTrim(t *testing.T) {
	require.Equal(t, "MixedCase", NormalizeTrim("  MixedCase\n"))
}

func TestNormalizeLower(t *testing.T) {
	require.Equal(t, "  mixedcase ", NormalizeLower("  MixedCase "))
}

func TestNormalizeNone(t *testing.T) {
	require.Equal(t, " AsIs ", NormalizeNone(" AsIs "))
}
