package fieldseal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchTerm(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	term := engine.SearchTerm("email", "alice@example.com")
	require.Equal(t, "emailHash", term.Field)
	require.Equal(t, engine.ComputeBlindIndex("alice@example.com"), term.Digest)
}

func TestSearchTerm_MatchesStoredRecord(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	record := Record{"email": "Alice@Example.COM"}
	engine.ApplyOnWrite(record, []string{"email"}, []string{"email"})

	// Lookup matches regardless of case/whitespace variation at input time.
	for _, query := range []string{"alice@example.com", "ALICE@EXAMPLE.COM", " alice@example.com "} {
		require.True(t, engine.SearchTerm("email", query).Matches(record), query)
	}

	require.False(t, engine.SearchTerm("email", "bob@example.com").Matches(record))
	require.False(t, engine.SearchTerm("name", "alice@example.com").Matches(record))
}

func TestSearchTerm_UsesFieldNormalizer(t *testing.T) {
	engine, err := New(
		WithSecret("s3cr3t"),
		WithFieldNormalizer("phone", NormalizePhone),
	)
	require.NoError(t, err)

	record := Record{"phone": "+1-555-123-4567"}
	engine.ApplyOnWrite(record, []string{"phone"}, []string{"phone"})

	require.True(t, engine.SearchTerm("phone", "1 (555) 123-4567").Matches(record))
}
