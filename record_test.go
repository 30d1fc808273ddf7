package fieldseal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyOnWrite_Pipeline(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	record := Record{"title": "Hello", "description": "World"}
	engine.ApplyOnWrite(record, []string{"title", "description"}, []string{"title"})

	require.True(t, IsEncrypted(record["title"].(string)))
	require.True(t, IsEncrypted(record["description"].(string)))
	require.Equal(t, engine.ComputeBlindIndex("Hello"), record["titleHash"])
	require.NotContains(t, record, "descriptionHash", "only indexed fields get a hash sibling")

	engine.ApplyOnRead(record, []string{"title", "description"})
	require.Equal(t, "Hello", record["title"])
	require.Equal(t, "World", record["description"])
}

func TestApplyOnWrite_HashOfPlaintextNotCiphertext(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	record := Record{"email": "alice@example.com"}
	engine.ApplyOnWrite(record, []string{"email"}, []string{"email"})

	// The stored digest must match a search for the plaintext value, which is
	// only true when the index was computed before encryption.
	term := engine.SearchTerm("email", "ALICE@EXAMPLE.COM")
	require.Equal(t, term.Digest, record["emailHash"])
}

func TestApplyOnWrite_Idempotent(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	record := Record{"email": "alice@example.com"}
	engine.ApplyOnWrite(record, []string{"email"}, []string{"email"})

	envelope := record["email"]
	hash := record["emailHash"]

	engine.ApplyOnWrite(record, []string{"email"}, []string{"email"})
	require.Equal(t, envelope, record["email"], "second apply must not re-encrypt")
	require.Equal(t, hash, record["emailHash"], "second apply must not rehash the envelope")
}

func TestApplyOnWrite_SkipsMissingEmptyAndNonString(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	record := Record{
		"email": "",
		"age":   42,
		"tags":  []string{"a"},
	}
	engine.ApplyOnWrite(record, []string{"email", "phone", "age", "tags"}, []string{"email", "phone"})

	require.Equal(t, "", record["email"])
	require.Equal(t, 42, record["age"])
	require.Equal(t, []string{"a"}, record["tags"])
	require.NotContains(t, record, "emailHash")
	require.NotContains(t, record, "phone")
	require.NotContains(t, record, "phoneHash")
}

func TestApplyOnRead_LeavesPlaintextUntouched(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	record := Record{"email": "legacy plaintext", "notes": 7}
	engine.ApplyOnRead(record, []string{"email", "notes"})

	require.Equal(t, "legacy plaintext", record["email"])
	require.Equal(t, 7, record["notes"])
}

func TestApplyOnRead_FailSoftKeepsEnvelope(t *testing.T) {
	writer := testEngine(t, "write-secret")
	reader := testEngine(t, "other-secret")

	record := Record{"email": "alice@example.com"}
	writer.ApplyOnWrite(record, []string{"email"}, nil)
	stored := record["email"].(string)

	reader.ApplyOnRead(record, []string{"email"})

	// The unresolved field is detectable with IsEncrypted.
	require.Equal(t, stored, record["email"])
	require.True(t, IsEncrypted(record["email"].(string)))
}
