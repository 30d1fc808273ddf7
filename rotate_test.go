package fieldseal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRotateValue(t *testing.T) {
	oldEngine := testEngine(t, "old-secret")
	newEngine := testEngine(t, "new-secret")
	rot := NewRotator(oldEngine, newEngine)

	envelope := oldEngine.Encrypt("rotate me")

	rotated, err := rot.RotateValue(envelope)
	require.NoError(t, err)
	require.NotEqual(t, envelope, rotated)
	require.Equal(t, "rotate me", newEngine.Decrypt(rotated))

	// The old engine can no longer open the rotated value.
	_, err = oldEngine.DecryptStrict(rotated)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestRotateValue_PlaintextPassthrough(t *testing.T) {
	rot := NewRotator(testEngine(t, "old"), testEngine(t, "new"))

	got, err := rot.RotateValue("never encrypted")
	require.NoError(t, err)
	require.Equal(t, "never encrypted", got)
}

func TestRotateValue_WrongOldSecret(t *testing.T) {
	stranger := testEngine(t, "stranger")
	rot := NewRotator(testEngine(t, "old"), testEngine(t, "new"))

	_, err := rot.RotateValue(stranger.Encrypt("opaque"))
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestRotateRecord(t *testing.T) {
	oldEngine := testEngine(t, "old-secret")
	newEngine := testEngine(t, "new-secret")
	rot := NewRotator(oldEngine, newEngine)

	record := Record{"email": "alice@example.com", "notes": "vip client"}
	oldEngine.ApplyOnWrite(record, []string{"email", "notes"}, []string{"email"})
	oldHash := record["emailHash"]

	require.NoError(t, rot.RotateRecord(record, []string{"email", "notes"}, []string{"email"}))

	require.True(t, IsEncrypted(record["email"].(string)))
	require.True(t, IsEncrypted(record["notes"].(string)))
	require.NotEqual(t, oldHash, record["emailHash"], "blind index must be rekeyed")
	require.Equal(t, newEngine.ComputeBlindIndex("alice@example.com"), record["emailHash"])

	newEngine.ApplyOnRead(record, []string{"email", "notes"})
	require.Equal(t, "alice@example.com", record["email"])
	require.Equal(t, "vip client", record["notes"])
}

func TestRotateRecord_AbortsBeforeMutation(t *testing.T) {
	oldEngine := testEngine(t, "old-secret")
	stranger := testEngine(t, "stranger")
	rot := NewRotator(oldEngine, testEngine(t, "new-secret"))

	good := oldEngine.Encrypt("readable")
	bad := stranger.Encrypt("unreadable")
	record := Record{"a": good, "b": bad}

	err := rot.RotateRecord(record, []string{"a", "b"}, nil)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	// Nothing was rewritten.
	require.Equal(t, good, record["a"])
	require.Equal(t, bad, record["b"])
}
