package fieldseal

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"enc:v1:AAAA", true},
		{"enc:v1:", true},
		{"enc:v2:AAAA", false},
		{"plaintext", false},
		{"", false},
		{"ENC:V1:AAAA", false}, // prefix is case-sensitive
		{" enc:v1:AAAA", false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, IsEncrypted(tt.value), tt.value)
	}
}

func TestEnvelope_Layout(t *testing.T) {
	engine := testEngine(t, "s3cr3t")

	plaintext := "layout check"
	envelope := engine.Encrypt(plaintext)

	require.True(t, strings.HasPrefix(envelope, EnvelopePrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(envelope, EnvelopePrefix))
	require.NoError(t, err)

	// nonce(12) + tag(16) + one ciphertext byte per plaintext byte (GCM is a
	// stream mode, no padding).
	require.Len(t, raw, nonceSize+tagSize+len(plaintext))
}

func TestDecodeEnvelope_MinimumLength(t *testing.T) {
	// nonce + tag with no ciphertext is malformed.
	exact := EnvelopePrefix + base64.StdEncoding.EncodeToString(make([]byte, nonceSize+tagSize))
	_, _, _, err := decodeEnvelope(exact)
	require.ErrorIs(t, err, ErrInvalidEnvelope)

	// One ciphertext byte is the minimum valid payload.
	min := EnvelopePrefix + base64.StdEncoding.EncodeToString(make([]byte, nonceSize+tagSize+1))
	nonce, tag, ciphertext, err := decodeEnvelope(min)
	require.NoError(t, err)
	require.Len(t, nonce, nonceSize)
	require.Len(t, tag, tagSize)
	require.Len(t, ciphertext, 1)
}
