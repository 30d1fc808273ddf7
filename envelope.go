package fieldseal

import (
	"encoding/base64"
	"strings"
)

// Envelope format:
//
//	"enc:v1:" + base64(nonce[12] || tag[16] || ciphertext)
//
// The segments are fixed-width, so decryption slices deterministically:
// the first 12 bytes are the GCM nonce, the next 16 the authentication tag,
// and the remainder the ciphertext. The prefix makes stored values
// self-describing; anything without it is treated as plaintext.

const (
	// EnvelopePrefix marks a stored value as an encrypted envelope.
	EnvelopePrefix = "enc:v1:"

	nonceSize = 12
	tagSize   = 16
)

// IsEncrypted reports whether a stored value is an encrypted envelope.
// It is a pure predicate on the version prefix and does not validate the payload.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EnvelopePrefix)
}

// encodeEnvelope assembles the envelope string from its fixed-order segments.
func encodeEnvelope(nonce, tag, ciphertext []byte) string {
	buf := make([]byte, 0, len(nonce)+len(tag)+len(ciphertext))
	buf = append(buf, nonce...)
	buf = append(buf, tag...)
	buf = append(buf, ciphertext...)
	return EnvelopePrefix + base64.StdEncoding.EncodeToString(buf)
}

// decodeEnvelope splits an envelope into nonce, tag, and ciphertext.
// The caller must have checked IsEncrypted first.
func decodeEnvelope(value string) (nonce, tag, ciphertext []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EnvelopePrefix))
	if err != nil {
		return nil, nil, nil, ErrInvalidEnvelope
	}

	// Empty plaintexts are never encrypted, so a valid payload always has at
	// least one ciphertext byte after the nonce and tag.
	if len(raw) < nonceSize+tagSize+1 {
		return nil, nil, nil, ErrInvalidEnvelope
	}

	nonce = raw[:nonceSize]
	tag = raw[nonceSize : nonceSize+tagSize]
	ciphertext = raw[nonceSize+tagSize:]
	return nonce, tag, ciphertext, nil
}
