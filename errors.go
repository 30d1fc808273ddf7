package fieldseal

import "errors"

var (
	// ErrNoSecret indicates the engine was constructed without an operator secret.
	// All security properties depend on the secret existing, so this is fatal.
	ErrNoSecret = errors.New("fieldseal: no secret provided")

	// ErrDecryptionFailed indicates AEAD authentication failed (wrong secret or
	// tampered/corrupted ciphertext).
	ErrDecryptionFailed = errors.New("fieldseal: decryption failed")

	// ErrInvalidEnvelope indicates the value carries the envelope prefix but the
	// payload is malformed (bad base64 or too short to hold nonce and tag).
	ErrInvalidEnvelope = errors.New("fieldseal: invalid envelope")
)
