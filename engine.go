package fieldseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// Engine encrypts and decrypts designated record fields and computes blind
// indexes for equality search. It is safe for concurrent use: the derived keys
// are immutable after construction and every call is otherwise stateless.
type Engine struct {
	aead        cipher.AEAD
	indexKey    [32]byte
	defaultNorm Normalizer
	fieldNorms  map[string]Normalizer
	log         *slog.Logger
}

// config holds engine configuration options.
type config struct {
	secret      string
	logger      *slog.Logger
	defaultNorm Normalizer
	fieldNorms  map[string]Normalizer
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		defaultNorm: NormalizeDefault,
		fieldNorms:  make(map[string]Normalizer),
	}
}

// New creates a new Engine with the given options.
// An operator secret must be provided via WithSecret; a missing secret is a
// configuration error, not a degraded mode.
//
// Example:
//
//	engine, err := fieldseal.New(
//	    fieldseal.WithSecret(secret),
//	    fieldseal.WithFieldNormalizer("phone", fieldseal.NormalizePhone),
//	)
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	keys, err := deriveKeys(cfg.secret)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(keys.encryption[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		aead:        aead,
		indexKey:    keys.index,
		defaultNorm: cfg.defaultNorm,
		fieldNorms:  cfg.fieldNorms,
		log:         logger,
	}

	// The raw encryption key is no longer needed once the AEAD is built.
	for i := range keys.encryption {
		keys.encryption[i] = 0
	}

	return e, nil
}

// Encrypt converts a plaintext string into an encrypted envelope.
//
// Empty strings and values already in envelope form are returned unchanged:
// there is nothing to protect in the former, and re-encrypting the latter
// would double-wrap data on repeated writes.
//
// The nonce is freshly random per call, so encrypting the same plaintext twice
// yields two different envelopes. Equality search therefore cannot use the
// envelope itself; see ComputeBlindIndex.
func (e *Engine) Encrypt(plaintext string) string {
	if plaintext == "" || IsEncrypted(plaintext) {
		return plaintext
	}

	nonce := generateNonce()
	sealed := e.aead.Seal(nil, nonce[:], []byte(plaintext), nil)

	// GCM appends the tag to the ciphertext; the envelope stores tag first.
	split := len(sealed) - tagSize
	return encodeEnvelope(nonce[:], sealed[split:], sealed[:split])
}

// Decrypt converts a stored value back to plaintext.
//
// Values without the envelope prefix are returned unchanged, which lets legacy
// unencrypted data flow through reads. If the envelope is malformed or fails
// authentication, Decrypt logs the failure and returns the stored value
// unchanged rather than failing the whole record read; callers that need hard
// guarantees use DecryptStrict or check IsEncrypted on the result.
func (e *Engine) Decrypt(value string) string {
	plaintext, err := e.DecryptStrict(value)
	if err != nil {
		e.log.Warn("field decryption failed, returning stored value", "error", err)
		return value
	}
	return plaintext
}

// DecryptStrict is Decrypt without the fail-soft policy: it returns
// ErrInvalidEnvelope or ErrDecryptionFailed instead of the stored value.
// Rotation and verification use it, since treating undecryptable ciphertext
// as plaintext there would corrupt data.
func (e *Engine) DecryptStrict(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	nonce, tag, ciphertext, err := decodeEnvelope(value)
	if err != nil {
		return "", err
	}

	// Reassemble ciphertext||tag, the layout GCM expects.
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// ComputeBlindIndex computes the keyed blind-index digest for a plaintext
// value using the default normalizer (trim + lowercase).
//
// The digest is deterministic: equal normalized plaintexts always produce
// equal digests, enabling equality lookups on encrypted fields. It is a
// one-way HMAC-SHA256 and does not reveal the plaintext, though it does leak
// whether two records share a value.
func (e *Engine) ComputeBlindIndex(plaintext string) string {
	return e.blindIndex(e.defaultNorm(plaintext))
}

// BlindIndexFor computes the blind-index digest for a named field, honoring a
// per-field normalizer registered with WithFieldNormalizer. Fields without an
// override use the default normalizer.
func (e *Engine) BlindIndexFor(field, plaintext string) string {
	norm, ok := e.fieldNorms[field]
	if !ok {
		norm = e.defaultNorm
	}
	return e.blindIndex(norm(plaintext))
}

// blindIndex computes the hex-encoded HMAC-SHA256 of an already-normalized value.
func (e *Engine) blindIndex(normalized string) string {
	h := hmac.New(sha256.New, e.indexKey[:])
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}

// generateNonce returns a cryptographically random 12-byte GCM nonce.
// Panics if the system's random source fails (unrecoverable).
func generateNonce() [nonceSize]byte {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return nonce
}
