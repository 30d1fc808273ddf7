package fieldseal

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Info string for HKDF derivation of the blind-index key. A distinct info
// string keeps the HMAC key cryptographically separate from the encryption key.
const infoBlindIndex = "fieldseal/blind-index/v1"

// derivedKeys holds the encryption and HMAC keys derived from the operator secret.
// Derived once at engine construction and held for the life of the engine.
type derivedKeys struct {
	encryption [32]byte // AES-256-GCM key
	index      [32]byte // HMAC-SHA256 key for blind indexes
}

// deriveKeys derives both keys from an operator secret of arbitrary length.
//
// The encryption key is SHA-256(secret): unsalted on purpose, so the key is
// stable across processes and restarts and previously encrypted data stays
// decryptable under the same secret. The blind-index key is derived from the
// encryption key with HKDF-SHA256, which is equally deterministic (HKDF with a
// nil salt uses a fixed zero salt).
func deriveKeys(secret string) (*derivedKeys, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	keys := &derivedKeys{encryption: sha256.Sum256([]byte(secret))}

	if err := hkdfDerive(keys.encryption[:], infoBlindIndex, keys.index[:]); err != nil {
		return nil, err
	}

	return keys, nil
}

// hkdfDerive performs HKDF-SHA256 key derivation with the given info string.
func hkdfDerive(key []byte, info string, out []byte) error {
	reader := hkdf.New(sha256.New, key, nil, []byte(info))
	_, err := io.ReadFull(reader, out)
	return err
}
