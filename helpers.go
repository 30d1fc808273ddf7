package fieldseal

import "encoding/json"

// EncryptJSON marshals a value to JSON and encrypts the result, for storing
// small structured payloads in a single encrypted field.
func EncryptJSON[T any](e *Engine, value T) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return e.Encrypt(string(raw)), nil
}

// DecryptJSON decrypts a stored value and unmarshals the JSON plaintext.
// Decryption is strict: an undecryptable envelope returns an error rather
// than attempting to parse ciphertext.
func DecryptJSON[T any](e *Engine, stored string) (T, error) {
	var result T

	plaintext, err := e.DecryptStrict(stored)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(plaintext), &result); err != nil {
		return result, err
	}
	return result, nil
}
