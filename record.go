package fieldseal

// Record is the document representation the engine transforms at the
// persistence boundary. Sensitive fields are string-valued; anything else is
// left untouched by the transforms.
type Record = map[string]any

// HashSuffix is appended to a field name to form its blind-index sibling.
// The email field's digest is stored as emailHash, and so on.
const HashSuffix = "Hash"

// HashField returns the name of the blind-index sibling for a field.
func HashField(field string) string {
	return field + HashSuffix
}

// ApplyOnWrite prepares a record for persistence: it computes blind indexes
// for the indexed fields and then encrypts the sensitive fields in place.
// It returns the same record for chaining.
//
// The order is load-bearing: blind indexes must be computed from the plaintext
// before encryption replaces it, otherwise the stored digest would be a hash
// of ciphertext and equality search would never match.
//
// Fields that are missing, empty, non-string, or already in envelope form are
// skipped, which makes the transform idempotent: re-applying it to an
// already-prepared record changes nothing.
func (e *Engine) ApplyOnWrite(record Record, sensitiveFields, blindIndexFields []string) Record {
	for _, field := range blindIndexFields {
		if value, ok := plaintextField(record, field); ok {
			record[HashField(field)] = e.BlindIndexFor(field, value)
		}
	}

	for _, field := range sensitiveFields {
		if value, ok := plaintextField(record, field); ok {
			record[field] = e.Encrypt(value)
		}
	}

	return record
}

// ApplyOnRead prepares a loaded record for presentation: every sensitive field
// holding an envelope is decrypted in place. Non-envelope values are left
// untouched, so records written before a field was designated sensitive still
// read cleanly. It returns the same record for chaining.
//
// Decryption is fail-soft per Decrypt: a field whose envelope cannot be
// authenticated keeps its stored value. Callers needing to detect that can
// check IsEncrypted on the field afterwards.
func (e *Engine) ApplyOnRead(record Record, sensitiveFields []string) Record {
	for _, field := range sensitiveFields {
		if value, ok := record[field].(string); ok && IsEncrypted(value) {
			record[field] = e.Decrypt(value)
		}
	}
	return record
}

// plaintextField returns the field's value when it is a non-empty plaintext string.
func plaintextField(record Record, field string) (string, bool) {
	value, ok := record[field].(string)
	if !ok || value == "" || IsEncrypted(value) {
		return "", false
	}
	return value, true
}
