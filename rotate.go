package fieldseal

import "fmt"

// Rotator migrates encrypted data from one operator secret to another.
// Construct one engine per secret and rotate record by record; once every
// record is rewritten, the old secret can be retired.
type Rotator struct {
	old *Engine
	new *Engine
}

// NewRotator creates a Rotator that decrypts with old and re-encrypts with new.
func NewRotator(old, new *Engine) *Rotator {
	return &Rotator{old: old, new: new}
}

// RotateValue re-encrypts a single envelope under the new secret.
// Plaintext (non-envelope) values are returned unchanged; they get encrypted
// by the normal write path, not by rotation.
//
// Decryption is strict: an envelope the old secret cannot open aborts the
// rotation rather than being silently re-wrapped as if it were plaintext.
func (r *Rotator) RotateValue(stored string) (string, error) {
	if !IsEncrypted(stored) {
		return stored, nil
	}

	plaintext, err := r.old.DecryptStrict(stored)
	if err != nil {
		return "", err
	}
	return r.new.Encrypt(plaintext), nil
}

// RotateRecord re-encrypts every sensitive field of a record under the new
// secret and recomputes the blind indexes for the indexed fields, in place.
//
// The record is only mutated on success: all envelopes are opened with the old
// secret first, and any failure aborts before anything is rewritten.
func (r *Rotator) RotateRecord(record Record, sensitiveFields, blindIndexFields []string) error {
	opened := make(map[string]string, len(sensitiveFields))
	for _, field := range sensitiveFields {
		stored, ok := record[field].(string)
		if !ok || !IsEncrypted(stored) {
			continue
		}
		plaintext, err := r.old.DecryptStrict(stored)
		if err != nil {
			return fmt.Errorf("rotate field %q: %w", field, err)
		}
		opened[field] = plaintext
	}

	for field, plaintext := range opened {
		record[field] = plaintext
	}
	r.new.ApplyOnWrite(record, sensitiveFields, blindIndexFields)
	return nil
}
