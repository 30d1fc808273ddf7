// Package fieldseal provides transparent field-level encryption for document
// records, with blind indexing support for equality search on encrypted fields.
//
// Designated record fields are encrypted before they reach storage and
// decrypted when a record is loaded, so the database never sees the plaintext.
// Blind indexes enable exact-match lookups on encrypted fields without
// revealing the plaintext to the database.
//
// # Encryption
//
// Fields are encrypted with AES-256-GCM using a fresh random 12-byte nonce per
// call. The encryption key is the SHA-256 digest of an operator-supplied
// secret, so previously encrypted data stays decryptable across restarts with
// the same secret. A separate HMAC key for blind indexes is derived from the
// encryption key with HKDF-SHA256, giving cryptographic separation between the
// two uses.
//
// Encrypted values are stored as self-describing string envelopes:
//
//	"enc:v1:" + base64(nonce[12] || tag[16] || ciphertext)
//
// The prefix lets the engine distinguish envelopes from plaintext, so legacy
// unencrypted values pass through reads untouched and re-encrypting an
// envelope is a no-op.
//
// # Basic Usage
//
//	engine, err := fieldseal.New(fieldseal.WithSecret(os.Getenv("FIELDSEAL_SECRET")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	envelope := engine.Encrypt("alice@example.com")
//	plaintext := engine.Decrypt(envelope)
//
// # Record Transforms
//
// The engine is applied at the two persistence extension points: just before a
// record is written and just after it is read.
//
//	record := fieldseal.Record{"email": "alice@example.com", "notes": "vip"}
//	engine.ApplyOnWrite(record, []string{"email", "notes"}, []string{"email"})
//	// record["email"] and record["notes"] are now envelopes;
//	// record["emailHash"] is the blind index of the plaintext email.
//
//	engine.ApplyOnRead(record, []string{"email", "notes"})
//	// plaintext restored
//
// Blind indexes are computed from the plaintext before encryption replaces it;
// equal normalized plaintexts always produce equal digests.
//
// # Searchable Encryption
//
// Blind indexes are keyed HMAC-SHA256 digests over normalized input
// (trimmed and lowercased by default), stored as a `<field>Hash` sibling of
// the encrypted field. A lookup computes the same digest and matches it
// against the stored sibling:
//
//	term := engine.SearchTerm("email", " ALICE@Example.com ")
//	// query documents where term.Field equals term.Digest
//
// Use the same normalizer on write and search; see Normalizer.
//
// # Failure Policy
//
// Decrypt never panics and never returns an error: if authentication fails
// (tampered data, wrong secret, corrupted envelope) it logs the failure and
// returns the stored value unchanged, so one corrupted field does not abort an
// entire record read. Callers that need hard guarantees use DecryptStrict, or
// check IsEncrypted on the returned value to detect an unresolved decryption.
//
// # Secret Rotation
//
// Rotator re-encrypts envelopes produced under an old secret and recomputes
// blind indexes under a new one:
//
//	rot := fieldseal.NewRotator(oldEngine, newEngine)
//	err := rot.RotateRecord(record, sensitive, indexed)
package fieldseal
