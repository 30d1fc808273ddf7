package backup

import (
	"fmt"
	"io"
	"os"

	"filippo.io/age"
)

// Encryptor encrypts snapshot archives at rest. Snapshots already hold field
// envelopes, but they also hold every non-sensitive attribute in the clear, so
// archives shipped off-box get a second layer.
type Encryptor interface {
	Encrypt(dst io.Writer, src io.Reader) error
	Decrypt(dst io.Writer, src io.Reader) error
}

// AgeEncryptor implements Encryptor with filippo.io/age.
type AgeEncryptor struct {
	recipients []age.Recipient
	identities []age.Identity
}

var _ Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor loads an age recipient file (for backup) and identity file
// (for restore). Either path may be empty when only one direction is needed;
// the missing direction then fails with a clear error.
func NewAgeEncryptor(recipientPath, identityPath string) (*AgeEncryptor, error) {
	e := &AgeEncryptor{}

	if recipientPath != "" {
		f, err := os.Open(recipientPath)
		if err != nil {
			return nil, fmt.Errorf("backup: opening recipient file: %w", err)
		}
		e.recipients, err = age.ParseRecipients(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("backup: parsing recipients: %w", err)
		}
	}

	if identityPath != "" {
		f, err := os.Open(identityPath)
		if err != nil {
			return nil, fmt.Errorf("backup: opening identity file: %w", err)
		}
		e.identities, err = age.ParseIdentities(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("backup: parsing identities: %w", err)
		}
	}

	return e, nil
}

// NewScryptEncryptor builds an Encryptor from a passphrase, for deployments
// without an age key pair.
func NewScryptEncryptor(passphrase string) (*AgeEncryptor, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("backup: creating scrypt recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("backup: creating scrypt identity: %w", err)
	}
	return &AgeEncryptor{
		recipients: []age.Recipient{recipient},
		identities: []age.Identity{identity},
	}, nil
}

// Encrypt implements Encryptor.
func (e *AgeEncryptor) Encrypt(dst io.Writer, src io.Reader) error {
	if len(e.recipients) == 0 {
		return fmt.Errorf("backup: no age recipients configured")
	}
	w, err := age.Encrypt(dst, e.recipients...)
	if err != nil {
		return fmt.Errorf("backup: creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("backup: encrypting archive: %w", err)
	}
	return w.Close()
}

// Decrypt implements Encryptor.
func (e *AgeEncryptor) Decrypt(dst io.Writer, src io.Reader) error {
	if len(e.identities) == 0 {
		return fmt.Errorf("backup: no age identities configured")
	}
	r, err := age.Decrypt(src, e.identities...)
	if err != nil {
		return fmt.Errorf("backup: decrypting archive: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("backup: reading decrypted archive: %w", err)
	}
	return nil
}
