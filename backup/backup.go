// Package backup produces consistent full-dataset snapshots of the document
// store and restores them with replace-all semantics.
//
// Snapshots operate below the decryption boundary: records are exported in
// wire form, so sensitive fields stay encrypted inside the archive and a
// restore reinstates both the envelopes and the blind indexes exactly as they
// were. The serialized snapshot is zstd-compressed and, optionally,
// age-encrypted before it reaches the target.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldseal/fieldseal"
	"github.com/fieldseal/fieldseal/audit"
	"github.com/fieldseal/fieldseal/docstore"
)

// SnapshotVersion is the current archive format version.
const SnapshotVersion = 1

// encryptedSuffix marks archives that carry an age layer.
const encryptedSuffix = ".age"

var (
	// ErrCorruptSnapshot indicates the archive could not be decompressed or parsed.
	ErrCorruptSnapshot = errors.New("backup: corrupt snapshot")

	// ErrUnsupportedVersion indicates the archive was written by an
	// incompatible format version.
	ErrUnsupportedVersion = errors.New("backup: unsupported snapshot version")
)

// Snapshot is the serialized form of the whole dataset: every declared
// collection, wire form, keyed by collection name.
type Snapshot struct {
	Version     int                           `json:"version"`
	ID          string                        `json:"id"`
	CreatedAt   time.Time                     `json:"createdAt"`
	Collections map[string][]fieldseal.Record `json:"collections"`
}

// Service snapshots and restores a document store.
type Service struct {
	store  *docstore.Store
	target Target
	enc    Encryptor
	audit  audit.Sink
	log    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEncryptor enables at-rest encryption of snapshot archives.
func WithEncryptor(enc Encryptor) ServiceOption {
	return func(s *Service) { s.enc = enc }
}

// WithAuditSink sets the sink receiving backup/restore events.
func WithAuditSink(sink audit.Sink) ServiceOption {
	return func(s *Service) { s.audit = sink }
}

// WithLogger sets the service logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates a backup service over a store and a target.
func NewService(store *docstore.Store, target Target, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		target: target,
		audit:  audit.Nop{},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backup exports every declared collection and writes one archive to the
// target. It returns the archive name.
func (s *Service) Backup(ctx context.Context) (string, error) {
	snap := Snapshot{
		Version:     SnapshotVersion,
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Collections: make(map[string][]fieldseal.Record),
	}

	for _, col := range s.store.Collections() {
		records, err := s.store.Export(ctx, col.Name)
		if err != nil {
			return "", fmt.Errorf("backup: exporting %s: %w", col.Name, err)
		}
		if records == nil {
			records = []fieldseal.Record{}
		}
		snap.Collections[col.Name] = records
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("backup: serializing snapshot: %w", err)
	}

	archive, err := compress(raw)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("snap-%s-%s.fsnap",
		snap.CreatedAt.Format("20060102T150405Z"), snap.ID[:8])

	if s.enc != nil {
		var sealed bytes.Buffer
		if err := s.enc.Encrypt(&sealed, bytes.NewReader(archive)); err != nil {
			return "", err
		}
		archive = sealed.Bytes()
		name += encryptedSuffix
	}

	if err := s.target.Put(ctx, name, bytes.NewReader(archive)); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "snapshot written",
		"name", name, "collections", len(snap.Collections), "bytes", len(archive))
	s.emit(ctx, audit.ActionBackup, map[string]string{"snapshot": name})
	return name, nil
}

// Restore fetches the named archive and replaces every collection it contains.
// Collections declared to the store but absent from the snapshot are left
// untouched; collections in the snapshot that the store does not declare are
// skipped with a warning.
func (s *Service) Restore(ctx context.Context, name string) error {
	var buf bytes.Buffer
	if err := s.target.Get(ctx, name, &buf); err != nil {
		return err
	}
	archive := buf.Bytes()

	if strings.HasSuffix(name, encryptedSuffix) {
		if s.enc == nil {
			return fmt.Errorf("backup: %s is encrypted and no encryptor is configured", name)
		}
		var opened bytes.Buffer
		if err := s.enc.Decrypt(&opened, bytes.NewReader(archive)); err != nil {
			return err
		}
		archive = opened.Bytes()
	}

	raw, err := decompress(archive)
	if err != nil {
		return err
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}

	declared := make(map[string]bool)
	for _, col := range s.store.Collections() {
		declared[col.Name] = true
	}

	for colName, records := range snap.Collections {
		if !declared[colName] {
			s.log.WarnContext(ctx, "snapshot collection not declared, skipping", "collection", colName)
			continue
		}
		if err := s.store.ReplaceAll(ctx, colName, records); err != nil {
			return fmt.Errorf("backup: restoring %s: %w", colName, err)
		}
	}

	s.log.InfoContext(ctx, "snapshot restored", "name", name, "snapshot_id", snap.ID)
	s.emit(ctx, audit.ActionRestore, map[string]string{"snapshot": name, "snapshot_id": snap.ID})
	return nil
}

// List returns the archive names available on the target.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.target.List(ctx)
}

func (s *Service) emit(ctx context.Context, action string, detail map[string]string) {
	ev := audit.New("backup", action)
	ev.Detail = detail
	if err := s.audit.Emit(ctx, ev); err != nil {
		s.log.ErrorContext(ctx, "audit emit failed", "error", err)
	}
}
