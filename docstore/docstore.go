// Package docstore is a JSON document store with field-level encryption
// applied at the persistence boundary. Writes run the encryption engine's
// apply-on-write transform (blind indexes, then envelopes); reads run
// apply-on-read. Equality lookups on encrypted fields go through the stored
// blind-index siblings, so the backend never sees plaintext for sensitive
// fields.
//
// Two backends are provided: SQLite (embedded, json_extract lookups) and
// MongoDB. Both speak the same Backend interface.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/fieldseal/fieldseal"
	"github.com/fieldseal/fieldseal/audit"
)

var (
	// ErrUnknownCollection indicates the collection was not declared to the store.
	ErrUnknownCollection = errors.New("docstore: unknown collection")

	// ErrNotFound indicates no document with the given id exists.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrFieldNotIndexed indicates an equality lookup on a field that has no
	// blind index declared.
	ErrFieldNotIndexed = errors.New("docstore: field is not blind-indexed")
)

// Collection declares a record type: which fields are encrypted at rest and
// which of those additionally carry a blind index for equality search.
type Collection struct {
	Name      string
	Sensitive []string // fields encrypted at rest
	Indexed   []string // subset of Sensitive with a <field>Hash sibling
}

// Store applies the encryption engine at the record-save and record-load
// extension points of a Backend. It is safe for concurrent use if the backend is.
type Store struct {
	engine      *fieldseal.Engine
	backend     Backend
	collections map[string]Collection
	order       []string
	audit       audit.Sink
	log         *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithAuditSink sets the sink that receives decrypt-failure events observed
// during reads. Defaults to no auditing.
func WithAuditSink(sink audit.Sink) StoreOption {
	return func(s *Store) { s.audit = sink }
}

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// New creates a Store over the given backend for the declared collections.
func New(engine *fieldseal.Engine, backend Backend, collections []Collection, opts ...StoreOption) (*Store, error) {
	s := &Store{
		engine:      engine,
		backend:     backend,
		collections: make(map[string]Collection, len(collections)),
		audit:       audit.Nop{},
		log:         slog.Default(),
	}
	for _, col := range collections {
		if col.Name == "" {
			return nil, fmt.Errorf("docstore: collection with empty name")
		}
		if _, dup := s.collections[col.Name]; dup {
			return nil, fmt.Errorf("docstore: duplicate collection %q", col.Name)
		}
		for _, field := range col.Indexed {
			if !slices.Contains(col.Sensitive, field) {
				return nil, fmt.Errorf("docstore: indexed field %q of %q is not sensitive", field, col.Name)
			}
		}
		s.collections[col.Name] = col
		s.order = append(s.order, col.Name)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Collections returns the declared collections in declaration order.
func (s *Store) Collections() []Collection {
	out := make([]Collection, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.collections[name])
	}
	return out
}

// Put writes a record. A missing or empty "id" gets a fresh UUID. Sensitive
// fields are blind-indexed and encrypted in place before the record reaches
// the backend; the returned id identifies the stored document.
func (s *Store) Put(ctx context.Context, collection string, record fieldseal.Record) (string, error) {
	col, ok := s.collections[collection]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	id, _ := record["id"].(string)
	if id == "" {
		id = uuid.NewString()
		record["id"] = id
	}

	s.engine.ApplyOnWrite(record, col.Sensitive, col.Indexed)

	if err := s.backend.Put(ctx, collection, id, record); err != nil {
		return "", fmt.Errorf("docstore: put %s/%s: %w", collection, id, err)
	}
	return id, nil
}

// Get loads a record by id and decrypts its sensitive fields. A field whose
// envelope cannot be opened keeps its stored value (fail-soft); each such
// field is reported to the audit sink.
func (s *Store) Get(ctx context.Context, collection, id string) (fieldseal.Record, error) {
	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	doc, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, col, doc), nil
}

// FindByIndex returns the decrypted records whose field equals the query
// value under the field's normalizer. The field must be declared in the
// collection's Indexed set.
func (s *Store) FindByIndex(ctx context.Context, collection, field, query string) ([]fieldseal.Record, error) {
	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if !slices.Contains(col.Indexed, field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotIndexed, collection, field)
	}

	term := s.engine.SearchTerm(field, query)
	docs, err := s.backend.FindByHash(ctx, collection, term.Field, term.Digest)
	if err != nil {
		return nil, fmt.Errorf("docstore: find %s by %s: %w", collection, field, err)
	}

	records := make([]fieldseal.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, s.open(ctx, col, doc))
	}
	return records, nil
}

// List returns every record of a collection, decrypted.
func (s *Store) List(ctx context.Context, collection string) ([]fieldseal.Record, error) {
	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	docs, err := s.backend.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	records := make([]fieldseal.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, s.open(ctx, col, doc))
	}
	return records, nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return s.backend.Delete(ctx, collection, id)
}

// Export returns every record of a collection in wire form: envelopes and
// hash siblings intact, nothing decrypted. Backups run on this representation
// so snapshots never contain plaintext for sensitive fields.
func (s *Store) Export(ctx context.Context, collection string) ([]fieldseal.Record, error) {
	if _, ok := s.collections[collection]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return s.backend.List(ctx, collection)
}

// ReplaceAll atomically replaces the whole collection with the given records,
// which are stored exactly as given (wire form). This is the restore
// primitive: snapshots hold envelopes, and re-encrypting them would both
// double-wrap and invalidate the stored blind indexes.
func (s *Store) ReplaceAll(ctx context.Context, collection string, records []fieldseal.Record) error {
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	docs := make([]map[string]any, 0, len(records))
	for _, r := range records {
		docs = append(docs, r)
	}
	return s.backend.ReplaceAll(ctx, collection, docs)
}

// InsertRaw writes a record without any field transform. It backs the audit
// trail's store sink; audit events are stored in the clear.
func (s *Store) InsertRaw(ctx context.Context, collection string, record map[string]any) error {
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	id, _ := record["id"].(string)
	if id == "" {
		id = uuid.NewString()
		record["id"] = id
	}
	return s.backend.Put(ctx, collection, id, record)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// open decrypts a loaded document and audits any field that stayed encrypted.
func (s *Store) open(ctx context.Context, col Collection, doc map[string]any) fieldseal.Record {
	s.engine.ApplyOnRead(doc, col.Sensitive)

	for _, field := range col.Sensitive {
		value, ok := doc[field].(string)
		if !ok || !fieldseal.IsEncrypted(value) {
			continue
		}
		id, _ := doc["id"].(string)
		s.log.WarnContext(ctx, "field stayed encrypted after read",
			"collection", col.Name, "id", id, "field", field)

		ev := audit.New("docstore", audit.ActionDecryptFailed)
		ev.Collection = col.Name
		ev.RecordID = id
		ev.Detail = map[string]string{"field": field}
		if err := s.audit.Emit(ctx, ev); err != nil {
			s.log.ErrorContext(ctx, "audit emit failed", "error", err)
		}
	}
	return doc
}
