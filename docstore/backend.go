package docstore

import "context"

// Backend is the raw document storage a Store drives. Documents cross this
// boundary in wire form: sensitive fields are already envelopes and blind
// indexes are already computed, so backends need no knowledge of encryption.
//
// Backends return ErrNotFound from Get when no document matches.
type Backend interface {
	// Put upserts a document by collection and id.
	Put(ctx context.Context, collection, id string, doc map[string]any) error

	// Get returns the document with the given id.
	Get(ctx context.Context, collection, id string) (map[string]any, error)

	// FindByHash returns the documents whose hashField attribute equals digest.
	FindByHash(ctx context.Context, collection, hashField, digest string) ([]map[string]any, error)

	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([]map[string]any, error)

	// Delete removes a document; deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// ReplaceAll drops the collection's documents and inserts the given ones,
	// atomically where the backend supports it.
	ReplaceAll(ctx context.Context, collection string, docs []map[string]any) error

	// Close releases backend resources.
	Close() error
}
