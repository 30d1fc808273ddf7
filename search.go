package fieldseal

// SearchTerm is a blind-index equality condition: match documents whose Field
// attribute equals Digest. It is storage-agnostic; the document store turns it
// into whatever filter its backend speaks (a json_extract comparison, a BSON
// filter, an in-memory scan).
type SearchTerm struct {
	Field  string // blind-index sibling name, e.g. "emailHash"
	Digest string // hex HMAC digest of the normalized query
}

// SearchTerm builds the equality condition for looking up records by an
// encrypted field's value. The query is normalized with the field's normalizer
// before the digest is computed, so lookups match regardless of case and
// surrounding whitespace at input time (with the default normalizer).
//
// Example:
//
//	term := engine.SearchTerm("email", "ALICE@example.com ")
//	// term.Field == "emailHash"
//	// term.Digest matches records stored with any casing of the address
func (e *Engine) SearchTerm(field, query string) SearchTerm {
	return SearchTerm{
		Field:  HashField(field),
		Digest: e.BlindIndexFor(field, query),
	}
}

// Matches reports whether a record's stored blind index satisfies the term.
// Useful for in-memory filtering; database backends compare the digest in the
// query instead.
func (t SearchTerm) Matches(record Record) bool {
	stored, ok := record[t.Field].(string)
	return ok && stored == t.Digest
}
