package fieldseal

import "log/slog"

// Option is a functional option for configuring an Engine.
type Option func(*config)

// WithSecret sets the operator secret the engine derives its keys from.
// The secret may be any non-empty string; it is hashed, never stored.
func WithSecret(secret string) Option {
	return func(c *config) {
		c.secret = secret
	}
}

// WithLogger sets the logger used to report fail-soft decryption failures.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDefaultNormalizer sets the normalizer applied before computing blind
// indexes for fields without a per-field override.
// Defaults to NormalizeDefault (trim + lowercase).
func WithDefaultNormalizer(norm Normalizer) Option {
	return func(c *config) {
		c.defaultNorm = norm
	}
}

// WithFieldNormalizer registers a normalizer for a specific field name, used
// by BlindIndexFor and the record transforms.
//
// IMPORTANT: the same normalizer must be in effect on both write and search;
// mixing normalizers breaks lookups.
func WithFieldNormalizer(field string, norm Normalizer) Option {
	return func(c *config) {
		if c.fieldNorms == nil {
			c.fieldNorms = make(map[string]Normalizer)
		}
		c.fieldNorms[field] = norm
	}
}
