package app

import "github.com/fieldseal/fieldseal/docstore"

// Collections declares the agency dataset: which record types exist, which of
// their fields are encrypted at rest, and which of those support equality
// search. The audit trail is a plain collection so it stays readable without
// the operator secret.
func Collections() []docstore.Collection {
	return []docstore.Collection{
		{
			Name:      "clients",
			Sensitive: []string{"name", "email", "phone", "address"},
			Indexed:   []string{"email"},
		},
		{
			Name: "categories",
		},
		{
			Name:      "tasks",
			Sensitive: []string{"title", "description"},
			Indexed:   []string{"title"},
		},
		{
			Name:      "team",
			Sensitive: []string{"name", "email"},
			Indexed:   []string{"email"},
		},
		{
			Name:      "users",
			Sensitive: []string{"email"},
			Indexed:   []string{"email"},
		},
		{
			Name: "audit",
		},
	}
}
