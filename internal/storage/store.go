package storage

import "context"

// Document keys. Each key maps to one whole-document record: the full
// collection is read and written as a unit, there are no partial updates.
const (
	KeyUsers       = "users"
	KeySubmissions = "submissions"
)

// Store is a whole-document key/value store. Load leaves `into` untouched
// when the key is absent or the stored document cannot be parsed — a
// corrupt record is treated as missing, never surfaced as an error.
type Store interface {
	Load(ctx context.Context, key string, into interface{}) error
	Save(ctx context.Context, key string, data interface{}) error
}
