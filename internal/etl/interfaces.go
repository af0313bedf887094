package etl

import "context"

// Extractor reads every document of one legacy collection (or table).
type Extractor interface {
	Extract(ctx context.Context, collection string) ([]map[string]interface{}, error)
}

// Loader writes unified documents.
type Loader interface {
	// Insert writes docs to collection and returns how many were written.
	Insert(ctx context.Context, collection string, docs []interface{}) (int, error)
	// EnsureCollection creates collection if it does not exist yet.
	EnsureCollection(ctx context.Context, collection string) error
}

// IndexEnsurer is implemented by loaders that can create secondary indexes.
type IndexEnsurer interface {
	EnsureIndexes(ctx context.Context) []error
}
