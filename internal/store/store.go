// Package store provides a small document-store abstraction over named
// collections of JSON documents. Mutations are conditional: they report how
// many documents matched, and callers decide what a zero count means.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNoDocuments is returned by FindOne when nothing matches the filter.
	ErrNoDocuments = errors.New("store: no documents found")
	// ErrDuplicateKey is returned by Insert when a unique constraint is violated.
	ErrDuplicateKey = errors.New("store: duplicate key")
)

// Filter selects documents. All populated fields must match (logical AND).
// A zero Filter matches every document in the collection.
type Filter struct {
	// ID matches the document's primary identifier when non-empty.
	ID string
	// Eq matches top-level string fields for equality.
	Eq map[string]string
	// Elem matches documents whose array field contains at least one
	// element satisfying the predicate.
	Elem *ElemMatch
}

// ElemMatch is a predicate over elements of an embedded array field:
// some element of Field has Key equal to Value.
type ElemMatch struct {
	Field string
	Key   string
	Value string
}

// Patch describes a document modification. Operations may be combined;
// Set applies first, then Push, then Pull.
type Patch struct {
	// Set merges the given top-level fields into the document.
	Set map[string]any
	// Push appends a value to an array field, creating it if absent.
	Push *ElemPush
	// Pull removes every element of an array field matching the predicate.
	Pull *ElemMatch
}

// ElemPush appends Value to the array field named Field.
type ElemPush struct {
	Field string
	Value any
}

// Collection is a named set of JSON documents. Each operation is atomic at
// the single-document level; the store offers no cross-document transactions.
type Collection interface {
	// Insert stores the document and returns its generated id. The id is
	// also written into the document under the "id" key.
	Insert(ctx context.Context, doc any) (string, error)
	// FindOne returns the first document matching the filter, or
	// ErrNoDocuments.
	FindOne(ctx context.Context, f Filter) (json.RawMessage, error)
	// FindMany returns all documents matching the filter in insertion order.
	FindMany(ctx context.Context, f Filter) ([]json.RawMessage, error)
	// UpdateConditional applies the patch to every matching document and
	// returns the number of documents matched.
	UpdateConditional(ctx context.Context, f Filter, p Patch) (int64, error)
	// DeleteConditional removes every matching document and returns the
	// number of documents removed.
	DeleteConditional(ctx context.Context, f Filter) (int64, error)
}
