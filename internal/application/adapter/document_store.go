// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// Document is a schemaless record as held by the external document store.
// Values survive a JSON round trip: strings, bools, float64 numbers, nested
// maps and slices.
type Document map[string]any

// DocumentStore defines the contract of the external persistence provider.
// The wire format of stored documents is owned by the store itself.
type DocumentStore interface {
	// GetDocument retrieves a single document by collection and id.
	// Returns (nil, nil) when the document does not exist.
	GetDocument(ctx context.Context, collection, id string) (Document, error)

	// SetDocument creates or fully replaces a document.
	SetDocument(ctx context.Context, collection, id string, doc Document) error

	// QueryByField retrieves all documents in a collection whose field equals
	// value. Result order is unspecified.
	QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error)
}
