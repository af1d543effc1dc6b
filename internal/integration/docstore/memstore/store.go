// Package memstore implements the document store contract in memory. It is
// the test double for the external persistence provider; documents survive a
// JSON round trip on every read and write so values look exactly like they
// would coming back from a real store.
package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/finance-tracker/client/internal/application/adapter"
)

// Store implements adapter.DocumentStore in memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]adapter.Document

	// FailReads and FailWrites, when set, make the corresponding operations
	// return the given error. Used by tests to simulate provider outages.
	FailReads  error
	FailWrites error
}

// NewStore creates an empty in-memory document store.
func NewStore() *Store {
	return &Store{
		collections: map[string]map[string]adapter.Document{},
	}
}

// GetDocument retrieves a single document. Returns (nil, nil) when absent.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (adapter.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return roundTrip(doc)
}

// SetDocument creates or fully replaces a document.
func (s *Store) SetDocument(ctx context.Context, collection, id string, doc adapter.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}

	stored, err := roundTrip(doc)
	if err != nil {
		return err
	}
	if s.collections[collection] == nil {
		s.collections[collection] = map[string]adapter.Document{}
	}
	s.collections[collection][id] = stored
	return nil
}

// QueryByField retrieves all documents in a collection whose field equals value.
func (s *Store) QueryByField(ctx context.Context, collection, field string, value any) ([]adapter.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	want, err := roundTripValue(value)
	if err != nil {
		return nil, err
	}

	var documents []adapter.Document
	for _, doc := range s.collections[collection] {
		if doc[field] == want {
			copied, err := roundTrip(doc)
			if err != nil {
				return nil, err
			}
			documents = append(documents, copied)
		}
	}
	return documents, nil
}

// Len reports the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func roundTrip(doc adapter.Document) (adapter.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out adapter.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func roundTripValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
