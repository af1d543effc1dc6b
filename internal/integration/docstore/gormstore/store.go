// Package gormstore implements the document store contract on a relational
// database through GORM. Documents are stored as JSON rows; the owner id is
// extracted into an indexed column so per-user queries avoid a full scan.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/client/internal/application/adapter"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// ownerField is the document field extracted into the indexed owner column.
const ownerField = "userId"

// DocumentModel represents the documents table.
type DocumentModel struct {
	Collection string    `gorm:"primaryKey;size:64"`
	DocID      string    `gorm:"primaryKey;size:64;column:doc_id"`
	OwnerID    string    `gorm:"size:64;index"`
	Data       []byte    `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the DocumentModel.
func (DocumentModel) TableName() string {
	return "documents"
}

// Store implements adapter.DocumentStore on a GORM connection.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new document store instance.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

// GetDocument retrieves a single document. Returns (nil, nil) when absent.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (adapter.Document, error) {
	var model DocumentModel
	result := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, domainerror.NewPersistenceError(
			domainerror.ErrCodeReadFailed,
			"failed to read document",
			result.Error,
		)
	}
	return decodeDocument(model.Data)
}

// SetDocument creates or fully replaces a document.
func (s *Store) SetDocument(ctx context.Context, collection, id string, doc adapter.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return domainerror.NewPersistenceError(
			domainerror.ErrCodeWriteFailed,
			"failed to encode document",
			err,
		)
	}

	ownerID, _ := doc[ownerField].(string)
	model := DocumentModel{
		Collection: collection,
		DocID:      id,
		OwnerID:    ownerID,
		Data:       data,
		UpdatedAt:  time.Now().UTC(),
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model)
	if result.Error != nil {
		return domainerror.NewPersistenceError(
			domainerror.ErrCodeWriteFailed,
			"failed to write document",
			result.Error,
		)
	}
	return nil
}

// QueryByField retrieves all documents in a collection whose field equals
// value. The owner field hits the indexed column; any other field falls back
// to scanning the collection and filtering decoded documents.
func (s *Store) QueryByField(ctx context.Context, collection, field string, value any) ([]adapter.Document, error) {
	query := s.db.WithContext(ctx).Where("collection = ?", collection)

	indexed := false
	if field == ownerField {
		if owner, ok := value.(string); ok {
			query = query.Where("owner_id = ?", owner)
			indexed = true
		}
	}

	var models []DocumentModel
	if result := query.Order("updated_at").Find(&models); result.Error != nil {
		return nil, domainerror.NewPersistenceError(
			domainerror.ErrCodeReadFailed,
			"failed to query documents",
			result.Error,
		)
	}

	want := normalizeValue(value)
	documents := make([]adapter.Document, 0, len(models))
	for _, model := range models {
		doc, err := decodeDocument(model.Data)
		if err != nil {
			return nil, err
		}
		if indexed || fieldEquals(doc, field, want) {
			documents = append(documents, doc)
		}
	}
	return documents, nil
}

func decodeDocument(data []byte) (adapter.Document, error) {
	var doc adapter.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domainerror.NewPersistenceError(
			domainerror.ErrCodeDocumentDecode,
			"failed to decode document",
			err,
		)
	}
	return doc, nil
}

// normalizeValue pushes a query value through a JSON round trip so it
// compares cleanly against decoded document fields.
func normalizeValue(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return value
	}
	return out
}

func fieldEquals(doc adapter.Document, field string, want any) bool {
	got, ok := doc[field]
	if !ok {
		return false
	}
	return got == want
}
