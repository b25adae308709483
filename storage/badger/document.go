package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/storage"
	"github.com/dgraph-io/badger/v4"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &DocumentRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *DocumentRepository) Close() error {
	return nil
}

// documentID derives the content-based ID for a document.
// The source key is the stable identity; title is the fallback for
// documents ingested without one.
func documentID(doc *core.KnowledgeDocument) core.ID {
	key := doc.SourceKey
	if key == "" {
		key = doc.Title
	}
	return core.IDFromContent(doc.Domain + "/" + key)
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.KnowledgeDocument) ([]*core.KnowledgeDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := core.ValidateKnowledgeDocument(doc); err != nil {
				return err
			}

			doc.Id = documentID(doc)
			now := time.Now().UTC()
			if doc.CreatedAt.IsZero() {
				doc.CreatedAt = now
			}
			doc.UpdatedAt = now

			if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalKnowledgeDocument(doc)); err != nil {
				return err
			}

			if doc.SourceKey != "" {
				if err := tx.Set(makeDocumentSourceKey(doc.Domain, doc.SourceKey), storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}
			if err := tx.Set(makeDocumentDomainKey(doc.Domain, doc.Id), storage.MarshalID(doc.Id)); err != nil {
				return err
			}
			if doc.Category != "" {
				if err := tx.Set(makeCategoryKey(doc.Domain, doc.Category, doc.Id), storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.KnowledgeDocument, error) {
	var doc *core.KnowledgeDocument

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = storage.UnmarshalKnowledgeDocument(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocuments retrieves multiple documents by their IDs.
// Missing documents are skipped without error.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeDocument, error) {
	docs := make([]*core.KnowledgeDocument, 0, len(ids))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeDocumentKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var doc *core.KnowledgeDocument
			if err := item.Value(func(val []byte) error {
				doc, err = storage.UnmarshalKnowledgeDocument(val)
				return err
			}); err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocumentBySourceKey retrieves a document by its stable external identifier.
func (r *DocumentRepository) GetDocumentBySourceKey(ctx context.Context, domain, sourceKey string) (*core.KnowledgeDocument, error) {
	var id core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentSourceKey(domain, sourceKey))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id, err = storage.UnmarshalID(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return r.GetDocument(ctx, id)
}

// UpdateDocumentMetadata replaces a document's metadata map.
func (r *DocumentRepository) UpdateDocumentMetadata(ctx context.Context, id core.ID, metadata map[string]string) (*core.KnowledgeDocument, error) {
	var doc *core.KnowledgeDocument

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			doc, err = storage.UnmarshalKnowledgeDocument(val)
			return err
		}); err != nil {
			return err
		}

		doc.Metadata = metadata
		doc.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeDocumentKey(id), storage.MarshalKnowledgeDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocuments removes documents by their IDs, along with indices.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeDocumentKey(id))
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			if err != nil {
				return err
			}
			var doc *core.KnowledgeDocument
			if err := item.Value(func(val []byte) error {
				doc, err = storage.UnmarshalKnowledgeDocument(val)
				return err
			}); err != nil {
				return err
			}

			if err := tx.Delete(makeDocumentKey(id)); err != nil {
				return err
			}
			if doc.SourceKey != "" {
				if err := tx.Delete(makeDocumentSourceKey(doc.Domain, doc.SourceKey)); err != nil {
					return err
				}
			}
			if err := tx.Delete(makeDocumentDomainKey(doc.Domain, id)); err != nil {
				return err
			}
			if doc.Category != "" {
				if err := tx.Delete(makeCategoryKey(doc.Domain, doc.Category, id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// ListByCategory retrieves up to limit documents in a domain category.
func (r *DocumentRepository) ListByCategory(ctx context.Context, domain, category string, limit int) ([]*core.KnowledgeDocument, error) {
	var ids []core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialCategoryKey(domain, category)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(ids) >= limit {
				break
			}
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return r.GetDocuments(ctx, ids...)
}

// CountDocuments returns the number of documents in a domain.
func (r *DocumentRepository) CountDocuments(ctx context.Context, domain string) (int, error) {
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocumentDomainKey(domain)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}
