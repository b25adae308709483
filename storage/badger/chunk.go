package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/storage"
	"github.com/dgraph-io/badger/v4"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
// Vector search is a brute-force cosine scan over the domain's chunks,
// which is adequate for embedded deployments of this size.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ChunkRepository) Close() error {
	return nil
}

// Reset drops pooled connection state. The embedded store holds no
// connections, so this is a no-op kept for the store contract.
func (r *ChunkRepository) Reset(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// chunkID derives the content-based ID for a chunk.
func chunkID(documentID core.ID, index int) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d/%d", documentID, index))
}

// ReplaceChunks replaces a document's chunks wholesale.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentId core.ID, chunks ...*core.EmbeddingChunk) ([]*core.EmbeddingChunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := r.deleteChunksTx(tx, documentId); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, chunk := range chunks {
			if err := core.ValidateEmbeddingChunk(chunk); err != nil {
				return err
			}
			if chunk.DocumentId != documentId {
				return fmt.Errorf("%w: chunk belongs to document %d, not %d",
					storage.ErrInvalidQuery, chunk.DocumentId, documentId)
			}

			chunk.Id = chunkID(documentId, chunk.Index)
			if chunk.ContentHash == 0 {
				chunk.ContentHash = core.ContentHash(chunk.Content)
			}
			if chunk.CreatedAt.IsZero() {
				chunk.CreatedAt = now
			}
			chunk.UpdatedAt = now

			if err := r.writeChunkTx(tx, chunk); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// UpdateChunks updates existing chunks in place.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.EmbeddingChunk) ([]*core.EmbeddingChunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if _, err := tx.Get(makeChunkKey(chunk.Id)); err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}

			chunk.UpdatedAt = time.Now().UTC()
			if err := r.writeChunkTx(tx, chunk); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// writeChunkTx stores a chunk and its document and token indices.
func (r *ChunkRepository) writeChunkTx(tx *badger.Txn, chunk *core.EmbeddingChunk) error {
	if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalEmbeddingChunk(chunk)); err != nil {
		return err
	}
	if err := tx.Set(makeChunkDocumentKey(chunk.DocumentId, chunk.Index), storage.MarshalID(chunk.Id)); err != nil {
		return err
	}
	for _, token := range tokenize(chunk.Content) {
		if err := tx.Set(makeTokenKey(chunk.Domain, token, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteChunksTx removes all chunks of a document together with indices.
func (r *ChunkRepository) deleteChunksTx(tx *badger.Txn, documentId core.ID) error {
	existing, err := r.chunksByDocumentTx(tx, documentId)
	if err != nil {
		return err
	}
	for _, chunk := range existing {
		if err := tx.Delete(makeChunkKey(chunk.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeChunkDocumentKey(documentId, chunk.Index)); err != nil {
			return err
		}
		for _, token := range tokenize(chunk.Content) {
			if err := tx.Delete(makeTokenKey(chunk.Domain, token, chunk.Id)); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetChunksByDocument retrieves a document's chunks ordered by index.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentId core.ID) ([]*core.EmbeddingChunk, error) {
	var chunks []*core.EmbeddingChunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chunks, err = r.chunksByDocumentTx(tx, documentId)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *ChunkRepository) chunksByDocumentTx(tx *badger.Txn, documentId core.ID) ([]*core.EmbeddingChunk, error) {
	var ids []core.ID

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkDocumentKey(documentId)
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			iter.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	iter.Close()

	chunks := make([]*core.EmbeddingChunk, 0, len(ids))
	for _, id := range ids {
		item, err := tx.Get(makeChunkKey(id))
		if err == badger.ErrKeyNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		var chunk *core.EmbeddingChunk
		if err := item.Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalEmbeddingChunk(val)
			return err
		}); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	slices.SortFunc(chunks, func(a, b *core.EmbeddingChunk) int {
		return a.Index - b.Index
	})
	return chunks, nil
}

// FindSimilar finds chunks similar to the given vector within a domain.
func (r *ChunkRepository) FindSimilar(ctx context.Context, domain string, vector []float32, minSimilarity float32, limit int, categories []string) ([]*core.SearchResult, error) {
	var matches []*core.EmbeddingChunk
	var scores []float32

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.EmbeddingChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalEmbeddingChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			if chunk.Domain != domain || !categoryAllowed(chunk.Category, categories) {
				continue
			}
			// Skip chunks without embeddings
			if len(chunk.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, chunk.Vector)
			if similarity >= minSimilarity {
				matches = append(matches, chunk)
				scores = append(scores, similarity)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return r.buildResults(ctx, matches, scores, limit)
}

// FindByText finds chunks by token overlap with the query text.
func (r *ChunkRepository) FindByText(ctx context.Context, domain, query string, limit int, categories []string) ([]*core.SearchResult, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []*core.SearchResult{}, nil
	}

	hits := make(map[core.ID]int)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, token := range tokens {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makePartialTokenKey(domain, token)
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				var id core.ID
				err := iter.Item().Value(func(val []byte) error {
					var err error
					id, err = storage.UnmarshalID(val)
					return err
				})
				if err != nil {
					iter.Close()
					return err
				}
				hits[id]++
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	var matches []*core.EmbeddingChunk
	var scores []float32

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for id, count := range hits {
			item, err := tx.Get(makeChunkKey(id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var chunk *core.EmbeddingChunk
			if err := item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalEmbeddingChunk(val)
				return err
			}); err != nil {
				return err
			}
			if !categoryAllowed(chunk.Category, categories) {
				continue
			}
			matches = append(matches, chunk)
			scores = append(scores, float32(count)/float32(len(tokens)))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return r.buildResults(ctx, matches, scores, limit)
}

// buildResults joins matched chunks with their parent documents and
// produces sorted, limited search rows.
func (r *ChunkRepository) buildResults(ctx context.Context, chunks []*core.EmbeddingChunk, scores []float32, limit int) ([]*core.SearchResult, error) {
	results := make([]*core.SearchResult, 0, len(chunks))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			result := &core.SearchResult{
				ChunkId:          chunk.Id,
				DocumentId:       chunk.DocumentId,
				Content:          chunk.Content,
				Score:            scores[i],
				ChunkIndex:       chunk.Index,
				DocumentCategory: chunk.Category,
			}

			item, err := tx.Get(makeDocumentKey(chunk.DocumentId))
			if err == nil {
				var doc *core.KnowledgeDocument
				if err := item.Value(func(val []byte) error {
					var err error
					doc, err = storage.UnmarshalKnowledgeDocument(val)
					return err
				}); err != nil {
					return err
				}
				result.DocumentTitle = doc.Title
				result.DocumentAuthor = doc.Author
				result.Metadata = doc.Metadata
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			results = append(results, result)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by score descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// IterateChunks calls fn for every stored chunk.
func (r *ChunkRepository) IterateChunks(ctx context.Context, fn func(chunk *core.EmbeddingChunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk *core.EmbeddingChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalEmbeddingChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountChunks returns the number of chunks in a domain.
func (r *ChunkRepository) CountChunks(ctx context.Context, domain string) (int, error) {
	count := 0
	err := r.IterateChunks(ctx, func(chunk *core.EmbeddingChunk) error {
		if chunk.Domain == domain {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// categoryAllowed reports whether a chunk category passes the filter.
// An empty filter allows everything.
func categoryAllowed(category string, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	return slices.Contains(categories, category)
}
