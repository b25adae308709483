package storage

import (
	"context"

	"github.com/attuneworks/groundwork/core"
)

// DocumentRepository provides operations for managing knowledge documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocuments adds one or more documents to storage.
	// IDs are derived from domain+source key content hashing, so re-adding
	// the same source document overwrites it in place.
	// Sets CreatedAt/UpdatedAt timestamps if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.KnowledgeDocument) ([]*core.KnowledgeDocument, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.KnowledgeDocument, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeDocument, error)

	// GetDocumentBySourceKey retrieves a document by its stable external identifier.
	// Returns ErrNotFound if no matching document exists.
	GetDocumentBySourceKey(ctx context.Context, domain, sourceKey string) (*core.KnowledgeDocument, error)

	// UpdateDocumentMetadata replaces a document's metadata map.
	// Documents are otherwise immutable once ingested.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocumentMetadata(ctx context.Context, id core.ID, metadata map[string]string) (*core.KnowledgeDocument, error)

	// DeleteDocuments removes documents by their IDs, along with indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// ListByCategory retrieves up to limit documents in a domain category.
	ListByCategory(ctx context.Context, domain, category string, limit int) ([]*core.KnowledgeDocument, error)

	// CountDocuments returns the number of documents in a domain.
	CountDocuments(ctx context.Context, domain string) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing embedding chunks and
// running vector and lexical search over them. This is the store contract
// the search orchestrator consumes.
type ChunkRepository interface {
	// ReplaceChunks replaces a document's chunks wholesale.
	// Existing chunks for the document are removed first; chunk IDs are
	// derived from document ID and chunk index.
	ReplaceChunks(ctx context.Context, documentId core.ID, chunks ...*core.EmbeddingChunk) ([]*core.EmbeddingChunk, error)

	// UpdateChunks updates existing chunks in place (used by reindexing).
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.EmbeddingChunk) ([]*core.EmbeddingChunk, error)

	// GetChunksByDocument retrieves a document's chunks ordered by index.
	GetChunksByDocument(ctx context.Context, documentId core.ID) ([]*core.EmbeddingChunk, error)

	// FindSimilar finds chunks similar to the given vector within a domain.
	// Returns rows with similarity >= minSimilarity, up to limit results,
	// ordered by similarity descending. An empty categories slice means no
	// category restriction.
	FindSimilar(ctx context.Context, domain string, vector []float32, minSimilarity float32, limit int, categories []string) ([]*core.SearchResult, error)

	// FindByText finds chunks by token overlap with the query text within
	// a domain. Scores are the fraction of query tokens present in the
	// chunk, ordered descending.
	FindByText(ctx context.Context, domain, query string, limit int, categories []string) ([]*core.SearchResult, error)

	// IterateChunks calls fn for every stored chunk. Iteration stops on
	// the first error, which is returned.
	IterateChunks(ctx context.Context, fn func(chunk *core.EmbeddingChunk) error) error

	// CountChunks returns the number of chunks in a domain.
	CountChunks(ctx context.Context, domain string) (int, error)

	// Reset drops any pooled connection state so the next call dials fresh.
	// Used by the orchestrator's retry-once policy after a failed search.
	Reset(ctx context.Context) error

	// Close closes the repository and releases resources.
	Close() error
}
