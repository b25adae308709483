// Copyright 2025 Attune Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/attuneworks/groundwork/ai"
	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
	"github.com/attuneworks/groundwork/storage"
)

// Pipeline manages document ingestion and asynchronous chunk embedding.
type Pipeline struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	loader    *domaincfg.Loader

	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the chunk window size and overlap, in words.
func WithChunkSize(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		if overlap >= 0 && overlap < p.chunkSize {
			p.chunkOverlap = overlap
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	provider ai.AIProvider,
	loader *domaincfg.Loader,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if loader == nil {
		return nil, ErrLoaderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents:    documents,
		chunks:       chunks,
		embedder:     provider.Embedder(),
		loader:       loader,
		pool:         pool,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Ingest validates and stores documents, then embeds their chunks
// asynchronously. Validation and document storage failures are returned;
// errors during async embedding are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.KnowledgeDocument) error {
	for _, doc := range docs {
		if err := core.ValidateKnowledgeDocument(doc); err != nil {
			return err
		}

		result, err := p.loader.Load(ctx, doc.Domain)
		if err != nil {
			return err
		}
		if err := core.ValidateMetadata(doc.Metadata, result.Config.MetadataSchema); err != nil {
			return err
		}
	}

	added, err := p.documents.AddDocuments(ctx, docs...)
	if err != nil {
		return err
	}

	for _, doc := range added {
		doc := doc
		p.pool.Submit(func() {
			if err := p.embedDocument(context.Background(), doc); err != nil {
				p.logger.Error("error embedding document chunks",
					"document", doc.Id, "domain", doc.Domain, "err", err)
			}
		})
	}
	return nil
}

// embedDocument chunks a document body, embeds the chunks, and replaces
// the stored chunk set. Unchanged content is left alone so re-ingesting
// the same document is cheap.
func (p *Pipeline) embedDocument(ctx context.Context, doc *core.KnowledgeDocument) error {
	contents := chunkText(doc.Body, p.chunkSize, p.chunkOverlap)
	if len(contents) == 0 {
		return nil
	}

	existing, err := p.chunks.GetChunksByDocument(ctx, doc.Id)
	if err != nil {
		return err
	}
	if !contentChanged(existing, contents) {
		p.logger.Debug("document content unchanged, skipping embedding", "document", doc.Id)
		return nil
	}

	vectors, err := p.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		return err
	}
	if len(vectors) != len(contents) {
		return core.NewEmbeddingError(doc.Title, core.ErrModelUnavailable)
	}

	chunks := make([]*core.EmbeddingChunk, len(contents))
	for i, content := range contents {
		chunks[i] = &core.EmbeddingChunk{
			DocumentId: doc.Id,
			Index:      i,
			Content:    content,
			Vector:     core.NormalizeVector(vectors[i]),
			Domain:     doc.Domain,
			Category:   doc.Category,
		}
	}

	_, err = p.chunks.ReplaceChunks(ctx, doc.Id, chunks...)
	if err != nil {
		return err
	}

	p.logger.Info("document embedded", "document", doc.Id, "chunks", len(chunks))
	return nil
}

// contentChanged compares stored chunk hashes against the new chunk
// contents. Any difference triggers a wholesale replacement.
func contentChanged(existing []*core.EmbeddingChunk, contents []string) bool {
	if len(existing) != len(contents) {
		return true
	}
	for i, chunk := range existing {
		if chunk.ContentHash != core.ContentHash(contents[i]) {
			return true
		}
	}
	return false
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
