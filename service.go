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


package groundwork

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/attuneworks/groundwork/adapter"
	"github.com/attuneworks/groundwork/ai"
	"github.com/attuneworks/groundwork/ai/openai"
	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
	"github.com/attuneworks/groundwork/ingestion"
	"github.com/attuneworks/groundwork/reindex"
	"github.com/attuneworks/groundwork/search"
	"github.com/attuneworks/groundwork/storage"
	"github.com/attuneworks/groundwork/storage/badger"
)

// Domains shipped with the service. Additional adapters can be
// registered on the registry before first use.
const (
	DomainLifeCoaching         = "life_coaching"
	DomainCareerCoaching       = "career_coaching"
	DomainRelationshipCoaching = "relationship_coaching"
)

// Service is the top-level retrieval subsystem: an embedded store, an
// embedding provider, the domain config loader and adapter registry,
// and the search orchestrator wired together.
type Service struct {
	backend      *badger.Backend
	documents    storage.DocumentRepository
	chunks       storage.ChunkRepository
	provider     ai.AIProvider
	loader       *domaincfg.Loader
	registry     *adapter.Registry
	orchestrator *search.Orchestrator
	gate         search.Gate
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	gate        search.Gate
	environment string
	inMemory    bool
	searchOpts  []search.Option
	logger      *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider instead of constructing
// one from the AI config. Used by tests and embedded deployments.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithGate sets the feature-flag gate guarding retrieval.
func WithGate(gate search.Gate) ServiceOption {
	return func(o *serviceOptions) {
		o.gate = gate
	}
}

// WithEnvironment selects the config override environment
// (e.g. "production" resolves life_coaching.production.yaml).
func WithEnvironment(env string) ServiceOption {
	return func(o *serviceOptions) {
		o.environment = env
	}
}

// WithInMemoryStore opens the store in memory instead of on disk.
func WithInMemoryStore() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithSearchOptions passes extra options to the search orchestrator.
func WithSearchOptions(opts ...search.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens the store at storagePath, loads domain configs from
// configDir, and wires up the retrieval pipeline.
func NewService(storagePath, configDir string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		gate:     search.StaticGate(true),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default().With("component", "groundwork")
	}

	backend, err := badger.OpenBackend(storagePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	var loaderOpts []domaincfg.Option
	if options.environment != "" {
		loaderOpts = append(loaderOpts, domaincfg.WithEnvironment(options.environment))
	}
	loader, err := domaincfg.NewLoader(configDir, loaderOpts...)
	if err != nil {
		chunks.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			loader.Close()
			chunks.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	registry := adapter.NewRegistry(loader)
	registry.Register(DomainLifeCoaching, adapter.NewLifeCoaching)
	registry.Register(DomainCareerCoaching, adapter.NewCareerCoaching)
	registry.Register(DomainRelationshipCoaching, adapter.NewRelationshipCoaching)

	searchOpts := append([]search.Option{
		search.WithGate(options.gate),
		search.WithLogger(options.logger),
	}, options.searchOpts...)
	orchestrator, err := search.NewOrchestrator(chunks, provider.Embedder(), registry, searchOpts...)
	if err != nil {
		provider.Close()
		loader.Close()
		chunks.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:      backend,
		documents:    documents,
		chunks:       chunks,
		provider:     provider,
		loader:       loader,
		registry:     registry,
		orchestrator: orchestrator,
		gate:         options.gate,
		logger:       options.logger,
	}, nil
}

// Close releases the service and everything it owns.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.loader.Close(); err != nil {
		s.logger.Error("error closing config loader", "err", err)
	}

	if err := s.chunks.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Retrieve runs the full pipeline for a domain: query enhancement,
// hybrid search, and domain filtering. Returns an empty slice when the
// subsystem is gated off for this requester.
func (s *Service) Retrieve(ctx context.Context, domain, query string, dctx *core.DomainContext) ([]*core.FilteredResult, error) {
	return s.orchestrator.Retrieve(ctx, domain, query, dctx)
}

// IsEnabled reports whether retrieval is gated on for the requester.
func (s *Service) IsEnabled(ctx context.Context, dctx *core.DomainContext) bool {
	gctx := search.GateContext{}
	if dctx != nil {
		gctx.UserId = dctx.UserId
		gctx.SessionId = dctx.SessionId
	}
	return s.gate.IsEnabled(ctx, search.FlagRetrieval, gctx)
}

// IsReady reports whether the embedding model handle is loaded and the
// store is reachable. It never triggers model loading itself.
func (s *Service) IsReady(ctx context.Context) bool {
	if !s.provider.Ready() {
		return false
	}
	if _, err := s.chunks.CountChunks(ctx, DomainLifeCoaching); err != nil {
		return false
	}
	return true
}

// HealthCheck actively verifies the pipeline: it embeds a trivial
// string and issues a trivial store query. Unlike searches, health
// check failures propagate instead of degrading to empty results.
func (s *Service) HealthCheck(ctx context.Context) error {
	if _, err := s.provider.Embedder().EmbedText(ctx, "health check"); err != nil {
		return &core.SearchError{Op: "health", Err: err}
	}
	return s.orchestrator.Probe(ctx, DomainLifeCoaching)
}

// DomainStats holds per-domain store counts.
type DomainStats struct {
	Documents int
	Chunks    int
}

// Stats returns document and chunk counts for every registered domain.
func (s *Service) Stats(ctx context.Context) (map[string]DomainStats, error) {
	stats := make(map[string]DomainStats)
	for _, domain := range []string{DomainLifeCoaching, DomainCareerCoaching, DomainRelationshipCoaching} {
		docs, err := s.documents.CountDocuments(ctx, domain)
		if err != nil {
			return nil, &core.RAGError{Op: "stats", Err: fmt.Errorf("count documents for %s: %w", domain, err)}
		}
		chunks, err := s.chunks.CountChunks(ctx, domain)
		if err != nil {
			return nil, &core.RAGError{Op: "stats", Err: fmt.Errorf("count chunks for %s: %w", domain, err)}
		}
		stats[domain] = DomainStats{Documents: docs, Chunks: chunks}
	}
	return stats, nil
}

// DocumentRepository exposes the underlying document store.
func (s *Service) DocumentRepository() storage.DocumentRepository {
	return s.documents
}

// ChunkRepository exposes the underlying chunk store.
func (s *Service) ChunkRepository() storage.ChunkRepository {
	return s.chunks
}

// ConfigLoader exposes the domain config loader.
func (s *Service) ConfigLoader() *domaincfg.Loader {
	return s.loader
}

// Registry exposes the domain adapter registry.
func (s *Service) Registry() *adapter.Registry {
	return s.registry
}

// Orchestrator exposes the search orchestrator for callers that need
// the individual search legs.
func (s *Service) Orchestrator() *search.Orchestrator {
	return s.orchestrator
}

// NewIngestionPipeline builds an ingestion pipeline over the service's
// repositories and embedding provider.
func (s *Service) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.documents, s.chunks, s.provider, s.loader, opts...)
}

// NewReindexer builds a reindexer over the service's chunk store.
// progress: where to write progress output (typically os.Stderr)
func (s *Service) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(s.chunks, s.provider.Embedder(), config, progress)
}
