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


package search

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/attuneworks/groundwork/adapter"
	"github.com/attuneworks/groundwork/ai"
	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/storage"
)

const (
	defaultLexicalWeight = 0.3
	defaultThreshold     = 0.60
	defaultLimit         = 10
)

// SearchOptions tunes one search call. Zero values fall back to the
// orchestrator's defaults.
type SearchOptions struct {
	Limit      int
	Threshold  float32
	Categories []string
}

// Orchestrator runs semantic, lexical, and hybrid search over the chunk
// store and the full retrieval pipeline on top of them.
type Orchestrator struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	registry *adapter.Registry
	gate     Gate

	lexicalWeight float64
	threshold     float32
	limit         int
	hybridEnabled bool
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithGate sets the feature-flag gate.
// Default is a StaticGate reporting enabled.
func WithGate(gate Gate) Option {
	return func(o *Orchestrator) error {
		if gate == nil {
			gate = StaticGate(true)
		}
		o.gate = gate
		return nil
	}
}

// WithLexicalWeight sets the lexical contribution to hybrid fusion.
// Default is 0.3.
func WithLexicalWeight(weight float64) Option {
	return func(o *Orchestrator) error {
		if weight < 0 {
			weight = 0
		}
		o.lexicalWeight = weight
		return nil
	}
}

// WithDefaults sets the fallback threshold and limit for search calls
// that do not specify their own.
func WithDefaults(threshold float32, limit int) Option {
	return func(o *Orchestrator) error {
		if threshold > 0 {
			o.threshold = threshold
		}
		if limit > 0 {
			o.limit = limit
		}
		return nil
	}
}

// WithHybridDisabled degrades HybridSearch to semantic-only for every
// domain, overriding per-domain configuration.
func WithHybridDisabled() Option {
	return func(o *Orchestrator) error {
		o.hybridEnabled = false
		return nil
	}
}

// NewOrchestrator creates a new search orchestrator.
func NewOrchestrator(
	chunks storage.ChunkRepository,
	embedder ai.Embedder,
	registry *adapter.Registry,
	opts ...Option,
) (*Orchestrator, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	o := &Orchestrator{
		chunks:        chunks,
		embedder:      embedder,
		registry:      registry,
		gate:          StaticGate(true),
		lexicalWeight: defaultLexicalWeight,
		threshold:     defaultThreshold,
		limit:         defaultLimit,
		hybridEnabled: true,
		logger:        slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Orchestrator) enabled(ctx context.Context, dctx *core.DomainContext) bool {
	gctx := GateContext{}
	if dctx != nil {
		gctx.UserId = dctx.UserId
		gctx.SessionId = dctx.SessionId
	}
	return o.gate.IsEnabled(ctx, FlagRetrieval, gctx)
}

func (o *Orchestrator) resolve(opts SearchOptions) SearchOptions {
	if opts.Limit <= 0 {
		opts.Limit = o.limit
	}
	if opts.Threshold <= 0 {
		opts.Threshold = o.threshold
	}
	return opts
}

// SemanticSearch embeds the query and returns the nearest stored chunks
// in the domain, at most opts.Limit with similarity >= opts.Threshold,
// ordered by similarity descending. Returns an empty slice when the
// subsystem is gated off.
func (o *Orchestrator) SemanticSearch(ctx context.Context, domain, query string, opts SearchOptions) ([]*core.SearchResult, error) {
	if !o.enabled(ctx, nil) {
		return []*core.SearchResult{}, nil
	}
	return o.semanticSearch(ctx, domain, query, o.resolve(opts))
}

func (o *Orchestrator) semanticSearch(ctx context.Context, domain, query string, opts SearchOptions) ([]*core.SearchResult, error) {
	vector, err := o.embedder.EmbedText(ctx, query)
	if err != nil {
		o.logger.Error("error generating embedding for query", "domain", domain, "err", err)
		return nil, err
	}
	// Stored chunk vectors are unit length; the query vector must be too,
	// or dot-product similarity leaves the [0, 1] range.
	vector = core.NormalizeVector(vector)

	return o.withRetry(ctx, "semantic", func() ([]*core.SearchResult, error) {
		return o.chunks.FindSimilar(ctx, domain, vector, opts.Threshold, opts.Limit, opts.Categories)
	})
}

// LexicalSearch runs token-overlap full-text search in the domain.
// Returns an empty slice when the subsystem is gated off.
func (o *Orchestrator) LexicalSearch(ctx context.Context, domain, query string, opts SearchOptions) ([]*core.SearchResult, error) {
	if !o.enabled(ctx, nil) {
		return []*core.SearchResult{}, nil
	}
	return o.lexicalSearch(ctx, domain, query, o.resolve(opts))
}

func (o *Orchestrator) lexicalSearch(ctx context.Context, domain, query string, opts SearchOptions) ([]*core.SearchResult, error) {
	return o.withRetry(ctx, "lexical", func() ([]*core.SearchResult, error) {
		return o.chunks.FindByText(ctx, domain, query, opts.Limit, opts.Categories)
	})
}

// withRetry runs a store call, retrying once on a fresh connection.
// A second failure is absorbed to an empty result set; a retrieval
// outage degrades callers instead of failing them.
func (o *Orchestrator) withRetry(ctx context.Context, op string, call func() ([]*core.SearchResult, error)) ([]*core.SearchResult, error) {
	results, err := call()
	if err == nil {
		return results, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	o.logger.Warn("store query failed, retrying on fresh connection", "op", op, "err", err)
	if resetErr := o.chunks.Reset(ctx); resetErr != nil {
		o.logger.Warn("store reset failed", "op", op, "err", resetErr)
	}

	results, err = call()
	if err == nil {
		return results, nil
	}

	o.logger.Warn("store query failed after retry, returning empty results", "op", op, "err", err)
	return []*core.SearchResult{}, nil
}

// HybridSearch runs semantic and lexical search concurrently and fuses
// them. A chunk found by both legs is not duplicated; its fused score is
// the semantic score plus a smaller lexical contribution. A failed leg is
// treated as empty. Degrades to semantic-only when hybrid is disabled.
func (o *Orchestrator) HybridSearch(ctx context.Context, domain, query string, opts SearchOptions) ([]*core.SearchResult, error) {
	if !o.enabled(ctx, nil) {
		return []*core.SearchResult{}, nil
	}
	return o.hybridSearch(ctx, domain, query, o.resolve(opts), &noopMonitor{})
}

func (o *Orchestrator) hybridSearch(ctx context.Context, domain, query string, opts SearchOptions, monitor Monitor) ([]*core.SearchResult, error) {
	if !o.hybridEnabled || !o.domainHybridEnabled(ctx, domain) {
		results, err := o.semanticSearch(ctx, domain, query, opts)
		if err != nil {
			return nil, err
		}
		monitor.AfterSemanticSearch(results)
		monitor.AfterFusion(results)
		return results, nil
	}

	var (
		wg       sync.WaitGroup
		semantic []*core.SearchResult
		lexical  []*core.SearchResult
		semErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semantic, semErr = o.semanticSearch(ctx, domain, query, opts)
	}()
	go func() {
		defer wg.Done()
		var err error
		lexical, err = o.lexicalSearch(ctx, domain, query, opts)
		if err != nil {
			// Lexical is the secondary signal; a failure degrades the
			// search to semantic-only.
			o.logger.Warn("lexical leg failed, fusing semantic only", "domain", domain, "err", err)
			lexical = nil
		}
	}()
	wg.Wait()

	if semErr != nil {
		return nil, semErr
	}
	monitor.AfterSemanticSearch(semantic)
	monitor.AfterLexicalSearch(lexical)

	fused := o.fuse(semantic, lexical, opts.Limit)
	monitor.AfterFusion(fused)
	return fused, nil
}

// domainHybridEnabled reports whether the domain's configuration allows
// lexical fusion. Domains without a registered adapter keep the default.
func (o *Orchestrator) domainHybridEnabled(ctx context.Context, domain string) bool {
	domainAdapter, err := o.registry.Get(ctx, domain)
	if err != nil {
		return true
	}
	return domainAdapter.HybridSearchEnabled()
}

// fuse merges the two result sets deterministically. Fused scores are
// capped at 1.0 to stay in the similarity range.
func (o *Orchestrator) fuse(semantic, lexical []*core.SearchResult, limit int) []*core.SearchResult {
	byChunk := make(map[core.ID]*core.SearchResult, len(semantic)+len(lexical))

	for _, result := range semantic {
		byChunk[result.ChunkId] = result
	}
	for _, result := range lexical {
		contribution := float32(o.lexicalWeight) * result.Score
		if existing, ok := byChunk[result.ChunkId]; ok {
			existing.Score += contribution
			continue
		}
		scaled := *result
		scaled.Score = contribution
		byChunk[result.ChunkId] = &scaled
	}

	fused := make([]*core.SearchResult, 0, len(byChunk))
	for _, result := range byChunk {
		if result.Score > 1.0 {
			result.Score = 1.0
		}
		fused = append(fused, result)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ChunkId < fused[j].ChunkId
	})

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}

// Retrieve runs the full pipeline: domain query enhancement, hybrid
// search, and domain result filtering. Returns ranked filtered results,
// or an empty slice when the subsystem is gated off for this requester.
func (o *Orchestrator) Retrieve(ctx context.Context, domain, rawQuery string, dctx *core.DomainContext) ([]*core.FilteredResult, error) {
	return o.RetrieveWithMonitor(ctx, domain, rawQuery, dctx, nil)
}

// RetrieveWithMonitor is Retrieve with pipeline observation hooks.
func (o *Orchestrator) RetrieveWithMonitor(ctx context.Context, domain, rawQuery string, dctx *core.DomainContext, monitor Monitor) ([]*core.FilteredResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if !o.enabled(ctx, dctx) {
		return []*core.FilteredResult{}, nil
	}

	monitor.Start(domain, rawQuery)

	domainAdapter, err := o.registry.Get(ctx, domain)
	if err != nil {
		return nil, err
	}

	enhancement, err := domainAdapter.EnhanceQuery(ctx, rawQuery, dctx)
	if err != nil {
		return nil, err
	}
	monitor.AfterEnhancement(enhancement)

	results, err := o.hybridSearch(ctx, domain, enhancement.EnhancedQuery, o.resolve(SearchOptions{}), monitor)
	if err != nil {
		return nil, &core.SearchError{Op: "retrieve", Err: err}
	}

	filtered, err := domainAdapter.FilterResults(ctx, results, dctx)
	if err != nil {
		return nil, err
	}
	monitor.Finish(filtered)

	o.logger.Debug("retrieval complete",
		"domain", domain, "raw", len(results), "filtered", len(filtered))
	return filtered, nil
}

// Probe issues a trivial store query without retry or absorption.
// Health checks must see real failures, not degraded empty results.
func (o *Orchestrator) Probe(ctx context.Context, domain string) error {
	if _, err := o.chunks.FindByText(ctx, domain, "health", 1, nil); err != nil {
		return &core.SearchError{Op: "probe", Err: err}
	}
	return nil
}
