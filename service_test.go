package groundwork

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attuneworks/groundwork/ai/mock"
	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/ingestion"
	"github.com/attuneworks/groundwork/search"
)

func writeTestConfigs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	configs := map[string]string{
		"life_coaching.yaml": `name: life_coaching
display_name: Life Coaching
description: Holistic life coaching knowledge base.
knowledge_sources: [coaching_methodologies]
methodologies: [GROW Model, Wheel of Life]
filtering_rules:
  minimum_relevance_score: 0.05
  boost_factors:
    methodology_match: 1.3
metadata_schema:
  methodology: []
  life_area: [career, relationships, health, personal_growth]
`,
		"career_coaching.yaml": `name: career_coaching
display_name: Career Coaching
description: Career coaching knowledge base.
knowledge_sources: [career_methodologies]
`,
		"relationship_coaching.yaml": `name: relationship_coaching
display_name: Relationship Coaching
description: Relationship coaching knowledge base.
knowledge_sources: [relationship_methodologies]
`,
	}
	for name, content := range configs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *mock.MockEmbedder) {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	opts = append([]ServiceOption{
		WithInMemoryStore(),
		WithProvider(mock.NewMockProviderWithEmbedder(embedder)),
	}, opts...)

	svc, err := NewService(filepath.Join(t.TempDir(), "store"), writeTestConfigs(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, embedder
}

func TestNewService(t *testing.T) {
	t.Run("wires all components", func(t *testing.T) {
		svc, _ := newTestService(t)

		assert.NotNil(t, svc.DocumentRepository())
		assert.NotNil(t, svc.ChunkRepository())
		assert.NotNil(t, svc.ConfigLoader())
		assert.NotNil(t, svc.Orchestrator())

		for _, domain := range []string{DomainLifeCoaching, DomainCareerCoaching, DomainRelationshipCoaching} {
			assert.True(t, svc.Registry().IsRegistered(domain), domain)
		}
	})

	t.Run("empty config dir", func(t *testing.T) {
		_, err := NewService(filepath.Join(t.TempDir(), "store"), "", WithInMemoryStore())
		assert.Error(t, err)
	})

	t.Run("invalid storage path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

		_, err := NewService(tmpFile, writeTestConfigs(t))
		assert.Error(t, err)
	})
}

func ingestTestDocument(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	pipeline, err := svc.NewIngestionPipeline(ingestion.WithChunkSize(10, 2))
	require.NoError(t, err)
	defer pipeline.Release()

	docs := []*core.KnowledgeDocument{
		{
			SourceKey: "grow.md",
			Domain:    DomainLifeCoaching,
			Title:     "GROW Model",
			Body:      "goal setting with the GROW model",
			Category:  "methodology",
			Metadata:  map[string]string{"methodology": "GROW Model"},
		},
		{
			SourceKey: "sleep.md",
			Domain:    DomainLifeCoaching,
			Title:     "Sleep Hygiene",
			Body:      "sleep hygiene and stress reduction",
			Category:  "methodology",
			Metadata:  map[string]string{"methodology": "GROW Model"},
		},
	}
	for _, doc := range docs {
		require.NoError(t, pipeline.Ingest(ctx, doc))
	}

	// Embedding runs async on the pipeline's worker pool
	require.Eventually(t, func() bool {
		count, err := svc.ChunkRepository().CountChunks(ctx, DomainLifeCoaching)
		if err != nil || count == 0 {
			return false
		}
		vectored := true
		svc.ChunkRepository().IterateChunks(ctx, func(chunk *core.EmbeddingChunk) error {
			if len(chunk.Vector) == 0 {
				vectored = false
			}
			return nil
		})
		return vectored
	}, 5*time.Second, 20*time.Millisecond)
}

func TestService_Retrieve(t *testing.T) {
	svc, _ := newTestService(t)
	ingestTestDocument(t, svc)

	ctx := context.Background()
	dctx := &core.DomainContext{
		UserId:               "user-1",
		SessionId:            "session-1",
		PreferredMethodology: "GROW Model",
	}

	results, err := svc.Retrieve(ctx, DomainLifeCoaching, "I'm stressed about work and sleep", dctx)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].BoostedScore, results[i].BoostedScore)
	}
	assert.Contains(t, results[0].AppliedFactors, "methodology_match")

	t.Run("unregistered domain propagates", func(t *testing.T) {
		_, err := svc.Retrieve(ctx, "astrology", "anything", nil)
		var dcErr *core.DomainConfigError
		require.True(t, errors.As(err, &dcErr))
	})
}

func TestService_GateDisabled(t *testing.T) {
	svc, _ := newTestService(t, WithGate(search.StaticGate(false)))
	ingestTestDocument(t, svc)

	ctx := context.Background()
	assert.False(t, svc.IsEnabled(ctx, nil))

	results, err := svc.Retrieve(ctx, DomainLifeCoaching, "sleep", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_IsReady(t *testing.T) {
	svc, _ := newTestService(t)
	assert.True(t, svc.IsReady(context.Background()))
}

func TestService_HealthCheck(t *testing.T) {
	svc, embedder := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.HealthCheck(ctx))

	t.Run("embedder failure propagates", func(t *testing.T) {
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model unavailable")
		}
		defer func() { embedder.EmbedTextFunc = nil }()

		err := svc.HealthCheck(ctx)
		require.Error(t, err)
		var searchErr *core.SearchError
		assert.True(t, errors.As(err, &searchErr))
	})
}

func TestService_Stats(t *testing.T) {
	svc, _ := newTestService(t)
	ingestTestDocument(t, svc)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, 2, stats[DomainLifeCoaching].Documents)
	assert.Greater(t, stats[DomainLifeCoaching].Chunks, 0)
	assert.Equal(t, 0, stats[DomainCareerCoaching].Documents)
	assert.Equal(t, 0, stats[DomainRelationshipCoaching].Chunks)
}

func TestService_NewReindexer(t *testing.T) {
	svc, _ := newTestService(t)
	ingestTestDocument(t, svc)

	var buf bytes.Buffer
	r := svc.NewReindexer(nil, &buf)
	require.NotNil(t, r)
	require.NoError(t, r.Run(context.Background(), false))
	assert.Contains(t, buf.String(), "No chunks need reindexing")
}
