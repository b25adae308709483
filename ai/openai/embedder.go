package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/attuneworks/groundwork/ai"
	"github.com/attuneworks/groundwork/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// The underlying client is constructed lazily, at most once per process
// lifetime; repeated calls reuse the cached handle.
type Embedder struct {
	config   *ai.Config
	once     sync.Once
	embedder embeddings.Embedder
	initErr  error
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Embedder{
		config: config,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// client returns the lazily initialized langchaingo embedder.
func (e *Embedder) client() (embeddings.Embedder, error) {
	e.once.Do(func() {
		// Use "none" as token for local OpenAI-compatible services that
		// don't require authentication
		llm, err := openai.New(
			openai.WithBaseURL(e.config.EmbeddingHost),
			openai.WithToken("none"),
			openai.WithEmbeddingModel(e.config.EmbeddingModel),
		)
		if err != nil {
			e.initErr = fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
			return
		}

		embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
		if err != nil {
			e.initErr = fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
			return
		}

		e.embedder = embedder
		e.logger.Debug("embedding model loaded", "model", e.config.EmbeddingModel)
	})

	return e.embedder, e.initErr
}

// Ready reports whether the model handle has been loaded successfully.
func (e *Embedder) Ready() bool {
	return e.embedder != nil && e.initErr == nil
}

// prepare truncates input deterministically at the model context limit.
// The empty string embeds as a single space so it still yields a
// defined vector instead of an API error.
func (e *Embedder) prepare(text string) string {
	if text == "" {
		return " "
	}
	runes := []rune(text)
	if len(runes) > e.config.MaxInputRunes {
		return string(runes[:e.config.MaxInputRunes])
	}
	return text
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	client, err := e.client()
	if err != nil {
		return nil, core.NewEmbeddingError(text, err)
	}

	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := client.EmbedDocuments(ctx, []string{e.prepare(text)})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, core.NewEmbeddingError(text, err)
	}

	if len(vectors) == 0 {
		return nil, core.NewEmbeddingError(text, fmt.Errorf("embedder returned no vectors"))
	}

	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	client, err := e.client()
	if err != nil {
		return nil, core.NewEmbeddingError(first(texts), err)
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	prepared := make([]string, len(texts))
	for i, text := range texts {
		prepared[i] = e.prepare(text)
	}

	vectors, err := client.EmbedDocuments(ctx, prepared)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, core.NewEmbeddingError(first(texts), err)
	}

	if len(vectors) != len(texts) {
		return nil, core.NewEmbeddingError(first(texts),
			fmt.Errorf("embedding result mismatch: expected %d, received %d", len(texts), len(vectors)))
	}

	return vectors, nil
}

func first(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}
